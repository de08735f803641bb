package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
)

// BackoffConfig controls reconnection attempts
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// next returns the interval after d
func (b BackoffConfig) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * b.Multiplier)
	if d > b.MaxInterval {
		return b.MaxInterval
	}
	return d
}

// DefaultBackoff is used by NewWhatsAppClient
var DefaultBackoff = BackoffConfig{
	MaxRetries:      10,
	InitialInterval: 5 * time.Second,
	MaxInterval:     5 * time.Minute,
	Multiplier:      1.5,
}

const (
	qrAttempts = 5
	qrTimeout  = 60 * time.Second
)

// WhatsAppClient keeps a linked-device session alive for sending sync reports
type WhatsAppClient struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	log       *logger.Logger
	backoff   BackoffConfig

	mu              sync.RWMutex
	connected       bool
	cancelReconnect context.CancelFunc
}

// parseLogLevel maps WHATSAPP_LOG_LEVEL values such as "INFO" or "debug" to a
// zerolog level, defaulting to info
func parseLogLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewWhatsAppClient opens the session store and prepares a client. The device
// name is what WhatsApp shows under linked devices.
func NewWhatsAppClient(ctx context.Context, cfg config.WhatsAppConfig, log *logger.Logger) (*WhatsAppClient, error) {
	waLogger := waLog.Zerolog(log.Zerolog().Level(parseLogLevel(cfg.LogLevel)))

	container, err := sqlstore.New(ctx, cfg.DBDriver, cfg.DBDSN, waLogger.Sub("Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database container: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	deviceName := cfg.DeviceName
	if deviceName == "" {
		deviceName = "macOS"
	}
	store.SetOSInfo(deviceName, [3]uint32{0, 1, 0})
	device.Platform = deviceName

	w := &WhatsAppClient{
		client:    whatsmeow.NewClient(device, waLogger.Sub("Client")),
		container: container,
		log:       log,
		backoff:   DefaultBackoff,
	}
	w.client.AddEventHandler(w.handleEvent)

	return w, nil
}

// handleEvent tracks the connection state and reconnects after a drop
func (w *WhatsAppClient) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		w.mu.Lock()
		w.connected = true
		if w.cancelReconnect != nil {
			w.cancelReconnect()
			w.cancelReconnect = nil
		}
		w.mu.Unlock()
		w.log.Info("WhatsApp client connected")

	case *events.Disconnected:
		w.mu.Lock()
		w.connected = false
		start := w.cancelReconnect == nil
		w.mu.Unlock()

		w.log.Warn("WhatsApp client disconnected")
		if start {
			go w.reconnect()
		}

	case *events.LoggedOut:
		w.mu.Lock()
		w.connected = false
		w.mu.Unlock()
		w.log.Warnf("WhatsApp session logged out (reason %v), a new QR login is required", v.Reason)

	case *events.StreamError:
		w.log.Errorf("WhatsApp stream error: %v", v)
	}
}

// reconnect retries with exponential backoff until connected or out of attempts
func (w *WhatsAppClient) reconnect() {
	w.mu.Lock()
	if w.connected || w.cancelReconnect != nil {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelReconnect = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.cancelReconnect = nil
		w.mu.Unlock()
		cancel()
	}()

	interval := w.backoff.InitialInterval
	for attempt := 1; attempt <= w.backoff.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		if w.IsConnected() || w.client.IsConnected() {
			return
		}

		w.log.Infof("Reconnection attempt %d/%d", attempt, w.backoff.MaxRetries)
		if err := w.client.Connect(); err != nil {
			w.log.Errorf("Reconnection attempt %d failed: %v", attempt, err)
			interval = w.backoff.next(interval)
			continue
		}
		return
	}

	w.log.Error("All reconnection attempts failed", nil)
}

// Connect connects with the stored session. Without one, QR login runs in the
// background and Connect returns at once.
func (w *WhatsAppClient) Connect(ctx context.Context) error {
	if w.client.Store.ID == nil {
		w.log.Info("No existing WhatsApp session found, starting QR login...")
		go w.loginWithQR(ctx)
		return nil
	}

	w.log.Info("Existing WhatsApp session found. Connecting...")
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect client: %w", err)
	}
	return nil
}

// loginWithQR shows QR codes in the terminal until one is scanned
func (w *WhatsAppClient) loginWithQR(ctx context.Context) {
	for attempt := 1; attempt <= qrAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}

		ok, err := w.qrAttempt(ctx)
		switch {
		case ok:
			w.log.Infof("WhatsApp login successful, device %s", w.client.Store.ID)
			return
		case ctx.Err() != nil:
			w.log.Info("QR login cancelled")
			return
		case err != nil:
			w.log.Error("QR login attempt failed", err)
		default:
			w.log.Warnf("QR code was not scanned (attempt %d/%d)", attempt, qrAttempts)
		}
	}

	w.log.Error("Failed to log in to WhatsApp after multiple attempts", nil)
}

func (w *WhatsAppClient) qrAttempt(ctx context.Context) (bool, error) {
	qrCtx, cancel := context.WithTimeout(ctx, qrTimeout)
	defer cancel()

	qrChan, err := w.client.GetQRChannel(qrCtx)
	if err != nil {
		return false, fmt.Errorf("failed to get QR channel: %w", err)
	}

	if !w.client.IsConnected() {
		if err := w.client.Connect(); err != nil {
			return false, fmt.Errorf("failed to connect client: %w", err)
		}
	}

	for {
		select {
		case <-qrCtx.Done():
			return false, nil
		case evt, open := <-qrChan:
			if !open {
				return false, nil
			}
			switch evt.Event {
			case "code":
				printQR(evt.Code)
			case "success":
				return true, nil
			case "timeout":
				return false, nil
			default:
				w.log.Infof("WhatsApp login event: %s", evt.Event)
			}
		}
	}
}

func printQR(code string) {
	rule := strings.Repeat("=", 64)
	fmt.Println("\n" + rule)
	fmt.Println("Scan this code in WhatsApp > Settings > Linked Devices to receive sync reports")
	fmt.Println(rule)
	qrterminal.GenerateWithConfig(code, qrterminal.Config{
		Level:      qrterminal.M,
		Writer:     os.Stdout,
		HalfBlocks: true,
		QuietZone:  1,
	})
	fmt.Println(rule + "\n")
}

// Disconnect stops reconnecting and closes the connection
func (w *WhatsAppClient) Disconnect() {
	w.mu.Lock()
	if w.cancelReconnect != nil {
		w.cancelReconnect()
		w.cancelReconnect = nil
	}
	w.connected = false
	w.mu.Unlock()

	w.client.Disconnect()
	w.log.Info("Disconnected from WhatsApp")
}

// IsConnected reports whether messages can be sent right now
func (w *WhatsAppClient) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected && w.client.IsConnected() && w.client.Store.ID != nil
}

// IsLoggedIn reports whether a session is stored
func (w *WhatsAppClient) IsLoggedIn() bool {
	return w.client.Store.ID != nil
}

// EnsureConnected connects a logged-in client that dropped its connection
func (w *WhatsAppClient) EnsureConnected(ctx context.Context) error {
	if w.IsConnected() {
		return nil
	}
	if !w.IsLoggedIn() {
		return fmt.Errorf("WhatsApp session is not logged in")
	}
	if w.client.IsConnected() {
		return nil
	}
	return w.Connect(ctx)
}

// SendText sends a text message to the specified JID
func (w *WhatsAppClient) SendText(ctx context.Context, toJID, text string) error {
	jid, err := types.ParseJID(toJID)
	if err != nil {
		return fmt.Errorf("invalid JID %s: %w", toJID, err)
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := w.client.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
