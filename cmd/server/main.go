package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/app"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/handlers"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/relay"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/server"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/upstream"
)

// Global variables for configuration and services
var (
	cfg      *config.Config
	log      *logger.Logger
	waClient *app.WhatsAppClient
	notifier handlers.Notifier = app.NopNotifier{}
	errChan                    = make(chan error, 2)
)

func main() {
	// Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a wait group for graceful shutdown
	var wg sync.WaitGroup

	// Initialize configuration and services
	if err := initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization error: %v\n", err)
		os.Exit(1)
	}

	// Start the web server
	webDone := startWebServer(ctx, &wg)

	// Start the optional WhatsApp notifier
	if waClient != nil {
		wg.Go(func() {
			runWhatsAppClient(ctx, webDone, waClient)
		})
	}

	// Handle shutdown signals
	waitForShutdown(cancel, &wg)
}

func initialize(ctx context.Context) error {
	var err error

	// Load configuration
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Starting Catalog Sync Webhook")

	if missing := cfg.MissingSyncSetting(); missing != "" {
		log.Warnf("%s not set, push events will be rejected until it is configured", missing)
	}

	if !cfg.WhatsApp.Enabled {
		return nil
	}

	waClient, err = app.NewWhatsAppClient(ctx, cfg.WhatsApp, log.With("component", "whatsapp"))
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp client: %w", err)
	}

	n, err := app.NewNotifier(waClient, cfg.WhatsApp.Recipient, log.With("component", "notifier"))
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}
	notifier = n

	return nil
}

// whatsAppSession is the part of the WhatsApp client the process lifecycle drives
type whatsAppSession interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// runWhatsAppClient keeps the session open until shutdown. It disconnects only
// after webDone is closed, so notifications still pending in the web server are
// delivered first.
func runWhatsAppClient(ctx context.Context, webDone <-chan struct{}, client whatsAppSession) {
	defer func() {
		client.Disconnect()
		log.Info("WhatsApp client shutdown complete")
	}()

	log.Info("Starting WhatsApp client...")
	if err := client.Connect(ctx); err != nil {
		// Sync keeps working without reports
		log.Error("Failed to connect to WhatsApp", err)
	}

	<-ctx.Done()
	log.Info("WhatsApp client waiting for the HTTP server to stop...")
	<-webDone
}

// startWebServer runs the HTTP server until ctx is done. The returned channel is
// closed once the server and its pending notifications have finished.
func startWebServer(ctx context.Context, wg *sync.WaitGroup) <-chan struct{} {
	done := make(chan struct{})

	wg.Go(func() {
		defer close(done)
		log.Info("Starting HTTP server...")

		source := upstream.NewSourceClient(
			cfg.Source.URL,
			cfg.Source.Branch,
			upstream.StaticTokenSource(cfg.Source.Token),
			cfg.Destination.Timeout,
		)
		dest := upstream.NewDestinationClient(
			cfg.Destination.URL,
			upstream.NewTokenSource(ctx, cfg.Destination),
			cfg.Destination.Timeout,
		)

		service := relay.NewService(cfg, source, dest, log.With("component", "relay"))
		httpHandler := handlers.New(cfg, service, dest, notifier, log)

		// Initialize and start HTTP server
		httpServer := server.New(cfg, httpHandler, log)
		if err := httpServer.Start(errChan); err != nil {
			errChan <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}

		// Keep the server running until shutdown
		<-ctx.Done()
		log.Info("HTTP server shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during HTTP server shutdown", err)
		}
	})

	return done
}

func waitForShutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	// Wait for either service to fail or for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("Service failed", err)
	case <-sigChan:
		log.Info("Received shutdown signal")
	}

	// Cancel context to signal goroutines to shutdown
	cancel()

	// Wait for all goroutines to finish
	wg.Wait()

	log.Info("Application stopped")
}
