package app

import (
	"context"
	"fmt"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/validation"
)

// textSender is the part of WhatsAppClient the notifier needs
type textSender interface {
	EnsureConnected(ctx context.Context) error
	SendText(ctx context.Context, toJID, text string) error
	IsConnected() bool
	IsLoggedIn() bool
}

// Notifier sends sync reports to one WhatsApp recipient
type Notifier struct {
	sender    textSender
	recipient string
	validator *validation.Validator
	log       *logger.Logger
}

// NewNotifier creates a notifier. The recipient may be a JID or a phone number.
func NewNotifier(sender textSender, recipient string, log *logger.Logger) (*Notifier, error) {
	v := validation.New()

	jid, appErr := v.NormalizeJID(recipient)
	if appErr != nil {
		return nil, appErr
	}

	return &Notifier{
		sender:    sender,
		recipient: jid,
		validator: v,
		log:       log,
	}, nil
}

// Notify sends text to the recipient
func (n *Notifier) Notify(ctx context.Context, text string) error {
	text = n.validator.SanitizeMessage(text)
	if text == "" {
		return nil
	}

	if err := n.sender.EnsureConnected(ctx); err != nil {
		return fmt.Errorf("WhatsApp not connected: %w", err)
	}

	if err := n.sender.SendText(ctx, n.recipient, text); err != nil {
		return err
	}

	n.log.Infof("Sync report sent to %s", n.recipient)
	return nil
}

// Status describes the notifier for health checks
func (n *Notifier) Status() models.NotifierStatus {
	return models.NotifierStatus{
		Enabled:   true,
		Connected: n.sender.IsConnected(),
		LoggedIn:  n.sender.IsLoggedIn(),
		Recipient: n.recipient,
	}
}

// NopNotifier is used when notifications are disabled
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, string) error { return nil }

// Status reports a disabled notifier
func (NopNotifier) Status() models.NotifierStatus { return models.NotifierStatus{} }
