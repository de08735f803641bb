package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/middleware"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// WebhookProvider represents different webhook providers
type WebhookProvider string

const (
	ProviderGitea  WebhookProvider = "Gitea"
	ProviderGitHub WebhookProvider = "GitHub"
)

// notifyTimeout bounds sending one sync report
const notifyTimeout = 30 * time.Second

// WebhookConfig holds configuration for webhook processing
type WebhookConfig struct {
	Provider    WebhookProvider
	EventHeader string
	Signatures  []SignatureScheme
}

// handleWebhook is a generic webhook handler that processes both Gitea and GitHub pushes
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request, config WebhookConfig, parsePayload func([]byte) (models.PushEvent, error)) {
	log := h.log.With("provider", config.Provider).With("request_id", middleware.RequestIDFromContext(r.Context()))

	// Read the raw body for signature verification
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.Security.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.writeAppError(w, r, errors.InvalidRequest(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		h.writeAppError(w, r, errors.InvalidRequest("Failed to read request body: "+err.Error()))
		return
	}

	if h.cfg.Webhook.RequireSignature {
		header, ok := verifySignature(r.Header, body, h.cfg.Webhook.Secret, config.Signatures)
		if !ok {
			if header == "" {
				log.Warn("Webhook received without signature header")
			} else {
				log.Warnf("Invalid webhook signature in %s", header)
			}
			h.writeAppError(w, r, errors.Unauthorized("Invalid webhook secret key"))
			return
		}
	}

	switch event := r.Header.Get(config.EventHeader); event {
	case "", "push":
	case "ping":
		h.writeStatus(w, r, http.StatusOK, "pong", "", nil)
		return
	default:
		log.Infof("Ignoring %s event", event)
		h.writeStatus(w, r, http.StatusOK, "ignored", fmt.Sprintf("Event '%s' is not synced", event), nil)
		return
	}

	// Parse webhook payload using provider-specific parser
	payload, err := parsePayload(body)
	if err != nil {
		h.writeAppError(w, r, errors.InvalidRequest("Invalid webhook payload: "+err.Error()))
		return
	}

	if appErr := h.validator.ValidatePushEvent(payload); appErr != nil {
		h.writeAppError(w, r, appErr)
		return
	}

	log.Infof("Push to %s with %d commit(s) from %s", payload.GetBranch(), payload.GetCommitCount(), payload.GetAuthorName())

	report, err := h.syncer.Sync(r.Context(), payload)
	if err != nil {
		appErr, ok := errors.As(err)
		if !ok {
			appErr = errors.InternalError(err)
		}

		switch {
		case appErr.IsRejection():
			log.Info(appErr.Message)
			h.writeStatus(w, r, appErr.StatusCode, "ignored", appErr.Message, nil)
		case report != nil:
			h.notify(report)
			log.Error(appErr.Message, appErr.Err)
			h.writeStatus(w, r, appErr.StatusCode, report.Status, appErr.Message, report)
		default:
			h.writeAppError(w, r, appErr)
		}
		return
	}

	if report.Status != models.SyncStatusNoop {
		h.notify(report)
	}

	message := fmt.Sprintf("%s\nSuccessfully committed to %s", report.Author, report.Branch)
	h.writeStatus(w, r, http.StatusOK, report.Status, message, report)
}

// notify sends the report in the background. The request context is not used so
// the notification outlives the response.
func (h *Handler) notify(report *models.SyncReport) {
	if h.notifier == nil {
		return
	}

	text := report.Summary()
	h.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := h.notifier.Notify(ctx, text); err != nil {
			h.log.Error("Failed to send sync report", err)
		}
	})
}
