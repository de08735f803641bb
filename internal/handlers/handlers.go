package handlers

import (
	"context"
	"sync"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/validation"
)

// Syncer applies a push to the catalog
type Syncer interface {
	Sync(ctx context.Context, event models.PushEvent) (*models.SyncReport, error)
}

// Pinger checks that the content API is reachable
type Pinger interface {
	Health(ctx context.Context) error
}

// Notifier is told about every executed sync
type Notifier interface {
	Notify(ctx context.Context, text string) error
	Status() models.NotifierStatus
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	cfg       *config.Config
	syncer    Syncer
	dest      Pinger
	notifier  Notifier
	log       *logger.Logger
	validator *validation.Validator

	// pending notifications
	wg sync.WaitGroup
}

// New creates a new handler instance
func New(cfg *config.Config, syncer Syncer, dest Pinger, notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		syncer:    syncer,
		dest:      dest,
		notifier:  notifier,
		log:       log,
		validator: validation.New(),
	}
}

// Wait blocks until notifications that are still being sent have finished
func (h *Handler) Wait() {
	h.wg.Wait()
}
