package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// infoText answers GET requests to unknown paths
const infoText = "This is a catalog sync webhook. Send push events to /webhook/github or /webhook/gitea.\n"

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	missing := h.cfg.MissingSyncSetting()

	response := &models.HealthResponse{
		Status:    "ok",
		Ready:     missing == "",
		Missing:   missing,
		Timestamp: time.Now().Unix(),
	}
	if h.notifier != nil {
		status := h.notifier.Status()
		if status.Enabled {
			response.Notifier = &status
		}
	}

	// Probe the content API if requested
	if r.URL.Query().Get("detailed") == "true" && h.dest != nil {
		response.Destination = h.probeDestination(r.Context(), missing)
		if response.Destination != "ok" {
			response.Ready = false
		}
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) probeDestination(ctx context.Context, missing string) string {
	if missing != "" {
		return "not configured"
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.dest.Health(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

// Info describes the service for any other GET
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(infoText))
}
