package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// GiteaWebhook handles Gitea push webhooks
func (h *Handler) GiteaWebhook(w http.ResponseWriter, r *http.Request) {
	config := WebhookConfig{
		Provider:    ProviderGitea,
		EventHeader: "X-Gitea-Event",
		// Gitea sends its own header without a prefix and a GitHub compatible one
		Signatures: []SignatureScheme{giteaSHA256, githubSHA256},
	}

	parsePayload := func(body []byte) (models.PushEvent, error) {
		var payload models.GiteaPushPayload
		err := json.Unmarshal(body, &payload)
		return payload, err
	}

	h.handleWebhook(w, r, config, parsePayload)
}
