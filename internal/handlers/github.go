package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// GitHubWebhook handles GitHub push webhooks
func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	config := WebhookConfig{
		Provider:    ProviderGitHub,
		EventHeader: "X-GitHub-Event",
		Signatures:  []SignatureScheme{githubSHA256, githubSHA1},
	}

	parsePayload := func(body []byte) (models.PushEvent, error) {
		var payload models.GitHubPushPayload
		err := json.Unmarshal(body, &payload)
		return payload, err
	}

	h.handleWebhook(w, r, config, parsePayload)
}
