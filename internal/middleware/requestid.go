package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// HeaderRequestID is echoed on every response
	HeaderRequestID = "X-Request-ID"

	headerGitHubDelivery = "X-GitHub-Delivery"
	headerGiteaDelivery  = "X-Gitea-Delivery"
	headerGitHubEvent    = "X-GitHub-Event"
)

type contextKey struct{}

// RequestID tags each request with an id. Webhook delivery ids are reused so
// logs can be matched with the sender's delivery log.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = r.Header.Get(headerGitHubDelivery)
		}
		if id == "" {
			id = r.Header.Get(headerGiteaDelivery)
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
	})
}

// RequestIDFromContext returns the request id, or "" outside a request
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
