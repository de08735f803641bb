package middleware

import (
	"net/http"
	"time"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
)

// Middleware represents the middleware dependencies
type Middleware struct {
	log         *logger.Logger
	rateLimiter *RateLimiter
}

// New creates a new middleware instance. A non-positive requestsPerMinute
// disables rate limiting.
func New(log *logger.Logger, requestsPerMinute int) *Middleware {
	m := &Middleware{log: log}
	if requestsPerMinute > 0 {
		m.rateLimiter = NewRateLimiter(requestsPerMinute)
	}
	return m
}

// Chain wraps h with the full middleware stack, outermost first:
// request id, recovery, logging, security headers, rate limit
func (m *Middleware) Chain(h http.Handler) http.Handler {
	h = m.RateLimit(h)
	h = m.Security(h)
	h = m.Logging(h)
	h = m.Recovery(h)
	return m.RequestID(h)
}

// Logging logs HTTP requests with detailed information
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a custom response writer to capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.log.With("method", r.Method).
			With("path", r.URL.Path).
			With("status", rw.statusCode).
			With("duration", time.Since(start).String()).
			With("remote_addr", getClientIP(r)).
			With("request_id", RequestIDFromContext(r.Context())).
			With("event", r.Header.Get(headerGitHubEvent)).
			Infof("HTTP request completed")
	})
}

// Recovery handles panics and returns a 500 error
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.log.With("request_id", RequestIDFromContext(r.Context())).
					Errorf("Panic in HTTP handler: %v", err)
				writeJSONError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Security adds basic security headers
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Sync reports are never cached
		if r.URL.Path != "/health" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter is a wrapper for http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}` + "\n"))
}
