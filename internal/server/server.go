package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/handlers"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	middleware *middleware.Middleware
	log        *logger.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, handler *handlers.Handler, log *logger.Logger) *Server {
	s := &Server{
		handler:    handler,
		middleware: middleware.New(log, cfg.Security.RateLimitPerMinute),
		log:        log,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Routes returns the router wrapped in the middleware chain
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handler.HealthCheck)
	mux.HandleFunc("POST /webhook/github", s.handler.GitHubWebhook)
	mux.HandleFunc("POST /webhook/gitea", s.handler.GiteaWebhook)

	// Single-route deployments point GitHub at the root
	mux.HandleFunc("POST /{$}", s.handler.GitHubWebhook)
	mux.HandleFunc("GET /", s.handler.Info)

	return s.middleware.Chain(mux)
}

// Start starts listening and serves in the background. Serve errors are sent on errChan.
func (s *Server) Start(errChan chan<- error) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.log.Infof("HTTP server listening on %s", ln.Addr())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server and waits for pending notifications
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.handler.Wait()

	s.log.Info("HTTP server shutdown complete")
	return nil
}
