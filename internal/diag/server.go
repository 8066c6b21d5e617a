// Package diag exposes an optional HTTP listener with health and Prometheus
// metrics endpoints for long-running runs.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /metrics: Prometheus metrics
//
// The server supports graceful shutdown and is only started when a listen
// address is configured.
package diag

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/logger"
)

// Server provides the diagnostics HTTP server.
type Server struct {
	server       *http.Server
	addr         string
	shutdownOnce sync.Once
}

// NewServer creates a new diagnostics HTTP server listening on addr.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests. The version is reported by the health endpoint.
func NewServer(addr, version string) *Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(version),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server: server,
		addr:   addr,
	}
}

// Start starts the diagnostics server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns nil on success.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("diagnostics server listening", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Debug("diagnostics server shutdown signal received")
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("diagnostics server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the diagnostics server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("diagnostics server shutdown error: %w", err)
			logger.Error("diagnostics server shutdown error", "error", err)
		} else {
			logger.Debug("diagnostics server stopped gracefully")
		}
	})
	return shutdownErr
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.addr
}
