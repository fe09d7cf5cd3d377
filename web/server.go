// ABOUTME: HTTP router assembly and server lifecycle
// ABOUTME: Wires middleware, API routes, and graceful shutdown
package web

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/harperreed/dayflow/handlers"
)

// NewRouter assembles the full route tree: public health and OAuth callback
// endpoints, plus session-protected API routes.
func NewRouter(h *handlers.Handler, database *sql.DB, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(handlers.CORS(allowedOrigins))

	h.RegisterOAuthCallback(r)

	r.Route("/api", func(api chi.Router) {
		api.Use(handlers.RequireSession(database))
		h.RegisterEventRoutes(api)
		h.RegisterMessageRoutes(api)
		h.RegisterAssistantRoutes(api)
		h.RegisterCalendarRoutes(api)
	})

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests before returning.
func Serve(ctx context.Context, port string, router chi.Router, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return <-errCh
}
