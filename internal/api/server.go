// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	stdctx "context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/carta/internal/auth"
	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/checkout"
	"github.com/taibuivan/carta/internal/core/settings"
	"github.com/taibuivan/carta/internal/platform/config"
	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/middleware"
	"github.com/taibuivan/carta/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, always 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the admin login.
	Auth *auth.Handler

	// Settings serves prices, zones, novels, notifications and the event stream.
	Settings *settings.Handler

	// Cart manages session carts.
	Cart *cart.Handler

	// Checkout submits orders.
	Checkout *checkout.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The event stream is long-lived, so it is mounted outside the request timeout.
func NewServer(context stdctx.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// Order submissions and login attempts share a tighter per-IP budget.
	strict := middleware.RateLimit(context, constants.StrictRateLimitRPS, constants.StrictRateLimitBurst)

	// # Streaming
	r.Get("/api/v1/events", h.Settings.EventStream)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		// # Infrastructure Endpoints
		// Unauthenticated health probes for container orchestration.
		r.Get("/health", h.Liveness)
		r.Get("/ready", h.Readiness)

		// # Application API
		r.Route("/api/v1", func(api chi.Router) {
			api.Mount("/cart", h.Cart.Routes())
			api.With(strict).Mount("/checkout", h.Checkout.Routes())

			api.Route("/admin", func(admin chi.Router) {
				admin.With(strict).Mount("/login", h.Auth.Routes())

				admin.Group(func(protected chi.Router) {
					protected.Use(middleware.RequireRole(sec.RoleAdmin))
					protected.Mount("/", h.Settings.AdminRoutes())
				})
			})

			api.Mount("/", h.Settings.PublicRoutes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,

			// Cancelling the root context ends long-lived event streams.
			BaseContext: func(net.Listener) stdctx.Context { return context },
		},
	}
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := stdctx.WithTimeout(stdctx.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
