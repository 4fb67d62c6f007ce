package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/config"
	"github.com/hongminglow/eros-desk/internal/http/handlers"
	"github.com/hongminglow/eros-desk/internal/middleware"
	"github.com/hongminglow/eros-desk/internal/storage"
)

// Dependencies are the collaborators the server does not own.
type Dependencies struct {
	Store storage.Store
	// DB is pinged by /health; nil skips the check.
	DB          handlers.Pinger
	Revocations auth.RevocationList
	Logger      *zap.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up access control, middleware and routes, and returns a ready server.
func New(cfg config.Config, deps Dependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := auth.LoadPermissionTable(cfg.PermissionsFile)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL, cfg.SessionRefresh)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	opts := auth.DefaultGateOptions()
	if len(cfg.ProtectedPrefixes) > 0 {
		opts.ProtectedPrefixes = cfg.ProtectedPrefixes
	}
	gate := auth.NewGate(table, deps.Store, opts)
	verifier := auth.NewVerifier(deps.Store, logger.Named("verifier"))
	sessions := auth.NewSessionManager(verifier, tokens, deps.Revocations, logger.Named("sessions"))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.DB).Register(mux)
	handlers.NewAuthHandler(sessions, table, cfg.CookieSecure, logger).Register(mux)
	handlers.NewDashboardHandler(table).Register(mux)
	handlers.NewTicketsHandler(gate, deps.Store, logger).Register(mux)
	handlers.NewCreatorsHandler(gate, deps.Store, logger).Register(mux)
	handlers.NewUsersHandler(gate, deps.Store, logger).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	gated := middleware.NewSessions(sessions, gate, cfg.CookieSecure, logger).Wrap(mux)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger.Named("http"), gated))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
