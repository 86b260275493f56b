// Package server is the composition root: it builds the store, services and
// handlers from config, mounts the routes and runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and a zap logger and hands both to New, which
// assembles everything bottom up:
//
//	sqlstore.Connector → sqlstore.Store → services → handlers → chi routes
//
// Each layer receives only what it needs. Services get repository
// interfaces, never *sql.DB. Handlers get services, never stores. Nothing
// below this package reads config or knows another layer's concrete types,
// which is what lets the tests swap in an in-memory store or a fake provider.
//
// LIFECYCLE:
// The database connection is lazy (see sqlstore.Connector): New does no I/O,
// the first request that touches storage opens it, and Start closes it on
// the way out. The weekly summary job runs alongside the HTTP server and is
// stopped before the server drains.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/auth"
	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/handler"
	"github.com/sakif/alive-sleep/internal/identity"
	"github.com/sakif/alive-sleep/internal/insight"
	"github.com/sakif/alive-sleep/internal/middleware"
	"github.com/sakif/alive-sleep/internal/repository/sqlstore"
	"github.com/sakif/alive-sleep/internal/scheduler"
	"github.com/sakif/alive-sleep/internal/service"
)

// Server owns the router and the store connection. The connection opens on
// the first request that needs it and is closed when Start returns.
//
// weekly is nil when WEEKLY_SUMMARY_JOB is off; Start checks before
// launching it.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *zap.Logger
	conn   *sqlstore.Connector
	weekly *scheduler.Weekly
}

func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	conn := sqlstore.NewConnector(cfg.DBDriver, cfg.DatabaseURL, cfg.ConnectTimeout, sqlstore.WithLogger(logger))

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		conn:   conn,
	}
	if err := s.setupRoutes(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes:
//
//	GET    /healthz
//	GET    /api                          welcome
//	GET    /api/insights[/{slug}]        public
//	GET    /api/me                       user
//	GET    /api/sleep-entries            user
//	POST   /api/sleep-entries            user
//	GET    /api/sleep-entries/{date}     user
//	DELETE /api/sleep-entries/{date}     user
//	GET    /api/summary                  user
//	POST   /api/summary                  user
//	GET    /auth/login|callback|logout   only with Auth0 configured
func (s *Server) setupRoutes() error {
	hasher, err := identity.NewHasher(s.cfg.EncryptionKey)
	if err != nil {
		return err
	}
	key, err := auth.SessionKey(s.cfg.SessionSecret, s.cfg.EncryptionKey)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionService(key, s.cfg.SessionTTL)
	if err != nil {
		return err
	}

	store := sqlstore.New(s.conn)
	users := service.NewUserService(store.Users(), hasher, nil, s.logger)
	entries := service.NewEntryService(store.Entries(), nil, s.logger)
	summaries := service.NewSummaryService(store.Entries(), store.Summaries(), nil, s.logger)

	var articles insight.Source
	if s.cfg.Contentful.Enabled() {
		articles = insight.NewContentfulClient(s.cfg.Contentful)
	}
	insights := insight.NewService(articles, s.logger)

	if s.cfg.WeeklySummaryJob {
		s.weekly = scheduler.NewWeekly(users, summaries, s.logger)
	}

	errorWriter := handler.ErrorWriter(s.logger)
	entryHandler := handler.NewEntryHandler(entries, s.logger)
	summaryHandler := handler.NewSummaryHandler(summaries, s.logger)
	insightHandler := handler.NewInsightHandler(insights)

	// === Global Middleware ===
	// Order matters. RequestID must run before Logger so the id is in the
	// log line, and Logger sits outside Recoverer so a recovered panic is
	// still logged as a 500. SyncUser runs last, on every route, so public
	// endpoints can still see who is calling.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.SyncUser(sessions, users, s.cfg.SecureCookies(), errorWriter))

	s.router.Get("/healthz", handler.Health(s.conn, s.logger))

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", handler.HandleWelcome)
		r.Get("/insights", insightHandler.HandleList)
		r.Get("/insights/{slug}", insightHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(errorWriter))

			r.Get("/me", handler.HandleMe)

			r.Get("/sleep-entries", entryHandler.HandleList)
			r.Post("/sleep-entries", entryHandler.HandleUpsert)
			r.Get("/sleep-entries/{date}", entryHandler.HandleGet)
			r.Delete("/sleep-entries/{date}", entryHandler.HandleDelete)

			r.Get("/summary", summaryHandler.HandleList)
			r.Post("/summary", summaryHandler.HandleCompute)
		})

		r.NotFound(handler.NotFound)
	})

	// === Auth Routes ===
	// Without Auth0 credentials there is no way to log in, but the public
	// API and health check still work, which keeps local development and
	// tests free of an identity provider.
	if !s.cfg.Auth0.Enabled() {
		s.logger.Warn("Auth0 is not configured; /auth routes are disabled")
		return nil
	}
	provider := auth.NewProvider(s.cfg.Auth0, s.cfg.BaseURL+"/auth/callback")
	authHandler := handler.NewAuthHandler(provider, sessions, s.cfg.BaseURL, s.cfg.SecureCookies(), s.logger)
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Get("/logout", authHandler.HandleLogout)
	})

	return nil
}

// Start serves until SIGINT/SIGTERM.
//
// GRACEFUL SHUTDOWN:
//  1. stop the weekly job so no summary write starts mid-shutdown
//  2. stop accepting connections and let in-flight requests finish (30s max)
//  3. close the store (the deferred conn.Close), which for SQLite flushes
//     the WAL and releases the file lock
func (s *Server) Start() error {
	defer s.conn.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	jobCtx, stopJob := context.WithCancel(context.Background())
	defer stopJob()
	if s.weekly != nil {
		go s.weekly.Start(jobCtx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.Int("port", s.cfg.Port),
			zap.String("url", s.cfg.BaseURL),
			zap.String("driver", s.cfg.DBDriver),
			zap.String("environment", s.cfg.Environment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		stopJob()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
