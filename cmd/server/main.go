package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/gr24/internal/config"
	"github.com/Simplici0/gr24/internal/db"
	"github.com/Simplici0/gr24/internal/export"
	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/migrations"
	"github.com/Simplici0/gr24/internal/observability"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/seed"
	"github.com/Simplici0/gr24/internal/store"
	"github.com/Simplici0/gr24/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	auth        *authService
	db          *sql.DB
	sheets      *store.Sheets
	pricing     pricing.Config
	defaultLang labels.Language
	metrics     *telemetry.Metrics
	logger      *zap.Logger
}

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("configuration", zap.String("warning", w))
	}

	secret, generated, err := resolveSessionSecret(cfg)
	if err != nil {
		logger.Fatal("invalid session configuration", zap.String("env", cfg.Env), zap.Error(err))
	}
	if generated {
		logger.Warn("using a random session secret; sessions end on restart", zap.String("env", cfg.Env))
	}
	cfg.SessionSecret = secret

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: cfg.OTLPInsecure,
	})
	if err != nil {
		logger.Fatal("failed to set up telemetry", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		logger.Fatal("failed to create metrics", zap.Error(err))
	}

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}
	if version, err := migrations.Version(ctx, database); err == nil {
		logger.Info("database ready", zap.String("path", cfg.DBPath), zap.Int64("schema_version", version))
	}

	lang := labels.Normalize(string(cfg.DefaultLanguage))
	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Pricing:       cfg.Pricing(),
		Language:      lang,
	})
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	logger.Info("seed completed", zap.Int("inserts", stats.Inserts))

	srv := newServer(database, cfg, metrics, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(sctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newServer(database *sql.DB, cfg config.Config, metrics *telemetry.Metrics, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{
		auth:        newAuthService(database, cfg.SessionSecret),
		db:          database,
		sheets:      store.NewSheets(database, cfg.Pricing()),
		pricing:     cfg.Pricing().Normalized(),
		defaultLang: labels.Normalize(string(cfg.DefaultLanguage)),
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(observability.Recoverer)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/sheets", http.StatusSeeOther)
	})
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/sheets", func(r chi.Router) {
		r.Get("/", s.handleSheetsList)
		r.Post("/", s.handleSheetsCreate)
		r.Post("/import", s.handleSheetsImport)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSheetShow)
			r.Post("/delete", s.handleSheetDelete)
			r.Post("/rename", s.handleSheetRename)
			r.Post("/start", s.withSheet(startSheet))
			r.Post("/expand", s.withSheet(expandSheet))
			r.Post("/clear", s.withSheet(clearSheet))
			r.Post("/language", s.withSheet(switchLanguage))
			r.Post("/rows/{row}", s.withSheet(s.updateRow))
			r.Post("/rows/{row}/copy", s.withSheet(s.copyRow))
			r.Post("/rows/{row}/delete", s.withSheet(deleteRow))
			r.Get("/export.xlsx", s.handleSheetExport(export.FormatXLSX))
			r.Get("/export.csv", s.handleSheetExport(export.FormatCSV))
			r.Get("/document.json", s.handleSheetDocument)
		})
	})

	r.Post("/api/price", s.handleAPIPrice)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/sheets", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, r, "login.html", loginViewData{baseViewData: s.baseView(r, labels.Negotiate(r.Header.Get("Accept-Language")))})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		observability.FromContext(r.Context()).Error("validate credentials", zap.Error(err))
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		lang := labels.Negotiate(r.Header.Get("Accept-Language"))
		view := loginViewData{baseViewData: baseViewData{Lang: string(lang), ErrorMessage: invalidCredentials(lang)}}
		s.renderStatus(w, r, http.StatusUnauthorized, "login.html", view)
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/sheets", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func invalidCredentials(lang labels.Language) string {
	if lang == labels.English {
		return "Invalid credentials. Please try again."
	}
	return "Ungültige Zugangsdaten. Bitte erneut versuchen."
}
