package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	albumhttp "github.com/AlibekovAA/album-catalog/internal/album/http"
	albumrepo "github.com/AlibekovAA/album-catalog/internal/album/repository"
	albumservice "github.com/AlibekovAA/album-catalog/internal/album/service"
	authhttp "github.com/AlibekovAA/album-catalog/internal/auth/http"
	authservice "github.com/AlibekovAA/album-catalog/internal/auth/service"
	"github.com/AlibekovAA/album-catalog/internal/auth/session"
	"github.com/AlibekovAA/album-catalog/internal/common/clock"
	"github.com/AlibekovAA/album-catalog/internal/common/config"
	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/album-catalog/internal/common/crypto"
	"github.com/AlibekovAA/album-catalog/internal/common/db"
	"github.com/AlibekovAA/album-catalog/internal/common/form"
	commonhttp "github.com/AlibekovAA/album-catalog/internal/common/http"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/common/view"
	userrepo "github.com/AlibekovAA/album-catalog/internal/user/repository"
)

type App struct {
	Config   config.CatalogConfig
	Log      *logger.Logger
	Store    *db.Store
	Albums   *albumservice.AlbumService
	Users    *authservice.CredentialService
	Sessions *session.Manager
	Handler  http.Handler

	limiter *commonhttp.StrictRateLimiter
	cancel  context.CancelFunc
}

// Options lets tests swap the clock and turn off rate limiting.
type Options struct {
	Clock            clock.Clock
	DisableRateLimit bool
}

func NewLogger(logDir, level string) (*logger.Logger, error) {
	return logger.New(logDir, "catalog", level)
}

// NewApp opens storage, creates the schema and wires the HTTP stack.
func NewApp(ctx context.Context, cfg config.CatalogConfig, log *logger.Logger, opts Options) (*App, error) {
	store, err := db.Open(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	store.StartPoolMetrics(bgCtx, constants.DBPoolMetricsInterval)

	albums := albumservice.NewAlbumService(albumrepo.New(store), log)
	users := authservice.NewCredentialService(userrepo.New(store), commoncrypto.NewBcryptHasher(cfg.BcryptCost), log)

	flashes := view.NewFlashStore([]byte(cfg.SessionSecret), cfg.CookieSecure, log)
	sessions := session.NewManager(session.Config{
		Secret:       cfg.SessionSecret,
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		Clock:        opts.Clock,
	}, users, flashes, log)

	renderer, err := view.NewRenderer(flashes, currentUser, log)
	if err != nil {
		cancel()
		store.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	errs := commonhttp.NewErrorHandler(log, renderer)
	forms := form.NewDecoder()

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(errs.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(errs.MethodNotAllowed)
	router.Handle("/health", commonhttp.HealthHandler(log, store)).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	site := router.NewRoute().Subrouter()

	// throttled requests are rejected before the session lookup hits the database
	var limiter *commonhttp.StrictRateLimiter
	if !opts.DisableRateLimit {
		limiter = commonhttp.NewStrictRateLimiter(errs, cfg.TrustProxy)
		site.Use(limiter.Middleware)
	}
	site.Use(sessions.Middleware)

	albumhttp.NewHandler(albums, forms, renderer, errs, cfg.RequestTimeout, log).Register(site, sessions.RequireAuth)
	authhttp.NewHandler(users, sessions, forms, renderer, errs, cfg.RequestTimeout, log).Register(site)

	log.WithFields(ctx, logger.Fields{
		"driver": string(store.Driver),
		"action": "app_initialized",
	}).Info("catalog initialized")

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Albums:   albums,
		Users:    users,
		Sessions: sessions,
		Handler:  commonhttp.BuildBaseHandler(log, errs, router),
		limiter:  limiter,
		cancel:   cancel,
	}, nil
}

func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	a.cancel()
	a.Store.Close()
}

// Migrate creates the schema without starting the server.
func Migrate(ctx context.Context, cfg config.MigrateConfig, log *logger.Logger) error {
	store, err := db.Open(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database schema is up to date")
	return nil
}

func currentUser(r *http.Request) (string, bool) {
	p, ok := session.FromContext(r.Context()).User()
	return p.Username, ok
}
