package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/config"
	"github.com/abrezinsky/armyroster/internal/handlers"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/repository"
	"github.com/abrezinsky/armyroster/internal/services"
	"github.com/abrezinsky/armyroster/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      config.Config
	baseURL  string
	handlers *handlers.Handlers
	repo     *repository.Repository
	store    *catalog.Store
	catalog  *services.CatalogService
	hub      *websocket.Hub

	// stops the catalog watcher
	cancel context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg config.Config) (*App, error) {
	return newApp(log, cfg, realNetworkProvider{})
}

func newApp(log logger.Logger, cfg config.Config, network networkProvider) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := catalog.NewStore(log, cfg.DataDir)
	if err := store.Load(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	hub := websocket.New(log)
	hub.Start()
	store.OnReload(hub.CatalogReloaded)

	baseURL := resolveBaseURL(cfg, network)
	catalogService := services.NewCatalogService(log, store)
	draftService := services.NewDraftService(log, repo, store, services.DraftSettings{
		BaseURL:            baseURL,
		DefaultPointsLimit: cfg.DefaultPointsLimit,
	})
	draftService.SetBroadcaster(hub)

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Watch {
		go func() {
			if err := store.Watch(ctx); err != nil {
				log.Warn("Catalog watcher stopped", "error", err)
			}
		}()
	}

	return &App{
		log:      log,
		cfg:      cfg,
		baseURL:  baseURL,
		handlers: handlers.New(catalogService, draftService, hub, log),
		repo:     repo,
		store:    store,
		catalog:  catalogService,
		hub:      hub,
		cancel:   cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the public URL used in share links
func (a *App) BaseURL() string {
	return a.baseURL
}

// ReloadCatalog rereads the data directory
func (a *App) ReloadCatalog(ctx context.Context) error {
	return a.catalog.Reload(ctx)
}

// Armies returns the number of armies currently loaded
func (a *App) Armies() int {
	return len(a.store.Armies())
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}

// Run serves HTTP until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.log.Info("Server starting", "url", a.baseURL, "armies", a.Armies(), "data_dir", a.cfg.DataDir)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}

// resolveBaseURL returns the configured base URL, or one built from the
// detected LAN address so share links work from other devices
func resolveBaseURL(cfg config.Config, network networkProvider) string {
	if cfg.BaseURL != "" {
		return cfg.PublicURL()
	}
	return fmt.Sprintf("http://%s:%d", getPreferredIP(network), cfg.Port)
}
