package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ConferenceMonitor/internal/api"
	"ConferenceMonitor/internal/areas"
	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/config"
	"ConferenceMonitor/internal/dedupe"
	"ConferenceMonitor/internal/infrastructure/llm"
	"ConferenceMonitor/internal/infrastructure/scheduler"
	"ConferenceMonitor/internal/infrastructure/scraper"
	"ConferenceMonitor/internal/infrastructure/storage"
	"ConferenceMonitor/internal/infrastructure/telegram"
	"ConferenceMonitor/internal/logging"
	"ConferenceMonitor/internal/ports"
	"ConferenceMonitor/internal/tier"
	"ConferenceMonitor/internal/usecase"
)

// Application wires config to storage, collectors, use cases and the
// HTTP server, and owns their lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	registry  *areas.Registry
	refresher *usecase.Refresher
	reporter  *usecase.Reporter
	scheduler ports.Scheduler
	server    *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	// The persisted area set survives restarts; config seeds first runs.
	seed := cfg.Areas
	if persisted, err := store.LoadAreas(context.Background()); err != nil {
		baseLogger.Warn("cannot load persisted areas, using config", "error", err)
	} else if len(persisted) > 0 {
		seed = persisted
	}
	registry := areas.New(seed)

	tiers, err := loadTiers(cfg.Tiers, baseLogger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	collectors := collector.NewRegistry()
	collectors.Register(scraper.NewListingCollector(nil))
	collectors.Register(scraper.NewArxivCollector(nil))

	source := scraper.NewMultiSource(collectors, cfg.Sources, cfg.Refresh.MaxPerSource,
		baseLogger.With("component", "source"))

	var queryClient ports.QueryClient
	client := llm.NewClient(cfg.LLM)
	if client.Configured() {
		queryClient = client
	}

	var notifier ports.Notifier
	tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	if tg.Enabled() {
		notifier = tg
	}

	refresher := usecase.NewRefresher(store, source, dedupe.New(tiers), tiers, queryClient,
		cfg.Refresh.CollectTimeout(), baseLogger.With("component", "refresh"))
	reporter := usecase.NewReporter(store, notifier, baseLogger.With("component", "report"))

	server := api.NewServer(store, registry, refresher,
		usecase.NewTrendAnalyzer(store), reporter,
		usecase.NewQuerier(store, queryClient),
		baseLogger.With("component", "api"))

	a := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		registry:  registry,
		refresher: refresher,
		reporter:  reporter,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if cfg.Scheduler.Enabled {
		a.scheduler = scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())
	}
	return a, nil
}

func loadTiers(cfg config.TierConfig, log *slog.Logger) (*tier.Classifier, error) {
	if cfg.File == "" {
		return tier.Default(), nil
	}
	c, err := tier.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load tier table %s: %w", cfg.File, err)
	}
	log.Info("loaded tier table", "file", cfg.File)
	return c, nil
}

// RefreshOnce runs a full refresh of both entity types and sends the
// deadline digest. Used by the scheduler and the one-shot CLI mode.
func (a *Application) RefreshOnce(ctx context.Context) error {
	tracked := a.registry.List()

	if _, err := a.refresher.RefreshConferences(ctx, tracked); err != nil {
		return fmt.Errorf("refresh conferences: %w", err)
	}
	if _, err := a.refresher.RefreshPapers(ctx, tracked); err != nil {
		return fmt.Errorf("refresh papers: %w", err)
	}
	if err := a.reporter.SendDigest(ctx, 30*24*time.Hour); err != nil {
		a.logger.Warn("digest delivery failed", "error", err)
	}
	return nil
}

// Purge removes conferences elapsed beyond the retention window.
func (a *Application) Purge(ctx context.Context) (int64, error) {
	return a.refresher.PurgeElapsed(ctx, a.cfg.Retention.PurgeWindow())
}

// Run starts the scheduler (when enabled) and serves HTTP until the
// context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		err := a.scheduler.Start(ctx, func(time.Time) {
			if err := a.RefreshOnce(ctx); err != nil {
				a.logger.Error("scheduled refresh failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = a.scheduler.Stop(context.Background()) }()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.store.Close()
}
