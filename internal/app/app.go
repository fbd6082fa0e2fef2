package app

import (
	"context"
	"fmt"
	"log"

	"job-board-go/internal/apply"
	"job-board-go/internal/auth"
	"job-board-go/internal/cache"
	"job-board-go/internal/config"
	"job-board-go/internal/filter"
	"job-board-go/internal/loader"
	"job-board-go/internal/ratelimit"
	"job-board-go/internal/sources"
	"job-board-go/pkg/httpclient"
)

// App holds the components built from one configuration.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Sources *sources.SourceManager
	Loader  *loader.Loader
	Engine  *filter.Engine
	Apply   *apply.Client
	Auth    *auth.Client

	limiter *ratelimit.Limiter
	cache   *cache.SnapshotCache
}

// New wires the job board. A Redis failure disables the snapshot cache
// instead of failing start-up.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	httpClient := httpclient.NewHttpClient(cfg.API.RequestTimeout)

	manager, err := NewSourceManager(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	source, err := manager.Primary()
	if err != nil {
		return nil, err
	}
	logger.Printf("Using job source %s", source.Name())

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Sources: manager,
		limiter: ratelimit.New(),
	}

	var snapshots loader.Snapshots
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Printf("Snapshot cache disabled: %v", err)
		} else {
			a.cache = cache.NewSnapshotCache(client, cfg.Cache.Key, cfg.Cache.TTL)
			snapshots = a.cache
		}
	}

	a.Loader = loader.NewLoader(source, snapshots, logger)
	a.Engine = filter.NewEngine(a.Loader, logger)

	a.Apply = apply.NewClient(httpClient, a.limiter, apply.Options{
		ApplyURL:       cfg.API.ApplyURL,
		RateLimit:      cfg.Apply.RateLimit,
		MaxResumeBytes: cfg.Apply.MaxResumeBytes,
	}, logger)
	a.Auth = auth.NewClient(httpClient, a.limiter, cfg.API.AuthURL, cfg.Auth.RateLimit, auth.NewTokenStore(cfg.Auth.TokenFile), logger)

	return a, nil
}

// NewSourceManager registers every source the configuration can build and
// enables the selected one.
func NewSourceManager(cfg *config.Config, client *httpclient.HttpClient) (*sources.SourceManager, error) {
	manager := sources.NewSourceManager()

	manager.RegisterSource(
		sources.NewPortalSource(client, cfg.API.JobsURL, cfg.API.JobsField),
		sources.SourceConfig{Enabled: cfg.Source.Kind == config.SourceAPI},
	)

	supa, err := sources.NewSupabaseSource(cfg.Source.SupabaseURL, cfg.Source.SupabaseKey, cfg.Source.SupabaseTable)
	switch {
	case err == nil:
		manager.RegisterSource(supa, sources.SourceConfig{Enabled: cfg.Source.Kind == config.SourceSupabase})
	case cfg.Source.Kind == config.SourceSupabase:
		return nil, fmt.Errorf("failed to initialize supabase source: %w", err)
	}

	return manager, nil
}

// Close releases the limiter and the cache connection.
func (a *App) Close() {
	a.limiter.Stop()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Logger.Printf("Failed to close snapshot cache: %v", err)
		}
	}
}
