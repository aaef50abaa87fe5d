package mcp

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/job-hunter/internal/config"
	"github.com/honeycarbs/job-hunter/internal/domain/job"
	"github.com/honeycarbs/job-hunter/internal/domain/performance"
	"github.com/honeycarbs/job-hunter/internal/domain/session"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
	"github.com/honeycarbs/job-hunter/internal/domain/source/providers/adzuna"
	"github.com/honeycarbs/job-hunter/internal/domain/source/providers/remoteok"
	"github.com/honeycarbs/job-hunter/internal/domain/source/providers/static"
	"github.com/honeycarbs/job-hunter/internal/notify"
	"github.com/honeycarbs/job-hunter/internal/storage/memory"
	n4jstore "github.com/honeycarbs/job-hunter/internal/storage/neo4j"
	"github.com/honeycarbs/job-hunter/internal/storage/postgres"
	"github.com/honeycarbs/job-hunter/internal/storage/sqlite"
	adzunaclient "github.com/honeycarbs/job-hunter/pkg/adzuna"
	"github.com/honeycarbs/job-hunter/pkg/logging"
	n4j "github.com/honeycarbs/job-hunter/pkg/neo4j"
	remoteokclient "github.com/honeycarbs/job-hunter/pkg/remoteok"
	"github.com/honeycarbs/job-hunter/pkg/workerpool"
)

func providePool(cfg config.Config, logger *logging.Logger) (*workerpool.Pool, func()) {
	pool := workerpool.New(cfg.Search.WorkerPoolSize, workerpool.WithPanicHandler(func(v any) {
		logger.Error("worker task panicked", "panic", v)
	}))
	return pool, func() {
		if err := pool.Close(); err != nil {
			logger.Warn("worker pool closed with error", "err", err)
		}
	}
}

func providePerformance() (*performance.Tracker, func()) {
	t := performance.NewTracker()
	return t, t.Close
}

func provideSessions(cfg config.Config) *session.Tracker {
	return session.NewTracker(
		session.WithMaxHistory(cfg.Search.HistoryMax),
		session.WithRetention(cfg.Search.Retention),
	)
}

func provideSelector(cfg config.Config) *source.Selector {
	return source.NewSelector(cfg.Search.MaxSources)
}

func provideSettings(cfg config.Config) job.Settings {
	return job.Settings{SessionDeadline: cfg.Search.Deadline}
}

// provideSourceRegistry registers every catalog source that can be built.
// Adzuna entries without credentials are skipped with a warning.
func provideSourceRegistry(cfg config.Config, catalog config.Catalog, logger *logging.Logger) (*source.Registry, error) {
	reg := source.NewRegistry()

	for _, spec := range catalog.Sources {
		p, err := newProvider(cfg, spec)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", spec.Name, err)
		}
		if p == nil {
			logger.Warn("source skipped, ADZUNA_APP_ID/ADZUNA_APP_KEY not set", "source", spec.Name)
			continue
		}

		err = reg.Register(source.Descriptor{
			Name:       spec.Name,
			Provider:   p,
			Priority:   spec.Priority,
			MaxResults: spec.MaxResults,
			RateLimit:  spec.RateLimit,
			Timeout:    spec.Timeout,
			Enabled:    spec.IsEnabled(),
			Core:       spec.Core,
			Categories: spec.CategoryList(),
			Locales:    spec.Locales,
			Remote:     spec.Remote,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("source registered", "source", spec.Name, "kind", spec.Kind, "enabled", spec.IsEnabled())
	}

	if reg.Snapshot().Len() == 0 {
		logger.Warn("no job source registered, searches will return no results")
	}
	return reg, nil
}

func newProvider(cfg config.Config, spec config.SourceSpec) (source.Provider, error) {
	switch spec.Kind {
	case config.KindAdzuna:
		if cfg.Adzuna.AppID == "" || cfg.Adzuna.AppKey == "" {
			return nil, nil
		}
		client, err := adzunaclient.NewClient(adzunaclient.Config{
			AppID:   cfg.Adzuna.AppID,
			AppKey:  cfg.Adzuna.AppKey,
			Country: cfg.Adzuna.Country,
		})
		if err != nil {
			return nil, err
		}
		return adzuna.NewProvider(client)
	case config.KindRemoteOK:
		return remoteok.NewProvider(remoteokclient.NewClient(remoteokclient.Config{}))
	case config.KindStatic:
		return static.Load(spec.Name, spec.File, static.WithDelay(spec.Delay))
	default:
		return nil, fmt.Errorf("unknown kind %q", spec.Kind)
	}
}

// provideNeo4jClient connects when STORAGE_BACKEND is neo4j, nil otherwise
func provideNeo4jClient(ctx context.Context, cfg config.Config, logger *logging.Logger) (*n4j.Client, func(), error) {
	if cfg.Storage.Backend != config.StorageNeo4j {
		return nil, func() {}, nil
	}
	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("neo4j close failed", "err", err)
		}
	}
	if err := n4jstore.EnsureSchema(ctx, client); err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Info("Neo4j client initialized", "uri", cfg.Neo4j.URI)
	return client, cleanup, nil
}

// provideRepository opens the job store selected by STORAGE_BACKEND
func provideRepository(ctx context.Context, cfg config.Config, graph *n4j.Client, logger *logging.Logger) (job.Repository, func(), error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err := postgres.NewPostgresPool(ctx, cfg.Storage.DatabaseURL, postgres.PoolConfig{})
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("postgres job store ready")
		return postgres.NewJobRepository(pool), pool.Close, nil

	case config.StorageNeo4j:
		return n4jstore.NewJobRepository(graph), func() {}, nil

	default:
		logger.Info("in-memory job store in use, jobs are lost on restart")
		return memory.NewJobRepository(), func() {}, nil
	}
}

// provideArchive opens the SQLite session archive, nil when not configured
func provideArchive(cfg config.Config, logger *logging.Logger) (*sqlite.Archive, func(), error) {
	if cfg.Storage.ArchivePath == "" {
		return nil, func() {}, nil
	}
	a, err := sqlite.Open(cfg.Storage.ArchivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("session archive: %w", err)
	}
	logger.Info("session archive opened", "path", cfg.Storage.ArchivePath)
	return a, func() {
		if err := a.Close(); err != nil {
			logger.Warn("session archive close failed", "err", err)
		}
	}, nil
}

// providePublisher connects to Redis, nil when REDIS_URL is unset
func providePublisher(ctx context.Context, cfg config.Config, logger *logging.Logger) (*notify.Publisher, func(), error) {
	if cfg.Redis.URL == "" {
		return nil, func() {}, nil
	}
	rdb, err := notify.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("redis event publisher ready", "channel", cfg.Redis.Channel)
	pub := notify.NewPublisher(rdb, cfg.Redis.Channel, logger)
	return pub, closePublisher(pub, rdb, logger), nil
}

func closePublisher(pub *notify.Publisher, rdb *redis.Client, logger *logging.Logger) func() {
	return func() {
		pub.Close()
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close failed", "err", err)
		}
	}
}

func provideSinks(archive *sqlite.Archive, graph *n4j.Client, pub *notify.Publisher) []job.SessionSink {
	var sinks []job.SessionSink
	if archive != nil {
		sinks = append(sinks, archive)
	}
	if graph != nil {
		sinks = append(sinks, n4jstore.NewSessionStore(graph))
	}
	if pub != nil {
		sinks = append(sinks, pub)
	}
	return sinks
}

func provideJobService(
	registry *source.Registry,
	repo job.Repository,
	pool *workerpool.Pool,
	perf *performance.Tracker,
	sessions *session.Tracker,
	selector *source.Selector,
	sinks []job.SessionSink,
	settings job.Settings,
	logger *logging.Logger,
) (job.Service, func(), error) {
	svc, err := job.NewServiceWithDeps(registry, repo, pool, perf, sessions, selector, sinks, settings, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, svc.Close, nil
}

// newResources also relays progress and status callbacks to Redis. The
// SQLite archive backs session_history when both stores are configured.
func newResources(svc job.Service, archive *sqlite.Archive, graph *n4j.Client, pub *notify.Publisher, sheets *sheetsExporter) *Resources {
	if pub != nil {
		svc.OnProgress(pub.Progress)
		svc.OnStatus(pub.Status)
	}
	res := &Resources{
		JobService: svc,
		Sheets:     sheets,
	}
	switch {
	case archive != nil:
		res.Archive = archive
	case graph != nil:
		res.Archive = n4jstore.NewSessionStore(graph)
	}
	return res
}
