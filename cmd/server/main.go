package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/job-hunter/internal/config"
	"github.com/honeycarbs/job-hunter/internal/mcp"
	"github.com/honeycarbs/job-hunter/internal/scheduler"
	"github.com/honeycarbs/job-hunter/pkg/logging"
	"github.com/honeycarbs/job-hunter/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	catalog := config.DefaultCatalog()
	if cfg.SourcesFile != "" {
		catalog, err = config.LoadCatalog(cfg.SourcesFile)
		if err != nil {
			logger.Error("failed to load source catalog", "path", cfg.SourcesFile, "err", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, cleanup, err := mcp.InitializeResources(ctx, cfg, catalog, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := mcp.NewServer(logger, cfg, res)

	// the scheduler stops first so no search is running when Run returns
	var stoppables []shutdown.Stoppable
	if sched := newScheduler(ctx, cfg, catalog, res, logger); sched != nil {
		stoppables = append(stoppables, shutdown.Func(func(context.Context) error {
			sched.Stop()
			return nil
		}))
	}
	stoppables = append(stoppables, srv)

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		10*time.Second,
		logger,
		stoppables...,
	)

	logger.Info("MCP server initialized and starting", "addr", cfg.Addr(), "tools", srv.Tools())

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
	} else {
		logger.Info("MCP server stopped")
	}
}

// newScheduler starts recurring searches when the catalog lists any
func newScheduler(ctx context.Context, cfg config.Config, catalog config.Catalog, res *mcp.Resources, logger *logging.Logger) *scheduler.Scheduler {
	plan := catalog.Schedule
	if len(plan.Searches) == 0 {
		return nil
	}
	if cfg.ScheduleSpec != "" {
		plan.Spec = cfg.ScheduleSpec
	}
	pause := plan.Pause
	if pause == 0 {
		pause = scheduler.DefaultPause
	}

	sched := scheduler.New(res.JobService, scheduler.Config{
		Spec:       plan.Spec,
		Searches:   plan.Requests(),
		Pause:      pause,
		RunOnStart: plan.RunOnStart,
	}, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler not started", "err", err)
		return nil
	}
	return sched
}
