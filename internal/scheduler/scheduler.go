// Package scheduler runs a fixed list of searches on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

// DefaultPause separates consecutive searches of one run
const DefaultPause = 5 * time.Minute

// Searcher is the subset of job.Service the scheduler drives
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.JobSearchResult, error)
}

// Config describes what to run and when
type Config struct {
	// Spec is a cron expression or descriptor such as "@every 24h"
	Spec     string
	Searches []domain.SearchRequest
	Pause    time.Duration
	// RunOnStart triggers one run right after Start
	RunOnStart bool
}

// Scheduler wraps robfig/cron and runs the configured searches in order.
// Overlapping runs are skipped.
type Scheduler struct {
	cron     *cron.Cron
	searcher Searcher
	cfg      Config
	logger   *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Scheduler; call Start to begin
func New(searcher Searcher, cfg Config, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "scheduler")
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}

	cl := cronLogger{l: logger}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the run with cron and starts it. Runs stop when ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.cfg.Searches) == 0 {
		return fmt.Errorf("scheduler: no searches configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.cfg.Spec, func() { s.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("cron.AddFunc(%q): %w", s.cfg.Spec, err)
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.cfg.Spec, "searches", len(s.cfg.Searches))

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunOnce(runCtx)
		}()
	}
	return nil
}

// Stop cancels in-flight runs and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// RunOnce runs every configured search in order, pausing between them
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("scheduled run started", "searches", len(s.cfg.Searches))

	for i, req := range s.cfg.Searches {
		if i > 0 && s.cfg.Pause > 0 {
			timer := time.NewTimer(s.cfg.Pause)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Info("scheduled run interrupted", "completed", i)
				return
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			s.logger.Info("scheduled run interrupted", "completed", i)
			return
		}

		res, err := s.searcher.Search(ctx, req)
		if err != nil {
			s.logger.Warn("scheduled search failed", "keywords", req.Keywords, "err", err)
			continue
		}
		s.logger.Info("scheduled search finished",
			"keywords", req.Keywords,
			"session", res.Session.ID.String(),
			"unique", res.Session.Counts.Unique,
		)
	}

	s.logger.Info("scheduled run complete")
}

// cronLogger adapts logging.Logger to cron.Logger
type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
