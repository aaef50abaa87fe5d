package job

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/performance"
	"github.com/honeycarbs/job-hunter/internal/domain/session"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

const (
	DefaultSessionDeadline = 10 * time.Minute
	saveTimeout            = 30 * time.Second
)

// Service coordinates multi-source searches
type Service interface {
	// Search runs one session to completion and returns it with the unique
	// jobs found. Per-source failures are reported in the session, not as
	// an error.
	Search(ctx context.Context, req domain.SearchRequest) (domain.JobSearchResult, error)

	// OnProgress and OnStatus register callbacks invoked off the result
	// path while a search runs; slow callbacks do not delay results
	OnProgress(fn func(percent float64))
	OnStatus(fn func(msg string))

	// Cancel stops a running session. Sources that already reported keep
	// their results; the session ends as cancelled.
	Cancel(id domain.SessionID) error

	Enable(name string) error
	Disable(name string) error

	Sources() []SourceStatus
	Session(id domain.SessionID) (domain.Session, error)
	History(limit int) []domain.Session
	Stats() Stats
	Report() string

	// Jobs loads stored jobs by id
	Jobs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error)

	// Close releases resources the service created itself
	Close()
}

// PerformanceTracker is the subset of performance.Tracker the service uses
type PerformanceTracker interface {
	Recorder
	Snapshots() map[string]performance.Record
}

// SourceStatus is a descriptor joined with its performance record
type SourceStatus struct {
	Name        string             `json:"name"`
	Priority    int                `json:"priority"`
	Enabled     bool               `json:"enabled"`
	Core        bool               `json:"core"`
	Remote      bool               `json:"remote"`
	Categories  []domain.Category  `json:"categories,omitempty"`
	Locales     []string           `json:"locales,omitempty"`
	MaxResults  int                `json:"max_results"`
	RateLimit   int                `json:"rate_limit"`
	Timeout     time.Duration      `json:"timeout"`
	Performance performance.Record `json:"performance"`
}

// Stats combines session aggregates with per-source records
type Stats struct {
	Sessions session.Stats                 `json:"sessions"`
	Sources  map[string]performance.Record `json:"sources"`
}

// Option configures Service
type Option func(*config)

type config struct {
	registry *source.Registry
	repo     Repository
	pool     Submitter
	perf     PerformanceTracker
	sessions *session.Tracker
	selector *source.Selector
	sinks    []SessionSink
	deadline time.Duration
	logger   *logging.Logger
	clock    func() time.Time
}

// WithRegistry sets the source registry
func WithRegistry(r *source.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithRepository sets the repository
func WithRepository(repo Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithPool sets the shared worker pool
func WithPool(pool Submitter) Option {
	return func(c *config) {
		c.pool = pool
	}
}

// WithPerformance sets the performance tracker
func WithPerformance(perf PerformanceTracker) Option {
	return func(c *config) {
		c.perf = perf
	}
}

// WithSessions sets the session tracker
func WithSessions(t *session.Tracker) Option {
	return func(c *config) {
		c.sessions = t
	}
}

// WithSelector sets the source selector
func WithSelector(sel *source.Selector) Option {
	return func(c *config) {
		c.selector = sel
	}
}

// WithSinks adds session sinks
func WithSinks(sinks ...SessionSink) Option {
	return func(c *config) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// WithSessionDeadline bounds the wall time of one search
func WithSessionDeadline(d time.Duration) Option {
	return func(c *config) {
		c.deadline = d
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		deadline: DefaultSessionDeadline,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.registry == nil {
		return nil, fmt.Errorf("job.Service: registry is required")
	}
	if cfg.repo == nil {
		return nil, fmt.Errorf("job.Service: repository is required")
	}
	if cfg.pool == nil {
		return nil, fmt.Errorf("job.Service: worker pool is required")
	}

	svc := &service{
		registry: cfg.registry,
		repo:     cfg.repo,
		perf:     cfg.perf,
		sessions: cfg.sessions,
		selector: cfg.selector,
		sinks:    cfg.sinks,
		deadline: cfg.deadline,
		logger:   cfg.logger,
		clock:    cfg.clock,
		running:  make(map[domain.SessionID]context.CancelFunc),
	}
	if svc.logger == nil {
		svc.logger = logging.Nop()
	}
	if svc.perf == nil {
		tracker := performance.NewTracker()
		svc.perf = tracker
		svc.owned = append(svc.owned, tracker.Close)
	}
	if svc.sessions == nil {
		svc.sessions = session.NewTracker(session.WithClock(cfg.clock))
	}
	if svc.selector == nil {
		svc.selector = source.NewSelector(source.DefaultMaxSources)
	}
	if svc.deadline <= 0 {
		svc.deadline = DefaultSessionDeadline
	}

	svc.engine = NewEngine(cfg.pool, svc.perf, svc.logger)
	svc.engine.clock = cfg.clock

	return svc, nil
}

// Settings carries the scalar knobs of NewServiceWithDeps
type Settings struct {
	SessionDeadline time.Duration
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(
	registry *source.Registry,
	repo Repository,
	pool Submitter,
	perf *performance.Tracker,
	sessions *session.Tracker,
	selector *source.Selector,
	sinks []SessionSink,
	settings Settings,
	logger *logging.Logger,
) (Service, error) {
	return NewService(
		WithRegistry(registry),
		WithRepository(repo),
		WithPool(pool),
		WithPerformance(perf),
		WithSessions(sessions),
		WithSelector(selector),
		WithSinks(sinks...),
		WithSessionDeadline(settings.SessionDeadline),
		WithLogger(logger),
	)
}

type service struct {
	registry *source.Registry
	repo     Repository
	perf     PerformanceTracker
	sessions *session.Tracker
	selector *source.Selector
	engine   *Engine
	sinks    []SessionSink
	deadline time.Duration
	logger   *logging.Logger
	clock    func() time.Time

	mu         sync.RWMutex
	onProgress []func(float64)
	onStatus   []func(string)
	running    map[domain.SessionID]context.CancelFunc

	owned []func()
}

// Search selects sources, fans out, deduplicates and stores results
func (s *service) Search(ctx context.Context, req domain.SearchRequest) (domain.JobSearchResult, error) {
	req = req.Clone()
	req.Keywords = strings.TrimSpace(req.Keywords)
	if req.Keywords == "" {
		return domain.JobSearchResult{}, fmt.Errorf("keywords are required")
	}

	sess := s.sessions.Begin(req)
	log := s.logger.With("session", sess.ID.String())

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	s.track(sess.ID, stop)
	defer s.untrack(sess.ID)

	snap := s.registry.Snapshot()

	names, notes, err := s.resolve(req, snap)
	if err != nil {
		failed, _ := s.sessions.Finish(sess.ID, session.Result{Errors: notes}, err)
		s.notify(ctx, failed)
		log.Warn("search rejected", "err", err)
		return domain.JobSearchResult{Session: failed}, err
	}
	if len(names) == 0 {
		notes = append(notes, "no enabled source matched the request")
	}
	if err := s.sessions.SetSources(sess.ID, names); err != nil {
		return domain.JobSearchResult{Session: sess}, err
	}

	log.Info("search started", "keywords", req.Keywords, "sources", names)
	s.emitStatus(fmt.Sprintf("Searching %d source(s)", len(names)))

	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		d, _ := snap.Get(name)
		tasks = append(tasks, Task{Source: d, Limiter: snap.Limiter(name)})
	}

	runCtx, cancel := context.WithTimeout(ctx, s.deadline)
	outcome := s.engine.Execute(runCtx, req, tasks, Hooks{
		Progress: func(done, total int) {
			s.emitProgress(float64(done) / float64(total) * 100)
		},
		Status: s.emitStatus,
	})
	cancel()

	errs := notes
	bySource := make(map[string]SourceResult, len(outcome.Results))
	for _, r := range outcome.Results {
		bySource[r.Source] = r
		if r.Err != nil {
			errs = append(errs, r.Err.Error())
		}
	}

	// first occurrence wins in selection order, independent of arrival order
	dedup := NewDeduplicator(sess.ID)
	var counts domain.SessionCounts
	var unique []domain.CanonicalJob
	for _, name := range names {
		jobs := bySource[name].Jobs
		counts.Found += len(jobs)
		u, dups := dedup.Add(jobs)
		counts.Duplicates += dups
		unique = append(unique, u...)
	}
	counts.Unique = len(unique)

	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer saveCancel()

	summaries := make([]domain.JobSummary, 0, len(unique))
	for i := range unique {
		id, err := s.repo.SaveJob(saveCtx, unique[i])
		if err != nil {
			log.Warn("failed to save job", "fingerprint", unique[i].Fingerprint, "source", unique[i].Source, "err", err)
		} else {
			counts.Saved++
			unique[i].ID = id
		}
		summaries = append(summaries, domain.SummaryOf(unique[i]))
	}

	res := session.Result{Counts: counts, Errors: errs}
	var final domain.Session
	var searchErr error
	if ctx.Err() != nil {
		final, err = s.sessions.Cancel(sess.ID, res)
		if outcome.Succeeded == 0 {
			searchErr = &domain.SessionCancelledError{ID: sess.ID}
		}
	} else {
		final, err = s.sessions.Finish(sess.ID, res, nil)
	}
	if err != nil {
		return domain.JobSearchResult{Session: final, Jobs: summaries}, err
	}

	s.notify(saveCtx, final)
	log.Info("search finished",
		"status", final.Status,
		"found", counts.Found,
		"unique", counts.Unique,
		"duplicates", counts.Duplicates,
		"saved", counts.Saved,
		"errors", len(errs),
		"duration", final.Duration(),
	)

	return domain.JobSearchResult{Session: final, Jobs: summaries}, searchErr
}

// resolve returns the sources to invoke. An explicit source list bypasses
// the selector; disabled names in it are skipped with a note.
func (s *service) resolve(req domain.SearchRequest, snap *source.Snapshot) ([]string, []string, error) {
	if len(req.Sources) == 0 {
		return s.selector.Select(req, snap, s.perf.Snapshots()), nil, nil
	}

	var names, notes []string
	seen := make(map[string]struct{}, len(req.Sources))
	for _, name := range req.Sources {
		d, ok := snap.Get(name)
		if !ok {
			return nil, nil, &domain.UnknownSourceError{Name: name}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if !d.Enabled {
			notes = append(notes, fmt.Sprintf("%s: source disabled", name))
			continue
		}
		if len(names) < s.selector.MaxSources() {
			names = append(names, name)
		}
	}
	return names, notes, nil
}

func (s *service) track(id domain.SessionID, stop context.CancelFunc) {
	s.mu.Lock()
	s.running[id] = stop
	s.mu.Unlock()
}

func (s *service) untrack(id domain.SessionID) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

// Cancel stops a running session
func (s *service) Cancel(id domain.SessionID) error {
	s.mu.RLock()
	stop, ok := s.running[id]
	s.mu.RUnlock()
	if ok {
		stop()
		s.logger.Info("session cancel requested", "session", id.String())
		return nil
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return err
	}
	return &domain.InvalidSessionStateError{ID: id, Status: sess.Status, Target: domain.SessionCancelled}
}

func (s *service) notify(ctx context.Context, sess domain.Session) {
	for _, sink := range s.sinks {
		if err := sink.SessionFinished(ctx, sess); err != nil {
			s.logger.Warn("session sink failed", "session", sess.ID.String(), "err", err)
		}
	}
}

// OnProgress registers a progress callback
func (s *service) OnProgress(fn func(percent float64)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onProgress = append(s.onProgress, fn)
	s.mu.Unlock()
}

// OnStatus registers a status callback
func (s *service) OnStatus(fn func(msg string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onStatus = append(s.onStatus, fn)
	s.mu.Unlock()
}

func (s *service) emitProgress(percent float64) {
	s.mu.RLock()
	fns := s.onProgress
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(percent)
	}
}

func (s *service) emitStatus(msg string) {
	s.mu.RLock()
	fns := s.onStatus
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// Enable turns a source on
func (s *service) Enable(name string) error {
	if err := s.registry.SetEnabled(name, true); err != nil {
		return err
	}
	s.logger.Info("source enabled", "source", name)
	return nil
}

// Disable turns a source off; running sessions are not affected
func (s *service) Disable(name string) error {
	if err := s.registry.SetEnabled(name, false); err != nil {
		return err
	}
	s.logger.Info("source disabled", "source", name)
	return nil
}

// Sources lists every registered source with its statistics
func (s *service) Sources() []SourceStatus {
	perf := s.perf.Snapshots()
	descs := s.registry.List(nil)
	out := make([]SourceStatus, 0, len(descs))
	for _, d := range descs {
		out = append(out, SourceStatus{
			Name:        d.Name,
			Priority:    d.Priority,
			Enabled:     d.Enabled,
			Core:        d.Core,
			Remote:      d.Remote,
			Categories:  d.Categories,
			Locales:     d.Locales,
			MaxResults:  d.MaxResults,
			RateLimit:   d.RateLimit,
			Timeout:     d.Timeout,
			Performance: perf[d.Name],
		})
	}
	return out
}

func (s *service) Session(id domain.SessionID) (domain.Session, error) {
	return s.sessions.Get(id)
}

func (s *service) History(limit int) []domain.Session {
	return s.sessions.History(limit)
}

func (s *service) Stats() Stats {
	return Stats{
		Sessions: s.sessions.Stats(),
		Sources:  s.perf.Snapshots(),
	}
}

func (s *service) Jobs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *service) Close() {
	for _, fn := range s.owned {
		fn()
	}
	s.owned = nil
}
