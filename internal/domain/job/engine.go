package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

// maxPerQuery caps the limit passed to a single adapter call
const maxPerQuery = 100

// Task is one source to query within a session
type Task struct {
	Source  source.Descriptor
	Limiter *rate.Limiter
}

// SourceResult is the outcome of one Task
type SourceResult struct {
	Source  string
	Jobs    []domain.Job
	Err     error
	Elapsed time.Duration
}

// Outcome collects every SourceResult of a fan-out in arrival order
type Outcome struct {
	Results []SourceResult
	// Succeeded counts sources that returned without error
	Succeeded int
	// Interrupted is set when ctx ended before every source reported
	Interrupted bool
}

// Hooks run one at a time on a goroutine owned by Execute. After a deadline
// they may still fire once Execute has returned.
type Hooks struct {
	Progress func(done, total int)
	Status   func(msg string)
}

// Recorder receives per-source execution statistics
type Recorder interface {
	Record(source string, count int, elapsed time.Duration, err error)
}

// Submitter schedules work on a shared pool
type Submitter interface {
	Submit(ctx context.Context, task func()) error
}

// Engine fans a request out to sources on a shared pool and fans results in
type Engine struct {
	pool   Submitter
	perf   Recorder
	logger *logging.Logger
	clock  func() time.Time
}

// NewEngine builds an Engine; perf may be nil
func NewEngine(pool Submitter, perf Recorder, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		pool:   pool,
		perf:   perf,
		logger: logger.With("component", "engine"),
		clock:  time.Now,
	}
}

// Execute runs every task and returns once each has reported or ctx is
// done. On ctx expiry it returns immediately with the results collected so
// far; tasks that did not report get a timeout or cancellation error.
//
// Hooks run on a separate goroutine so a slow callback never holds back a
// result. When every task reports in time, Execute waits for pending hooks
// until ctx is done.
func (e *Engine) Execute(ctx context.Context, req domain.SearchRequest, tasks []Task, hooks Hooks) Outcome {
	var out Outcome
	if len(tasks) == 0 {
		return out
	}

	total := len(tasks)
	results := make(chan SourceResult, total)
	// each task queues at most one status and one progress event
	events := make(chan func(), 2*total)
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for fn := range events {
			fn()
		}
	}()

	var done atomic.Int32
	go func() {
		var wg sync.WaitGroup
		for _, t := range tasks {
			t := t
			wg.Add(1)
			err := e.pool.Submit(ctx, func() {
				defer wg.Done()
				res := e.run(ctx, t, req, hooks, events)
				results <- res
				n := int(done.Add(1))
				if hooks.Progress != nil {
					events <- func() { hooks.Progress(n, total) }
				}
			})
			if err != nil {
				wg.Done()
				results <- SourceResult{Source: t.Source.Name, Err: interruptError(t.Source, err)}
			}
		}
		wg.Wait()
		close(events)
	}()

	pending := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		pending[t.Source.Name] = struct{}{}
	}

	for len(pending) > 0 {
		select {
		case res := <-results:
			if _, ok := pending[res.Source]; !ok {
				continue
			}
			delete(pending, res.Source)
			out.add(res)
		case <-ctx.Done():
			out.Interrupted = true
			// keep results that raced with ctx expiry
			for drained := false; !drained; {
				select {
				case res := <-results:
					if _, ok := pending[res.Source]; ok {
						delete(pending, res.Source)
						out.add(res)
					}
				default:
					drained = true
				}
			}
			for _, t := range tasks {
				if _, ok := pending[t.Source.Name]; ok {
					out.add(SourceResult{Source: t.Source.Name, Err: interruptError(t.Source, ctx.Err())})
				}
			}
			return out
		}
	}

	select {
	case <-eventsDone:
	case <-ctx.Done():
	}
	return out
}

func (o *Outcome) add(res SourceResult) {
	if res.Err == nil {
		o.Succeeded++
	}
	o.Results = append(o.Results, res)
}

type fetchResult struct {
	jobs []domain.Job
	err  error
}

func (e *Engine) run(ctx context.Context, t Task, req domain.SearchRequest, hooks Hooks, events chan<- func()) SourceResult {
	d := t.Source
	res := SourceResult{Source: d.Name}

	if err := ctx.Err(); err != nil {
		res.Err = interruptError(d, err)
		return res
	}

	if hooks.Status != nil {
		msg := fmt.Sprintf("Scraping %s...", d.Name)
		events <- func() { hooks.Status(msg) }
	}

	start := e.clock()
	srcCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	if t.Limiter != nil {
		if err := waitTurn(srcCtx, t.Limiter); err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				res.Err = &domain.SourceFetchError{Source: d.Name, Err: err}
			} else {
				res.Err = interruptError(d, err)
			}
			return e.finish(ctx, res, start)
		}
	}

	ch := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- fetchResult{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		jobs, err := d.Provider.Search(srcCtx, req.Keywords, filtersFor(req, d))
		ch <- fetchResult{jobs: jobs, err: err}
	}()

	select {
	case fr := <-ch:
		switch {
		case fr.err == nil:
			res.Jobs = e.normalize(d, fr.jobs)
		case srcCtx.Err() != nil:
			res.Err = interruptError(d, srcCtx.Err())
		default:
			res.Err = &domain.SourceFetchError{Source: d.Name, Err: fr.err}
		}
	case <-srcCtx.Done():
		// the adapter may still be running; its goroutine exits on its own
		res.Err = interruptError(d, srcCtx.Err())
	}

	return e.finish(ctx, res, start)
}

func (e *Engine) finish(ctx context.Context, res SourceResult, start time.Time) SourceResult {
	res.Elapsed = e.clock().Sub(start)

	if res.Err != nil {
		e.logger.Warn("source failed", "source", res.Source, "elapsed", res.Elapsed, "err", res.Err)
	} else {
		e.logger.Debug("source completed", "source", res.Source, "jobs", len(res.Jobs), "elapsed", res.Elapsed)
	}

	// caller cancellation and our own rate limit say nothing about the
	// source's health
	if e.perf != nil && !errors.Is(ctx.Err(), context.Canceled) && !errors.Is(res.Err, domain.ErrRateLimited) {
		e.perf.Record(res.Source, len(res.Jobs), res.Elapsed, res.Err)
	}
	return res
}

func (e *Engine) normalize(d source.Descriptor, jobs []domain.Job) []domain.Job {
	if len(jobs) > d.MaxResults {
		jobs = jobs[:d.MaxResults]
	}
	now := e.clock().UTC()
	out := make([]domain.Job, len(jobs))
	for i, j := range jobs {
		if j.Source == "" {
			j.Source = d.Name
		}
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		if j.FetchedAt.IsZero() {
			j.FetchedAt = now
		}
		out[i] = j
	}
	return out
}

// waitTurn blocks until l grants a request. When the next slot lies beyond
// ctx's deadline it returns ErrRateLimited at once without consuming a token.
func waitTurn(ctx context.Context, l *rate.Limiter) error {
	r := l.Reserve()
	if !r.OK() {
		return fmt.Errorf("%w: burst exceeded", domain.ErrRateLimited)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		r.Cancel()
		return fmt.Errorf("%w: next slot in %s", domain.ErrRateLimited, delay.Round(time.Second))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func filtersFor(req domain.SearchRequest, d source.Descriptor) domain.JobSearchFilters {
	f := domain.JobSearchFilters{
		Categories: req.Categories,
		MinSalary:  req.MinSalary,
		DatePosted: req.DatePosted,
		Limit:      d.MaxResults,
	}
	if f.Limit > maxPerQuery {
		f.Limit = maxPerQuery
	}
	if len(req.Locations) > 0 {
		f.Location = req.Locations[0]
	}
	if req.RemoteOnly {
		remote := true
		f.Remote = &remote
	}
	return f
}

func interruptError(d source.Descriptor, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.SourceTimeoutError{Source: d.Name, Timeout: d.Timeout}
	}
	return &domain.SourceFetchError{Source: d.Name, Err: err}
}
