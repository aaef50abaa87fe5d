// Package performance keeps per-source execution statistics. The numbers are
// advisory: they feed source selection and reports but never gate execution.
package performance

import (
	"errors"
	"sync"
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

const (
	defaultBuffer = 256
	latencyAlpha  = 0.3
)

// Record is a point-in-time copy of one source's statistics
type Record struct {
	Source              string        `json:"source"`
	Invocations         int64         `json:"invocations"`
	ResultsFetched      int64         `json:"results_fetched"`
	Errors              int64         `json:"errors"`
	Timeouts            int64         `json:"timeouts"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastRun             time.Time     `json:"last_run"`
	LastError           string        `json:"last_error,omitempty"`
	AvgLatency          time.Duration `json:"avg_latency"`
}

// ErrorRate is Errors/Invocations, zero without history
func (r Record) ErrorRate() float64 {
	if r.Invocations == 0 {
		return 0
	}
	return float64(r.Errors) / float64(r.Invocations)
}

// SuccessRate is the complement of ErrorRate for sources with history
func (r Record) SuccessRate() float64 {
	if r.Invocations == 0 {
		return 0
	}
	return 1 - r.ErrorRate()
}

type update struct {
	source  string
	count   int
	elapsed time.Duration
	err     error
}

type snapshotReq struct {
	source string
	reply  chan map[string]Record
}

type resetReq struct {
	source string
}

// Tracker owns all records inside a single goroutine; every interaction is
// a message on in.
type Tracker struct {
	in    chan any
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
	clock func() time.Time
}

// Option configures Tracker
type Option func(*Tracker)

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// NewTracker starts the tracker goroutine. Call Close to stop it.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		in:    make(chan any, defaultBuffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	go t.loop()
	return t
}

// Record enqueues the outcome of one source invocation
func (t *Tracker) Record(source string, count int, elapsed time.Duration, err error) {
	t.send(update{source: source, count: count, elapsed: elapsed, err: err})
}

// Reset clears the statistics of one source
func (t *Tracker) Reset(source string) {
	t.send(resetReq{source: source})
}

// Snapshot returns a copy of one source's record
func (t *Tracker) Snapshot(source string) (Record, bool) {
	recs := t.query(source)
	rec, ok := recs[source]
	return rec, ok
}

// Snapshots returns copies of every record keyed by source name
func (t *Tracker) Snapshots() map[string]Record {
	recs := t.query("")
	if recs == nil {
		return map[string]Record{}
	}
	return recs
}

// Close stops the tracker goroutine. Later calls are no-ops.
func (t *Tracker) Close() {
	t.once.Do(func() {
		close(t.quit)
		<-t.done
	})
}

func (t *Tracker) send(msg any) {
	select {
	case <-t.quit:
	case t.in <- msg:
	}
}

func (t *Tracker) query(source string) map[string]Record {
	req := snapshotReq{source: source, reply: make(chan map[string]Record, 1)}
	select {
	case <-t.quit:
		return nil
	case t.in <- req:
	}
	select {
	case recs := <-req.reply:
		return recs
	case <-t.done:
		return nil
	}
}

func (t *Tracker) loop() {
	defer close(t.done)

	records := make(map[string]*Record)
	for {
		select {
		case <-t.quit:
			return
		case msg := <-t.in:
			switch m := msg.(type) {
			case update:
				t.apply(records, m)
			case resetReq:
				delete(records, m.source)
			case snapshotReq:
				m.reply <- copyRecords(records, m.source)
			}
		}
	}
}

func (t *Tracker) apply(records map[string]*Record, u update) {
	rec, ok := records[u.source]
	if !ok {
		rec = &Record{Source: u.source}
		records[u.source] = rec
	}

	rec.Invocations++
	rec.LastRun = t.clock()
	if rec.AvgLatency == 0 {
		rec.AvgLatency = u.elapsed
	} else {
		rec.AvgLatency = time.Duration(latencyAlpha*float64(u.elapsed) + (1-latencyAlpha)*float64(rec.AvgLatency))
	}

	if u.err != nil {
		rec.Errors++
		rec.ConsecutiveFailures++
		rec.LastError = u.err.Error()
		var timeout *domain.SourceTimeoutError
		if errors.As(u.err, &timeout) {
			rec.Timeouts++
		}
		return
	}

	rec.ResultsFetched += int64(u.count)
	rec.ConsecutiveFailures = 0
}

func copyRecords(records map[string]*Record, source string) map[string]Record {
	if source != "" {
		out := make(map[string]Record, 1)
		if rec, ok := records[source]; ok {
			out[source] = *rec
		}
		return out
	}
	out := make(map[string]Record, len(records))
	for name, rec := range records {
		out[name] = *rec
	}
	return out
}
