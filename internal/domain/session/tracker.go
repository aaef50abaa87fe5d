// Package session keeps the bounded in-memory history of search sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

const (
	DefaultMaxHistory = 500
	DefaultRetention  = 30 * 24 * time.Hour
)

// Result carries the counters and per-source errors of a finished session
type Result struct {
	Counts domain.SessionCounts
	Errors []string
}

// Tracker owns session lifecycle. A session moves from running to exactly
// one terminal status and is immutable afterwards.
type Tracker struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.Session
	order    []domain.SessionID

	maxHistory int
	retention  time.Duration
	clock      func() time.Time
}

// Option configures Tracker
type Option func(*Tracker)

// WithMaxHistory caps how many sessions are kept
func WithMaxHistory(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxHistory = n
		}
	}
}

// WithRetention sets how long finished sessions are kept
func WithRetention(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.retention = d
		}
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// NewTracker builds an empty Tracker
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		sessions:   make(map[domain.SessionID]*domain.Session),
		maxHistory: DefaultMaxHistory,
		retention:  DefaultRetention,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin records a new running session. Old finished sessions are evicted
// here rather than on a timer.
func (t *Tracker) Begin(req domain.SearchRequest) domain.Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	t.evictLocked(now)

	s := &domain.Session{
		ID:        id,
		Request:   req.Clone(),
		StartedAt: now,
		Status:    domain.SessionRunning,
	}
	t.sessions[id] = s
	t.order = append(t.order, id)

	return copySession(s)
}

// SetSources records which sources a running session invoked
func (t *Tracker) SetSources(id domain.SessionID, sources []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return &domain.InvalidSessionStateError{ID: id, Status: s.Status, Target: domain.SessionRunning}
	}
	s.Sources = append([]string(nil), sources...)
	return nil
}

// Finish moves a running session to completed, or to failed when err is set
func (t *Tracker) Finish(id domain.SessionID, res Result, err error) (domain.Session, error) {
	status := domain.SessionCompleted
	if err != nil {
		status = domain.SessionFailed
		res.Errors = append(append([]string(nil), res.Errors...), err.Error())
	}
	return t.transition(id, status, res)
}

// Cancel moves a running session to cancelled, keeping any partial counts
func (t *Tracker) Cancel(id domain.SessionID, res Result) (domain.Session, error) {
	return t.transition(id, domain.SessionCancelled, res)
}

func (t *Tracker) transition(id domain.SessionID, status domain.SessionStatus, res Result) (domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if s.Status.Terminal() {
		return copySession(s), &domain.InvalidSessionStateError{ID: id, Status: s.Status, Target: status}
	}

	s.Status = status
	s.EndedAt = t.clock()
	s.Counts = res.Counts
	s.Errors = append([]string(nil), res.Errors...)

	return copySession(s), nil
}

// Get returns one session by id
func (t *Tracker) Get(id domain.SessionID) (domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return copySession(s), nil
}

// History returns up to limit sessions, newest first. limit <= 0 returns all.
func (t *Tracker) History(limit int) []domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.order)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Session, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copySession(t.sessions[t.order[i]]))
	}
	return out
}

// evictLocked drops finished sessions past retention, then the oldest
// finished ones until a new session fits under maxHistory. Running sessions
// are never evicted.
func (t *Tracker) evictLocked(now time.Time) {
	cutoff := now.Add(-t.retention)
	over := len(t.order) + 1 - t.maxHistory

	kept := t.order[:0]
	for _, id := range t.order {
		s := t.sessions[id]
		if s.Status.Terminal() && (s.StartedAt.Before(cutoff) || over > 0) {
			delete(t.sessions, id)
			over--
			continue
		}
		kept = append(kept, id)
	}
	for i := len(kept); i < len(t.order); i++ {
		t.order[i] = uuid.Nil
	}
	t.order = kept
}

func copySession(s *domain.Session) domain.Session {
	out := *s
	out.Request = s.Request.Clone()
	out.Sources = append([]string(nil), s.Sources...)
	out.Errors = append([]string(nil), s.Errors...)
	return out
}
