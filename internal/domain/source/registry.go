package source

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// Filter selects descriptors in List. A nil Filter matches everything.
type Filter func(Descriptor) bool

// EnabledOnly matches enabled descriptors
func EnabledOnly(d Descriptor) bool {
	return d.Enabled
}

type entry struct {
	desc    Descriptor
	limiter *rate.Limiter
}

// Snapshot is an immutable view of the registry. Position in the snapshot is
// registration order.
type Snapshot struct {
	entries []entry
	index   map[string]int
}

// Len returns the number of registered sources
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Get returns the descriptor registered under name
func (s *Snapshot) Get(name string) (Descriptor, bool) {
	if s == nil {
		return Descriptor{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.entries[i].desc, true
}

// Order returns the registration position of name, or -1
func (s *Snapshot) Order(name string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Limiter returns the shared rate limiter for name
func (s *Snapshot) Limiter(name string) *rate.Limiter {
	if s == nil {
		return nil
	}
	if i, ok := s.index[name]; ok {
		return s.entries[i].limiter
	}
	return nil
}

// List returns matching descriptors in registration order
func (s *Snapshot) List(filter Filter) []Descriptor {
	if s == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(s.entries))
	for _, e := range s.entries {
		if filter == nil || filter(e.desc) {
			out = append(out, e.desc)
		}
	}
	return out
}

// Registry holds the set of known sources. Reads are lock free; writers
// serialize on mu and publish a fresh Snapshot.
type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(&Snapshot{index: map[string]int{}})
	return r
}

// Snapshot returns the current immutable view
func (r *Registry) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Register adds a descriptor. Missing limits are filled with defaults.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	d = d.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	if _, exists := cur.index[d.Name]; exists {
		return &domain.DuplicateSourceError{Name: d.Name}
	}

	next := &Snapshot{
		entries: make([]entry, len(cur.entries), len(cur.entries)+1),
		index:   make(map[string]int, len(cur.index)+1),
	}
	copy(next.entries, cur.entries)
	for k, v := range cur.index {
		next.index[k] = v
	}
	next.index[d.Name] = len(next.entries)
	next.entries = append(next.entries, entry{desc: d, limiter: newLimiter(d.RateLimit)})

	r.snap.Store(next)
	return nil
}

// SetEnabled toggles a registered source
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	i, ok := cur.index[name]
	if !ok {
		return &domain.UnknownSourceError{Name: name}
	}
	if cur.entries[i].desc.Enabled == enabled {
		return nil
	}

	next := &Snapshot{
		entries: make([]entry, len(cur.entries)),
		index:   cur.index,
	}
	copy(next.entries, cur.entries)
	next.entries[i].desc.Enabled = enabled

	r.snap.Store(next)
	return nil
}

// Get returns the descriptor registered under name
func (r *Registry) Get(name string) (Descriptor, bool) {
	return r.Snapshot().Get(name)
}

// List returns matching descriptors in registration order
func (r *Registry) List(filter Filter) []Descriptor {
	return r.Snapshot().List(filter)
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute < 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
