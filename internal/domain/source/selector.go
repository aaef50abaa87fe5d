package source

import (
	"sort"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/performance"
)

// DefaultMaxSources bounds how many sources a single search may fan out to
const DefaultMaxSources = 8

const (
	categoryBonus = 1.0
	localeBonus   = 0.5
	remoteBonus   = 0.7

	reliabilityWeight = 0.5
	failurePenalty    = 0.25
	maxFailureStreak  = 4
)

// Selector picks which sources a request fans out to
type Selector struct {
	maxSources int
}

// NewSelector builds a Selector; maxSources <= 0 uses DefaultMaxSources
func NewSelector(maxSources int) *Selector {
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}
	return &Selector{maxSources: maxSources}
}

// MaxSources returns the fan-out bound
func (s *Selector) MaxSources() int {
	return s.maxSources
}

type candidate struct {
	name  string
	order int
	score float64
}

// Select returns source names ordered by descending score. Ties keep
// registration order. The result is never empty while a core source is
// enabled, and is deterministic for identical inputs.
func (s *Selector) Select(req domain.SearchRequest, snap *Snapshot, perf map[string]performance.Record) []string {
	enabled := snap.List(EnabledOnly)

	var cands []candidate
	for _, d := range enabled {
		affinity, matched := affinityOf(d, req)
		if !d.Core && !matched && !req.Unconstrained() {
			continue
		}
		cands = append(cands, candidate{
			name:  d.Name,
			order: snap.Order(d.Name),
			score: -float64(d.Priority) + affinity + performanceBonus(perf[d.Name]),
		})
	}

	if len(cands) == 0 {
		return s.coreSet(enabled)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].order < cands[j].order
	})

	if len(cands) > s.maxSources {
		cands = cands[:s.maxSources]
	}

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}

func (s *Selector) coreSet(enabled []Descriptor) []string {
	var names []string
	for _, d := range enabled {
		if d.Core {
			names = append(names, d.Name)
		}
		if len(names) == s.maxSources {
			break
		}
	}
	return names
}

func affinityOf(d Descriptor, req domain.SearchRequest) (float64, bool) {
	var bonus float64
	matched := false

	for _, c := range req.Categories {
		if d.HandlesCategory(c) {
			bonus += categoryBonus
			matched = true
		}
	}

	for _, loc := range req.Locations {
		if d.MatchesLocation(loc) {
			bonus += localeBonus
			matched = true
			break
		}
	}

	if req.RemoteOnly && d.Remote {
		bonus += remoteBonus
		matched = true
	}

	return bonus, matched
}

func performanceBonus(rec performance.Record) float64 {
	if rec.Invocations == 0 {
		return 0
	}
	streak := rec.ConsecutiveFailures
	if streak > maxFailureStreak {
		streak = maxFailureStreak
	}
	return reliabilityWeight*(1-rec.ErrorRate()) - failurePenalty*float64(streak)
}
