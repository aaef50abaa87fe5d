package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

const (
	DefaultTimeout    = 5 * time.Minute
	DefaultMaxResults = 100
	DefaultRateLimit  = 30
)

// Descriptor is the registry's view of one source: identity, limits and
// selection affinity.
type Descriptor struct {
	Name     string
	Provider Provider

	// Priority orders sources, lower runs first
	Priority   int
	MaxResults int
	// RateLimit is requests per minute; negative disables limiting
	RateLimit int
	Timeout   time.Duration
	Enabled   bool

	// Core sources are always candidates regardless of request hints
	Core       bool
	Categories []domain.Category
	Locales    []string
	Remote     bool
}

func (d Descriptor) withDefaults() Descriptor {
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}
	if d.RateLimit == 0 {
		d.RateLimit = DefaultRateLimit
	}
	return d
}

func (d Descriptor) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("source: name is required")
	}
	if d.Provider == nil {
		return fmt.Errorf("source %q: provider is required", d.Name)
	}
	return nil
}

// HandlesCategory reports category affinity
func (d Descriptor) HandlesCategory(c domain.Category) bool {
	for _, dc := range d.Categories {
		if dc == c {
			return true
		}
	}
	return false
}

// MatchesLocation reports whether any locale of d appears in location
func (d Descriptor) MatchesLocation(location string) bool {
	loc := strings.ToLower(location)
	if loc == "" {
		return false
	}
	for _, l := range d.Locales {
		if l != "" && strings.Contains(loc, strings.ToLower(l)) {
			return true
		}
	}
	return false
}
