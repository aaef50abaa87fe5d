package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// Source kinds understood by the server wiring
const (
	KindAdzuna   = "adzuna"
	KindRemoteOK = "remoteok"
	KindStatic   = "static"
)

// Catalog is the YAML description of sources and scheduled searches.
// ${VAR} references are expanded from the environment before parsing.
type Catalog struct {
	Sources  []SourceSpec `yaml:"sources"`
	Schedule ScheduleSpec `yaml:"schedule"`
}

// SourceSpec configures one source
type SourceSpec struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Priority   int           `yaml:"priority"`
	Enabled    *bool         `yaml:"enabled"`
	Core       bool          `yaml:"core"`
	Remote     bool          `yaml:"remote"`
	Categories []string      `yaml:"categories"`
	Locales    []string      `yaml:"locales"`
	MaxResults int           `yaml:"max_results"`
	RateLimit  int           `yaml:"rate_limit"`
	Timeout    time.Duration `yaml:"timeout"`

	// static sources only
	File  string        `yaml:"file"`
	Delay time.Duration `yaml:"delay"`
}

// IsEnabled defaults to true when enabled is omitted
func (s SourceSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// CategoryList parses Categories
func (s SourceSpec) CategoryList() []domain.Category {
	out := make([]domain.Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, domain.ParseCategory(c))
	}
	return out
}

// ScheduleSpec configures recurring searches
type ScheduleSpec struct {
	Spec       string        `yaml:"spec"`
	Pause      time.Duration `yaml:"pause"`
	RunOnStart bool          `yaml:"run_on_start"`
	Searches   []SearchSpec  `yaml:"searches"`
}

// SearchSpec is the YAML form of a SearchRequest
type SearchSpec struct {
	Keywords   string   `yaml:"keywords"`
	Categories []string `yaml:"categories"`
	Locations  []string `yaml:"locations"`
	RemoteOnly bool     `yaml:"remote_only"`
	MinSalary  float64  `yaml:"min_salary"`
	DatePosted string   `yaml:"date_posted"`
	Sources    []string `yaml:"sources"`
}

// Request converts the spec to a SearchRequest
func (s SearchSpec) Request() domain.SearchRequest {
	req := domain.SearchRequest{
		Keywords:   s.Keywords,
		Locations:  s.Locations,
		RemoteOnly: s.RemoteOnly,
		DatePosted: domain.DatePosted(strings.ToLower(s.DatePosted)),
		Sources:    s.Sources,
	}
	for _, c := range s.Categories {
		req.Categories = append(req.Categories, domain.ParseCategory(c))
	}
	if s.MinSalary > 0 {
		v := s.MinSalary
		req.MinSalary = &v
	}
	return req
}

// Requests converts every scheduled search
func (s ScheduleSpec) Requests() []domain.SearchRequest {
	out := make([]domain.SearchRequest, 0, len(s.Searches))
	for _, sp := range s.Searches {
		out = append(out, sp.Request())
	}
	return out
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML after expanding environment references
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks names, kinds and scheduled searches
func (c Catalog) Validate() error {
	var problems []string
	seen := make(map[string]bool, len(c.Sources))

	for i, s := range c.Sources {
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			problems = append(problems, fmt.Sprintf("sources[%d]: name is required", i))
			continue
		case seen[name]:
			problems = append(problems, fmt.Sprintf("sources[%d]: duplicate name %q", i, name))
		}
		seen[name] = true

		switch s.Kind {
		case KindAdzuna, KindRemoteOK:
		case KindStatic:
			if s.File == "" {
				problems = append(problems, fmt.Sprintf("source %q: static sources need a file", name))
			}
		default:
			problems = append(problems, fmt.Sprintf("source %q: unknown kind %q", name, s.Kind))
		}
	}

	for i, s := range c.Schedule.Searches {
		if strings.TrimSpace(s.Keywords) == "" {
			problems = append(problems, fmt.Sprintf("schedule.searches[%d]: keywords are required", i))
		}
	}
	if len(c.Schedule.Searches) > 0 && c.Schedule.Spec == "" {
		problems = append(problems, "schedule: spec is required when searches are set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DefaultCatalog is used when no SOURCES_FILE is configured
func DefaultCatalog() Catalog {
	return Catalog{
		Sources: []SourceSpec{
			{
				Name:       "adzuna",
				Kind:       KindAdzuna,
				Priority:   1,
				Core:       true,
				Categories: []string{"it", "civil", "marketing"},
				MaxResults: 50,
				RateLimit:  25,
				Timeout:    2 * time.Minute,
			},
			{
				Name:       "remoteok",
				Kind:       KindRemoteOK,
				Priority:   2,
				Remote:     true,
				Categories: []string{"it", "freelance"},
				MaxResults: 100,
				RateLimit:  10,
				Timeout:    time.Minute,
			},
		},
	}
}
