// Package static serves jobs from a fixed list, loaded from memory or a
// JSON fixture file. It backs offline runs and demos.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
)

// Posting is the fixture file shape of one job
type Posting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Remote      bool      `json:"remote"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	SalaryMin   float64   `json:"salary_min"`
	SalaryMax   float64   `json:"salary_max"`
	Currency    string    `json:"currency"`
	PostedAt    time.Time `json:"posted_at"`
}

// Provider returns matching postings from its list, optionally after a delay
type Provider struct {
	name     string
	postings []Posting
	delay    time.Duration
}

// Option configures Provider
type Option func(*Provider)

// WithDelay simulates network latency; the delay honours ctx
func WithDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.delay = d
	}
}

// New builds a provider over postings
func New(name string, postings []Posting, opts ...Option) *Provider {
	p := &Provider{name: name, postings: postings}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads postings from a JSON array file
func Load(name, path string, opts ...Option) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static source %q: %w", name, err)
	}
	var postings []Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("static source %q: decode %s: %w", name, path, err)
	}
	return New(name, postings, opts...), nil
}

func (p *Provider) Name() string {
	return p.name
}

// Search returns postings whose title or description contains any query
// term, in file order.
func (p *Provider) Search(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	var out []domain.Job
	for _, ps := range p.postings {
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
		if !ps.matches(terms, filters) {
			continue
		}
		out = append(out, ps.job(p.name))
	}
	return out, nil
}

var _ source.Provider = (*Provider)(nil)

func (ps Posting) matches(terms []string, f domain.JobSearchFilters) bool {
	if f.Remote != nil && *f.Remote && !ps.Remote {
		return false
	}
	if f.Location != "" && !ps.Remote && !strings.Contains(strings.ToLower(ps.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.MinSalary != nil && ps.SalaryMax > 0 && ps.SalaryMax < *f.MinSalary {
		return false
	}
	if len(terms) == 0 {
		return true
	}
	hay := strings.ToLower(ps.Title + " " + ps.Description)
	for _, t := range terms {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}

func (ps Posting) job(name string) domain.Job {
	j := domain.Job{
		Title:       ps.Title,
		Company:     domain.CompanyRef{Name: ps.Company},
		Location:    ps.Location,
		Remote:      ps.Remote,
		URL:         ps.URL,
		Source:      name,
		ExternalID:  ps.ID,
		PostedAt:    ps.PostedAt,
		Description: ps.Description,
	}
	if ps.SalaryMin > 0 || ps.SalaryMax > 0 {
		j.Salary = &domain.SalaryRange{Min: ps.SalaryMin, Max: ps.SalaryMax, Currency: ps.Currency}
	}
	return j
}
