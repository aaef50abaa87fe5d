// Package remoteok adapts the RemoteOK feed to source.Provider.
//
// The feed has no server-side search beyond a single tag, so keyword,
// location, salary and recency filters are applied locally.
package remoteok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
	"github.com/honeycarbs/job-hunter/pkg/remoteok"
)

// Name is the registry name of the RemoteOK source
const Name = "remoteok"

type feedClient interface {
	Jobs(ctx context.Context, tag string) ([]remoteok.Job, error)
}

// Provider implements source.Provider over the RemoteOK feed
type Provider struct {
	client feedClient
	clock  func() time.Time
}

// NewProvider builds a RemoteOK provider
func NewProvider(client feedClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("remoteok provider: client is required")
	}
	return &Provider{client: client, clock: time.Now}, nil
}

func (p *Provider) Name() string {
	return Name
}

// Search fetches the feed and keeps entries matching the query and filters
func (p *Provider) Search(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error) {
	terms := strings.Fields(strings.ToLower(query))

	tag := ""
	if len(terms) == 1 {
		tag = terms[0]
	}

	feed, err := p.client.Jobs(ctx, tag)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if age := filters.DatePosted.MaxAge(); age > 0 {
		cutoff = p.clock().Add(-age)
	}

	out := make([]domain.Job, 0, len(feed))
	for _, j := range feed {
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
		if !matchesTerms(j, terms) || !matchesLocation(j.Location, filters.Location) {
			continue
		}
		if filters.MinSalary != nil && j.SalaryMax > 0 && j.SalaryMax < *filters.MinSalary {
			continue
		}
		if !cutoff.IsZero() && !j.Date.IsZero() && j.Date.Before(cutoff) {
			continue
		}
		out = append(out, toJob(j))
	}
	return out, nil
}

var _ source.Provider = (*Provider)(nil)

func toJob(j remoteok.Job) domain.Job {
	location := j.Location
	if location == "" {
		location = "Remote"
	}
	url := j.URL
	if url == "" {
		url = j.ApplyURL
	}
	job := domain.Job{
		Title:       j.Position,
		Company:     domain.CompanyRef{Name: j.Company},
		Location:    location,
		Remote:      true,
		URL:         url,
		ExternalID:  j.ID,
		PostedAt:    j.Date,
		Description: j.Description,
	}
	if j.SalaryMin > 0 || j.SalaryMax > 0 {
		job.Salary = &domain.SalaryRange{Min: j.SalaryMin, Max: j.SalaryMax, Currency: "USD"}
	}
	return job
}

// matchesTerms requires any query term in the position or tags
func matchesTerms(j remoteok.Job, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	hay := strings.ToLower(j.Position + " " + strings.Join(j.Tags, " "))
	for _, t := range terms {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}

func matchesLocation(jobLocation, want string) bool {
	if want == "" {
		return true
	}
	loc := strings.ToLower(jobLocation)
	if loc == "" || strings.Contains(loc, "worldwide") || strings.Contains(loc, "anywhere") {
		return true
	}
	return strings.Contains(loc, strings.ToLower(want))
}
