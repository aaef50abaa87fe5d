package adzuna

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/source"
	"github.com/honeycarbs/job-hunter/pkg/adzuna"
)

// Name is the registry name of the Adzuna source
const Name = "adzuna"

// searchClient describes the subset of the Adzuna client used by the provider.
type searchClient interface {
	SearchJobs(ctx context.Context, query string, params adzuna.SearchParams) ([]adzuna.Job, error)
}

var categoryTags = map[domain.Category]string{
	domain.CategoryIT:        "it-jobs",
	domain.CategoryCivil:     "engineering-jobs",
	domain.CategoryMarketing: "pr-advertising-marketing-jobs",
}

// Provider implements source.Provider using the Adzuna API
type Provider struct {
	client searchClient
}

// NewProvider builds an Adzuna provider
func NewProvider(client searchClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("adzuna provider: client is required")
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string {
	return Name
}

// Search queries Adzuna and maps postings onto domain jobs
func (p *Provider) Search(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error) {
	params := adzuna.SearchParams{
		Location:   filters.Location,
		Remote:     filters.Remote,
		Category:   categoryTag(filters.Categories),
		MaxDaysOld: int(filters.DatePosted.MaxAge().Hours() / 24),
		Limit:      filters.Limit,
	}
	if filters.MinSalary != nil {
		params.SalaryMin = *filters.MinSalary
	}

	postings, err := p.client.SearchJobs(ctx, query, params)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Job, 0, len(postings))
	for _, j := range postings {
		job := domain.Job{
			Title: j.Title,
			Company: domain.CompanyRef{
				ID:   slugify(j.CompanyName),
				Name: j.CompanyName,
			},
			Location:    j.Location,
			Remote:      j.Remote,
			URL:         j.URL,
			ExternalID:  j.ID,
			Description: j.Description,
			PostedAt:    j.PostedAt,
		}
		if j.SalaryMin > 0 || j.SalaryMax > 0 {
			job.Salary = &domain.SalaryRange{Min: j.SalaryMin, Max: j.SalaryMax, Currency: j.Currency}
		}
		out = append(out, job)
	}
	return out, nil
}

var _ source.Provider = (*Provider)(nil)

// categoryTag picks the first category Adzuna has a tag for
func categoryTag(cats []domain.Category) string {
	for _, c := range cats {
		if tag, ok := categoryTags[c]; ok {
			return tag
		}
	}
	return ""
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}
