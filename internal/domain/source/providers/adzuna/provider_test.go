package adzuna

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/pkg/adzuna"
)

type fakeClient struct {
	query  string
	params adzuna.SearchParams
	jobs   []adzuna.Job
	err    error
}

func (f *fakeClient) SearchJobs(_ context.Context, query string, params adzuna.SearchParams) ([]adzuna.Job, error) {
	f.query = query
	f.params = params
	return f.jobs, f.err
}

func TestProviderSearchMapsFilters(t *testing.T) {
	posted := time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC)
	fc := &fakeClient{jobs: []adzuna.Job{
		{ID: "1", Title: "Go Dev", CompanyName: "Big  Corp", Location: "Berlin", PostedAt: posted, SalaryMin: 50000, SalaryMax: 60000, Currency: "EUR"},
		{ID: "2", Title: "Ops", CompanyName: "Small", Location: "Remote", Remote: true},
	}}
	p, err := NewProvider(fc)
	require.NoError(t, err)

	minSalary := 45000.0
	remote := true
	jobs, err := p.Search(context.Background(), "golang", domain.JobSearchFilters{
		Location:   "Berlin",
		Remote:     &remote,
		Categories: []domain.Category{domain.CategoryFreelance, domain.CategoryIT},
		MinSalary:  &minSalary,
		DatePosted: domain.PostedThisWeek,
		Limit:      25,
	})
	require.NoError(t, err)

	assert.Equal(t, "golang", fc.query)
	assert.Equal(t, "it-jobs", fc.params.Category)
	assert.Equal(t, 45000.0, fc.params.SalaryMin)
	assert.Equal(t, 7, fc.params.MaxDaysOld)
	assert.Equal(t, 25, fc.params.Limit)
	assert.Equal(t, "Berlin", fc.params.Location)

	require.Len(t, jobs, 2)
	assert.Equal(t, "big-corp", jobs[0].Company.ID)
	assert.Empty(t, jobs[0].Source, "source is stamped with the registered name by the engine")
	assert.Equal(t, "1", jobs[0].ExternalID)
	require.NotNil(t, jobs[0].Salary)
	assert.Equal(t, "EUR", jobs[0].Salary.Currency)
	assert.Nil(t, jobs[1].Salary)
	assert.True(t, jobs[1].Remote)
}

func TestProviderSearchError(t *testing.T) {
	p, err := NewProvider(&fakeClient{err: errors.New("adzuna: API error (500)")})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "golang", domain.JobSearchFilters{})
	assert.EqualError(t, err, "adzuna: API error (500)")
}

func TestNewProviderRequiresClient(t *testing.T) {
	_, err := NewProvider(nil)
	assert.Error(t, err)
}
