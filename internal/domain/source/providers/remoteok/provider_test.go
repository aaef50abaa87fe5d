package remoteok

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/pkg/remoteok"
)

type fakeFeed struct {
	tag  string
	jobs []remoteok.Job
}

func (f *fakeFeed) Jobs(_ context.Context, tag string) ([]remoteok.Job, error) {
	f.tag = tag
	return f.jobs, nil
}

func TestProviderSearchFilters(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	feed := &fakeFeed{jobs: []remoteok.Job{
		{ID: "1", Position: "Senior Go Engineer", Company: "Acme", Location: "Worldwide", Date: now.Add(-48 * time.Hour), SalaryMax: 150000},
		{ID: "2", Position: "Backend Developer", Tags: []string{"golang"}, Location: "Europe", Date: now.Add(-24 * time.Hour)},
		{ID: "3", Position: "Go Developer", Location: "USA only", Date: now},
		{ID: "4", Position: "Go Engineer", Location: "", Date: now.Add(-30 * 24 * time.Hour)},
		{ID: "5", Position: "Go Intern", Location: "Europe", Date: now, SalaryMax: 20000},
		{ID: "6", Position: "Designer", Location: "Europe", Date: now},
	}}
	p, err := NewProvider(feed)
	require.NoError(t, err)
	p.clock = func() time.Time { return now }

	minSalary := 50000.0
	jobs, err := p.Search(context.Background(), "go golang", domain.JobSearchFilters{
		Location:   "Europe",
		MinSalary:  &minSalary,
		DatePosted: domain.PostedThisWeek,
	})
	require.NoError(t, err)
	assert.Empty(t, feed.tag, "multi-word queries fetch the whole feed")

	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ExternalID)
		assert.True(t, j.Remote)
		assert.Empty(t, j.Source)
	}
	assert.Equal(t, []string{"1", "2"}, ids)
	require.NotNil(t, jobs[0].Salary)
	assert.Equal(t, "USD", jobs[0].Salary.Currency)
}

func TestProviderSearchTagAndLimit(t *testing.T) {
	feed := &fakeFeed{jobs: []remoteok.Job{
		{ID: "1", Position: "Rust Dev"},
		{ID: "2", Position: "Rust Lead"},
		{ID: "3", Position: "Rust Intern"},
	}}
	p, err := NewProvider(feed)
	require.NoError(t, err)

	jobs, err := p.Search(context.Background(), "Rust", domain.JobSearchFilters{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "rust", feed.tag)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Remote", jobs[0].Location)
}
