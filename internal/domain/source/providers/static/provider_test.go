package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

const fixture = `[
  {"id": "a1", "title": "Go Developer", "company": "Acme", "location": "Berlin", "salary_max": 80000, "currency": "EUR"},
  {"id": "a2", "title": "Site Engineer", "company": "BuildCo", "location": "Munich", "description": "civil works"},
  {"id": "a3", "title": "Platform Engineer", "company": "Remote Inc", "location": "Anywhere", "remote": true, "description": "Go and Kubernetes"}
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return path
}

func TestLoadAndSearch(t *testing.T) {
	p, err := Load("fixtures", writeFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "fixtures", p.Name())

	jobs, err := p.Search(context.Background(), "go", domain.JobSearchFilters{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a1", jobs[0].ExternalID)
	assert.Equal(t, "fixtures", jobs[0].Source)
	require.NotNil(t, jobs[0].Salary)
	assert.Equal(t, "EUR", jobs[0].Salary.Currency)
	assert.Equal(t, "a3", jobs[1].ExternalID)

	again, err := p.Search(context.Background(), "go", domain.JobSearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, jobs, again)
}

func TestSearchFilters(t *testing.T) {
	p, err := Load("fixtures", writeFixture(t))
	require.NoError(t, err)

	remote := true
	jobs, err := p.Search(context.Background(), "", domain.JobSearchFilters{Remote: &remote})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "a3", jobs[0].ExternalID)

	jobs, err = p.Search(context.Background(), "engineer", domain.JobSearchFilters{Location: "munich"})
	require.NoError(t, err)
	require.Len(t, jobs, 2, "remote postings match any location")

	jobs, err = p.Search(context.Background(), "", domain.JobSearchFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSearchDelayHonoursContext(t *testing.T) {
	p := New("slow", nil, WithDelay(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Search(ctx, "go", domain.JobSearchFilters{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("missing", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = Load("bad", path)
	assert.Error(t, err)
}
