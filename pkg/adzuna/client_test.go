package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
  "count": 2,
  "results": [
    {
      "id": "4711",
      "title": " Senior Go Engineer ",
      "description": "Build services",
      "created": "2025-10-01T09:30:00Z",
      "redirect_url": "https://adzuna.example/4711",
      "company": {"display_name": "Acme"},
      "location": {"display_name": "Berlin, Germany"},
      "category": {"tag": "it-jobs", "label": "IT Jobs"},
      "salary_min": 70000,
      "salary_max": 90000
    },
    {
      "id": "4712",
      "title": "Site Engineer",
      "created": "not a date",
      "company": {"display_name": "BuildCo"},
      "location": {"display_name": "Remote"}
    }
  ]
}`

func TestSearchJobs(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c, err := NewClient(Config{AppID: "id", AppKey: "key", Country: "DE", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	remote := true
	jobs, err := c.SearchJobs(context.Background(), "golang", SearchParams{
		Remote:     &remote,
		Category:   "it-jobs",
		SalaryMin:  60000,
		MaxDaysOld: 7,
		Limit:      500,
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/v1/api/jobs/de/search/1", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "golang", q.Get("what"))
	assert.Equal(t, "Remote", q.Get("where"))
	assert.Equal(t, "it-jobs", q.Get("category"))
	assert.Equal(t, "60000", q.Get("salary_min"))
	assert.Equal(t, "7", q.Get("max_days_old"))
	assert.Equal(t, "50", q.Get("results_per_page"))

	require.Len(t, jobs, 2)
	first := jobs[0]
	assert.Equal(t, "Senior Go Engineer", first.Title)
	assert.Equal(t, "Acme", first.CompanyName)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, 90000.0, first.SalaryMax)
	assert.Equal(t, 2025, first.PostedAt.Year())
	assert.False(t, first.Remote)

	assert.True(t, jobs[1].PostedAt.IsZero())
	assert.True(t, jobs[1].Remote)
}

func TestSearchJobsPagesUpToLimit(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("results_per_page"))

		var resp searchResponse
		resp.Count = 500
		for i := 0; i < 50; i++ {
			resp.Results = append(resp.Results, posting{ID: fmt.Sprintf("%d-%d", len(pages), i), Title: "Go Engineer"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(Config{AppID: "id", AppKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	jobs, err := c.SearchJobs(context.Background(), "golang", SearchParams{Limit: 120})
	require.NoError(t, err)

	assert.Equal(t, []string{"/v1/api/jobs/us/search/1", "/v1/api/jobs/us/search/2", "/v1/api/jobs/us/search/3"}, pages)
	assert.Len(t, jobs, 120)
	assert.Equal(t, "3-19", jobs[119].ID)
}

func TestSearchJobsStopsAtLastPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c, err := NewClient(Config{AppID: "id", AppKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	jobs, err := c.SearchJobs(context.Background(), "golang", SearchParams{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a short page is the last one")
	assert.Len(t, jobs, 2)
}

func TestSearchJobsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid app_key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(Config{AppID: "id", AppKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.SearchJobs(context.Background(), "golang", SearchParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid app_key")
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{AppID: "id"})
	assert.Error(t, err)

	c, err := NewClient(Config{AppID: "id", AppKey: "key"})
	require.NoError(t, err)
	_, err = c.SearchJobs(context.Background(), " ", SearchParams{})
	assert.Error(t, err)
}
