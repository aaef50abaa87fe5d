package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

// Searcher runs a search session
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.JobSearchResult, error)
}

// JobSearchParams defines the arguments for the job_search tool
type JobSearchParams struct {
	Keywords   string   `json:"keywords" jsonschema:"Search keywords, e.g. golang backend"`
	Categories []string `json:"categories,omitempty" jsonschema:"Job categories: it, civil, freelance, marketing, other"`
	Locations  []string `json:"locations,omitempty" jsonschema:"Preferred locations, first one is sent to sources"`
	RemoteOnly bool     `json:"remote_only,omitempty" jsonschema:"Restrict to remote postings"`
	MinSalary  *float64 `json:"min_salary,omitempty" jsonschema:"Minimum advertised salary"`
	DatePosted string   `json:"date_posted,omitempty" jsonschema:"Recency filter: today, week or month"`
	Sources    []string `json:"sources,omitempty" jsonschema:"Exact sources to query, bypasses source selection"`
}

// Request converts the params to a SearchRequest
func (p JobSearchParams) Request() (domain.SearchRequest, error) {
	req := domain.SearchRequest{
		Keywords:   strings.TrimSpace(p.Keywords),
		Locations:  p.Locations,
		RemoteOnly: p.RemoteOnly,
		MinSalary:  p.MinSalary,
		Sources:    p.Sources,
	}
	if req.Keywords == "" {
		return req, fmt.Errorf("keywords are required")
	}
	for _, c := range p.Categories {
		req.Categories = append(req.Categories, domain.ParseCategory(c))
	}

	switch dp := domain.DatePosted(strings.ToLower(strings.TrimSpace(p.DatePosted))); dp {
	case domain.PostedAnytime, domain.PostedToday, domain.PostedThisWeek, domain.PostedThisMonth:
		req.DatePosted = dp
	default:
		return req, fmt.Errorf("unknown date_posted %q", p.DatePosted)
	}
	return req, nil
}

// JobSearchResult is the structured response of job_search
type JobSearchResult struct {
	Session SessionView         `json:"session"`
	Jobs    []domain.JobSummary `json:"jobs"`
	// Cancelled is set when the session ended before any source succeeded
	Cancelled bool `json:"cancelled,omitempty"`
}

type jobSearchTool struct {
	searcher Searcher
	logger   *logging.Logger
}

// WithJobSearch registers the job_search tool
func WithJobSearch(searcher Searcher) Option {
	return func(reg *registry) {
		handler := jobSearchTool{searcher: searcher, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_search",
			Description: "Search the registered job sources in parallel, deduplicate and store the postings",
		}, handler.handle)
		reg.add("job_search")
	}
}

func (t jobSearchTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params JobSearchParams) (*sdkmcp.CallToolResult, any, error) {
	req, err := params.Request()
	if err != nil {
		return nil, nil, err
	}

	t.logger.Debug("job_search called", "keywords", req.Keywords, "sources", req.Sources)

	res, err := t.searcher.Search(ctx, req)
	cancelled := errors.Is(err, domain.ErrSessionCancelled)
	if err != nil && !cancelled {
		return nil, nil, fmt.Errorf("job_search: %w", err)
	}

	out := JobSearchResult{
		Session:   viewOf(res.Session),
		Jobs:      res.Jobs,
		Cancelled: cancelled,
	}
	if out.Jobs == nil {
		out.Jobs = []domain.JobSummary{}
	}
	return jsonResult(out), out, nil
}
