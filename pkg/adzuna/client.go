package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.adzuna.com"
	defaultCountry  = "us"
	defaultPageSize = 20
	maxPageSize     = 50
	maxPages        = 10
)

var currencies = map[string]string{
	"us": "USD",
	"gb": "GBP",
	"de": "EUR",
	"fr": "EUR",
	"nl": "EUR",
	"pl": "PLN",
	"ca": "CAD",
	"au": "AUD",
}

// NewClient instantiates an Adzuna API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("adzuna: app_id and app_key are required")
	}

	country := strings.ToLower(cfg.Country)
	if country == "" {
		country = defaultCountry
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		country:    country,
		currency:   currencies[country],
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// SearchJobs pages through results for query until params.Limit jobs are
// collected (the configured page size when Limit is zero) or the results run
// out.
func (c *Client) SearchJobs(ctx context.Context, query string, params SearchParams) ([]Job, error) {
	if c == nil {
		return nil, fmt.Errorf("adzuna: client is nil")
	}

	limit := c.pageSize
	if params.Limit > 0 {
		limit = params.Limit
	}
	perPage := limit
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	var jobs []Job
	for page := 1; page <= maxPages && len(jobs) < limit; page++ {
		payload, err := c.fetchPage(ctx, query, params, page, perPage)
		if err != nil {
			return nil, err
		}
		for _, p := range payload.Results {
			jobs = append(jobs, c.toJob(p))
		}
		if len(payload.Results) < perPage || len(jobs) >= payload.Count {
			break
		}
	}

	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, params SearchParams, page, perPage int) (searchResponse, error) {
	u, err := c.searchURL(query, params, page, perPage)
	if err != nil {
		return searchResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return searchResponse{}, fmt.Errorf("adzuna: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("adzuna: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return searchResponse{}, fmt.Errorf("adzuna: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return searchResponse{}, fmt.Errorf("adzuna: decode page %d: %w", page, err)
	}
	return payload, nil
}

func (c *Client) searchURL(query string, params SearchParams, page, perPage int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("adzuna: query is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("adzuna: parse base url: %w", err)
	}
	u.Path = path.Join(u.Path, "v1", "api", "jobs", c.country, "search", strconv.Itoa(page))

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("what", query)
	q.Set("results_per_page", strconv.Itoa(perPage))
	q.Set("content-type", "application/json")

	where := params.Location
	if params.Remote != nil && *params.Remote {
		// Adzuna has no remote flag; "remote" as a keyword is the closest match
		q.Set("what_or", "remote")
		if where == "" {
			where = "Remote"
		}
	}
	if where != "" {
		q.Set("where", where)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.SalaryMin > 0 {
		q.Set("salary_min", strconv.FormatFloat(params.SalaryMin, 'f', 0, 64))
	}
	if params.MaxDaysOld > 0 {
		q.Set("max_days_old", strconv.Itoa(params.MaxDaysOld))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) toJob(p posting) Job {
	j := Job{
		ID:          p.ID,
		Title:       strings.TrimSpace(p.Title),
		CompanyName: strings.TrimSpace(p.Company.DisplayName),
		Location:    p.Location.DisplayName,
		URL:         p.RedirectURL,
		Description: p.Description,
		Category:    p.Category.Tag,
		SalaryMin:   p.SalaryMin,
		SalaryMax:   p.SalaryMax,
		Currency:    c.currency,
	}
	if ts, err := time.Parse(time.RFC3339, p.Created); err == nil {
		j.PostedAt = ts
	}
	loc := strings.ToLower(p.Location.DisplayName)
	j.Remote = strings.EqualFold(p.Contract, "remote") || strings.Contains(loc, "remote")
	return j
}
