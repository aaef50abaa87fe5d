// Package remoteok is a client for the public RemoteOK JSON feed.
package remoteok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://remoteok.com"
	defaultUserAgent = "job-hunter/1.0 (+https://github.com/honeycarbs/job-hunter)"
)

// Config defines RemoteOK client settings
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Client reads the RemoteOK job feed
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Job is one feed entry
type Job struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Tags        []string  `json:"tags"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ApplyURL    string    `json:"apply_url"`
	SalaryMin   float64   `json:"salary_min"`
	SalaryMax   float64   `json:"salary_max"`
	Date        time.Time `json:"date"`
}

// NewClient builds a RemoteOK client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  ua,
		httpClient: httpClient,
	}
}

// Jobs fetches the feed, optionally narrowed to one tag
func (c *Client) Jobs(ctx context.Context, tag string) ([]Job, error) {
	u := c.baseURL + "/api"
	if tag != "" {
		u += "?" + url.Values{"tag": {tag}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok: build request: %w", err)
	}
	// the feed rejects requests without a descriptive agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("remoteok: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("remoteok: decode response: %w", err)
	}

	jobs := make([]Job, 0, len(raw))
	for _, item := range raw {
		var e entry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		// the first element is a legal notice without a position
		if e.Position == "" {
			continue
		}
		jobs = append(jobs, e.job())
	}
	return jobs, nil
}

type entry struct {
	ID          flexString `json:"id"`
	Slug        string     `json:"slug"`
	Epoch       flexString `json:"epoch"`
	Date        string     `json:"date"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Tags        []string   `json:"tags"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	ApplyURL    string     `json:"apply_url"`
	SalaryMin   flexFloat  `json:"salary_min"`
	SalaryMax   flexFloat  `json:"salary_max"`
}

func (e entry) job() Job {
	j := Job{
		ID:          string(e.ID),
		Slug:        e.Slug,
		Company:     strings.TrimSpace(e.Company),
		Position:    strings.TrimSpace(e.Position),
		Tags:        e.Tags,
		Location:    strings.TrimSpace(e.Location),
		Description: e.Description,
		URL:         e.URL,
		ApplyURL:    e.ApplyURL,
		SalaryMin:   float64(e.SalaryMin),
		SalaryMax:   float64(e.SalaryMax),
	}
	if ts, err := time.Parse(time.RFC3339, e.Date); err == nil {
		j.Date = ts
	} else if sec, err := strconv.ParseInt(string(e.Epoch), 10, 64); err == nil && sec > 0 {
		j.Date = time.Unix(sec, 0).UTC()
	}
	return j
}

// flexString accepts both JSON strings and numbers
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	*s = flexString(b)
	return nil
}

// flexFloat accepts numbers, numeric strings and empty strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return nil
	}
	*f = flexFloat(v)
	return nil
}
