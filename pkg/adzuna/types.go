package adzuna

import (
	"net/http"
	"time"
)

// Config defines Adzuna API client settings
type Config struct {
	AppID      string
	AppKey     string
	Country    string
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
}

// Client queries the Adzuna job search API
type Client struct {
	appID      string
	appKey     string
	country    string
	currency   string
	baseURL    string
	httpClient *http.Client
	pageSize   int
}

// SearchParams narrow a search. Zero values are omitted from the query.
type SearchParams struct {
	Location string
	Remote   *bool
	// Category is an Adzuna category tag such as "it-jobs"
	Category   string
	SalaryMin  float64
	MaxDaysOld int
	// Limit overrides the configured page size when positive
	Limit int
}

type searchResponse struct {
	Count   int       `json:"count"`
	Results []posting `json:"results"`
}

type posting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Created     string `json:"created"`
	RedirectURL string `json:"redirect_url"`
	Contract    string `json:"contract_time"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Tag   string `json:"tag"`
		Label string `json:"label"`
	} `json:"category"`
	SalaryMin float64 `json:"salary_min"`
	SalaryMax float64 `json:"salary_max"`
}

// Job is one Adzuna posting flattened for callers
type Job struct {
	ID          string
	Title       string
	CompanyName string
	Location    string
	URL         string
	Description string
	Category    string
	Remote      bool
	PostedAt    time.Time
	SalaryMin   float64
	SalaryMax   float64
	Currency    string
}
