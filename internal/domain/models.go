package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobID uniquely identifies a job
type JobID = uuid.UUID

// SessionID uniquely identifies a search session
type SessionID = uuid.UUID

// CompanyRef references a company
type CompanyRef struct {
	ID   string
	Name string
}

// SalaryRange is an advertised compensation band
type SalaryRange struct {
	Min      float64
	Max      float64
	Currency string
}

// Job is a posting as returned by a single source
type Job struct {
	ID          JobID
	Title       string
	Company     CompanyRef
	Location    string
	Remote      bool
	URL         string
	Source      string
	ExternalID  string
	PostedAt    time.Time
	Description string
	Salary      *SalaryRange
	FetchedAt   time.Time
}

// CanonicalJob is a deduplicated job owned by one search session
type CanonicalJob struct {
	Job
	Fingerprint string
	SessionID   SessionID
}

// Category groups postings by field of work
type Category string

const (
	CategoryIT        Category = "it"
	CategoryCivil     Category = "civil"
	CategoryFreelance Category = "freelance"
	CategoryMarketing Category = "marketing"
	CategoryOther     Category = "other"
)

// ParseCategory normalizes a category label, unknown labels map to CategoryOther
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryIT, CategoryCivil, CategoryFreelance, CategoryMarketing:
		return c
	default:
		return CategoryOther
	}
}

// DatePosted is a recency filter
type DatePosted string

const (
	PostedAnytime   DatePosted = ""
	PostedToday     DatePosted = "today"
	PostedThisWeek  DatePosted = "week"
	PostedThisMonth DatePosted = "month"
)

// MaxAge converts the filter to a duration, zero means unbounded
func (d DatePosted) MaxAge() time.Duration {
	switch d {
	case PostedToday:
		return 24 * time.Hour
	case PostedThisWeek:
		return 7 * 24 * time.Hour
	case PostedThisMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// SearchRequest is an immutable description of what the caller is looking for.
// Sources, when set, names the exact sources to query and bypasses selection.
type SearchRequest struct {
	Keywords   string
	Categories []Category
	Locations  []string
	RemoteOnly bool
	MinSalary  *float64
	DatePosted DatePosted
	Sources    []string
}

// HasCategory reports whether the request asks for c
func (r SearchRequest) HasCategory(c Category) bool {
	for _, rc := range r.Categories {
		if rc == c {
			return true
		}
	}
	return false
}

// Unconstrained reports whether the request carries no selection hints
func (r SearchRequest) Unconstrained() bool {
	return len(r.Categories) == 0 && len(r.Locations) == 0 && !r.RemoteOnly
}

// Clone returns a deep copy so callers cannot mutate a stored request
func (r SearchRequest) Clone() SearchRequest {
	out := r
	out.Categories = append([]Category(nil), r.Categories...)
	out.Locations = append([]string(nil), r.Locations...)
	out.Sources = append([]string(nil), r.Sources...)
	if r.MinSalary != nil {
		v := *r.MinSalary
		out.MinSalary = &v
	}
	return out
}

// JobSearchFilters describe the per-source query derived from a SearchRequest
type JobSearchFilters struct {
	Location   string
	Remote     *bool
	Categories []Category
	MinSalary  *float64
	DatePosted DatePosted
	Limit      int
}

// SessionStatus is the lifecycle state of a search session
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionCancelled
}

// SessionCounts aggregates a session's result volume.
// For terminal sessions Unique + Duplicates == Found.
type SessionCounts struct {
	Found      int `json:"found"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
	Saved      int `json:"saved"`
}

// Session records one execution of a SearchRequest
type Session struct {
	ID        SessionID
	Request   SearchRequest
	Sources   []string
	StartedAt time.Time
	EndedAt   time.Time
	Status    SessionStatus
	Counts    SessionCounts
	Errors    []string
}

// Duration is the wall time of a finished session, zero while running
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// JobSummary is the response-friendly job view
type JobSummary struct {
	ID          JobID   `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Remote      bool    `json:"remote"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	SalaryMin   float64 `json:"salary_min,omitempty"`
	SalaryMax   float64 `json:"salary_max,omitempty"`
	Fingerprint string  `json:"fingerprint"`
}

// SummaryOf builds the response view of a canonical job
func SummaryOf(j CanonicalJob) JobSummary {
	s := JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company.Name,
		Location:    j.Location,
		Remote:      j.Remote,
		URL:         j.URL,
		Source:      j.Source,
		Fingerprint: j.Fingerprint,
	}
	if j.Salary != nil {
		s.SalaryMin = j.Salary.Min
		s.SalaryMax = j.Salary.Max
	}
	return s
}

// JobSearchResult wraps a finished session and its unique jobs
type JobSearchResult struct {
	Session Session
	Jobs    []JobSummary
}
