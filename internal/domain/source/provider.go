package source

import (
	"context"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// Provider represents an external job data source (Adzuna, RemoteOK, a fixture file, etc.)
type Provider interface {
	// e.g. "adzuna" or "remoteok"
	Name() string

	// Search returns normalized jobs for a query. Implementations must honor
	// ctx cancellation; the engine abandons adapters that do not.
	Search(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error)
}

// ProviderFunc adapts a plain function to Provider
type ProviderFunc struct {
	ID string
	Fn func(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error)
}

func (p ProviderFunc) Name() string {
	return p.ID
}

func (p ProviderFunc) Search(ctx context.Context, query string, filters domain.JobSearchFilters) ([]domain.Job, error) {
	return p.Fn(ctx, query, filters)
}
