package job

import (
	"context"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// Repository persists and loads jobs from storage
type Repository interface {
	// SaveJob stores one canonical job keyed by its fingerprint and returns
	// the stored id. Saving a fingerprint that already exists returns the
	// existing id.
	SaveJob(ctx context.Context, job domain.CanonicalJob) (domain.JobID, error)

	// FindByIDs loads full Job records for the given IDs
	FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error)
}

// SessionSink is notified once per finished session
type SessionSink interface {
	SessionFinished(ctx context.Context, s domain.Session) error
}
