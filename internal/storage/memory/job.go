// Package memory is a process-local job store used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// JobRepository keeps jobs in maps keyed by id and fingerprint
type JobRepository struct {
	mu            sync.RWMutex
	byID          map[domain.JobID]domain.CanonicalJob
	byFingerprint map[string]domain.JobID
}

// NewJobRepository returns an empty repository
func NewJobRepository() *JobRepository {
	return &JobRepository{
		byID:          make(map[domain.JobID]domain.CanonicalJob),
		byFingerprint: make(map[string]domain.JobID),
	}
}

// SaveJob stores job unless its fingerprint is already known
func (r *JobRepository) SaveJob(ctx context.Context, job domain.CanonicalJob) (domain.JobID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byFingerprint[job.Fingerprint]; ok {
		return id, nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	r.byID[job.ID] = job
	r.byFingerprint[job.Fingerprint] = job.ID
	return job.ID, nil
}

// FindByIDs loads jobs by ID, skipping unknown ids
func (r *JobRepository) FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := r.byID[id]; ok {
			out = append(out, j.Job)
		}
	}
	return out, nil
}

// Len returns the number of stored jobs
func (r *JobRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
