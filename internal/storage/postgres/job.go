package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/job-hunter/internal/domain"
	jobdomain "github.com/honeycarbs/job-hunter/internal/domain/job"
)

var _ jobdomain.Repository = (*JobRepository)(nil)

// JobRepository keeps one row per fingerprint
type JobRepository struct {
	db DB
}

// NewJobRepository wraps db
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// A re-seen fingerprint refreshes the mutable columns but keeps its id, so
// ids handed out earlier stay valid.
const upsertJob = `
	INSERT INTO jobs (
		id, fingerprint, session_id, source, external_id, title, company,
		location, remote, url, description, salary_min, salary_max, currency,
		posted_at, fetched_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (fingerprint) DO UPDATE SET
		session_id   = EXCLUDED.session_id,
		url          = EXCLUDED.url,
		description  = EXCLUDED.description,
		salary_min   = COALESCE(EXCLUDED.salary_min, jobs.salary_min),
		salary_max   = COALESCE(EXCLUDED.salary_max, jobs.salary_max),
		currency     = COALESCE(EXCLUDED.currency, jobs.currency),
		last_seen_at = now()
	RETURNING id`

// SaveJob upserts job by fingerprint and returns the stored id
func (r *JobRepository) SaveJob(ctx context.Context, job domain.CanonicalJob) (domain.JobID, error) {
	id := job.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	fetchedAt := job.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	var salaryMin, salaryMax *float64
	var currency *string
	if job.Salary != nil {
		salaryMin, salaryMax, currency = &job.Salary.Min, &job.Salary.Max, &job.Salary.Currency
	}
	var postedAt *time.Time
	if !job.PostedAt.IsZero() {
		postedAt = &job.PostedAt
	}

	var stored uuid.UUID
	err := r.db.QueryRow(ctx, upsertJob,
		id, job.Fingerprint, job.SessionID, job.Source, job.ExternalID, job.Title,
		job.Company.Name, job.Location, job.Remote, job.URL, job.Description,
		salaryMin, salaryMax, currency, postedAt, fetchedAt,
	).Scan(&stored)
	if err != nil {
		return uuid.Nil, fmt.Errorf("postgres: save job %s: %w", job.Fingerprint, err)
	}
	return stored, nil
}

const selectJobs = `
	SELECT id, source, external_id, title, company, location, remote, url,
	       description, salary_min, salary_max, currency, posted_at, fetched_at
	FROM jobs
	WHERE id = ANY($1)
	ORDER BY fetched_at`

// FindByIDs loads jobs by ID, skipping unknown ids
func (r *JobRepository) FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, selectJobs, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: find jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var (
			j                    domain.Job
			salaryMin, salaryMax *float64
			currency             *string
			postedAt             *time.Time
		)
		if err := rows.Scan(
			&j.ID, &j.Source, &j.ExternalID, &j.Title, &j.Company.Name, &j.Location,
			&j.Remote, &j.URL, &j.Description, &salaryMin, &salaryMax, &currency,
			&postedAt, &j.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan job: %w", err)
		}
		if salaryMax != nil {
			j.Salary = &domain.SalaryRange{Max: *salaryMax}
			if salaryMin != nil {
				j.Salary.Min = *salaryMin
			}
			if currency != nil {
				j.Salary.Currency = *currency
			}
		}
		if postedAt != nil {
			j.PostedAt = *postedAt
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate jobs: %w", err)
	}
	return jobs, nil
}
