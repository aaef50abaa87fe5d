package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/job-hunter/internal/domain"
	jobdomain "github.com/honeycarbs/job-hunter/internal/domain/job"

	pkgneo4j "github.com/honeycarbs/job-hunter/pkg/neo4j"
)

var _ jobdomain.Repository = (*JobRepository)(nil)

// JobRepository stores canonical jobs as a graph: (Job)-[:OFFERED_BY]->(Company)
// and (Job)-[:FOUND_ON]->(Source). Jobs are keyed by fingerprint.
type JobRepository struct {
	client *pkgneo4j.Client
}

// NewJobRepository creates a JobRepository with a Neo4j client
func NewJobRepository(client *pkgneo4j.Client) *JobRepository {
	return &JobRepository{
		client: client,
	}
}

const saveJobQuery = `
	MERGE (j:Job {fingerprint: $fingerprint})
	ON CREATE SET j.id = $id, j.firstSeenAt = datetime({epochMillis: $fetchedAt})
	SET j.title = $title,
	    j.location = $location,
	    j.remote = $remote,
	    j.url = $url,
	    j.externalId = $externalId,
	    j.description = $description,
	    j.postedAt = $postedAt,
	    j.salaryMin = $salaryMin,
	    j.salaryMax = $salaryMax,
	    j.currency = $currency,
	    j.sessionId = $sessionId,
	    j.fetchedAt = datetime({epochMillis: $fetchedAt})
	WITH j
	MERGE (s:Source {name: $source})
	MERGE (j)-[:FOUND_ON]->(s)
	WITH j
	FOREACH (ignored IN CASE WHEN $company = '' THEN [] ELSE [1] END |
		MERGE (c:Company {name: $company})
		MERGE (j)-[:OFFERED_BY]->(c)
	)
	RETURN j.id AS id
`

// SaveJob merges job by fingerprint and returns the stored id, which is
// the id of the first save.
func (r *JobRepository) SaveJob(ctx context.Context, job domain.CanonicalJob) (domain.JobID, error) {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	id := job.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	res, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, saveJobQuery, saveParams(id, job))
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		stored, _ := record.Get("id")
		return stored, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("neo4j: save job %s: %w", job.Fingerprint, err)
	}

	s, ok := res.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("neo4j: save job %s: unexpected id %v", job.Fingerprint, res)
	}
	return uuid.Parse(s)
}

func saveParams(id domain.JobID, job domain.CanonicalJob) map[string]any {
	var postedAt any
	if !job.PostedAt.IsZero() {
		postedAt = job.PostedAt.UTC()
	}
	fetchedAt := job.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	params := map[string]any{
		"id":          id.String(),
		"fingerprint": job.Fingerprint,
		"title":       job.Title,
		"company":     job.Company.Name,
		"location":    job.Location,
		"remote":      job.Remote,
		"url":         job.URL,
		"source":      job.Source,
		"externalId":  job.ExternalID,
		"description": job.Description,
		"postedAt":    postedAt,
		"salaryMin":   nil,
		"salaryMax":   nil,
		"currency":    nil,
		"sessionId":   job.SessionID.String(),
		"fetchedAt":   fetchedAt.UnixMilli(),
	}
	if job.Salary != nil {
		params["salaryMin"] = job.Salary.Min
		params["salaryMax"] = job.Salary.Max
		params["currency"] = job.Salary.Currency
	}
	return params
}

// FindByIDs loads jobs by ID, skipping unknown ids
func (r *JobRepository) FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	query := `
		MATCH (j:Job)-[:FOUND_ON]->(s:Source)
		WHERE j.id IN $ids
		OPTIONAL MATCH (j)-[:OFFERED_BY]->(c:Company)
		RETURN j, s.name AS source, c.name AS company
	`

	res, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"ids": idStrings})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find jobs: %w", err)
	}

	records, _ := res.([]*neo4j.Record)
	jobs := make([]domain.Job, 0, len(records))
	for _, record := range records {
		job, ok := jobFromRecord(record)
		if ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func jobFromRecord(record *neo4j.Record) (domain.Job, bool) {
	val, ok := record.Get("j")
	if !ok {
		return domain.Job{}, false
	}
	node, ok := val.(neo4j.Node)
	if !ok {
		return domain.Job{}, false
	}
	props := node.Props

	id, err := uuid.Parse(str(props["id"]))
	if err != nil {
		return domain.Job{}, false
	}

	sourceName, _ := record.Get("source")
	companyName, _ := record.Get("company")

	job := domain.Job{
		ID:          id,
		Title:       str(props["title"]),
		Company:     domain.CompanyRef{Name: str(companyName)},
		Location:    str(props["location"]),
		URL:         str(props["url"]),
		Source:      str(sourceName),
		ExternalID:  str(props["externalId"]),
		Description: str(props["description"]),
		PostedAt:    timeOf(props["postedAt"]),
		FetchedAt:   timeOf(props["fetchedAt"]),
	}
	job.Remote, _ = props["remote"].(bool)

	if maxVal, ok := props["salaryMax"].(float64); ok {
		minVal, _ := props["salaryMin"].(float64)
		job.Salary = &domain.SalaryRange{Min: minVal, Max: maxVal, Currency: str(props["currency"])}
	}
	return job, true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func timeOf(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case neo4j.LocalDateTime:
		return t.Time()
	default:
		return time.Time{}
	}
}
