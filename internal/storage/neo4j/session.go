package neo4j

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/job-hunter/internal/domain"
	jobdomain "github.com/honeycarbs/job-hunter/internal/domain/job"
	pkgneo4j "github.com/honeycarbs/job-hunter/pkg/neo4j"
)

var _ jobdomain.SessionSink = (*SessionStore)(nil)

// SessionStore records finished sessions as (Session)-[:QUERIED]->(Source)
// next to the job graph, so a session's sources and the jobs they produced
// can be joined on Job.sessionId.
type SessionStore struct {
	client *pkgneo4j.Client
}

// NewSessionStore creates a SessionStore with a Neo4j client
func NewSessionStore(client *pkgneo4j.Client) *SessionStore {
	return &SessionStore{client: client}
}

const saveSessionQuery = `
	MERGE (s:Session {id: $id})
	SET s.keywords = $keywords,
	    s.status = $status,
	    s.startedAt = datetime({epochMillis: $startedAt}),
	    s.endedAt = CASE WHEN $endedAt = 0 THEN null ELSE datetime({epochMillis: $endedAt}) END,
	    s.found = $found,
	    s.unique = $unique,
	    s.duplicates = $duplicates,
	    s.saved = $saved,
	    s.errors = $errors
	WITH s
	UNWIND $sources AS name
	MERGE (src:Source {name: name})
	MERGE (s)-[:QUERIED]->(src)
`

// SessionFinished merges the session node and its source edges
func (r *SessionStore) SessionFinished(ctx context.Context, sess domain.Session) error {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, saveSessionQuery, sessionParams(sess))
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: save session %s: %w", sess.ID, err)
	}
	return nil
}

func sessionParams(s domain.Session) map[string]any {
	var endedAt int64
	if !s.EndedAt.IsZero() {
		endedAt = s.EndedAt.UnixMilli()
	}
	sources := make([]any, 0, len(s.Sources))
	for _, name := range s.Sources {
		sources = append(sources, name)
	}
	errs := make([]any, 0, len(s.Errors))
	for _, e := range s.Errors {
		errs = append(errs, e)
	}

	return map[string]any{
		"id":         s.ID.String(),
		"keywords":   s.Request.Keywords,
		"status":     string(s.Status),
		"startedAt":  s.StartedAt.UnixMilli(),
		"endedAt":    endedAt,
		"found":      int64(s.Counts.Found),
		"unique":     int64(s.Counts.Unique),
		"duplicates": int64(s.Counts.Duplicates),
		"saved":      int64(s.Counts.Saved),
		"errors":     errs,
		"sources":    sources,
	}
}

const recentSessionsQuery = `
	MATCH (s:Session)
	OPTIONAL MATCH (s)-[:QUERIED]->(src:Source)
	WITH s, collect(src.name) AS sources
	RETURN s.id AS id, s.keywords AS keywords, s.status AS status,
	       s.startedAt AS startedAt, s.endedAt AS endedAt,
	       s.found AS found, s.unique AS unique, s.duplicates AS duplicates, s.saved AS saved,
	       s.errors AS errors, sources
	ORDER BY s.startedAt DESC
	LIMIT $limit
`

// Recent returns up to limit sessions, newest first
func (r *SessionStore) Recent(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	res, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, recentSessionsQuery, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: recent sessions: %w", err)
	}

	records, _ := res.([]*neo4j.Record)
	out := make([]domain.Session, 0, len(records))
	for _, rec := range records {
		if s, ok := sessionFromRecord(rec); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func sessionFromRecord(rec *neo4j.Record) (domain.Session, bool) {
	m := rec.AsMap()
	id, err := uuid.Parse(str(m["id"]))
	if err != nil {
		return domain.Session{}, false
	}

	return domain.Session{
		ID:        id,
		Request:   domain.SearchRequest{Keywords: str(m["keywords"])},
		Sources:   stringList(m["sources"]),
		StartedAt: timeOf(m["startedAt"]),
		EndedAt:   timeOf(m["endedAt"]),
		Status:    domain.SessionStatus(str(m["status"])),
		Counts: domain.SessionCounts{
			Found:      intOf(m["found"]),
			Unique:     intOf(m["unique"]),
			Duplicates: intOf(m["duplicates"]),
			Saved:      intOf(m["saved"]),
		},
		Errors: stringList(m["errors"]),
	}, true
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intOf(v any) int {
	n, _ := v.(int64)
	return int(n)
}
