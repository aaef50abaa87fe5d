package neo4j

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
	pkgneo4j "github.com/honeycarbs/job-hunter/pkg/neo4j"
)

func TestSessionParamsAndRecordRoundTrip(t *testing.T) {
	started := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	s := domain.Session{
		ID:        uuid.New(),
		Request:   domain.SearchRequest{Keywords: "golang"},
		Sources:   []string{"adzuna", "remoteok"},
		StartedAt: started,
		EndedAt:   started.Add(3 * time.Second),
		Status:    domain.SessionCompleted,
		Counts:    domain.SessionCounts{Found: 6, Unique: 5, Duplicates: 1, Saved: 5},
		Errors:    []string{"remoteok: HTTP 503"},
	}

	params := sessionParams(s)
	assert.Equal(t, started.UnixMilli(), params["startedAt"])
	assert.Equal(t, int64(5), params["unique"])
	assert.Equal(t, []any{"adzuna", "remoteok"}, params["sources"])

	rec := &neo4j.Record{
		Keys: []string{"id", "keywords", "status", "startedAt", "endedAt", "found", "unique", "duplicates", "saved", "errors", "sources"},
		Values: []any{
			params["id"], "golang", "completed", started, started.Add(3 * time.Second),
			int64(6), int64(5), int64(1), int64(5), []any{"remoteok: HTTP 503"}, []any{"adzuna", "remoteok"},
		},
	}
	got, ok := sessionFromRecord(rec)
	require.True(t, ok)
	assert.Equal(t, s, got)
}

func TestSessionParamsRunning(t *testing.T) {
	params := sessionParams(domain.Session{ID: uuid.New(), Status: domain.SessionRunning})
	assert.Equal(t, int64(0), params["endedAt"])
	assert.Equal(t, []any{}, params["sources"])
}

func TestSessionFromRecordRejectsBadID(t *testing.T) {
	_, ok := sessionFromRecord(&neo4j.Record{Keys: []string{"id"}, Values: []any{"nope"}})
	assert.False(t, ok)
}

func TestStoresIntegration(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx := context.Background()
	client, err := pkgneo4j.NewClient(ctx, pkgneo4j.Config{
		URI:      uri,
		Username: os.Getenv("NEO4J_USERNAME"),
		Password: os.Getenv("NEO4J_PASSWORD"),
	})
	require.NoError(t, err)
	defer func() { _ = client.Close(ctx) }()
	require.NoError(t, EnsureSchema(ctx, client))

	repo := NewJobRepository(client)
	job := domain.CanonicalJob{
		Job: domain.Job{
			Title:     "Go Developer",
			Company:   domain.CompanyRef{Name: "Acme"},
			Source:    "integration",
			FetchedAt: time.Now(),
		},
		Fingerprint: "integration-" + uuid.NewString(),
		SessionID:   uuid.New(),
	}
	first, err := repo.SaveJob(ctx, job)
	require.NoError(t, err)
	second, err := repo.SaveJob(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same fingerprint keeps the first id")

	found, err := repo.FindByIDs(ctx, []domain.JobID{first})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Acme", found[0].Company.Name)

	store := NewSessionStore(client)
	sess := domain.Session{ID: job.SessionID, Sources: []string{"integration"}, StartedAt: time.Now(), Status: domain.SessionCompleted}
	require.NoError(t, store.SessionFinished(ctx, sess))
	recent, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}
