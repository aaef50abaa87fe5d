package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

func TestSaveJobIsIdempotentPerFingerprint(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository()

	first := domain.CanonicalJob{Job: domain.Job{Title: "Go Dev"}, Fingerprint: "fp1"}
	id1, err := repo.SaveJob(ctx, first)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id1)

	again := domain.CanonicalJob{Job: domain.Job{ID: uuid.New(), Title: "Go Dev"}, Fingerprint: "fp1"}
	id2, err := repo.SaveJob(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, repo.Len())

	jobs, err := repo.FindByIDs(ctx, []domain.JobID{id1, uuid.New()})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Dev", jobs[0].Title)
}

func TestSaveJobHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJobRepository().SaveJob(ctx, domain.CanonicalJob{Fingerprint: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
