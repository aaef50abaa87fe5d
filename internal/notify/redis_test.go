package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

type published struct {
	channel string
	payload []byte
}

type fakeRedis struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.mu.Lock()
	f.msgs = append(f.msgs, published{channel: channel, payload: message.([]byte)})
	f.mu.Unlock()
	cmd.SetVal(1)
	return cmd
}

func decode(t *testing.T, b []byte) Event {
	t.Helper()
	var ev Event
	require.NoError(t, json.Unmarshal(b, &ev))
	return ev
}

func TestSessionFinishedPublishesSession(t *testing.T) {
	rdb := &fakeRedis{}
	p := newPublisher(rdb, "", nil)
	defer p.Close()
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	p.clock = func() time.Time { return now }

	s := domain.Session{
		ID:        uuid.New(),
		Request:   domain.SearchRequest{Keywords: "go"},
		Sources:   []string{"alpha"},
		StartedAt: now.Add(-2 * time.Second),
		EndedAt:   now,
		Status:    domain.SessionCompleted,
		Counts:    domain.SessionCounts{Found: 3, Unique: 3, Saved: 3},
	}
	require.NoError(t, p.SessionFinished(context.Background(), s))

	require.Len(t, rdb.msgs, 1)
	assert.Equal(t, DefaultChannel, rdb.msgs[0].channel)

	ev := decode(t, rdb.msgs[0].payload)
	assert.Equal(t, EventSessionFinished, ev.Type)
	require.NotNil(t, ev.Session)
	assert.Equal(t, s.ID.String(), ev.Session.ID)
	assert.Equal(t, "2s", ev.Session.Duration)
	assert.Equal(t, 3, ev.Session.Counts.Saved)
}

func TestProgressAndStatus(t *testing.T) {
	rdb := &fakeRedis{}
	p := newPublisher(rdb, "custom", nil)

	p.Progress(50)
	p.Status("Scraping alpha...")
	p.Close()

	require.Len(t, rdb.msgs, 2)
	assert.Equal(t, "custom", rdb.msgs[0].channel)
	assert.Equal(t, 50.0, decode(t, rdb.msgs[0].payload).Progress)

	status := decode(t, rdb.msgs[1].payload)
	assert.Equal(t, EventStatus, status.Type)
	assert.Equal(t, "Scraping alpha...", status.Message)
}

func TestPublishErrorsAreWrapped(t *testing.T) {
	p := newPublisher(&fakeRedis{err: errors.New("connection refused")}, "", nil)
	defer p.Close()

	err := p.SessionFinished(context.Background(), domain.Session{ID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	assert.NotPanics(t, func() { p.Progress(10) })
}

// blockingRedis holds every publish until release is closed
type blockingRedis struct {
	fakeRedis
	release chan struct{}
}

func (b *blockingRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	<-b.release
	return b.fakeRedis.Publish(ctx, channel, message)
}

func TestProgressNeverBlocks(t *testing.T) {
	rdb := &blockingRedis{release: make(chan struct{})}
	p := newPublisher(rdb, "", nil)

	start := time.Now()
	for i := 0; i < 10*eventBuffer; i++ {
		p.Progress(float64(i))
	}
	assert.Less(t, time.Since(start), time.Second)

	close(rdb.release)
	p.Close()

	rdb.mu.Lock()
	defer rdb.mu.Unlock()
	assert.NotEmpty(t, rdb.msgs)
	assert.LessOrEqual(t, len(rdb.msgs), eventBuffer+1)
}

func TestEventsAfterCloseAreIgnored(t *testing.T) {
	rdb := &fakeRedis{}
	p := newPublisher(rdb, "", nil)
	p.Close()
	p.Close()

	assert.NotPanics(t, func() {
		p.Progress(10)
		p.Status("late")
	})
}
