package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	done  chan string
}

func (f *fakeSearcher) Search(_ context.Context, req domain.SearchRequest) (domain.JobSearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Keywords)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- req.Keywords
	}
	if f.fail[req.Keywords] {
		return domain.JobSearchResult{}, errors.New("boom")
	}
	return domain.JobSearchResult{}, nil
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func searches(keywords ...string) []domain.SearchRequest {
	out := make([]domain.SearchRequest, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, domain.SearchRequest{Keywords: k})
	}
	return out
}

func TestRunOnceRunsAllInOrder(t *testing.T) {
	fs := &fakeSearcher{fail: map[string]bool{"rust": true}}
	s := New(fs, Config{Spec: "@daily", Searches: searches("go", "rust", "zig")}, nil)

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"go", "rust", "zig"}, fs.Calls(), "a failed search does not stop the run")
}

func TestRunOnceStopsDuringPause(t *testing.T) {
	fs := &fakeSearcher{}
	s := New(fs, Config{Spec: "@daily", Searches: searches("go", "rust"), Pause: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	s.RunOnce(ctx)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"go"}, fs.Calls())
}

func TestStartRunsOnStartAndStops(t *testing.T) {
	fs := &fakeSearcher{done: make(chan string, 4)}
	s := New(fs, Config{Spec: "@every 1h", Searches: searches("go"), RunOnStart: true}, nil)

	require.NoError(t, s.Start(context.Background()))
	select {
	case kw := <-fs.done:
		assert.Equal(t, "go", kw)
	case <-time.After(time.Second):
		t.Fatal("run on start did not happen")
	}
	s.Stop()
}

func TestStartValidation(t *testing.T) {
	err := New(&fakeSearcher{}, Config{Spec: "@daily"}, nil).Start(context.Background())
	assert.Error(t, err)

	err = New(&fakeSearcher{}, Config{Spec: "not a spec", Searches: searches("go")}, nil).Start(context.Background())
	assert.Error(t, err)
}
