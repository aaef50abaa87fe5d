package source

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

func nopProvider(name string) Provider {
	return ProviderFunc{
		ID: name,
		Fn: func(context.Context, string, domain.JobSearchFilters) ([]domain.Job, error) {
			return nil, nil
		},
	}
}

func desc(name string, priority int, enabled bool, cats ...domain.Category) Descriptor {
	return Descriptor{
		Name:       name,
		Provider:   nopProvider(name),
		Priority:   priority,
		Enabled:    enabled,
		Categories: cats,
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(desc("alpha", 1, true)))

	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, DefaultTimeout, got.Timeout)
	assert.Equal(t, DefaultMaxResults, got.MaxResults)
	assert.Equal(t, DefaultRateLimit, got.RateLimit)
	assert.NotNil(t, r.Snapshot().Limiter("alpha"))
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(desc("alpha", 1, true)))

	err := r.Register(desc("alpha", 9, false))

	var dup *domain.DuplicateSourceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "alpha", dup.Name)

	got, _ := r.Get("alpha")
	assert.Equal(t, 1, got.Priority)
	assert.True(t, got.Enabled)
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Descriptor{Provider: nopProvider("x")}))
	assert.Error(t, r.Register(Descriptor{Name: "x"}))
	assert.Equal(t, 0, r.Snapshot().Len())
}

func TestRegistrySetEnabled(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(desc("alpha", 1, true)))

	before := r.Snapshot()
	require.NoError(t, r.SetEnabled("alpha", false))

	got, _ := r.Get("alpha")
	assert.False(t, got.Enabled)

	old, _ := before.Get("alpha")
	assert.True(t, old.Enabled, "earlier snapshots must stay untouched")

	err := r.SetEnabled("missing", true)
	var unknown *domain.UnknownSourceError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "missing", unknown.Name)
}

func TestRegistryListKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(desc(name, 1, name != "a")))
	}

	var all []string
	for _, d := range r.List(nil) {
		all = append(all, d.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, all)

	var enabled []string
	for _, d := range r.List(EnabledOnly) {
		enabled = append(enabled, d.Name)
	}
	assert.Equal(t, []string{"c", "b"}, enabled)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(desc("alpha", 1, true)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.SetEnabled("alpha", i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.List(EnabledOnly)
		}()
	}
	wg.Wait()

	_, ok := r.Get("alpha")
	assert.True(t, ok)
}

func TestUnlimitedRateLimit(t *testing.T) {
	r := NewRegistry()
	d := desc("alpha", 1, true)
	d.RateLimit = -1
	require.NoError(t, r.Register(d))

	lim := r.Snapshot().Limiter("alpha")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, lim.Wait(ctx))
	}
}
