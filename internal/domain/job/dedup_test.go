package job

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

func posting(title, company, location, src string) domain.Job {
	return domain.Job{
		Title:    title,
		Company:  domain.CompanyRef{Name: company},
		Location: location,
		Source:   src,
	}
}

func TestFingerprintNormalizes(t *testing.T) {
	a := Fingerprint("Go Developer", "Acme", "Berlin")
	b := Fingerprint("  go developer ", "ACME", "berlin  ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	assert.NotEqual(t, a, Fingerprint("Go Developer", "Acme", "Munich"))
	assert.NotEqual(t, Fingerprint("ab", "c", ""), Fingerprint("a", "bc", ""))
}

func TestDeduplicatorFirstWins(t *testing.T) {
	sid := uuid.New()
	d := NewDeduplicator(sid)

	jobs := []domain.Job{
		posting("Go Dev", "Acme", "Berlin", "alpha"),
		posting("Rust Dev", "Acme", "Berlin", "alpha"),
		posting("go dev", "ACME", "berlin", "beta"),
	}

	unique, dups := d.Add(jobs)
	require.Len(t, unique, 2)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "alpha", unique[0].Source)
	assert.Equal(t, sid, unique[0].SessionID)
	assert.Equal(t, len(jobs), len(unique)+dups)
}

func TestDeduplicatorAcrossCalls(t *testing.T) {
	d := NewDeduplicator(uuid.New())

	first, dups := d.Add([]domain.Job{posting("A", "X", "L", "alpha")})
	assert.Len(t, first, 1)
	assert.Zero(t, dups)

	second, dups := d.Add([]domain.Job{posting("A", "X", "L", "beta"), posting("B", "X", "L", "beta")})
	require.Len(t, second, 1)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "B", second[0].Title)
	assert.Len(t, d.seen, 2)

	fresh := NewDeduplicator(uuid.New())
	again, dups := fresh.Add([]domain.Job{posting("A", "X", "L", "alpha")})
	assert.Len(t, again, 1, "sessions do not share fingerprints")
	assert.Zero(t, dups)
}

func TestDeduplicatorUniqueFingerprints(t *testing.T) {
	d := NewDeduplicator(uuid.New())
	var jobs []domain.Job
	for i := 0; i < 50; i++ {
		jobs = append(jobs, posting("Engineer", "Co", string(rune('a'+i%10)), "s"))
	}

	unique, dups := d.Add(jobs)
	assert.Equal(t, 10, len(unique))
	assert.Equal(t, 40, dups)

	seen := map[string]bool{}
	for _, u := range unique {
		assert.False(t, seen[u.Fingerprint])
		seen[u.Fingerprint] = true
	}
}
