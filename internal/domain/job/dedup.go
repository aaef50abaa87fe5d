package job

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// fieldSep keeps "ab"+"c" and "a"+"bc" from hashing alike
const fieldSep = "\x1f"

// Fingerprint is a stable identity for a posting across sources: the hash of
// its trimmed, lowercased title, company and location.
func Fingerprint(title, company, location string) string {
	d := xxhash.New()
	_, _ = d.WriteString(normalizeField(title))
	_, _ = d.WriteString(fieldSep)
	_, _ = d.WriteString(normalizeField(company))
	_, _ = d.WriteString(fieldSep)
	_, _ = d.WriteString(normalizeField(location))

	s := strconv.FormatUint(d.Sum64(), 16)
	return strings.Repeat("0", 16-len(s)) + s
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Deduplicator removes repeated postings within one session. The first
// occurrence of a fingerprint wins. It is not safe for concurrent use and
// must not be shared between sessions.
type Deduplicator struct {
	sessionID domain.SessionID
	seen      map[string]struct{}
}

// NewDeduplicator returns an empty Deduplicator for one session
func NewDeduplicator(sessionID domain.SessionID) *Deduplicator {
	return &Deduplicator{
		sessionID: sessionID,
		seen:      make(map[string]struct{}),
	}
}

// Add returns the jobs not seen before in this session, in input order, and
// how many were dropped. len(unique)+duplicates == len(jobs).
func (d *Deduplicator) Add(jobs []domain.Job) ([]domain.CanonicalJob, int) {
	unique := make([]domain.CanonicalJob, 0, len(jobs))
	duplicates := 0
	for _, j := range jobs {
		fp := Fingerprint(j.Title, j.Company.Name, j.Location)
		if _, ok := d.seen[fp]; ok {
			duplicates++
			continue
		}
		d.seen[fp] = struct{}{}
		unique = append(unique, domain.CanonicalJob{
			Job:         j,
			Fingerprint: fp,
			SessionID:   d.sessionID,
		})
	}
	return unique, duplicates
}
