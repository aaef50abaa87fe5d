package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/mcp/tools"
)

type writeCall struct {
	op   string
	rng  string
	rows [][]any
}

type fakeWriter struct {
	calls []writeCall
	err   error
}

func (w *fakeWriter) Append(_ context.Context, _, rng string, rows [][]any) (int, error) {
	w.calls = append(w.calls, writeCall{op: "append", rng: rng, rows: rows})
	return len(rows), w.err
}

func (w *fakeWriter) Update(_ context.Context, _, rng string, rows [][]any) (int, error) {
	w.calls = append(w.calls, writeCall{op: "update", rng: rng, rows: rows})
	return len(rows), w.err
}

func (w *fakeWriter) Clear(_ context.Context, _, rng string) error {
	w.calls = append(w.calls, writeCall{op: "clear", rng: rng})
	return nil
}

type fakeLoader map[domain.JobID]domain.Job

func (l fakeLoader) Jobs(_ context.Context, ids []domain.JobID) ([]domain.Job, error) {
	var out []domain.Job
	for _, id := range ids {
		if j, ok := l[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestSheetsExportRows(t *testing.T) {
	w := &fakeWriter{}
	exp := &sheetsExporter{writer: w, jobs: fakeLoader{}, clock: func() time.Time { return fixedNow }}

	res, err := exp.Export(context.Background(), tools.SheetsExportParams{
		Rows:  []tools.SheetRow{{Title: "Go Developer", Company: "Acme"}},
		Sheet: tools.SheetTarget{SpreadsheetID: "s1", Tab: "Jobs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "append", res.Mode)
	assert.Equal(t, 1, res.WrittenRows)
	assert.Equal(t, fixedNow, res.CompletedAt)
	require.Len(t, w.calls, 1)
	assert.Equal(t, "Jobs!A1", w.calls[0].rng)
	assert.Equal(t, []any{"Go Developer", "Acme", "", "", "", "", "", ""}, w.calls[0].rows[0])
}

func TestSheetsExportHydratesJobs(t *testing.T) {
	known := uuid.New()
	w := &fakeWriter{}
	exp := &sheetsExporter{
		writer: w,
		jobs: fakeLoader{known: {
			ID:        known,
			Title:     "SRE",
			Company:   domain.CompanyRef{Name: "Globex"},
			Location:  "Remote",
			URL:       "https://globex.test/sre",
			Source:    "remoteok",
			FetchedAt: fixedNow.Add(-time.Hour),
		}},
		clock: func() time.Time { return fixedNow },
	}

	res, err := exp.Export(context.Background(), tools.SheetsExportParams{
		JobIDs:   []string{known.String(), uuid.NewString()},
		Upsert:   true,
		ClearTab: true,
		Sheet:    tools.SheetTarget{SpreadsheetID: "s1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "upsert+hydrate", res.Mode)
	assert.Equal(t, "Sheet1", res.Tab)
	assert.Equal(t, 1, res.WrittenRows)
	assert.Contains(t, res.Message, "1 job id(s) not found")

	require.Len(t, w.calls, 2)
	assert.Equal(t, writeCall{op: "clear", rng: "Sheet1!A2:Z"}, w.calls[0])
	assert.Equal(t, "update", w.calls[1].op)
	assert.Equal(t, "Sheet1!A2", w.calls[1].rng)
	assert.Equal(t, []any{"SRE", "Globex", "Remote", "https://globex.test/sre", "remoteok", "new", "", "2025-10-01T11:00:00Z"}, w.calls[1].rows[0])
}

func TestSheetsExportErrors(t *testing.T) {
	params := tools.SheetsExportParams{
		Rows:  []tools.SheetRow{{Title: "x"}},
		Sheet: tools.SheetTarget{SpreadsheetID: "s1", Range: "Custom!B3"},
	}

	_, err := (&sheetsExporter{clock: time.Now}).Export(context.Background(), params)
	assert.ErrorContains(t, err, "not configured")

	w := &fakeWriter{err: errors.New("quota exceeded")}
	_, err = (&sheetsExporter{writer: w, clock: time.Now}).Export(context.Background(), params)
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, "Custom!B3", w.calls[0].rng)

	_, err = (&sheetsExporter{writer: &fakeWriter{}, jobs: fakeLoader{}, clock: time.Now}).Export(context.Background(), tools.SheetsExportParams{
		JobIDs: []string{"not-a-uuid"},
		Sheet:  tools.SheetTarget{SpreadsheetID: "s1"},
	})
	assert.ErrorContains(t, err, "invalid job id")
}

func TestSheetsExportNothingToWrite(t *testing.T) {
	w := &fakeWriter{}
	res, err := (&sheetsExporter{writer: w, jobs: fakeLoader{}, clock: time.Now}).Export(context.Background(), tools.SheetsExportParams{
		JobIDs: []string{uuid.NewString()},
		Sheet:  tools.SheetTarget{SpreadsheetID: "s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "no rows to export", res.Message)
	assert.Empty(t, w.calls)
}
