package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/job-hunter/internal/config"
	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/job"
	"github.com/honeycarbs/job-hunter/internal/mcp/tools"
	"github.com/honeycarbs/job-hunter/pkg/logging"
	sheetsclient "github.com/honeycarbs/job-hunter/pkg/sheets"
)

const defaultTab = "Sheet1"

type sheetsWriter interface {
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) (int, error)
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) (int, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
}

type jobLoader interface {
	Jobs(ctx context.Context, ids []domain.JobID) ([]domain.Job, error)
}

// sheetsExporter implements tools.SheetsClient, loading stored jobs when the
// caller passes ids instead of rows
type sheetsExporter struct {
	writer sheetsWriter
	jobs   jobLoader
	clock  func() time.Time
}

var _ tools.SheetsClient = (*sheetsExporter)(nil)

func provideSheets(ctx context.Context, cfg config.Config, svc job.Service, logger *logging.Logger) *sheetsExporter {
	exp := &sheetsExporter{jobs: svc, clock: time.Now}
	if cfg.SheetsCredentialsPath == "" {
		return exp
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.SheetsCredentialsPath})
	if err != nil {
		logger.Warn("Google Sheets client unavailable, sheets_export disabled", "err", err)
		return exp
	}
	exp.writer = client
	logger.Info("Google Sheets client initialized")
	return exp
}

func (e *sheetsExporter) Export(ctx context.Context, params tools.SheetsExportParams) (tools.SheetsExportResult, error) {
	result := tools.SheetsExportResult{
		SpreadsheetID: params.Sheet.SpreadsheetID,
		Tab:           tabOf(params.Sheet),
		Mode:          "append",
	}
	if params.Upsert {
		result.Mode = "upsert"
	}
	if e.writer == nil {
		return result, fmt.Errorf("sheets: client not configured (GOOGLE_SHEETS_CREDENTIALS_PATH not set)")
	}

	rows := params.Rows
	var missing int
	if len(rows) == 0 && len(params.JobIDs) > 0 {
		loaded, err := e.loadRows(ctx, params.JobIDs)
		if err != nil {
			return result, err
		}
		missing = len(params.JobIDs) - len(loaded)
		rows = loaded
		result.Mode += "+hydrate"
	}

	result.CompletedAt = e.clock().UTC()
	if len(rows) == 0 {
		result.Message = "no rows to export"
		return result, nil
	}

	if params.ClearTab {
		if err := e.writer.Clear(ctx, params.Sheet.SpreadsheetID, result.Tab+"!A2:Z"); err != nil {
			return result, err
		}
	}

	values := rowValues(rows)
	rng := rangeOf(params)
	var (
		n   int
		err error
	)
	if params.Upsert {
		n, err = e.writer.Update(ctx, params.Sheet.SpreadsheetID, rng, values)
	} else {
		n, err = e.writer.Append(ctx, params.Sheet.SpreadsheetID, rng, values)
	}
	if err != nil {
		return result, err
	}

	result.WrittenRows = n
	result.CompletedAt = e.clock().UTC()
	result.Message = fmt.Sprintf("exported %d row(s)", n)
	if missing > 0 {
		result.Message += fmt.Sprintf(", %d job id(s) not found", missing)
	}
	return result, nil
}

func (e *sheetsExporter) loadRows(ctx context.Context, rawIDs []string) ([]tools.SheetRow, error) {
	ids := make([]domain.JobID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid job id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}

	jobs, err := e.jobs.Jobs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	rows := make([]tools.SheetRow, 0, len(jobs))
	for _, j := range jobs {
		updated := j.FetchedAt
		if updated.IsZero() {
			updated = e.clock()
		}
		rows = append(rows, tools.SheetRow{
			Title:     j.Title,
			Company:   j.Company.Name,
			Location:  j.Location,
			URL:       j.URL,
			Source:    j.Source,
			Status:    "new",
			UpdatedAt: updated.UTC().Format(time.RFC3339),
		})
	}
	return rows, nil
}

func tabOf(t tools.SheetTarget) string {
	if t.Tab == "" {
		return defaultTab
	}
	return t.Tab
}

// rangeOf leaves row 1 to a header when overwriting
func rangeOf(params tools.SheetsExportParams) string {
	if params.Sheet.Range != "" {
		return params.Sheet.Range
	}
	if params.Upsert {
		return tabOf(params.Sheet) + "!A2"
	}
	return tabOf(params.Sheet) + "!A1"
}

func rowValues(rows []tools.SheetRow) [][]any {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = []any{
			row.Title,
			row.Company,
			row.Location,
			row.URL,
			row.Source,
			row.Status,
			row.Notes,
			row.UpdatedAt,
		}
	}
	return values
}
