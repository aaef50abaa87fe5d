package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SheetsClient writes job rows to a spreadsheet
type SheetsClient interface {
	Export(ctx context.Context, params SheetsExportParams) (SheetsExportResult, error)
}

// SheetRow defines a row to write into Sheets
type SheetRow struct {
	Title     string `json:"title,omitempty" jsonschema:"Job title text"`
	Company   string `json:"company,omitempty" jsonschema:"Company name"`
	Location  string `json:"location,omitempty" jsonschema:"Location text"`
	URL       string `json:"url,omitempty" jsonschema:"Application URL"`
	Source    string `json:"source,omitempty" jsonschema:"Source the posting came from"`
	Status    string `json:"status,omitempty" jsonschema:"Pipeline status e.g. applied/interviewing"`
	Notes     string `json:"notes,omitempty" jsonschema:"Free-form notes"`
	UpdatedAt string `json:"updated_at,omitempty" jsonschema:"ISO timestamp"`
}

// SheetTarget names the destination
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name, default Sheet1"`
	Range         string `json:"range,omitempty" jsonschema:"Optional A1 range override"`
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	JobIDs   []string    `json:"job_ids,omitempty" jsonschema:"Stored job ids to load and export"`
	Rows     []SheetRow  `json:"rows,omitempty" jsonschema:"Explicit rows to write when not loading jobs"`
	Upsert   bool        `json:"upsert,omitempty" jsonschema:"Overwrite from row 2 (true) or append (false)"`
	ClearTab bool        `json:"clear_tab,omitempty" jsonschema:"Clear the tab below the header before writing"`
	Sheet    SheetTarget `json:"sheet" jsonschema:"Destination sheet information"`
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab,omitempty"`
	WrittenRows   int       `json:"written_rows"`
	Mode          string    `json:"mode"`
	CompletedAt   time.Time `json:"completed_at"`
	Message       string    `json:"message,omitempty"`
}

type sheetsExportTool struct {
	client SheetsClient
}

// WithSheetsExport registers the sheets_export tool
func WithSheetsExport(client SheetsClient) Option {
	return func(reg *registry) {
		handler := sheetsExportTool{client: client}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export stored jobs or explicit rows to Google Sheets",
		}, handler.handle)
		reg.add("sheets_export")
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if params.Sheet.SpreadsheetID == "" {
		return nil, nil, fmt.Errorf("sheet.spreadsheet_id is required")
	}
	if len(params.Rows) == 0 && len(params.JobIDs) == 0 {
		return nil, nil, fmt.Errorf("either rows or job_ids is required")
	}

	res, err := t.client.Export(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("sheets_export: %w", err)
	}
	return textResult(fmt.Sprintf("[sheets_export] mode=%s rows=%d spreadsheet_id=%q tab=%q: %s",
		res.Mode, res.WrittenRows, res.SpreadsheetID, res.Tab, res.Message)), res, nil
}
