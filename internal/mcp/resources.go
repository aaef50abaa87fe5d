package mcp

import (
	"github.com/honeycarbs/job-hunter/internal/domain/job"
	"github.com/honeycarbs/job-hunter/internal/mcp/tools"
)

// Resources bundles the long-lived services behind the MCP tools
type Resources struct {
	JobService job.Service
	Sheets     tools.SheetsClient
	// Archive is nil unless SESSION_ARCHIVE_PATH or the neo4j backend is set
	Archive tools.SessionArchive
}
