package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/job-hunter/internal/domain/session"
	"github.com/honeycarbs/job-hunter/internal/mcp/tools"
	"github.com/honeycarbs/job-hunter/pkg/logging"
)

type ToolRegistry struct {
	logger *logging.Logger
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

// RegisterAll installs every tool backed by res and returns their names
func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) []string {
	svc := res.JobService
	return tools.Register(server, r.logger,
		tools.WithJobSearch(svc),
		tools.WithSessionHistory(svc, func() session.Stats { return svc.Stats().Sessions }, res.Archive),
		tools.WithSessionCancel(svc),
		tools.WithSourceStatus(svc),
		tools.WithSourceToggle(svc),
		tools.WithSheetsExport(res.Sheets),
	)
}
