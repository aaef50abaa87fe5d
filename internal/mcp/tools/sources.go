package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/job-hunter/internal/domain/job"
)

// SourceManager exposes source status and runtime toggling
type SourceManager interface {
	Sources() []job.SourceStatus
	Report() string
	Enable(name string) error
	Disable(name string) error
}

// SourceStatusParams defines the arguments for the source_status tool
type SourceStatusParams struct {
	Report bool `json:"report,omitempty" jsonschema:"Include the plain-text performance report"`
}

// SourceStatusResult is the structured response of source_status
type SourceStatusResult struct {
	Sources []job.SourceStatus `json:"sources"`
	Report  string             `json:"report,omitempty"`
}

// SourceToggleParams defines the arguments for the source_toggle tool
type SourceToggleParams struct {
	Name    string `json:"name" jsonschema:"Registered source name"`
	Enabled bool   `json:"enabled" jsonschema:"true to enable, false to disable"`
}

// SourceToggleResult is the structured response of source_toggle
type SourceToggleResult struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type sourceTools struct {
	manager SourceManager
}

// WithSourceStatus registers the source_status tool
func WithSourceStatus(manager SourceManager) Option {
	return func(reg *registry) {
		handler := sourceTools{manager: manager}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "source_status",
			Description: "List registered job sources with their limits and performance history",
		}, handler.status)
		reg.add("source_status")
	}
}

// WithSourceToggle registers the source_toggle tool
func WithSourceToggle(manager SourceManager) Option {
	return func(reg *registry) {
		handler := sourceTools{manager: manager}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "source_toggle",
			Description: "Enable or disable a job source for future searches",
		}, handler.toggle)
		reg.add("source_toggle")
	}
}

func (t sourceTools) status(_ context.Context, _ *sdkmcp.CallToolRequest, params SourceStatusParams) (*sdkmcp.CallToolResult, any, error) {
	out := SourceStatusResult{Sources: t.manager.Sources()}
	if params.Report {
		out.Report = t.manager.Report()
	}
	return jsonResult(out), out, nil
}

func (t sourceTools) toggle(_ context.Context, _ *sdkmcp.CallToolRequest, params SourceToggleParams) (*sdkmcp.CallToolResult, any, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("name is required")
	}

	var err error
	if params.Enabled {
		err = t.manager.Enable(name)
	} else {
		err = t.manager.Disable(name)
	}
	if err != nil {
		return nil, nil, err
	}

	out := SourceToggleResult{Name: name, Enabled: params.Enabled}
	state := "disabled"
	if params.Enabled {
		state = "enabled"
	}
	return textResult(fmt.Sprintf("source %s %s", name, state)), out, nil
}
