package tools

import (
	"encoding/json"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// jsonResult renders v as indented JSON text next to the structured output
func jsonResult(v any) *sdkmcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textResult(err.Error())
	}
	return textResult(string(data))
}

// SessionView is the wire form of a session
type SessionView struct {
	ID         string               `json:"id"`
	Status     string               `json:"status"`
	Keywords   string               `json:"keywords"`
	Sources    []string             `json:"sources"`
	StartedAt  time.Time            `json:"started_at"`
	EndedAt    *time.Time           `json:"ended_at,omitempty"`
	DurationMS int64                `json:"duration_ms"`
	Counts     domain.SessionCounts `json:"counts"`
	Errors     []string             `json:"errors,omitempty"`
}

func viewOf(s domain.Session) SessionView {
	v := SessionView{
		ID:         s.ID.String(),
		Status:     string(s.Status),
		Keywords:   s.Request.Keywords,
		Sources:    append([]string{}, s.Sources...),
		StartedAt:  s.StartedAt,
		DurationMS: s.Duration().Milliseconds(),
		Counts:     s.Counts,
		Errors:     s.Errors,
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		v.EndedAt = &ended
	}
	return v
}

func viewsOf(sessions []domain.Session) []SessionView {
	out := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, viewOf(s))
	}
	return out
}
