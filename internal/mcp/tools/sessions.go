package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/job-hunter/internal/domain"
	"github.com/honeycarbs/job-hunter/internal/domain/session"
)

const defaultHistoryLimit = 20

// SessionReader exposes in-memory session history
type SessionReader interface {
	Session(id domain.SessionID) (domain.Session, error)
	History(limit int) []domain.Session
}

// SessionArchive reads sessions that outlived the in-memory history
type SessionArchive interface {
	Recent(ctx context.Context, limit int) ([]domain.Session, error)
}

// SessionHistoryParams defines the arguments for the session_history tool
type SessionHistoryParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Return only this session"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum sessions to return, newest first (default 20)"`
	Archived  bool   `json:"archived,omitempty" jsonschema:"Read from the persistent session archive instead of memory"`
}

// SessionHistoryResult is the structured response of session_history
type SessionHistoryResult struct {
	Sessions []SessionView  `json:"sessions"`
	Stats    *session.Stats `json:"stats,omitempty"`
}

type sessionHistoryTool struct {
	reader  SessionReader
	stats   func() session.Stats
	archive SessionArchive
}

// WithSessionHistory registers the session_history tool. archive may be nil.
func WithSessionHistory(reader SessionReader, stats func() session.Stats, archive SessionArchive) Option {
	return func(reg *registry) {
		handler := sessionHistoryTool{reader: reader, stats: stats, archive: archive}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "session_history",
			Description: "List recent search sessions with their status, counts and per-source errors",
		}, handler.handle)
		reg.add("session_history")
	}
}

func (t sessionHistoryTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SessionHistoryParams) (*sdkmcp.CallToolResult, any, error) {
	if params.SessionID != "" {
		id, err := uuid.Parse(params.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid session_id %q: %w", params.SessionID, err)
		}
		s, err := t.reader.Session(id)
		if err != nil {
			return nil, nil, err
		}
		out := SessionHistoryResult{Sessions: []SessionView{viewOf(s)}}
		return jsonResult(out), out, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var out SessionHistoryResult
	if params.Archived {
		if t.archive == nil {
			return nil, nil, fmt.Errorf("session archive is not configured")
		}
		sessions, err := t.archive.Recent(ctx, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("read session archive: %w", err)
		}
		out.Sessions = viewsOf(sessions)
	} else {
		out.Sessions = viewsOf(t.reader.History(limit))
		if t.stats != nil {
			st := t.stats()
			out.Stats = &st
		}
	}
	return jsonResult(out), out, nil
}

// SessionCanceller stops running searches
type SessionCanceller interface {
	Cancel(id domain.SessionID) error
}

// SessionCancelParams defines the arguments for the session_cancel tool
type SessionCancelParams struct {
	SessionID string `json:"session_id" jsonschema:"Running session to cancel"`
}

// SessionCancelResult is the structured response of session_cancel
type SessionCancelResult struct {
	SessionID string `json:"session_id"`
	Requested bool   `json:"requested"`
}

type sessionCancelTool struct {
	canceller SessionCanceller
}

// WithSessionCancel registers the session_cancel tool
func WithSessionCancel(canceller SessionCanceller) Option {
	return func(reg *registry) {
		handler := sessionCancelTool{canceller: canceller}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "session_cancel",
			Description: "Cancel a running search session; sources that already finished keep their results",
		}, handler.handle)
		reg.add("session_cancel")
	}
}

func (t sessionCancelTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params SessionCancelParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := uuid.Parse(params.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid session_id %q: %w", params.SessionID, err)
	}
	if err := t.canceller.Cancel(id); err != nil {
		return nil, nil, err
	}
	out := SessionCancelResult{SessionID: id.String(), Requested: true}
	return textResult(fmt.Sprintf("cancellation requested for session %s", id)), out, nil
}
