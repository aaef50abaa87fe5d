// Package sqlite archives finished search sessions in a local SQLite file so
// history survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/honeycarbs/job-hunter/internal/domain"
	jobdomain "github.com/honeycarbs/job-hunter/internal/domain/job"
)

var _ jobdomain.SessionSink = (*Archive)(nil)

// fixed width so that text ordering matches time ordering
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Archive is a SessionSink writing one row per finished session. Safe for
// concurrent use.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive at path. ":memory:" is accepted.
func Open(path string) (*Archive, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY; ":memory:" needs it to keep one db
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		keywords    TEXT NOT NULL,
		request     TEXT NOT NULL,
		sources     TEXT NOT NULL,
		status      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		ended_at    TEXT NOT NULL,
		found       INTEGER NOT NULL,
		unique_jobs INTEGER NOT NULL,
		duplicates  INTEGER NOT NULL,
		saved       INTEGER NOT NULL,
		errors      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_started_at_idx ON sessions (started_at DESC);
	`
	_, err := a.db.Exec(schema)
	return err
}

// SessionFinished upserts s by id
func (a *Archive) SessionFinished(ctx context.Context, s domain.Session) error {
	request, err := json.Marshal(s.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	sources, err := json.Marshal(nonNil(s.Sources))
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	errs, err := json.Marshal(nonNil(s.Errors))
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions
		 (id, keywords, request, sources, status, started_at, ended_at,
		  found, unique_jobs, duplicates, saved, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Request.Keywords, string(request), string(sources), string(s.Status),
		s.StartedAt.UTC().Format(tsLayout), s.EndedAt.UTC().Format(tsLayout),
		s.Counts.Found, s.Counts.Unique, s.Counts.Duplicates, s.Counts.Saved, string(errs),
	)
	if err != nil {
		return fmt.Errorf("archive session %s: %w", s.ID, err)
	}
	return nil
}

// Recent returns up to limit archived sessions, newest first
func (a *Archive) Recent(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, request, sources, status, started_at, ended_at,
		        found, unique_jobs, duplicates, saved, errors
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var (
			s                          domain.Session
			id, request, sources, errs string
			status, started, ended     string
		)
		if err := rows.Scan(&id, &request, &sources, &status, &started, &ended,
			&s.Counts.Found, &s.Counts.Unique, &s.Counts.Duplicates, &s.Counts.Saved, &errs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse session id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(request), &s.Request); err != nil {
			return nil, fmt.Errorf("decode request of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(sources), &s.Sources); err != nil {
			return nil, fmt.Errorf("decode sources of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(errs), &s.Errors); err != nil {
			return nil, fmt.Errorf("decode errors of %s: %w", id, err)
		}
		s.Status = domain.SessionStatus(status)
		if s.StartedAt, err = time.Parse(tsLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", id, err)
		}
		if s.EndedAt, err = time.Parse(tsLayout, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at of %s: %w", id, err)
		}

		out = append(out, s)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
