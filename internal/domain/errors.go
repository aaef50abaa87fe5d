package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCancelled matches any *SessionCancelledError via errors.Is
	ErrSessionCancelled = errors.New("session cancelled")

	// ErrRateLimited means the coordinator skipped a source because its
	// request budget had no slot left before the deadline
	ErrRateLimited = errors.New("rate limited")
)

// UnknownSourceError names a source that is not registered
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source %q", e.Name)
}

// DuplicateSourceError is returned when a name is registered twice
type DuplicateSourceError struct {
	Name string
}

func (e *DuplicateSourceError) Error() string {
	return fmt.Sprintf("source %q already registered", e.Name)
}

// SourceTimeoutError means a source did not answer within its budget
type SourceTimeoutError struct {
	Source  string
	Timeout time.Duration
}

func (e *SourceTimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Source, e.Timeout)
}

// SourceFetchError wraps any other failure of a source adapter
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// InvalidSessionStateError is returned for a transition out of a terminal state
type InvalidSessionStateError struct {
	ID     SessionID
	Status SessionStatus
	Target SessionStatus
}

func (e *InvalidSessionStateError) Error() string {
	return fmt.Sprintf("session %s: cannot move from %s to %s", e.ID, e.Status, e.Target)
}

// SessionCancelledError is returned when a search was cancelled before any
// source produced results
type SessionCancelledError struct {
	ID SessionID
}

func (e *SessionCancelledError) Error() string {
	return fmt.Sprintf("session %s cancelled before any source completed", e.ID)
}

func (e *SessionCancelledError) Is(target error) bool {
	return target == ErrSessionCancelled
}
