package session

import (
	"context"
	"time"
)

// SessionRepository persists work sessions and their breaks. Mutating methods are
// expected to run inside a transaction that already holds the user's lock.
type SessionRepository interface {
	// LockUser serializes ledger mutations for one user until the surrounding transaction ends
	LockUser(ctx context.Context, userID string) error

	Create(ctx context.Context, session WorkSession) (WorkSession, error)

	// GetOpenByUser returns the user's open session with its breaks, nil when none
	GetOpenByUser(ctx context.Context, userID string) (*WorkSession, error)

	// GetByUserAndDate returns the session of a business date, nil when none
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*WorkSession, error)

	// ListByUser returns all sessions of a user, most recent date first
	ListByUser(ctx context.Context, userID string) ([]WorkSession, error)

	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]WorkSession, error)

	// ListStaleOpen returns open sessions dated before the given business date
	ListStaleOpen(ctx context.Context, before time.Time) ([]WorkSession, error)

	// Close writes the terminal fields of an open session
	Close(ctx context.Context, session WorkSession) error

	OpenBreak(ctx context.Context, brk BreakInterval) (BreakInterval, error)
	CloseBreak(ctx context.Context, breakID string, endTime time.Time) error
}
