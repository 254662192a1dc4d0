package session

import (
	"context"
	"iter"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/sse"
)

type SessionService interface {
	StartSession(ctx context.Context, userID string) (SessionResponse, error)
	EndSession(ctx context.Context, req EndSessionRequest) (SessionResponse, error)
	ApplyHalfDay(ctx context.Context, req HalfDayRequest) (SessionResponse, error)

	StartBreak(ctx context.Context, userID string) (SessionResponse, error)
	EndBreak(ctx context.Context, userID string) (SessionResponse, error)

	// GetActiveSession returns nil when the user has no open session
	GetActiveSession(ctx context.Context, userID string) (*ActiveSessionResponse, error)
	CanStartToday(ctx context.Context, userID string) (CanStartTodayResponse, error)
	History(ctx context.Context, userID string) (iter.Seq[HistoryEntry], error)

	// CloseStaleSessions closes sessions left open past the end of their business day
	CloseStaleSessions(ctx context.Context) (int, error)

	// Subscribe streams session.updated events for a user
	Subscribe(userID string) (chan sse.Event, func())
}
