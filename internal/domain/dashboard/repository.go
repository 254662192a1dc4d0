package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
)

type DashboardRepository interface {
	CountActiveUsers(ctx context.Context) (int64, error)

	// CountActiveOn counts users with an open session dated on the business date
	CountActiveOn(ctx context.Context, date time.Time) (int64, error)

	// GetRecentSessions returns the latest sessions across users with name and email joined
	GetRecentSessions(ctx context.Context, limit int) ([]session.WorkSession, error)

	// ListUserSummaries returns every user with session and leave totals, ordered by name
	ListUserSummaries(ctx context.Context) ([]UserSummary, error)
}
