package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// CountActiveUsers implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountActiveUsers(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountActiveOn implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountActiveOn(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM work_sessions
		WHERE work_date = $1 AND end_time IS NULL
	`

	var count int64
	if err := q.QueryRow(ctx, query, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

// GetRecentSessions implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) GetRecentSessions(ctx context.Context, limit int) ([]session.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH recent AS (
			SELECT id FROM work_sessions
			ORDER BY start_time DESC
			LIMIT $1
		)
		SELECT ws.id, ws.user_id, ws.work_date, ws.start_time, ws.end_time,
			   ws.task_id, ws.work_description, ws.completion_status,
			   ws.day_type, ws.timesheet_status, ws.auto_closed,
			   ws.created_at, ws.updated_at,
			   b.id, b.start_time, b.end_time, b.created_at,
			   u.name, u.email
		FROM recent
		JOIN work_sessions ws ON ws.id = recent.id
		JOIN users u ON u.id = ws.user_id
		LEFT JOIN session_breaks b ON b.session_id = ws.id
		ORDER BY ws.start_time DESC, b.start_time
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}

	sessions, err := collectSessions(rows, func(ws *session.WorkSession) []any {
		return []any{&ws.UserName, &ws.UserEmail}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sessions: %w", err)
	}
	return sessions, nil
}

// ListUserSummaries implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) ListUserSummaries(ctx context.Context) ([]dashboard.UserSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.name, u.email, u.phone, u.role, u.is_active, u.created_at,
			   COALESCE(ws.total, 0), COALESCE(l.total, 0), ws.last_login
		FROM users u
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS total, MAX(start_time) AS last_login
			FROM work_sessions
			GROUP BY user_id
		) ws ON ws.user_id = u.id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS total
			FROM leave_requests
			GROUP BY user_id
		) l ON l.user_id = u.id
		ORDER BY u.name, u.email
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user summaries: %w", err)
	}
	defer rows.Close()

	summaries := []dashboard.UserSummary{}
	for rows.Next() {
		var u dashboard.UserSummary
		err := rows.Scan(
			&u.UserID,
			&u.Name,
			&u.Email,
			&u.Phone,
			&u.Role,
			&u.IsActive,
			&u.CreatedAt,
			&u.TotalSessions,
			&u.TotalLeaves,
			&u.LastLogin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		summaries = append(summaries, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user summaries: %w", err)
	}

	return summaries, nil
}
