package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) session.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

// Sessions are always loaded together with their breaks in one statement so a reader
// never sees a break list from a different snapshot than its session.
const sessionWithBreaksSelect = `
	SELECT ws.id, ws.user_id, ws.work_date, ws.start_time, ws.end_time,
		   ws.task_id, ws.work_description, ws.completion_status,
		   ws.day_type, ws.timesheet_status, ws.auto_closed,
		   ws.created_at, ws.updated_at,
		   b.id, b.start_time, b.end_time, b.created_at
	FROM work_sessions ws
	LEFT JOIN session_breaks b ON b.session_id = ws.id
`

// collectSessions folds joined session/break rows, preserving row order of sessions.
// extra, when set, supplies scan targets for columns selected after the break columns.
func collectSessions(rows pgx.Rows, extra func(ws *session.WorkSession) []any) ([]session.WorkSession, error) {
	defer rows.Close()

	var sessions []session.WorkSession
	index := make(map[string]int)

	for rows.Next() {
		var (
			ws             session.WorkSession
			breakID        *string
			breakStart     *time.Time
			breakEnd       *time.Time
			breakCreatedAt *time.Time
		)
		dest := []any{
			&ws.ID,
			&ws.UserID,
			&ws.Date,
			&ws.StartTime,
			&ws.EndTime,
			&ws.TaskID,
			&ws.WorkDescription,
			&ws.CompletionStatus,
			&ws.DayType,
			&ws.TimesheetStatus,
			&ws.AutoClosed,
			&ws.CreatedAt,
			&ws.UpdatedAt,
			&breakID,
			&breakStart,
			&breakEnd,
			&breakCreatedAt,
		}
		if extra != nil {
			dest = append(dest, extra(&ws)...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan work session: %w", err)
		}

		i, ok := index[ws.ID]
		if !ok {
			ws.Breaks = []session.BreakInterval{}
			sessions = append(sessions, ws)
			i = len(sessions) - 1
			index[ws.ID] = i
		}

		if breakID != nil && breakStart != nil {
			b := session.BreakInterval{
				ID:        *breakID,
				SessionID: ws.ID,
				StartTime: *breakStart,
				EndTime:   breakEnd,
			}
			if breakCreatedAt != nil {
				b.CreatedAt = *breakCreatedAt
			}
			sessions[i].Breaks = append(sessions[i].Breaks, b)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work sessions: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepositoryImpl) querySessions(ctx context.Context, query string, args ...interface{}) ([]session.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work sessions: %w", err)
	}
	return collectSessions(rows, nil)
}

func (r *sessionRepositoryImpl) querySession(ctx context.Context, query string, args ...interface{}) (*session.WorkSession, error) {
	sessions, err := r.querySessions(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// LockUser implements session.SessionRepository.
func (r *sessionRepositoryImpl) LockUser(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	return nil
}

// Create implements session.SessionRepository.
func (r *sessionRepositoryImpl) Create(ctx context.Context, ws session.WorkSession) (session.WorkSession, error) {
	q := GetQuerier(ctx, r.db)

	if ws.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return session.WorkSession{}, fmt.Errorf("failed to generate session id: %w", err)
		}
		ws.ID = id.String()
	}

	query := `
		INSERT INTO work_sessions (id, user_id, work_date, start_time, day_type, timesheet_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		ws.ID,
		ws.UserID,
		ws.Date,
		ws.StartTime,
		ws.DayType,
		ws.TimesheetStatus,
	).Scan(&ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case "work_sessions_one_open_idx":
				return session.WorkSession{}, session.ErrAlreadyActive
			default:
				return session.WorkSession{}, session.ErrAlreadyStartedToday
			}
		}
		return session.WorkSession{}, fmt.Errorf("failed to create work session: %w", err)
	}

	if ws.Breaks == nil {
		ws.Breaks = []session.BreakInterval{}
	}
	return ws, nil
}

// GetOpenByUser implements session.SessionRepository.
func (r *sessionRepositoryImpl) GetOpenByUser(ctx context.Context, userID string) (*session.WorkSession, error) {
	query := sessionWithBreaksSelect + `
		WHERE ws.user_id = $1 AND ws.end_time IS NULL
		ORDER BY b.start_time
	`
	return r.querySession(ctx, query, userID)
}

// GetByUserAndDate implements session.SessionRepository.
func (r *sessionRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*session.WorkSession, error) {
	query := sessionWithBreaksSelect + `
		WHERE ws.user_id = $1 AND ws.work_date = $2
		ORDER BY b.start_time
	`
	return r.querySession(ctx, query, userID, date)
}

// ListByUser implements session.SessionRepository.
func (r *sessionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]session.WorkSession, error) {
	query := sessionWithBreaksSelect + `
		WHERE ws.user_id = $1
		ORDER BY ws.work_date DESC, ws.start_time DESC, b.start_time
	`
	return r.querySessions(ctx, query, userID)
}

// ListByUserAndRange implements session.SessionRepository.
func (r *sessionRepositoryImpl) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]session.WorkSession, error) {
	query := sessionWithBreaksSelect + `
		WHERE ws.user_id = $1 AND ws.work_date BETWEEN $2 AND $3
		ORDER BY ws.work_date, b.start_time
	`
	return r.querySessions(ctx, query, userID, from, to)
}

// ListStaleOpen implements session.SessionRepository.
func (r *sessionRepositoryImpl) ListStaleOpen(ctx context.Context, before time.Time) ([]session.WorkSession, error) {
	query := sessionWithBreaksSelect + `
		WHERE ws.end_time IS NULL AND ws.work_date < $1
		ORDER BY ws.work_date, b.start_time
	`
	return r.querySessions(ctx, query, before)
}

// Close implements session.SessionRepository.
func (r *sessionRepositoryImpl) Close(ctx context.Context, ws session.WorkSession) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_sessions
		SET end_time = $2,
			task_id = $3,
			work_description = $4,
			completion_status = $5,
			day_type = $6,
			timesheet_status = $7,
			auto_closed = $8,
			updated_at = NOW()
		WHERE id = $1 AND end_time IS NULL
	`

	tag, err := q.Exec(ctx, query,
		ws.ID,
		ws.EndTime,
		ws.TaskID,
		ws.WorkDescription,
		ws.CompletionStatus,
		ws.DayType,
		ws.TimesheetStatus,
		ws.AutoClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to close work session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNoActiveSession
	}
	return nil
}

// OpenBreak implements session.SessionRepository.
func (r *sessionRepositoryImpl) OpenBreak(ctx context.Context, brk session.BreakInterval) (session.BreakInterval, error) {
	q := GetQuerier(ctx, r.db)

	if brk.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return session.BreakInterval{}, fmt.Errorf("failed to generate break id: %w", err)
		}
		brk.ID = id.String()
	}

	query := `
		INSERT INTO session_breaks (id, session_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query, brk.ID, brk.SessionID, brk.StartTime).Scan(&brk.CreatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return session.BreakInterval{}, session.ErrBreakAlreadyOpen
		}
		return session.BreakInterval{}, fmt.Errorf("failed to open break: %w", err)
	}
	return brk, nil
}

// CloseBreak implements session.SessionRepository.
func (r *sessionRepositoryImpl) CloseBreak(ctx context.Context, breakID string, endTime time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE session_breaks SET end_time = $2 WHERE id = $1 AND end_time IS NULL`, breakID, endTime)
	if err != nil {
		return fmt.Errorf("failed to close break: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNoOpenBreak
	}
	return nil
}
