package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
		}
		req.ID = id.String()
	}

	query := `
		INSERT INTO leave_requests (id, user_id, leave_type, start_date, end_date, duration_type, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID,
		req.UserID,
		req.LeaveType,
		req.StartDate,
		req.EndDate,
		req.DurationType,
		req.Reason,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return req, nil
}

// ListApproved implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApproved(ctx context.Context, filter leave.ApprovedFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"status = 'approved'", "start_date <= $1", "end_date >= $2"}
	args := []interface{}{filter.To, filter.From}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `
		SELECT id, user_id, leave_type, start_date, end_date, duration_type, reason, status, created_at, updated_at
		FROM leave_requests
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var req leave.LeaveRequest
		err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.LeaveType,
			&req.StartDate,
			&req.EndDate,
			&req.DurationType,
			&req.Reason,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}
