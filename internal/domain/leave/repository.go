package leave

import (
	"context"
	"time"
)

// ApprovedFilter selects approved leave requests overlapping [From, To].
// A nil UserID spans every user.
type ApprovedFilter struct {
	UserID *string
	From   time.Time
	To     time.Time
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	ListApproved(ctx context.Context, filter ApprovedFilter) ([]LeaveRequest, error)
}
