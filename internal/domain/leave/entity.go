package leave

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type DurationType string

const (
	DurationFullDay DurationType = "full_day"
	DurationHalfDay DurationType = "half_day"
)

const LeaveTypeHalfDay = "half_day"

// LeaveRequest is owned by the leave workflow; the attendance engine only reads it,
// apart from recording approved half days.
type LeaveRequest struct {
	ID           string
	UserID       string
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	DurationType DurationType
	Reason       *string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Covers reports whether date falls inside the inclusive leave range.
func (l LeaveRequest) Covers(date time.Time) bool {
	d := truncateDate(date)
	return !d.Before(truncateDate(l.StartDate)) && !d.After(truncateDate(l.EndDate))
}

// Overlaps reports whether the leave shares at least one day with [from, to].
func (l LeaveRequest) Overlaps(from, to time.Time) bool {
	return !truncateDate(l.StartDate).After(truncateDate(to)) && !truncateDate(l.EndDate).Before(truncateDate(from))
}

func (l LeaveRequest) IsApprovedFullDay() bool {
	return l.Status == StatusApproved && l.DurationType == DurationFullDay
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
