package session

import (
	"time"
)

type DayType string

const (
	DayTypeFullDay DayType = "Full Day"
	DayTypeHalfDay DayType = "Half Day"
)

type TimesheetStatus string

const (
	TimesheetPending   TimesheetStatus = "Pending"
	TimesheetSubmitted TimesheetStatus = "Submitted"
)

type CompletionStatus string

const (
	CompletionCompleted CompletionStatus = "Completed"
	CompletionOngoing   CompletionStatus = "Ongoing"
	CompletionBlocked   CompletionStatus = "Blocked"
)

func (c CompletionStatus) IsValid() bool {
	switch c {
	case CompletionCompleted, CompletionOngoing, CompletionBlocked:
		return true
	}
	return false
}

// BreakInterval is a pause inside a work session. EndTime is nil while the break is open.
type BreakInterval struct {
	ID        string
	SessionID string
	StartTime time.Time
	EndTime   *time.Time
	CreatedAt time.Time
}

func (b BreakInterval) IsOpen() bool {
	return b.EndTime == nil
}

// WorkSession is one user's work period on a business date.
type WorkSession struct {
	ID               string
	UserID           string
	Date             time.Time
	StartTime        time.Time
	EndTime          *time.Time
	Breaks           []BreakInterval
	TaskID           *string
	WorkDescription  *string
	CompletionStatus *CompletionStatus
	DayType          DayType
	TimesheetStatus  TimesheetStatus
	AutoClosed       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	UserName  *string
	UserEmail *string
}

func (s WorkSession) IsOpen() bool {
	return s.EndTime == nil
}

// OpenBreak returns the break that has not ended yet, if any.
func (s *WorkSession) OpenBreak() *BreakInterval {
	for i := range s.Breaks {
		if s.Breaks[i].IsOpen() {
			return &s.Breaks[i]
		}
	}
	return nil
}

// Accounting is the derived time summary of a session at a reference instant.
type Accounting struct {
	Reference  time.Time
	Total      time.Duration
	Break      time.Duration
	Effective  time.Duration
	BreakCount int
	CanLogout  bool
	ETALogout  time.Time
}

func (a Accounting) EffectiveSeconds() int64 {
	return int64(a.Effective / time.Second)
}

func (a Accounting) BreakSeconds() int64 {
	return int64(a.Break / time.Second)
}

func (a Accounting) TotalSeconds() int64 {
	return int64(a.Total / time.Second)
}

// Remaining is the effective time still missing to reach target, never negative.
func (a Accounting) Remaining(target time.Duration) time.Duration {
	if a.Effective >= target {
		return 0
	}
	return target - a.Effective
}

// Account computes the session's durations at now. Closed sessions are measured at
// their end time, open breaks are measured up to the reference instant.
func (s WorkSession) Account(now time.Time, target time.Duration) Accounting {
	ref := now
	if s.EndTime != nil {
		ref = *s.EndTime
	}
	if ref.Before(s.StartTime) {
		ref = s.StartTime
	}

	var breaks time.Duration
	for _, b := range s.Breaks {
		start := b.StartTime
		if start.Before(s.StartTime) {
			start = s.StartTime
		}
		end := ref
		if b.EndTime != nil && b.EndTime.Before(ref) {
			end = *b.EndTime
		}
		if end.After(start) {
			breaks += end.Sub(start)
		}
	}

	total := ref.Sub(s.StartTime)
	effective := total - breaks
	if effective < 0 {
		effective = 0
	}
	effective = effective.Truncate(time.Second)

	return Accounting{
		Reference:  ref,
		Total:      total,
		Break:      breaks,
		Effective:  effective,
		BreakCount: len(s.Breaks),
		CanLogout:  effective >= target,
		ETALogout:  s.StartTime.Add(target).Add(breaks),
	}
}
