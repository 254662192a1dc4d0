package session

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

// SubmitTimesheetRequest carries the timesheet fields sent when a session is closed,
// either as a full day or as a half day.
type SubmitTimesheetRequest struct {
	UserID          string `json:"-"`
	TaskID          string `json:"task_id"`
	WorkDescription string `json:"work_description"`
	Status          string `json:"status"`
}

type EndSessionRequest = SubmitTimesheetRequest

type HalfDayRequest = SubmitTimesheetRequest

func (r *SubmitTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := ValidateUserID(r.UserID); err != nil {
		errs = append(errs, *err)
	}

	if validator.IsEmpty(r.TaskID) {
		errs = append(errs, validator.ValidationError{
			Field:   "task_id",
			Message: "task_id is required",
		})
	}

	if validator.IsEmpty(r.WorkDescription) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_description",
			Message: "work_description is required",
		})
	}

	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if !CompletionStatus(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of Completed, Ongoing, Blocked",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateUserID rejects an empty or malformed user id before it reaches the store.
func ValidateUserID(userID string) *validator.ValidationError {
	if validator.IsEmpty(userID) {
		return &validator.ValidationError{Field: "user_id", Message: "user_id is required"}
	}
	if !validator.IsValidUUID(userID) {
		return &validator.ValidationError{Field: "user_id", Message: "user_id must be a valid UUID"}
	}
	return nil
}

type BreakResponse struct {
	ID              string  `json:"id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationSeconds int64   `json:"duration_seconds"`
}

type SessionResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Date             string          `json:"date"`
	StartTime        string          `json:"start_time"`
	EndTime          *string         `json:"end_time"`
	Breaks           []BreakResponse `json:"breaks"`
	TaskID           *string         `json:"task_id"`
	WorkDescription  *string         `json:"work_description"`
	CompletionStatus *string         `json:"completion_status"`
	DayType          string          `json:"day_type"`
	TimesheetStatus  string          `json:"timesheet_status"`
	AutoClosed       bool            `json:"auto_closed"`
	EffectiveSeconds int64           `json:"effective_seconds"`
	BreakSeconds     int64           `json:"break_seconds"`
}

type ActiveSessionResponse struct {
	Session          SessionResponse `json:"session"`
	EffectiveSeconds int64           `json:"effective_seconds"`
	BreakSeconds     int64           `json:"break_seconds"`
	RemainingSeconds int64           `json:"remaining_seconds"`
	ActiveBreak      *BreakResponse  `json:"active_break"`
	CanLogout        bool            `json:"can_logout"`
	ETALogoutUTC     string          `json:"eta_logout_utc"`
}

type CanStartTodayResponse struct {
	CanStart    bool    `json:"can_start"`
	SessionTime *string `json:"session_time"`
	SessionDate *string `json:"session_date"`
	IsCompleted bool    `json:"is_completed"`
}

type HistoryEntry struct {
	ID                   string  `json:"id"`
	Date                 string  `json:"date"`
	LoginTime            string  `json:"login_time"`
	LogoutTime           *string `json:"logout_time"`
	TotalDurationSeconds int64   `json:"total_duration_seconds"`
	TotalDuration        string  `json:"total_duration"`
	EffectiveSeconds     int64   `json:"effective_duration_seconds"`
	EffectiveDuration    string  `json:"effective_duration"`
	BreakCount           int     `json:"break_count"`
	BreakDurationSeconds int64   `json:"break_duration_seconds"`
	BreakDuration        string  `json:"break_duration"`
	DayType              string  `json:"day_type"`
	TimesheetStatus      string  `json:"timesheet_status"`
	TaskID               *string `json:"task_id"`
	WorkDescription      *string `json:"work_description"`
	CompletionStatus     *string `json:"completion_status"`
	AutoClosed           bool    `json:"auto_closed"`
}

// FormatClock renders d as HH:MM:SS, hours may exceed 24.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

const DateLayout = "2006-01-02"

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

func (b BreakInterval) ToResponse(ref time.Time) BreakResponse {
	end := ref
	if b.EndTime != nil {
		end = *b.EndTime
	}
	var secs int64
	if end.After(b.StartTime) {
		secs = int64(end.Sub(b.StartTime) / time.Second)
	}
	return BreakResponse{
		ID:              b.ID,
		StartTime:       FormatTime(b.StartTime),
		EndTime:         FormatTimePtr(b.EndTime),
		DurationSeconds: secs,
	}
}

// ToResponse renders the session with its accounting evaluated at now.
func (s WorkSession) ToResponse(now time.Time, target time.Duration) SessionResponse {
	acct := s.Account(now, target)

	breaks := make([]BreakResponse, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, b.ToResponse(acct.Reference))
	}

	var completion *string
	if s.CompletionStatus != nil {
		c := string(*s.CompletionStatus)
		completion = &c
	}

	return SessionResponse{
		ID:               s.ID,
		UserID:           s.UserID,
		Date:             s.Date.Format(DateLayout),
		StartTime:        FormatTime(s.StartTime),
		EndTime:          FormatTimePtr(s.EndTime),
		Breaks:           breaks,
		TaskID:           s.TaskID,
		WorkDescription:  s.WorkDescription,
		CompletionStatus: completion,
		DayType:          string(s.DayType),
		TimesheetStatus:  string(s.TimesheetStatus),
		AutoClosed:       s.AutoClosed,
		EffectiveSeconds: acct.EffectiveSeconds(),
		BreakSeconds:     acct.BreakSeconds(),
	}
}

func (s WorkSession) ToHistoryEntry(now time.Time, target time.Duration) HistoryEntry {
	acct := s.Account(now, target)
	resp := s.ToResponse(now, target)

	return HistoryEntry{
		ID:                   s.ID,
		Date:                 resp.Date,
		LoginTime:            resp.StartTime,
		LogoutTime:           resp.EndTime,
		TotalDurationSeconds: acct.TotalSeconds(),
		TotalDuration:        FormatClock(acct.Total),
		EffectiveSeconds:     acct.EffectiveSeconds(),
		EffectiveDuration:    FormatClock(acct.Effective),
		BreakCount:           acct.BreakCount,
		BreakDurationSeconds: acct.BreakSeconds(),
		BreakDuration:        FormatClock(acct.Break),
		DayType:              resp.DayType,
		TimesheetStatus:      resp.TimesheetStatus,
		TaskID:               s.TaskID,
		WorkDescription:      s.WorkDescription,
		CompletionStatus:     resp.CompletionStatus,
		AutoClosed:           s.AutoClosed,
	}
}
