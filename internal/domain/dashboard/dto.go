package dashboard

import (
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

type StatsRequest struct {
	// UserID is empty for the admin scope
	UserID string
	Year   int
}

func (r *StatsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthLeaves struct {
	Month       int    `json:"month"`
	MonthName   string `json:"month_name"`
	LeavesCount int    `json:"leaves_count"`
}

type RecentSession struct {
	SessionID      string  `json:"session_id"`
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	UserEmail      string  `json:"user_email"`
	Date           string  `json:"date"`
	LoginTime      string  `json:"login_time"`
	LogoutTime     *string `json:"logout_time"`
	EffectiveHours float64 `json:"effective_hours"`
	DayType        string  `json:"day_type"`
}

type AdminStatsResponse struct {
	Year              int             `json:"year"`
	TotalUsers        int64           `json:"total_users"`
	ActiveToday       int64           `json:"active_today"`
	UsersOnLeaveToday int             `json:"users_on_leave_today"`
	LeavesThisMonth   int             `json:"leaves_this_month"`
	LeavesByMonth     []MonthLeaves   `json:"leaves_by_month"`
	RecentSessions    []RecentSession `json:"recent_sessions"`
}

type EmployeeStatsResponse struct {
	Year          int           `json:"year"`
	LeavesByMonth []MonthLeaves `json:"leaves_by_month"`
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// UserSummary is one user's ledger and leave totals.
type UserSummary struct {
	UserID        string
	Name          string
	Email         string
	Phone         *string
	Role          string
	IsActive      bool
	CreatedAt     time.Time
	TotalSessions int64
	TotalLeaves   int64
	LastLogin     *time.Time
}

type UserSummaryResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone"`
	Role          string     `json:"role"`
	Status        UserStatus `json:"status"`
	CreatedAt     string     `json:"created_at"`
	TotalSessions int64      `json:"total_sessions"`
	TotalLeaves   int64      `json:"total_leaves"`
	LastLogin     *string    `json:"last_login"`
}

type UsersOnLeaveResponse struct {
	Date              string   `json:"date"`
	UsersOnLeaveToday int      `json:"users_on_leave_today"`
	UserIDs           []string `json:"user_ids"`
}
