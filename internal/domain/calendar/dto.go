package calendar

import (
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

type DayType string

const (
	DayWorked    DayType = "worked"
	DayHalfDay   DayType = "half-day"
	DayLeave     DayType = "leave"
	DayHoliday   DayType = "holiday"
	DayAvailable DayType = "available"
)

type DayDetails struct {
	LoginTime      *string  `json:"login_time,omitempty"`
	LogoutTime     *string  `json:"logout_time,omitempty"`
	EffectiveHours *float64 `json:"effective_hours,omitempty"`
	HolidayName    *string  `json:"holiday_name,omitempty"`
	HolidayType    *string  `json:"holiday_type,omitempty"`
	LeaveType      *string  `json:"leave_type,omitempty"`
	LeaveReason    *string  `json:"leave_reason,omitempty"`
}

type CalendarDay struct {
	Date    string     `json:"date"`
	Day     int        `json:"day"`
	Type    DayType    `json:"type"`
	Details DayDetails `json:"details"`
}

type MonthCalendarRequest struct {
	UserID string
	Year   int
	Month  int
}

func (r *MonthCalendarRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	} else if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthCalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
