package calendar

import (
	"math"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
)

// Classify labels one calendar date. Precedence is leave, holiday, half day, worked,
// then available. Open sessions are measured at now, capped at the end of their
// business day. Closed ones are measured at their end time.
func Classify(
	date time.Time,
	sessions []session.WorkSession,
	leaves []leave.LeaveRequest,
	holidays []holiday.Holiday,
	now time.Time,
	policy session.Policy,
) calendar.CalendarDay {
	day := calendar.CalendarDay{
		Date: date.Format(session.DateLayout),
		Day:  date.Day(),
		Type: calendar.DayAvailable,
	}

	for _, l := range leaves {
		if l.IsApprovedFullDay() && l.Covers(date) {
			leaveType := l.LeaveType
			day.Type = calendar.DayLeave
			day.Details.LeaveType = &leaveType
			day.Details.LeaveReason = l.Reason
			return day
		}
	}

	for _, h := range holidays {
		if session.SameDate(h.Date, date) {
			name := h.Name
			holidayType := string(h.Type)
			day.Type = calendar.DayHoliday
			day.Details.HolidayName = &name
			day.Details.HolidayType = &holidayType
			return day
		}
	}

	ws := sessionOn(date, sessions)
	if ws == nil {
		return day
	}

	acct := policy.Account(*ws, now)
	loginTime := session.FormatTime(ws.StartTime)
	hours := effectiveHours(acct.Effective)
	day.Details.LoginTime = &loginTime
	day.Details.LogoutTime = session.FormatTimePtr(ws.EndTime)
	day.Details.EffectiveHours = &hours

	switch {
	case ws.DayType == session.DayTypeHalfDay:
		day.Type = calendar.DayHalfDay
	case acct.CanLogout, !ws.IsOpen() && ws.DayType == session.DayTypeFullDay:
		day.Type = calendar.DayWorked
	}

	return day
}

func sessionOn(date time.Time, sessions []session.WorkSession) *session.WorkSession {
	for i := range sessions {
		if session.SameDate(sessions[i].Date, date) {
			return &sessions[i]
		}
	}
	return nil
}

// effectiveHours rounds to two decimals for display.
func effectiveHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
