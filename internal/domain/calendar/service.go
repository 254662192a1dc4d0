package calendar

import "context"

type CalendarService interface {
	MonthCalendar(ctx context.Context, req MonthCalendarRequest) (MonthCalendarResponse, error)
}
