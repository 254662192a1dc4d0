package http

import (
	"net/http"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/handler/http/response"
)

type CalendarHandler interface {
	// Month handles GET /calendar/month?year=&month=
	Month(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService}
}

func (h *calendarHandlerImpl) Month(w http.ResponseWriter, r *http.Request) {
	year, ok := getIntQueryParam(r, "year", 0)
	if !ok {
		response.BadRequest(w, "year must be a number", nil)
		return
	}
	month, ok := getIntQueryParam(r, "month", 0)
	if !ok {
		response.BadRequest(w, "month must be a number", nil)
		return
	}

	result, err := h.calendarService.MonthCalendar(r.Context(), calendar.MonthCalendarRequest{
		UserID: getUserIDFromContext(r),
		Year:   year,
		Month:  month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
