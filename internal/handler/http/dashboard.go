package http

import (
	"net/http"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// Stats handles GET /dashboard/stats for the calling user
	Stats(w http.ResponseWriter, r *http.Request)
	// AdminStats handles GET /admin/dashboard-stats
	AdminStats(w http.ResponseWriter, r *http.Request)
	// Users handles GET /admin/users
	Users(w http.ResponseWriter, r *http.Request)
	// UsersOnLeave handles GET /admin/users-on-leave
	UsersOnLeave(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

func (h *dashboardHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	year, ok := getIntQueryParam(r, "year", 0) // 0 means current year
	if !ok {
		response.BadRequest(w, "year must be a number", nil)
		return
	}

	result, err := h.dashboardService.EmployeeStats(r.Context(), dashboard.StatsRequest{
		UserID: getUserIDFromContext(r),
		Year:   year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *dashboardHandlerImpl) AdminStats(w http.ResponseWriter, r *http.Request) {
	year, ok := getIntQueryParam(r, "year", 0)
	if !ok {
		response.BadRequest(w, "year must be a number", nil)
		return
	}

	result, err := h.dashboardService.AdminStats(r.Context(), dashboard.StatsRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *dashboardHandlerImpl) Users(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.UserSummaries(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *dashboardHandlerImpl) UsersOnLeave(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.UsersOnLeave(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
