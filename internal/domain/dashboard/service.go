package dashboard

import "context"

type DashboardService interface {
	AdminStats(ctx context.Context, req StatsRequest) (*AdminStatsResponse, error)
	EmployeeStats(ctx context.Context, req StatsRequest) (*EmployeeStatsResponse, error)
	UserSummaries(ctx context.Context) ([]UserSummaryResponse, error)
	UsersOnLeave(ctx context.Context) (*UsersOnLeaveResponse, error)
}
