package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const DefaultRecentSessionsLimit = 10

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	leave.LeaveRequestRepository
	user.UserRepository
	policy      session.Policy
	recentLimit int
	now         func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	leaveRepo leave.LeaveRequestRepository,
	userRepo user.UserRepository,
	policy session.Policy,
	recentLimit int,
	clock func() time.Time,
) dashboard.DashboardService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentSessionsLimit
	}
	if clock == nil {
		clock = time.Now
	}
	return &DashboardServiceImpl{
		DashboardRepository:    repo,
		LeaveRequestRepository: leaveRepo,
		UserRepository:         userRepo,
		policy:                 policy,
		recentLimit:            recentLimit,
		now:                    clock,
	}
}

// yearBounds returns the first and last date of a year as UTC dates
func yearBounds(year int) (time.Time, time.Time) {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(1, 0, -1)
}

// leavesByMonth counts, per month, the leave requests sharing at least one day with it
func leavesByMonth(year int, leaves []leave.LeaveRequest) []dashboard.MonthLeaves {
	months := make([]dashboard.MonthLeaves, 0, 12)
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)

		count := 0
		for _, l := range leaves {
			if l.Overlaps(first, last) {
				count++
			}
		}
		months = append(months, dashboard.MonthLeaves{
			Month:       int(m),
			MonthName:   m.String(),
			LeavesCount: count,
		})
	}
	return months
}

// usersOn returns the distinct users whose approved leave covers date, sorted.
func usersOn(date time.Time, leaves []leave.LeaveRequest) []string {
	userIDs := []string{}
	for _, l := range leaves {
		if l.Status == leave.StatusApproved && l.Covers(date) && !slices.Contains(userIDs, l.UserID) {
			userIDs = append(userIDs, l.UserID)
		}
	}
	slices.Sort(userIDs)
	return userIDs
}

// AdminStats implements dashboard.DashboardService.
// Runs the independent queries in parallel, one query per goroutine.
func (s *DashboardServiceImpl) AdminStats(ctx context.Context, req dashboard.StatsRequest) (*dashboard.AdminStatsResponse, error) {
	now := s.now().UTC()
	if req.Year == 0 {
		req.Year = s.policy.DateOf(now).Year()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	today := s.policy.DateOf(now)
	yearStart, yearEnd := yearBounds(req.Year)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var (
		totalUsers      int64
		activeToday     int64
		yearLeaves      []leave.LeaveRequest
		leavesThisMonth []leave.LeaveRequest
		leavesToday     []leave.LeaveRequest
		recent          []session.WorkSession
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.CountActiveUsers(gCtx)
		if err != nil {
			return err
		}
		totalUsers = count
		return nil
	})

	g.Go(func() error {
		count, err := s.CountActiveOn(gCtx, today)
		if err != nil {
			return err
		}
		activeToday = count
		return nil
	})

	g.Go(func() error {
		leaves, err := s.ListApproved(gCtx, leave.ApprovedFilter{From: yearStart, To: yearEnd})
		if err != nil {
			return err
		}
		yearLeaves = leaves
		return nil
	})

	g.Go(func() error {
		leaves, err := s.ListApproved(gCtx, leave.ApprovedFilter{From: monthStart, To: monthEnd})
		if err != nil {
			return err
		}
		leavesThisMonth = leaves
		return nil
	})

	g.Go(func() error {
		leaves, err := s.ListApproved(gCtx, leave.ApprovedFilter{From: today, To: today})
		if err != nil {
			return err
		}
		leavesToday = leaves
		return nil
	})

	g.Go(func() error {
		sessions, err := s.GetRecentSessions(gCtx, s.recentLimit)
		if err != nil {
			return err
		}
		recent = sessions
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load admin dashboard: %w", err)
	}

	recentSessions := make([]dashboard.RecentSession, 0, len(recent))
	for _, ws := range recent {
		recentSessions = append(recentSessions, s.toRecentSession(ws, now))
	}

	return &dashboard.AdminStatsResponse{
		Year:              req.Year,
		TotalUsers:        totalUsers,
		ActiveToday:       activeToday,
		UsersOnLeaveToday: len(usersOn(today, leavesToday)),
		LeavesThisMonth:   len(leavesThisMonth),
		LeavesByMonth:     leavesByMonth(req.Year, yearLeaves),
		RecentSessions:    recentSessions,
	}, nil
}

// EmployeeStats implements dashboard.DashboardService.
func (s *DashboardServiceImpl) EmployeeStats(ctx context.Context, req dashboard.StatsRequest) (*dashboard.EmployeeStatsResponse, error) {
	if req.Year == 0 {
		req.Year = s.policy.DateOf(s.now()).Year()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := session.ValidateUserID(req.UserID); err != nil {
		return nil, validator.ValidationErrors{*err}
	}
	if _, err := s.UserRepository.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	yearStart, yearEnd := yearBounds(req.Year)
	leaves, err := s.ListApproved(ctx, leave.ApprovedFilter{
		UserID: &req.UserID,
		From:   yearStart,
		To:     yearEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}

	return &dashboard.EmployeeStatsResponse{
		Year:          req.Year,
		LeavesByMonth: leavesByMonth(req.Year, leaves),
	}, nil
}

// UserSummaries implements dashboard.DashboardService.
func (s *DashboardServiceImpl) UserSummaries(ctx context.Context) ([]dashboard.UserSummaryResponse, error) {
	summaries, err := s.ListUserSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user summaries: %w", err)
	}

	resp := make([]dashboard.UserSummaryResponse, 0, len(summaries))
	for _, u := range summaries {
		status := dashboard.UserStatusActive
		if !u.IsActive {
			status = dashboard.UserStatusInactive
		}
		resp = append(resp, dashboard.UserSummaryResponse{
			ID:            u.UserID,
			Name:          u.Name,
			Email:         u.Email,
			Phone:         u.Phone,
			Role:          u.Role,
			Status:        status,
			CreatedAt:     session.FormatTime(u.CreatedAt),
			TotalSessions: u.TotalSessions,
			TotalLeaves:   u.TotalLeaves,
			LastLogin:     session.FormatTimePtr(u.LastLogin),
		})
	}
	return resp, nil
}

// UsersOnLeave implements dashboard.DashboardService.
func (s *DashboardServiceImpl) UsersOnLeave(ctx context.Context) (*dashboard.UsersOnLeaveResponse, error) {
	today := s.policy.DateOf(s.now())

	leaves, err := s.ListApproved(ctx, leave.ApprovedFilter{From: today, To: today})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}

	userIDs := usersOn(today, leaves)
	return &dashboard.UsersOnLeaveResponse{
		Date:              today.Format(session.DateLayout),
		UsersOnLeaveToday: len(userIDs),
		UserIDs:           userIDs,
	}, nil
}

func (s *DashboardServiceImpl) toRecentSession(ws session.WorkSession, now time.Time) dashboard.RecentSession {
	acct := s.policy.Account(ws, now)

	rs := dashboard.RecentSession{
		SessionID:      ws.ID,
		UserID:         ws.UserID,
		Date:           ws.Date.Format(session.DateLayout),
		LoginTime:      session.FormatTime(ws.StartTime),
		LogoutTime:     session.FormatTimePtr(ws.EndTime),
		EffectiveHours: math.Round(acct.Effective.Hours()*100) / 100,
		DayType:        string(ws.DayType),
	}
	if ws.UserName != nil {
		rs.UserName = *ws.UserName
	}
	if ws.UserEmail != nil {
		rs.UserEmail = *ws.UserEmail
	}
	return rs
}
