package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
)

type CalendarServiceImpl struct {
	txManager database.TxManager
	user.UserRepository
	session.SessionRepository
	leave.LeaveRequestRepository
	holiday.HolidayRepository
	policy session.Policy
	now    func() time.Time
}

func NewCalendarService(
	txManager database.TxManager,
	userRepo user.UserRepository,
	sessionRepo session.SessionRepository,
	leaveRepo leave.LeaveRequestRepository,
	holidayRepo holiday.HolidayRepository,
	policy session.Policy,
	clock func() time.Time,
) calendar.CalendarService {
	if clock == nil {
		clock = time.Now
	}
	return &CalendarServiceImpl{
		txManager:              txManager,
		UserRepository:         userRepo,
		SessionRepository:      sessionRepo,
		LeaveRequestRepository: leaveRepo,
		HolidayRepository:      holidayRepo,
		policy:                 policy,
		now:                    clock,
	}
}

// MonthCalendar implements calendar.CalendarService.
func (s *CalendarServiceImpl) MonthCalendar(ctx context.Context, req calendar.MonthCalendarRequest) (calendar.MonthCalendarResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.MonthCalendarResponse{}, err
	}

	now := s.now().UTC()
	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var (
		sessions []session.WorkSession
		leaves   []leave.LeaveRequest
		holidays []holiday.Holiday
	)
	err := s.txManager.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.UserRepository.GetByID(txCtx, req.UserID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return err
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		var err error
		sessions, err = s.SessionRepository.ListByUserAndRange(txCtx, req.UserID, first, last)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		leaves, err = s.LeaveRequestRepository.ListApproved(txCtx, leave.ApprovedFilter{
			UserID: &req.UserID,
			From:   first,
			To:     last,
		})
		if err != nil {
			return fmt.Errorf("failed to list leaves: %w", err)
		}

		holidays, err = s.HolidayRepository.ListByRange(txCtx, first, last)
		if err != nil {
			return fmt.Errorf("failed to list holidays: %w", err)
		}
		return nil
	})
	if err != nil {
		return calendar.MonthCalendarResponse{}, err
	}

	days := make([]calendar.CalendarDay, 0, last.Day())
	for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
		days = append(days, Classify(date, sessions, leaves, holidays, now, s.policy))
	}

	return calendar.MonthCalendarResponse{
		Year:  req.Year,
		Month: req.Month,
		Days:  days,
	}, nil
}
