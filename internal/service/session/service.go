package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

const EventSessionUpdated = "session.updated"

type SessionServiceImpl struct {
	txManager database.TxManager
	session.SessionRepository
	user.UserRepository
	leave.LeaveRequestRepository
	policy session.Policy
	hub    *sse.Hub
	now    func() time.Time
}

// NewSessionService wires the ledger. A nil clock defaults to time.Now and a nil hub
// disables event publishing.
func NewSessionService(
	txManager database.TxManager,
	sessionRepo session.SessionRepository,
	userRepo user.UserRepository,
	leaveRepo leave.LeaveRequestRepository,
	policy session.Policy,
	hub *sse.Hub,
	clock func() time.Time,
) session.SessionService {
	if clock == nil {
		clock = time.Now
	}
	return &SessionServiceImpl{
		txManager:              txManager,
		SessionRepository:      sessionRepo,
		UserRepository:         userRepo,
		LeaveRequestRepository: leaveRepo,
		policy:                 policy,
		hub:                    hub,
		now:                    clock,
	}
}

func requireUserID(userID string) error {
	if err := session.ValidateUserID(userID); err != nil {
		return validator.ValidationErrors{*err}
	}
	return nil
}

func (s *SessionServiceImpl) clock() time.Time {
	return s.now().UTC()
}

// StartSession implements session.SessionService.
func (s *SessionServiceImpl) StartSession(ctx context.Context, userID string) (session.SessionResponse, error) {
	if err := requireUserID(userID); err != nil {
		return session.SessionResponse{}, err
	}

	now := s.clock()
	today := s.policy.DateOf(now)

	if _, err := s.settleStale(ctx, userID, now); err != nil {
		return session.SessionResponse{}, err
	}

	var created session.WorkSession
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.UserRepository.GetByID(txCtx, userID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return err
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if err := s.SessionRepository.LockUser(txCtx, userID); err != nil {
			return err
		}

		existing, err := s.SessionRepository.GetByUserAndDate(txCtx, userID, today)
		if err != nil {
			return fmt.Errorf("failed to get today's session: %w", err)
		}
		open, err := s.SessionRepository.GetOpenByUser(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if err := checkCanStart(existing, open); err != nil {
			return err
		}

		created, err = s.SessionRepository.Create(txCtx, session.WorkSession{
			UserID:          userID,
			Date:            today,
			StartTime:       now,
			DayType:         session.DayTypeFullDay,
			TimesheetStatus: session.TimesheetPending,
		})
		return err
	})
	if err != nil {
		return session.SessionResponse{}, err
	}

	slog.Info("Work session started", "user_id", userID, "session_id", created.ID, "date", today.Format(session.DateLayout))
	s.publish(ctx, userID)

	return created.ToResponse(now, s.policy.FullDayTarget), nil
}

// StartBreak implements session.SessionService.
func (s *SessionServiceImpl) StartBreak(ctx context.Context, userID string) (session.SessionResponse, error) {
	if err := requireUserID(userID); err != nil {
		return session.SessionResponse{}, err
	}

	now := s.clock()
	if err := s.rejectStale(ctx, userID, now); err != nil {
		return session.SessionResponse{}, err
	}

	var updated session.WorkSession
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.SessionRepository.LockUser(txCtx, userID); err != nil {
			return err
		}

		open, err := s.SessionRepository.GetOpenByUser(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if err := checkCanStartBreak(open); err != nil {
			return err
		}

		brk, err := s.SessionRepository.OpenBreak(txCtx, session.BreakInterval{
			SessionID: open.ID,
			StartTime: now,
		})
		if err != nil {
			return err
		}

		open.Breaks = append(open.Breaks, brk)
		updated = *open
		return nil
	})
	if err != nil {
		return session.SessionResponse{}, err
	}

	s.publish(ctx, userID)
	return updated.ToResponse(now, s.policy.FullDayTarget), nil
}

// EndBreak implements session.SessionService.
func (s *SessionServiceImpl) EndBreak(ctx context.Context, userID string) (session.SessionResponse, error) {
	if err := requireUserID(userID); err != nil {
		return session.SessionResponse{}, err
	}

	now := s.clock()
	if err := s.rejectStale(ctx, userID, now); err != nil {
		return session.SessionResponse{}, err
	}

	var updated session.WorkSession
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.SessionRepository.LockUser(txCtx, userID); err != nil {
			return err
		}

		open, err := s.SessionRepository.GetOpenByUser(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if err := checkCanEndBreak(open); err != nil {
			return err
		}

		brk := open.OpenBreak()
		if err := s.SessionRepository.CloseBreak(txCtx, brk.ID, now); err != nil {
			return err
		}
		brk.EndTime = &now

		updated = *open
		return nil
	})
	if err != nil {
		return session.SessionResponse{}, err
	}

	s.publish(ctx, userID)
	return updated.ToResponse(now, s.policy.FullDayTarget), nil
}

// EndSession implements session.SessionService.
func (s *SessionServiceImpl) EndSession(ctx context.Context, req session.EndSessionRequest) (session.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	now := s.clock()
	if err := s.rejectStale(ctx, req.UserID, now); err != nil {
		return session.SessionResponse{}, err
	}

	var closed session.WorkSession
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.SessionRepository.LockUser(txCtx, req.UserID); err != nil {
			return err
		}

		open, err := s.SessionRepository.GetOpenByUser(txCtx, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if open == nil {
			return session.ErrNoActiveSession
		}

		if err := checkCanLogout(s.policy.Account(*open, now)); err != nil {
			return err
		}

		closed, err = s.closeSession(txCtx, *open, now, req, session.DayTypeFullDay)
		return err
	})
	if err != nil {
		return session.SessionResponse{}, err
	}

	slog.Info("Work session ended", "user_id", req.UserID, "session_id", closed.ID, "day_type", closed.DayType)
	s.publish(ctx, req.UserID)

	return closed.ToResponse(now, s.policy.FullDayTarget), nil
}

// ApplyHalfDay implements session.SessionService.
func (s *SessionServiceImpl) ApplyHalfDay(ctx context.Context, req session.HalfDayRequest) (session.SessionResponse, error) {
	if req.Status == "" {
		req.Status = string(session.CompletionCompleted)
	}
	if err := req.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	now := s.clock()
	if err := s.rejectStale(ctx, req.UserID, now); err != nil {
		return session.SessionResponse{}, err
	}

	var closed session.WorkSession
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.SessionRepository.LockUser(txCtx, req.UserID); err != nil {
			return err
		}

		open, err := s.SessionRepository.GetOpenByUser(txCtx, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to get open session: %w", err)
		}
		if open == nil {
			return session.ErrNoActiveSession
		}

		acct := s.policy.Account(*open, now)
		if err := checkCanApplyHalfDay(acct, now, s.policy.EndOfDay(open.Date)); err != nil {
			return err
		}

		closed, err = s.closeSession(txCtx, *open, now, req, session.DayTypeHalfDay)
		if err != nil {
			return err
		}

		reason := "Half day applied at logout"
		_, err = s.LeaveRequestRepository.Create(txCtx, leave.LeaveRequest{
			UserID:       req.UserID,
			LeaveType:    leave.LeaveTypeHalfDay,
			StartDate:    open.Date,
			EndDate:      open.Date,
			DurationType: leave.DurationHalfDay,
			Reason:       &reason,
			Status:       leave.StatusApproved,
		})
		if err != nil {
			return fmt.Errorf("failed to record half day leave: %w", err)
		}
		return nil
	})
	if err != nil {
		return session.SessionResponse{}, err
	}

	slog.Info("Half day applied", "user_id", req.UserID, "session_id", closed.ID)
	s.publish(ctx, req.UserID)

	return closed.ToResponse(now, s.policy.FullDayTarget), nil
}

// closeSession ends any open break at endTime and writes the terminal session fields.
func (s *SessionServiceImpl) closeSession(ctx context.Context, ws session.WorkSession, endTime time.Time, req session.SubmitTimesheetRequest, dayType session.DayType) (session.WorkSession, error) {
	if brk := ws.OpenBreak(); brk != nil {
		if err := s.SessionRepository.CloseBreak(ctx, brk.ID, endTime); err != nil {
			return session.WorkSession{}, err
		}
		brk.EndTime = &endTime
	}

	completion := session.CompletionStatus(req.Status)
	ws.EndTime = &endTime
	ws.TaskID = &req.TaskID
	ws.WorkDescription = &req.WorkDescription
	ws.CompletionStatus = &completion
	ws.DayType = dayType
	ws.TimesheetStatus = session.TimesheetSubmitted

	if err := s.SessionRepository.Close(ctx, ws); err != nil {
		return session.WorkSession{}, err
	}
	return ws, nil
}

// GetActiveSession implements session.SessionService.
func (s *SessionServiceImpl) GetActiveSession(ctx context.Context, userID string) (*session.ActiveSessionResponse, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	now := s.clock()

	var open *session.WorkSession
	err := s.txManager.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.UserRepository.GetByID(txCtx, userID); err != nil {
			return err
		}
		var err error
		open, err = s.SessionRepository.GetOpenByUser(txCtx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	return s.activeResponse(*open, now), nil
}

func (s *SessionServiceImpl) activeResponse(ws session.WorkSession, now time.Time) *session.ActiveSessionResponse {
	target := s.policy.FullDayTarget
	ref := s.policy.MeasureAt(ws, now)
	acct := ws.Account(ref, target)

	var activeBreak *session.BreakResponse
	if brk := ws.OpenBreak(); brk != nil {
		resp := brk.ToResponse(acct.Reference)
		activeBreak = &resp
	}

	return &session.ActiveSessionResponse{
		Session:          ws.ToResponse(ref, target),
		EffectiveSeconds: acct.EffectiveSeconds(),
		BreakSeconds:     acct.BreakSeconds(),
		RemainingSeconds: int64(acct.Remaining(target) / time.Second),
		ActiveBreak:      activeBreak,
		CanLogout:        acct.CanLogout,
		ETALogoutUTC:     session.FormatTime(acct.ETALogout),
	}
}

// CanStartToday implements session.SessionService.
func (s *SessionServiceImpl) CanStartToday(ctx context.Context, userID string) (session.CanStartTodayResponse, error) {
	if err := requireUserID(userID); err != nil {
		return session.CanStartTodayResponse{}, err
	}

	today := s.policy.DateOf(s.clock())

	var existing *session.WorkSession
	err := s.txManager.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.UserRepository.GetByID(txCtx, userID); err != nil {
			return err
		}
		var err error
		existing, err = s.SessionRepository.GetByUserAndDate(txCtx, userID, today)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return session.CanStartTodayResponse{}, err
		}
		return session.CanStartTodayResponse{}, fmt.Errorf("failed to get today's session: %w", err)
	}
	if existing == nil {
		return session.CanStartTodayResponse{CanStart: true}, nil
	}

	sessionTime := session.FormatTime(existing.StartTime)
	sessionDate := existing.Date.Format(session.DateLayout)
	return session.CanStartTodayResponse{
		CanStart:    false,
		SessionTime: &sessionTime,
		SessionDate: &sessionDate,
		IsCompleted: !existing.IsOpen(),
	}, nil
}

// History implements session.SessionService.
func (s *SessionServiceImpl) History(ctx context.Context, userID string) (iter.Seq[session.HistoryEntry], error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	now := s.clock()

	var sessions []session.WorkSession
	err := s.txManager.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.UserRepository.GetByID(txCtx, userID); err != nil {
			return err
		}
		var err error
		sessions, err = s.SessionRepository.ListByUser(txCtx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	target := s.policy.FullDayTarget
	return func(yield func(session.HistoryEntry) bool) {
		for _, ws := range sessions {
			if !yield(ws.ToHistoryEntry(s.policy.MeasureAt(ws, now), target)) {
				return
			}
		}
	}, nil
}

// CloseStaleSessions implements session.SessionService.
func (s *SessionServiceImpl) CloseStaleSessions(ctx context.Context) (int, error) {
	now := s.clock()
	today := s.policy.DateOf(now)

	stale, err := s.SessionRepository.ListStaleOpen(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	closedCount := 0
	for _, candidate := range stale {
		closed, err := s.autoClose(ctx, candidate.UserID, candidate.ID, now)
		if err != nil {
			return closedCount, fmt.Errorf("failed to auto close session %s: %w", candidate.ID, err)
		}
		if closed {
			closedCount++
			s.publish(ctx, candidate.UserID)
		}
	}

	return closedCount, nil
}

// settleStale auto closes the user's session left open from an earlier business day, so
// the request that follows is judged against today's ledger.
func (s *SessionServiceImpl) settleStale(ctx context.Context, userID string, now time.Time) (bool, error) {
	closed, err := s.autoClose(ctx, userID, "", now)
	if err != nil {
		return false, fmt.Errorf("failed to auto close stale session: %w", err)
	}
	if closed {
		s.publish(ctx, userID)
	}
	return closed, nil
}

// rejectStale settles a stale session and reports that its business day is over. The
// session it referred to no longer accepts breaks or a timesheet.
func (s *SessionServiceImpl) rejectStale(ctx context.Context, userID string, now time.Time) error {
	closed, err := s.settleStale(ctx, userID, now)
	if err != nil {
		return err
	}
	if closed {
		return session.ErrBusinessDayEnded
	}
	return nil
}

// autoClose closes a stale session at the end of its business day. It re-reads the
// session under the user's lock and skips it when a concurrent request already closed
// it. An empty sessionID matches whichever session the user has open.
func (s *SessionServiceImpl) autoClose(ctx context.Context, userID, sessionID string, now time.Time) (bool, error) {
	closed := false
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.SessionRepository.LockUser(txCtx, userID); err != nil {
			return err
		}

		open, err := s.SessionRepository.GetOpenByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if open == nil || (sessionID != "" && open.ID != sessionID) || !s.policy.IsStale(*open, now) {
			return nil
		}

		closeAt := s.policy.EndOfDay(open.Date)
		if closeAt.Before(open.StartTime) {
			closeAt = open.StartTime
		}

		if brk := open.OpenBreak(); brk != nil {
			breakEnd := closeAt
			if breakEnd.Before(brk.StartTime) {
				breakEnd = brk.StartTime
			}
			if err := s.SessionRepository.CloseBreak(txCtx, brk.ID, breakEnd); err != nil {
				return err
			}
			brk.EndTime = &breakEnd
		}

		open.EndTime = &closeAt
		acct := open.Account(closeAt, s.policy.FullDayTarget)
		if acct.CanLogout {
			open.DayType = session.DayTypeFullDay
		} else {
			open.DayType = session.DayTypeHalfDay
		}
		open.AutoClosed = true

		if err := s.SessionRepository.Close(txCtx, *open); err != nil {
			return err
		}

		slog.Info("Stale work session auto closed",
			"user_id", userID,
			"session_id", open.ID,
			"date", open.Date.Format(session.DateLayout),
			"effective_seconds", acct.EffectiveSeconds(),
			"day_type", open.DayType,
		)
		closed = true
		return nil
	})
	return closed, err
}

// Subscribe implements session.SessionService.
func (s *SessionServiceImpl) Subscribe(userID string) (chan sse.Event, func()) {
	if s.hub == nil {
		ch := make(chan sse.Event)
		close(ch)
		return ch, func() {}
	}
	return s.hub.Subscribe(userID)
}

// publish pushes the user's fresh active-session view. Failures are logged only, the
// event stream never affects ledger state.
func (s *SessionServiceImpl) publish(ctx context.Context, userID string) {
	if s.hub == nil || s.hub.SubscriberCount(userID) == 0 {
		return
	}

	active, err := s.GetActiveSession(ctx, userID)
	if err != nil {
		slog.Error("Failed to build session event", "user_id", userID, "error", err)
		return
	}

	s.hub.Publish(userID, sse.Event{
		UserID: userID,
		Event:  EventSessionUpdated,
		Data:   active,
	})
}
