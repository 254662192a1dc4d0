package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser    = "0199b0a4-8c1e-7d3a-9f51-2b6c4e8d1a70"
	otherUser   = "0199b0a4-8c1e-7d3a-9f51-2b6c4e8d1a71"
	unknownUser = "0199b0a4-8c1e-7d3a-9f51-2b6c4e8d1aff"
)

type ledgerFixture struct {
	svc      session.SessionService
	clock    *fakeClock
	sessions *fakeSessionRepo
	leaves   *fakeLeaveRepo
	hub      *sse.Hub
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		clock:    newFakeClock(at(9, 0)),
		sessions: newFakeSessionRepo(),
		leaves:   &fakeLeaveRepo{},
		hub:      sse.NewHub(),
	}
	f.svc = NewSessionService(
		&fakeTxManager{},
		f.sessions,
		newFakeUserRepo(testUser, otherUser),
		f.leaves,
		session.NewPolicy(time.UTC, 9*time.Hour),
		f.hub,
		f.clock.Now,
	)
	return f
}

func validTimesheet(userID string) session.SubmitTimesheetRequest {
	return session.SubmitTimesheetRequest{
		UserID:          userID,
		TaskID:          "TASK-42",
		WorkDescription: "Implemented the report export",
		Status:          string(session.CompletionCompleted),
	}
}

// startWithQuarterHourBreak logs in at 09:00 and takes a break from 09:30 to 09:45.
func startWithQuarterHourBreak(t *testing.T, f *ledgerFixture) session.SessionResponse {
	t.Helper()
	ctx := context.Background()

	f.clock.Set(at(9, 0))
	started, err := f.svc.StartSession(ctx, testUser)
	require.NoError(t, err)

	f.clock.Set(at(9, 30))
	_, err = f.svc.StartBreak(ctx, testUser)
	require.NoError(t, err)

	f.clock.Set(at(9, 45))
	_, err = f.svc.EndBreak(ctx, testUser)
	require.NoError(t, err)

	return started
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()

	t.Run("creates open session for today", func(t *testing.T) {
		f := newLedgerFixture(t)

		resp, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		assert.Equal(t, "2025-03-10", resp.Date)
		assert.Equal(t, "2025-03-10T09:00:00Z", resp.StartTime)
		assert.Nil(t, resp.EndTime)
		assert.Equal(t, string(session.DayTypeFullDay), resp.DayType)
		assert.Equal(t, string(session.TimesheetPending), resp.TimesheetStatus)
		assert.Empty(t, resp.Breaks)
	})

	t.Run("second start on same day is a policy violation while open", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(10, 0))
		_, err = f.svc.StartSession(ctx, testUser)
		require.ErrorIs(t, err, session.ErrAlreadyStartedToday)

		domainErr, ok := session.AsError(err)
		require.True(t, ok)
		assert.Equal(t, session.KindPolicy, domainErr.Kind)
	})

	t.Run("second start on same day is a policy violation after closing", func(t *testing.T) {
		f := newLedgerFixture(t)
		startWithQuarterHourBreak(t, f)

		f.clock.Set(at(12, 0))
		_, err := f.svc.ApplyHalfDay(ctx, validTimesheet(testUser))
		require.NoError(t, err)

		f.clock.Set(at(13, 0))
		_, err = f.svc.StartSession(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrAlreadyStartedToday)
	})

	t.Run("open session from an earlier day is auto closed first", func(t *testing.T) {
		f := newLedgerFixture(t)

		f.clock.Set(at(9, 0).AddDate(0, 0, -1))
		yesterday, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(9, 0))
		started, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-10", started.Date)

		stored := f.sessions.stored(yesterday.ID)
		require.NotNil(t, stored.EndTime)
		assert.Equal(t, at(0, 0), *stored.EndTime)
		assert.True(t, stored.AutoClosed)
		assert.Equal(t, session.DayTypeFullDay, stored.DayType)
		assert.Equal(t, session.TimesheetPending, stored.TimesheetStatus)
	})

	t.Run("open session that is not stale is a state error", func(t *testing.T) {
		f := newLedgerFixture(t)

		// dated ahead of the business clock, e.g. after a timezone change
		f.sessions.sessions["session-ahead"] = &session.WorkSession{
			ID:        "session-ahead",
			UserID:    testUser,
			Date:      at(0, 0).AddDate(0, 0, 1),
			StartTime: at(8, 0),
			DayType:   session.DayTypeFullDay,
		}

		_, err := f.svc.StartSession(ctx, testUser)
		require.ErrorIs(t, err, session.ErrAlreadyActive)

		domainErr, ok := session.AsError(err)
		require.True(t, ok)
		assert.Equal(t, session.KindState, domainErr.Kind)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, unknownUser)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("empty user id", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, " ")
		var validationErrs validator.ValidationErrors
		require.True(t, errors.As(err, &validationErrs))
		assert.Contains(t, validationErrs.ToMap(), "user_id")
	})

	t.Run("malformed user id never reaches the store", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, "user-1")
		var validationErrs validator.ValidationErrors
		require.True(t, errors.As(err, &validationErrs))
		assert.Equal(t, "user_id must be a valid UUID", validationErrs.ToMap()["user_id"])
		assert.Zero(t, f.sessions.locks)

		_, err = f.svc.GetActiveSession(ctx, "user-1")
		assert.True(t, errors.As(err, &validationErrs))

		_, err = f.svc.EndSession(ctx, validTimesheet("user-1"))
		assert.True(t, errors.As(err, &validationErrs))
	})

	t.Run("different users do not interfere", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)
		_, err = f.svc.StartSession(ctx, otherUser)
		require.NoError(t, err)
	})
}

func TestStartSession_Concurrent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StartSession(ctx, testUser)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, session.ErrAlreadyStartedToday):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)
}

func TestBreaks(t *testing.T) {
	ctx := context.Background()

	t.Run("break without session", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartBreak(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrNoActiveSession)

		_, err = f.svc.EndBreak(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrNoActiveSession)
	})

	t.Run("second break while one is open", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(10, 0))
		_, err = f.svc.StartBreak(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(10, 5))
		_, err = f.svc.StartBreak(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrBreakAlreadyOpen)
	})

	t.Run("end break without open break", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		_, err = f.svc.EndBreak(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrNoOpenBreak)
	})

	t.Run("effective time is frozen during a break", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(11, 0))
		_, err = f.svc.StartBreak(ctx, testUser)
		require.NoError(t, err)

		active, err := f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)
		before := active.EffectiveSeconds

		f.clock.Set(at(11, 20))
		active, err = f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)

		assert.Equal(t, before, active.EffectiveSeconds)
		assert.Equal(t, int64(20*60), active.BreakSeconds)
		require.NotNil(t, active.ActiveBreak)
		assert.Nil(t, active.ActiveBreak.EndTime)
	})
}

func TestQuarterHourBreakScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("below target at nine hours wall clock", func(t *testing.T) {
		f := newLedgerFixture(t)
		startWithQuarterHourBreak(t, f)

		f.clock.Set(at(18, 0))
		active, err := f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)
		require.NotNil(t, active)

		assert.Equal(t, int64(31500), active.EffectiveSeconds)
		assert.Equal(t, int64(900), active.BreakSeconds)
		assert.Equal(t, int64(900), active.RemainingSeconds)
		assert.False(t, active.CanLogout)
		assert.Equal(t, "2025-03-10T18:15:00Z", active.ETALogoutUTC)
		assert.Nil(t, active.ActiveBreak)

		_, err = f.svc.EndSession(ctx, validTimesheet(testUser))
		require.ErrorIs(t, err, session.ErrLogoutBeforeThreshold)

		closed, err := f.svc.ApplyHalfDay(ctx, validTimesheet(testUser))
		require.NoError(t, err)
		assert.Equal(t, string(session.DayTypeHalfDay), closed.DayType)
		assert.Equal(t, string(session.TimesheetSubmitted), closed.TimesheetStatus)
		assert.Equal(t, int64(31500), closed.EffectiveSeconds)

		require.Len(t, f.leaves.requests, 1)
		recorded := f.leaves.requests[0]
		assert.Equal(t, leave.StatusApproved, recorded.Status)
		assert.Equal(t, leave.DurationHalfDay, recorded.DurationType)
		assert.True(t, recorded.Covers(at(0, 0)))
	})

	t.Run("target reached at eta", func(t *testing.T) {
		f := newLedgerFixture(t)
		started := startWithQuarterHourBreak(t, f)

		f.clock.Set(at(18, 15))
		active, err := f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, int64(32400), active.EffectiveSeconds)
		assert.True(t, active.CanLogout)

		_, err = f.svc.ApplyHalfDay(ctx, validTimesheet(testUser))
		require.ErrorIs(t, err, session.ErrHalfDayNotAllowed)

		closed, err := f.svc.EndSession(ctx, validTimesheet(testUser))
		require.NoError(t, err)
		assert.Equal(t, started.ID, closed.ID)
		assert.Equal(t, string(session.DayTypeFullDay), closed.DayType)
		assert.Equal(t, string(session.TimesheetSubmitted), closed.TimesheetStatus)
		require.NotNil(t, closed.TaskID)
		assert.Equal(t, "TASK-42", *closed.TaskID)

		stored := f.sessions.stored(closed.ID)
		f.clock.Set(at(23, 0))
		assert.Equal(t, int64(32400), stored.Account(f.clock.Now(), 9*time.Hour).EffectiveSeconds())

		active, err = f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)
		assert.Nil(t, active)
	})
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("validation errors", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.EndSession(ctx, session.EndSessionRequest{UserID: testUser, Status: "Paused"})
		var validationErrs validator.ValidationErrors
		require.True(t, errors.As(err, &validationErrs))

		fields := validationErrs.ToMap()
		assert.Contains(t, fields, "task_id")
		assert.Contains(t, fields, "work_description")
		assert.Contains(t, fields, "status")
	})

	t.Run("no active session", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.EndSession(ctx, validTimesheet(testUser))
		assert.ErrorIs(t, err, session.ErrNoActiveSession)
	})

	t.Run("open break is closed at logout", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(18, 30))
		_, err = f.svc.StartBreak(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(18, 40))
		closed, err := f.svc.EndSession(ctx, validTimesheet(testUser))
		require.NoError(t, err)

		require.Len(t, closed.Breaks, 1)
		require.NotNil(t, closed.Breaks[0].EndTime)
		assert.Equal(t, "2025-03-10T18:40:00Z", *closed.Breaks[0].EndTime)
		assert.Equal(t, int64(9*3600+30*60), closed.EffectiveSeconds)

		stored := f.sessions.stored(closed.ID)
		assert.Nil(t, stored.OpenBreak())
	})
}

func TestApplyHalfDay_AfterBusinessDay(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.clock.Set(at(20, 0).AddDate(0, 0, -1))
	_, err := f.svc.StartSession(ctx, testUser)
	require.NoError(t, err)

	f.clock.Set(at(0, 30))
	_, err = f.svc.ApplyHalfDay(ctx, session.HalfDayRequest{
		UserID:          testUser,
		TaskID:          "TASK-1",
		WorkDescription: "Late wrap up",
	})
	assert.ErrorIs(t, err, session.ErrBusinessDayEnded)
	assert.Empty(t, f.leaves.requests)

	active, err := f.svc.GetActiveSession(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestStaleOpenSession(t *testing.T) {
	ctx := context.Background()
	nextMorning := at(11, 0).AddDate(0, 0, 1)

	t.Run("active session stops accruing at end of business day", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(nextMorning)
		active, err := f.svc.GetActiveSession(ctx, testUser)
		require.NoError(t, err)
		require.NotNil(t, active)

		assert.Equal(t, int64(15*3600), active.EffectiveSeconds)
		assert.Equal(t, int64(15*3600), active.Session.EffectiveSeconds)
		assert.True(t, active.CanLogout)

		seq, err := f.svc.History(ctx, testUser)
		require.NoError(t, err)
		for entry := range seq {
			assert.Equal(t, int64(15*3600), entry.TotalDurationSeconds)
		}
	})

	t.Run("end session closes at end of business day instead", func(t *testing.T) {
		f := newLedgerFixture(t)

		started, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(nextMorning)
		_, err = f.svc.EndSession(ctx, validTimesheet(testUser))
		require.ErrorIs(t, err, session.ErrBusinessDayEnded)

		stored := f.sessions.stored(started.ID)
		require.NotNil(t, stored.EndTime)
		assert.Equal(t, at(0, 0).AddDate(0, 0, 1), *stored.EndTime)
		assert.True(t, stored.AutoClosed)
		assert.Equal(t, session.DayTypeFullDay, stored.DayType)
		assert.Equal(t, session.TimesheetPending, stored.TimesheetStatus)
		assert.Nil(t, stored.TaskID)
		assert.Equal(t, int64(15*3600), stored.Account(nextMorning, 9*time.Hour).EffectiveSeconds())

		resp, err := f.svc.CanStartToday(ctx, testUser)
		require.NoError(t, err)
		assert.True(t, resp.CanStart)
	})

	t.Run("breaks on a stale session are refused", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(nextMorning)
		_, err = f.svc.StartBreak(ctx, testUser)
		require.ErrorIs(t, err, session.ErrBusinessDayEnded)

		_, err = f.svc.StartBreak(ctx, testUser)
		assert.ErrorIs(t, err, session.ErrNoActiveSession)
	})
}

func TestUnknownUserIsReported(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CanStartToday(ctx, unknownUser)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.GetActiveSession(ctx, unknownUser)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCanStartToday(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CanStartToday(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, resp.CanStart)
	assert.Nil(t, resp.SessionTime)

	_, err = f.svc.StartSession(ctx, testUser)
	require.NoError(t, err)

	f.clock.Set(at(12, 0))
	resp, err = f.svc.CanStartToday(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, resp.CanStart)
	require.NotNil(t, resp.SessionTime)
	assert.Equal(t, "2025-03-10T09:00:00Z", *resp.SessionTime)
	assert.False(t, resp.IsCompleted)

	_, err = f.svc.ApplyHalfDay(ctx, validTimesheet(testUser))
	require.NoError(t, err)

	f.clock.Set(at(23, 59))
	resp, err = f.svc.CanStartToday(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, resp.CanStart)
	assert.True(t, resp.IsCompleted)

	f.clock.Set(at(9, 0).AddDate(0, 0, 1))
	resp, err = f.svc.CanStartToday(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, resp.CanStart)
}

func TestBusinessDateFollowsPolicyTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	clock := newFakeClock(time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC))
	svc := NewSessionService(
		&fakeTxManager{},
		newFakeSessionRepo(),
		newFakeUserRepo(testUser),
		&fakeLeaveRepo{},
		session.NewPolicy(kolkata, 9*time.Hour),
		nil,
		clock.Now,
	)

	// 20:00 UTC is 01:30 the next day in Kolkata
	resp, err := svc.StartSession(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.Date)
}

func TestHistory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for day := 0; day < 3; day++ {
		f.clock.Set(at(9, 0).AddDate(0, 0, day))
		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(19, 0).AddDate(0, 0, day))
		_, err = f.svc.EndSession(ctx, validTimesheet(testUser))
		require.NoError(t, err)
	}

	seq, err := f.svc.History(ctx, testUser)
	require.NoError(t, err)

	var dates []string
	for entry := range seq {
		dates = append(dates, entry.Date)
		assert.Equal(t, "10:00:00", entry.EffectiveDuration)
		assert.Equal(t, int64(36000), entry.TotalDurationSeconds)
		assert.Equal(t, 0, entry.BreakCount)
	}
	assert.Equal(t, []string{"2025-03-12", "2025-03-11", "2025-03-10"}, dates)

	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 3, count)

	_, err = f.svc.History(ctx, unknownUser)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCloseStaleSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("closes at end of business day", func(t *testing.T) {
		f := newLedgerFixture(t)

		f.clock.Set(at(9, 0).AddDate(0, 0, -1))
		started, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(17, 0).AddDate(0, 0, -1))
		_, err = f.svc.StartBreak(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(8, 0))
		closed, err := f.svc.CloseStaleSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, closed)

		stored := f.sessions.stored(started.ID)
		require.NotNil(t, stored.EndTime)
		assert.Equal(t, at(0, 0), *stored.EndTime)
		assert.True(t, stored.AutoClosed)
		assert.Equal(t, session.DayTypeHalfDay, stored.DayType)
		assert.Equal(t, session.TimesheetPending, stored.TimesheetStatus)
		assert.Nil(t, stored.OpenBreak())

		_, err = f.svc.StartSession(ctx, testUser)
		assert.NoError(t, err)
	})

	t.Run("marks full day when target was met", func(t *testing.T) {
		f := newLedgerFixture(t)

		f.clock.Set(at(8, 0).AddDate(0, 0, -1))
		started, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(6, 0))
		closed, err := f.svc.CloseStaleSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, closed)
		assert.Equal(t, session.DayTypeFullDay, f.sessions.stored(started.ID).DayType)
	})

	t.Run("leaves today's session alone", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.svc.StartSession(ctx, testUser)
		require.NoError(t, err)

		f.clock.Set(at(23, 0))
		closed, err := f.svc.CloseStaleSessions(ctx)
		require.NoError(t, err)
		assert.Zero(t, closed)
	})
}

func TestSessionEventsArePublished(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	events, cleanup := f.svc.Subscribe(testUser)
	defer cleanup()

	_, err := f.svc.StartSession(ctx, testUser)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventSessionUpdated, ev.Event)
		active, ok := ev.Data.(*session.ActiveSessionResponse)
		require.True(t, ok)
		require.NotNil(t, active)
		assert.Equal(t, "2025-03-10T09:00:00Z", active.Session.StartTime)
	case <-time.After(time.Second):
		t.Fatal("expected session.updated event")
	}
}
