package session

import (
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
)

// Gate rules for ledger transitions. Each returns nil when the transition is allowed.

// checkCanStart enforces one session per user and business date. Any other session
// still open at this point blocks a new start as a state error.
func checkCanStart(today, open *session.WorkSession) error {
	if today != nil {
		return session.ErrAlreadyStartedToday
	}
	if open != nil {
		return session.ErrAlreadyActive
	}
	return nil
}

func checkCanLogout(acct session.Accounting) error {
	if !acct.CanLogout {
		return session.ErrLogoutBeforeThreshold
	}
	return nil
}

// checkCanApplyHalfDay allows a half day only below target and before the business day ends.
func checkCanApplyHalfDay(acct session.Accounting, now, endOfDay time.Time) error {
	if acct.CanLogout {
		return session.ErrHalfDayNotAllowed
	}
	if !now.Before(endOfDay) {
		return session.ErrBusinessDayEnded
	}
	return nil
}

func checkCanStartBreak(ws *session.WorkSession) error {
	if ws == nil {
		return session.ErrNoActiveSession
	}
	if ws.OpenBreak() != nil {
		return session.ErrBreakAlreadyOpen
	}
	return nil
}

func checkCanEndBreak(ws *session.WorkSession) error {
	if ws == nil {
		return session.ErrNoActiveSession
	}
	if ws.OpenBreak() == nil {
		return session.ErrNoOpenBreak
	}
	return nil
}
