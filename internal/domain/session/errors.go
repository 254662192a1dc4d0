package session

import "errors"

type ErrorKind string

const (
	KindPolicy   ErrorKind = "policy_violation"
	KindState    ErrorKind = "state_error"
	KindNotFound ErrorKind = "not_found"
)

// DomainError is a ledger failure tagged with the category the transport maps to a status code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

var (
	// Policy violations
	ErrAlreadyStartedToday   = &DomainError{KindPolicy, "ALREADY_STARTED_TODAY", "you have already logged in today, only one session is allowed per day"}
	ErrLogoutBeforeThreshold = &DomainError{KindPolicy, "LOGOUT_BEFORE_THRESHOLD", "full day target not reached yet, apply half day instead"}
	ErrHalfDayNotAllowed     = &DomainError{KindPolicy, "HALF_DAY_NOT_ALLOWED", "full day target already reached, end the session instead"}
	ErrBusinessDayEnded      = &DomainError{KindPolicy, "BUSINESS_DAY_ENDED", "the business day of this session has ended"}
	ErrBreakAlreadyOpen      = &DomainError{KindPolicy, "BREAK_ALREADY_OPEN", "a break is already in progress"}

	// State errors
	ErrAlreadyActive   = &DomainError{KindState, "SESSION_ALREADY_ACTIVE", "an active session already exists"}
	ErrNoActiveSession = &DomainError{KindState, "NO_ACTIVE_SESSION", "no active session found"}
	ErrNoOpenBreak     = &DomainError{KindState, "NO_OPEN_BREAK", "no break in progress"}

	ErrSessionNotFound = &DomainError{KindNotFound, "SESSION_NOT_FOUND", "session not found"}
)

// AsError unwraps err into a DomainError.
func AsError(err error) (*DomainError, bool) {
	var e *DomainError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
