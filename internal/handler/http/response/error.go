package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if domainErr, ok := session.AsError(err); ok {
		details := map[string]string{"reason": domainErr.Code}
		switch domainErr.Kind {
		case session.KindPolicy:
			PolicyViolation(w, domainErr.Message, details)
		case session.KindState:
			Conflict(w, domainErr.Message, details)
		case session.KindNotFound:
			NotFound(w, domainErr.Message)
		default:
			InternalServerError(w, "An unexpected error occurred")
		}
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email already registered", nil)
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrEmptyImport):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
