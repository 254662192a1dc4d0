package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "validation",
			err:        validator.ValidationErrors{{Field: "task_id", Message: "task_id is required"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "policy violation",
			err:        fmt.Errorf("end session: %w", session.ErrLogoutBeforeThreshold),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "POLICY_VIOLATION",
			wantReason: "LOGOUT_BEFORE_THRESHOLD",
		},
		{
			name:       "state error",
			err:        session.ErrNoActiveSession,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
			wantReason: "NO_ACTIVE_SESSION",
		},
		{
			name:       "not found",
			err:        session.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown user",
			err:        user.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unexpected",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, c.err)

			assert.Equal(t, c.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, c.wantCode, body.Error.Code)
			if c.wantReason != "" {
				assert.Equal(t, c.wantReason, body.Error.Details["reason"])
			}
		})
	}
}

func TestSuccess_NullData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())
}
