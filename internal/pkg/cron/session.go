package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
)

const JobAutoCloseStaleSessions = "auto_close_stale_sessions"

type SessionJobs struct {
	sessionService session.SessionService
	interval       time.Duration
}

func NewSessionJobs(sessionService session.SessionService, interval time.Duration) *SessionJobs {
	return &SessionJobs{
		sessionService: sessionService,
		interval:       interval,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(JobAutoCloseStaleSessions, j.interval, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes sessions left open past the end of their business day.
func (j *SessionJobs) AutoCloseStaleSessions(ctx context.Context) error {
	closed, err := j.sessionService.CloseStaleSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}

	if closed > 0 {
		slog.Info("Cron: stale sessions auto-closed", "count", closed)
	}
	return nil
}
