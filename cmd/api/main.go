package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	appHTTP "github.com/cmlabs-hris/worktracker-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/repository/postgresql"
	calendarService "github.com/cmlabs-hris/worktracker-backend-go/internal/service/calendar"
	dashboardService "github.com/cmlabs-hris/worktracker-backend-go/internal/service/dashboard"
	sessionService "github.com/cmlabs-hris/worktracker-backend-go/internal/service/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	policy := session.NewPolicy(cfg.Attendance.Location, cfg.Attendance.FullDayTarget)
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	sessionSvc := sessionService.NewSessionService(txManager, sessionRepo, userRepo, leaveRequestRepo, policy, hub, nil)
	calendarSvc := calendarService.NewCalendarService(txManager, userRepo, sessionRepo, leaveRequestRepo, holidayRepo, policy, nil)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, leaveRequestRepo, userRepo, policy, cfg.Attendance.RecentSessionsLimit, nil)

	sessionHandler := appHTTP.NewSessionHandler(sessionSvc, cfg.App.CORSAllowedOrigins)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)

	scheduler := cron.NewScheduler(ctx)
	if err := cron.NewSessionJobs(sessionSvc, cfg.Attendance.StaleCheckInterval).RegisterJobs(scheduler); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         appHTTP.NewRequestLogger(cfg.App.Env, cfg.SlogLevel()),
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		sessionHandler,
		calendarHandler,
		dashboardHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hub.Shutdown)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", server.Addr, "timezone", cfg.Attendance.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
