package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	sessionHandler SessionHandler,
	calendarHandler CalendarHandler,
	dashboardHandler DashboardHandler,
) *chi.Mux {
	r := chi.NewRouter()
	ja := JWTService.JWTAuth()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  cfg.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Streams cannot set headers from the browser, so the token may come in ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(ja))

			r.Get("/sessions/stream", sessionHandler.Stream)
			r.Get("/sessions/ws", sessionHandler.WebSocket)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(ja))
			r.Use(middleware.AuthRequired(ja))
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/start", sessionHandler.Start)
				r.Post("/end", sessionHandler.End)
				r.Get("/active", sessionHandler.Active)
				r.Get("/can-start-today", sessionHandler.CanStartToday)
				r.Get("/history", sessionHandler.History)
			})

			r.Route("/breaks", func(r chi.Router) {
				r.Post("/start", sessionHandler.StartBreak)
				r.Post("/end", sessionHandler.EndBreak)
			})

			r.Post("/leaves/half-day", sessionHandler.HalfDay)
			r.Get("/calendar/month", calendarHandler.Month)
			r.Get("/dashboard/stats", dashboardHandler.Stats)

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/dashboard-stats", dashboardHandler.AdminStats)
				r.Get("/users", dashboardHandler.Users)
				r.Get("/users-on-leave", dashboardHandler.UsersOnLeave)
				r.Get("/users/{userID}/sessions", sessionHandler.UserHistory)
			})
		})
	})
	return r
}

// NewRequestLogger builds the ECS JSON logger used for request logs.
func NewRequestLogger(env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worktracker"),
		slog.String("env", env),
	)
}
