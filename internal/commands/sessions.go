package commands

import (
	"fmt"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/repository/postgresql"
	sessionService "github.com/cmlabs-hris/worktracker-backend-go/internal/service/session"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Work session maintenance",
}

var closeStaleCmd = &cobra.Command{
	Use:   "close-stale",
	Short: "Close sessions left open past the end of their business day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(cfg *config.Config, db *database.DB) error {
			svc := sessionService.NewSessionService(
				postgresql.NewTxManager(db),
				postgresql.NewSessionRepository(db),
				postgresql.NewUserRepository(db),
				postgresql.NewLeaveRequestRepository(db),
				session.NewPolicy(cfg.Attendance.Location, cfg.Attendance.FullDayTarget),
				nil,
				nil,
			)

			closed, err := svc.CloseStaleSessions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %d stale sessions\n", closed)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(closeStaleCmd)
}
