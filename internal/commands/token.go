package commands

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/validator"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Bearer token utilities",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an access token for development and testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user-id")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if !validator.IsValidUUID(userID) {
			return fmt.Errorf("invalid --user-id %q", userID)
		}
		if !user.Role(role).IsValid() {
			return fmt.Errorf("invalid --role %q, expected employee or admin", role)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
			GenerateAccessToken(userID, user.Role(role), ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().String("user-id", "", "subject user id (UUID)")
	tokenIssueCmd.Flags().String("role", string(user.RoleEmployee), "employee or admin")
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime, defaults to JWT_ACCESS_EXPIRATION_TIME")
	_ = tokenIssueCmd.MarkFlagRequired("user-id")
	tokenCmd.AddCommand(tokenIssueCmd)
}
