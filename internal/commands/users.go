package commands

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := user.CreateUserRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Role, _ = cmd.Flags().GetString("role")
		if phone, _ := cmd.Flags().GetString("phone"); phone != "" {
			req.Phone = &phone
		}

		if err := req.Validate(); err != nil {
			return err
		}

		return withDB(cmd.Context(), func(cfg *config.Config, db *database.DB) error {
			created, err := postgresql.NewUserRepository(db).Create(cmd.Context(), user.User{
				Name:     strings.TrimSpace(req.Name),
				Email:    strings.ToLower(strings.TrimSpace(req.Email)),
				Phone:    req.Phone,
				Role:     user.Role(req.Role),
				IsActive: true,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (%s)\n", created.Role, created.ID, created.Email)
			return nil
		})
	},
}

func init() {
	usersCreateCmd.Flags().String("name", "", "display name")
	usersCreateCmd.Flags().String("email", "", "login email")
	usersCreateCmd.Flags().String("phone", "", "optional phone number")
	usersCreateCmd.Flags().String("role", string(user.RoleEmployee), "employee or admin")
	_ = usersCreateCmd.MarkFlagRequired("name")
	_ = usersCreateCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(usersCreateCmd)
}
