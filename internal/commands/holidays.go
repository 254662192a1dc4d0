package commands

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/repository/postgresql"
	holidayService "github.com/cmlabs-hris/worktracker-backend-go/internal/service/holiday"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Manage the holiday calendar",
}

var holidaysImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import holidays from a YAML file, replacing entries on the same date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		file, err := readHolidayFile(path)
		if err != nil {
			return err
		}

		return withDB(cmd.Context(), func(cfg *config.Config, db *database.DB) error {
			svc := holidayService.NewHolidayService(postgresql.NewTxManager(db), postgresql.NewHolidayRepository(db))

			imported, err := svc.Import(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range imported {
				fmt.Fprintf(out, "%s  %-9s  %s\n", h.Date.Format("2006-01-02"), h.Type, h.Name)
			}
			fmt.Fprintf(out, "Imported %d holidays\n", len(imported))
			return nil
		})
	},
}

func readHolidayFile(path string) (holiday.ImportFile, error) {
	var file holiday.ImportFile

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return file, nil
}

func init() {
	holidaysImportCmd.Flags().StringP("file", "f", "", "YAML file with a holidays list")
	_ = holidaysImportCmd.MarkFlagRequired("file")
	holidaysCmd.AddCommand(holidaysImportCmd)
}
