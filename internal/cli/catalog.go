package cli

import (
	"github.com/spf13/cobra"
)

func newWorkersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Workers (one gantt row and one board list each)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List workers in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, db.Workers)
		},
	})
	return cmd
}

func newServicesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Services (one chart color each)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List services with their durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, db.Services)
		},
	})
	return cmd
}
