package cli

import (
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store and seed the default workers and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{
				"dir":      s.Dir,
				"workers":  len(db.Workers),
				"services": len(db.Services),
			}, "roster bookings add --customer <name> --service <service> --worker <worker>")
		},
	}
}
