package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Event log (bookings and moves)",
	}
	cmd.AddCommand(newEventsListCmd(app))
	return cmd
}

func newEventsListCmd(app *App) *cobra.Command {
	var limit int
	var entity string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if entity != "" {
				evs, err := s.ReadEventsForEntity(entity, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, app, evs)
			}
			evs, err := s.ReadEvents(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, evs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max events (0 = all)")
	cmd.Flags().StringVar(&entity, "entity", "", "Only events of this task id")
	return cmd
}
