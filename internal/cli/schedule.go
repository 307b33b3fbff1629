package cli

import (
	"fmt"
	"time"

	"roster-cli/internal/schedule"

	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	var day string
	var days int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the timed schedule of a planning window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := app.config()
			if day == "" {
				day = schedule.Today(time.Now())
			}
			if days <= 0 {
				days = cfg.WindowDays
			}
			if days > 14 {
				return writeErr(cmd, fmt.Errorf("--days must be within 1..14 (got %d)", days))
			}
			rows, err := schedule.Build(db, cfg, day, days)
			if err != nil {
				return writeErr(cmd, err)
			}
			win, err := schedule.WindowFor(cfg, day, days, rows)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{
				"startDay": day,
				"days":     days,
				"window":   win,
				"rows":     rows,
			})
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "First day YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (default: windowDays from config)")
	return cmd
}
