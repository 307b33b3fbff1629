package cli

import (
	"strings"
	"time"

	"roster-cli/internal/publish"
	"roster-cli/internal/schedule"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to, day string
	var days int
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write day sheets as markdown files",
		Example: strings.TrimSpace(`
roster publish --to ./sheets --day 2024-01-01 --days 3
`),
		Args: cobra.NoArgs,
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
			res, err := publish.WriteDays(db, cfg, day, days, to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, res)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory (required)")
	cmd.Flags().StringVar(&day, "day", "", "First day YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (default: windowDays from config)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
