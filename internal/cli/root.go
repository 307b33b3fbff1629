package cli

import (
	"fmt"
	"os"
	"strings"

	"roster-cli/internal/format"
	"roster-cli/internal/logging"
	"roster-cli/internal/store"
	"roster-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultActor = "local"

type App struct {
	Dir        string
	ActorID    string
	PrettyJSON bool
	Format     string
	DebugLog   string

	cfg store.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "roster",
		Short:        "Roster: spa booking board (CLI + TUI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  roster

  # Book a customer
  roster bookings add --customer Nadia --service thai --worker Ayu

  # Move a booking the way a gantt drop does
  roster tasks drop t3 --worker Budi --at 2024-01-01T11:00

  # Direct task lookup (shortcut for: roster tasks show t12)
  roster t12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		path := app.DebugLog
		if path == "" {
			path = cfg.DebugLog
		}
		l, err := logging.New(path)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("debug log: %w", err))
		}
		app.log = l
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("ROSTER_DIR", ""), "Path to store dir (default: ~/.roster/data)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("ROSTER_ACTOR", ""), "Actor id recorded in the event log (default: local)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ROSTER_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.DebugLog, "debug-log", envOr("ROSTER_DEBUG_LOG", ""), "Append debug logs (JSON lines) to this file")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newWorkersCmd(app))
	cmd.AddCommand(newServicesCmd(app))
	cmd.AddCommand(newBookingsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

func runTUI(app *App) error {
	db, _, err := loadDB(app)
	if err != nil {
		return err
	}
	return tui.Run(app.Dir, db, app.cfg, app.actor(), app.logger())
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	dir, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = dir
	return dir, nil
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

// commit saves db and records the change. A failed event append is logged,
// the saved state stands.
func commit(app *App, s store.Store, db *store.DB, typ, entityID string, payload any) error {
	if err := s.Save(db); err != nil {
		return err
	}
	if err := s.AppendEvent(app.actor(), typ, entityID, payload); err != nil {
		app.logger().Warn("append event failed", zap.String("type", typ), zap.Error(err))
	}
	return nil
}

func (app *App) actor() string {
	if a := strings.TrimSpace(app.ActorID); a != "" {
		return a
	}
	return defaultActor
}

func (app *App) logger() *zap.Logger {
	return logging.OrNop(app.log)
}

// config falls back to the defaults when no pre-run hook loaded one.
func (app *App) config() store.Config {
	if app.cfg.WindowDays <= 0 {
		return store.DefaultConfig()
	}
	return app.cfg
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeData(cmd *cobra.Command, app *App, data any, hints ...string) error {
	return writeOut(cmd, app, format.Envelope{Data: data, Hints: hints})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
