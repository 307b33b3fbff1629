package cli

import (
	"errors"
	"strings"
	"time"

	"roster-cli/internal/interpret"
	"roster-cli/internal/mutate"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"

	"github.com/spf13/cobra"
)

func newBookingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Add, edit and delete bookings",
	}
	cmd.AddCommand(newBookingsAddCmd(app))
	cmd.AddCommand(newBookingsEditCmd(app))
	cmd.AddCommand(newBookingsDeleteCmd(app))
	cmd.AddCommand(newBookingsParseCmd(app))
	return cmd
}

func newBookingsAddCmd(app *App) *cobra.Command {
	var customer, service, worker, day string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a booking to the end of a worker's queue",
		Example: strings.TrimSpace(`
roster bookings add --customer Nadia --service thai --worker Ayu
roster bookings add --customer Oka --service svc_facial --worker w2 --day 2024-01-02
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			serviceID, err := resolveServiceFlag(db, service)
			if err != nil {
				return writeErr(cmd, err)
			}
			workerID, err := resolveWorkerFlag(db, worker)
			if err != nil {
				return writeErr(cmd, err)
			}
			if day == "" {
				day = schedule.Today(time.Now())
			}
			res, err := mutate.AddBooking(db, day, customer, serviceID, workerID, time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(app, s, db, "booking.add", res.Task.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, bookingJSON(res), "roster tasks show "+res.Task.ID)
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "Customer name (required)")
	cmd.Flags().StringVar(&service, "service", "", "Service id or name (required)")
	cmd.Flags().StringVar(&worker, "worker", "", "Worker id or name (required)")
	cmd.Flags().StringVar(&day, "day", "", "Day YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("worker")
	return cmd
}

func newBookingsEditCmd(app *App) *cobra.Command {
	var customer, service, worker string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change customer, service or worker of a booking",
		Long: strings.TrimSpace(`
Change a booking in place. Flags left empty keep their current value.
A new worker receives the booking at the end of their queue on the same day.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var serviceID, workerID string
			if strings.TrimSpace(service) != "" {
				if serviceID, err = resolveServiceFlag(db, service); err != nil {
					return writeErr(cmd, err)
				}
			}
			if strings.TrimSpace(worker) != "" {
				if workerID, err = resolveWorkerFlag(db, worker); err != nil {
					return writeErr(cmd, err)
				}
			}
			res, err := mutate.EditBooking(db, args[0], customer, serviceID, workerID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := commit(app, s, db, "booking.edit", res.Task.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeData(cmd, app, bookingJSON(res))
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "New customer name")
	cmd.Flags().StringVar(&service, "service", "", "New service id or name")
	cmd.Flags().StringVar(&worker, "worker", "", "New worker id or name")
	return cmd
}

func newBookingsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a booking; later bookings of that worker move up",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.DeleteBooking(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(app, s, db, "booking.delete", res.Task.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, bookingJSON(res))
		},
	}
}

func newBookingsParseCmd(app *App) *cobra.Command {
	var apply bool
	var day string

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Interpret a free-text booking request",
		Example: strings.TrimSpace(`
roster bookings parse 'customer "Nadia" thai massage with Ayu'
roster bookings parse --apply 'book Oka reflexology to Budi'
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			text := strings.Join(args, " ")
			c, ok := interpret.Parse(text, db.Workers, db.Services)
			if !ok {
				return writeErr(cmd, errors.New("could not find a customer, service and worker in: "+text))
			}
			if !apply {
				return writeData(cmd, app, map[string]any{"command": c}, "rerun with --apply to book it")
			}
			if day == "" {
				day = schedule.Today(time.Now())
			}
			res, err := mutate.AddBooking(db, day, c.Customer, c.ServiceID, c.WorkerID, time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(app, s, db, "booking.add", res.Task.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"command": c, "booking": bookingJSON(res)})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Book the parsed request")
	cmd.Flags().StringVar(&day, "day", "", "Day YYYY-MM-DD for --apply (default: today)")
	return cmd
}

func resolveServiceFlag(db *store.DB, s string) (string, error) {
	svc := interpret.ResolveService(s, db.Services)
	if svc == nil {
		return "", errNotFound("service", s)
	}
	return svc.ID, nil
}

func resolveWorkerFlag(db *store.DB, s string) (string, error) {
	w := interpret.ResolveWorker(s, db.Workers)
	if w == nil {
		return "", errNotFound("worker", s)
	}
	return w.ID, nil
}

func bookingJSON(res mutate.BookingResult) map[string]any {
	return map[string]any{
		"task":     res.Task,
		"day":      res.Day,
		"workerId": res.WorkerID,
		"index":    res.Index,
		"changed":  res.Changed,
	}
}
