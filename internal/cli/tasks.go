package cli

import (
	"strings"

	"roster-cli/internal/dnd"
	"roster-cli/internal/interpret"
	"roster-cli/internal/model"
	"roster-cli/internal/mutate"
	"roster-cli/internal/schedule"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and move booked tasks",
	}
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksDropCmd(app))
	cmd.AddCommand(newTasksReorderCmd(app))
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its slot and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			ref, t, ok := db.FindTask(id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}
			rows, err := schedule.BuildDay(db, app.config(), ref.Day)
			if err != nil {
				return writeErr(cmd, err)
			}
			var slot *model.ScheduleRow
			for i := range rows {
				if rows[i].TaskID == id {
					slot = &rows[i]
					break
				}
			}
			events, err := s.ReadEventsForEntity(id, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{
				"task":   t,
				"day":    ref.Day,
				"index":  ref.Index,
				"slot":   slot,
				"events": events,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "events", 20, "Max events to include (0 = all)")
	return cmd
}

func newTasksDropCmd(app *App) *cobra.Command {
	var worker, at string

	cmd := &cobra.Command{
		Use:   "drop <task-id>",
		Short: "Move a task as if its bar were dropped on the chart",
		Long: strings.TrimSpace(`
Apply a gantt drop: the task moves to the worker's queue on the day of --at,
placed after every booking of that worker starting at or before --at.
`),
		Example: strings.TrimSpace(`
roster tasks drop t3 --worker Budi --at 2024-01-01T11:00
roster tasks drop t3 --worker w2 --at 2024-01-02T09:30:00.000Z
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The drop payload carries the row's display name.
			name := worker
			if w := interpret.ResolveWorker(worker, db.Workers); w != nil {
				name = w.Name
			}
			res, err := mutate.ApplyGanttDrop(db, app.config(), dnd.DropDetail{
				TaskID:         args[0],
				DropWorkerName: name,
				DropXISO:       at,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := commit(app, s, db, "task.drop", res.Task.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeData(cmd, app, moveJSON(res))
		},
	}

	cmd.Flags().StringVar(&worker, "worker", "", "Destination worker id or name (required)")
	cmd.Flags().StringVar(&at, "at", "", "Drop time, e.g. 2024-01-01T11:00 (required)")
	_ = cmd.MarkFlagRequired("worker")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newTasksReorderCmd(app *App) *cobra.Command {
	var to, from, day string
	var index int

	cmd := &cobra.Command{
		Use:   "reorder <task-id>",
		Short: "Move a task between worker queues as a board drag does",
		Example: strings.TrimSpace(`
roster tasks reorder t2 --to Budi --index 0
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			ref, _, ok := db.FindTask(id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}
			if day == "" {
				day = ref.Day
			}
			toID, err := resolveWorkerFlag(db, to)
			if err != nil {
				return writeErr(cmd, err)
			}
			var fromID string
			if strings.TrimSpace(from) != "" {
				if fromID, err = resolveWorkerFlag(db, from); err != nil {
					return writeErr(cmd, err)
				}
			}
			res, err := mutate.ApplyListReorder(db, day, dnd.ReorderDetail{
				ItemID:   id,
				FromID:   fromID,
				ToID:     toID,
				NewIndex: index,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.Changed {
				if err := commit(app, s, db, "task.reorder", res.Task.ID, res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeData(cmd, app, moveJSON(res))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination worker id or name (required)")
	cmd.Flags().StringVar(&from, "from", "", "Expected current worker; the move is refused when the task is elsewhere")
	cmd.Flags().IntVar(&index, "index", 0, "Zero-based position in the destination queue (clamped)")
	cmd.Flags().StringVar(&day, "day", "", "Board day (default: the task's day)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func moveJSON(res mutate.MoveResult) map[string]any {
	return map[string]any{
		"taskId":  res.Task.ID,
		"changed": res.Changed,
		"from":    map[string]any{"day": res.FromDay, "workerId": res.FromWorkerID, "index": res.FromIndex},
		"to":      map[string]any{"day": res.ToDay, "workerId": res.ToWorkerID, "index": res.ToIndex},
	}
}
