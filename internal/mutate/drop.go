package mutate

import (
	"strconv"
	"strings"
	"time"

	"roster-cli/internal/dnd"
	"roster-cli/internal/model"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

// MoveResult describes where a task went.
type MoveResult struct {
	Task         model.Task
	FromDay      string
	FromWorkerID string
	FromIndex    int
	ToDay        string
	ToWorkerID   string
	ToIndex      int
	Changed      bool
	EventPayload map[string]any
}

// ParseDropTime accepts the ISO timestamps produced by the chart (millisecond
// precision, Z suffix) and plain RFC 3339.
func ParseDropTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04:05.000Z07:00", time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, InvalidError{Field: "dropXISO", Reason: "unparseable time " + strconv.Quote(s)}
}

// ApplyGanttDrop moves the dragged task to the dropped worker row. The new
// queue position is the number of that worker's bars starting at or before
// the drop time, measured on the schedule without the dragged task. The
// destination day is the calendar date of the drop time.
//
// Nothing changes when the task, worker or time cannot be resolved.
func ApplyGanttDrop(db *store.DB, cfg store.Config, d dnd.DropDetail) (MoveResult, error) {
	taskID := strings.TrimSpace(d.TaskID)
	if taskID == "" {
		return MoveResult{}, InvalidError{Field: "taskId", Reason: "required"}
	}
	dropAt, err := ParseDropTime(d.DropXISO)
	if err != nil {
		return MoveResult{}, err
	}
	w, ok := db.FindWorkerByName(d.DropWorkerName)
	if !ok {
		return MoveResult{}, NotFoundError{Kind: "worker", ID: d.DropWorkerName}
	}
	fromRef, _, ok := db.FindTask(taskID)
	if !ok {
		return MoveResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	fromDay, _ := db.FindDay(fromRef.Day)
	fromWorker := fromDay.Columns[fromRef.Column].WorkerID

	toDay := dropAt.Format(schedule.DayLayout)

	// Work on a copy so a failure leaves db untouched.
	work := cloneDB(db)
	_, task, _ := work.RemoveTask(taskID)
	work.EnsureDay(toDay)
	rows, err := schedule.BuildDay(work, cfg, toDay)
	if err != nil {
		return MoveResult{}, err
	}
	idx := 0
	for _, r := range schedule.WorkerRows(rows, w.ID) {
		if !r.Start.After(dropAt) {
			idx++
		}
	}
	idx, err = work.InsertTask(toDay, w.ID, idx, task)
	if err != nil {
		return MoveResult{}, err
	}
	*db = *work

	return MoveResult{
		Task:         task,
		FromDay:      fromRef.Day,
		FromWorkerID: fromWorker,
		FromIndex:    fromRef.Index,
		ToDay:        toDay,
		ToWorkerID:   w.ID,
		ToIndex:      idx,
		Changed:      fromRef.Day != toDay || fromWorker != w.ID || fromRef.Index != idx,
		EventPayload: map[string]any{
			"day":      toDay,
			"workerId": w.ID,
			"index":    idx,
			"dropXISO": strings.TrimSpace(d.DropXISO),
		},
	}, nil
}

func cloneDB(db *store.DB) *store.DB {
	out := *db
	out.Workers = append([]model.Worker(nil), db.Workers...)
	out.Services = append([]model.Service(nil), db.Services...)
	out.Days = make([]model.DayPlan, len(db.Days))
	for i, d := range db.Days {
		cols := make([]model.WorkerColumn, len(d.Columns))
		for j, c := range d.Columns {
			cols[j] = model.WorkerColumn{WorkerID: c.WorkerID, Tasks: append([]model.Task(nil), c.Tasks...)}
		}
		out.Days[i] = model.DayPlan{Date: d.Date, Columns: cols}
	}
	return &out
}
