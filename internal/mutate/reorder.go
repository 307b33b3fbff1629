package mutate

import (
	"strings"

	"roster-cli/internal/dnd"
	"roster-cli/internal/store"
)

// ApplyListReorder moves a task between worker queues of one day. List ids
// are worker ids; the new index is clamped to the destination queue.
//
// The task must currently sit in the fromId queue of day, otherwise the
// reorder was produced by a stale view and is rejected.
func ApplyListReorder(db *store.DB, day string, r dnd.ReorderDetail) (MoveResult, error) {
	taskID := strings.TrimSpace(r.ItemID)
	if taskID == "" {
		return MoveResult{}, InvalidError{Field: "itemId", Reason: "required"}
	}
	fromID := strings.TrimSpace(r.FromID)
	toID := strings.TrimSpace(r.ToID)
	if _, ok := db.FindWorker(toID); !ok {
		return MoveResult{}, NotFoundError{Kind: "worker", ID: toID}
	}
	ref, _, ok := db.FindTask(taskID)
	if !ok {
		return MoveResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	d, _ := db.FindDay(ref.Day)
	curWorker := d.Columns[ref.Column].WorkerID
	if ref.Day != strings.TrimSpace(day) {
		return MoveResult{}, InvalidError{Field: "day", Reason: "task " + taskID + " is booked on " + ref.Day}
	}
	if fromID != "" && fromID != curWorker {
		return MoveResult{}, InvalidError{Field: "fromId", Reason: "task " + taskID + " is not in " + fromID}
	}
	if r.NewIndex < 0 {
		return MoveResult{}, InvalidError{Field: "newIndex", Reason: "must not be negative"}
	}

	_, task, _ := db.RemoveTask(taskID)
	idx, err := db.InsertTask(ref.Day, toID, r.NewIndex, task)
	if err != nil {
		return MoveResult{}, err
	}
	return MoveResult{
		Task:         task,
		FromDay:      ref.Day,
		FromWorkerID: curWorker,
		FromIndex:    ref.Index,
		ToDay:        ref.Day,
		ToWorkerID:   toID,
		ToIndex:      idx,
		Changed:      curWorker != toID || ref.Index != idx,
		EventPayload: map[string]any{
			"day":      ref.Day,
			"fromId":   curWorker,
			"toId":     toID,
			"newIndex": idx,
		},
	}, nil
}
