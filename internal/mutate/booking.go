package mutate

import (
	"strings"
	"time"

	"roster-cli/internal/model"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

type BookingResult struct {
	Task         model.Task
	Day          string
	WorkerID     string
	Index        int
	Changed      bool
	EventPayload map[string]any
}

// AddBooking pushes a new task to the end of the worker's queue for day.
//
// Callers are responsible for saving db and appending the booking.add event.
func AddBooking(db *store.DB, day, customer, serviceID, workerID string, now time.Time) (BookingResult, error) {
	customer = strings.TrimSpace(customer)
	serviceID = strings.TrimSpace(serviceID)
	workerID = strings.TrimSpace(workerID)
	if customer == "" {
		return BookingResult{}, InvalidError{Field: "customer", Reason: "required"}
	}
	if _, err := schedule.ParseDay(day); err != nil {
		return BookingResult{}, InvalidError{Field: "day", Reason: err.Error()}
	}
	if _, ok := db.FindService(serviceID); !ok {
		return BookingResult{}, NotFoundError{Kind: "service", ID: serviceID}
	}
	if _, ok := db.FindWorker(workerID); !ok {
		return BookingResult{}, NotFoundError{Kind: "worker", ID: workerID}
	}

	t := model.Task{
		ID:        db.NextTaskID(),
		Customer:  customer,
		ServiceID: serviceID,
		CreatedAt: now.UTC(),
	}
	d := db.EnsureDay(day)
	col, _ := store.Column(d, workerID)
	idx, err := db.InsertTask(day, workerID, len(col.Tasks), t)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{
		Task:     t,
		Day:      d.Date,
		WorkerID: workerID,
		Index:    idx,
		Changed:  true,
		EventPayload: map[string]any{
			"day":       d.Date,
			"customer":  customer,
			"serviceId": serviceID,
			"workerId":  workerID,
		},
	}, nil
}

// EditBooking updates a task in place. Empty arguments keep the current value.
// Changing the worker moves the task to the end of the new worker's queue on
// the same day.
func EditBooking(db *store.DB, taskID, customer, serviceID, workerID string) (BookingResult, error) {
	taskID = strings.TrimSpace(taskID)
	ref, t, ok := db.FindTask(taskID)
	if !ok {
		return BookingResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	d, _ := db.FindDay(ref.Day)
	curWorker := d.Columns[ref.Column].WorkerID

	payload := map[string]any{}
	customer = strings.TrimSpace(customer)
	serviceID = strings.TrimSpace(serviceID)
	workerID = strings.TrimSpace(workerID)
	if serviceID != "" && serviceID != t.ServiceID {
		if _, ok := db.FindService(serviceID); !ok {
			return BookingResult{}, NotFoundError{Kind: "service", ID: serviceID}
		}
	}
	if workerID != "" && workerID != curWorker {
		if _, ok := db.FindWorker(workerID); !ok {
			return BookingResult{}, NotFoundError{Kind: "worker", ID: workerID}
		}
	}

	if customer != "" && customer != t.Customer {
		t.Customer = customer
		payload["customer"] = customer
	}
	if serviceID != "" && serviceID != t.ServiceID {
		t.ServiceID = serviceID
		payload["serviceId"] = serviceID
	}

	res := BookingResult{Day: ref.Day, WorkerID: curWorker, Index: ref.Index}
	if workerID != "" && workerID != curWorker {
		_, task, _ := db.RemoveTask(taskID)
		d, _ = db.FindDay(ref.Day)
		col, _ := store.Column(d, workerID)
		n := 0
		if col != nil {
			n = len(col.Tasks)
		}
		idx, err := db.InsertTask(ref.Day, workerID, n, task)
		if err != nil {
			return BookingResult{}, err
		}
		res.WorkerID = workerID
		res.Index = idx
		payload["workerId"] = workerID
	}

	_, cur, _ := db.FindTask(taskID)
	res.Task = *cur
	if len(payload) > 0 {
		res.Changed = true
		res.EventPayload = payload
	}
	return res, nil
}

func DeleteBooking(db *store.DB, taskID string) (BookingResult, error) {
	taskID = strings.TrimSpace(taskID)
	ref, t, ok := db.RemoveTask(taskID)
	if !ok {
		return BookingResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	d, _ := db.FindDay(ref.Day)
	return BookingResult{
		Task:         t,
		Day:          ref.Day,
		WorkerID:     d.Columns[ref.Column].WorkerID,
		Index:        ref.Index,
		Changed:      true,
		EventPayload: map[string]any{"day": ref.Day, "customer": t.Customer},
	}, nil
}
