package model

import "time"

type Worker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMin int    `json:"durationMin"`
}

// Task is one booking. Its position in a WorkerColumn determines when it runs.
type Task struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	ServiceID string    `json:"serviceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkerColumn is the ordered queue of tasks one worker performs on a day.
type WorkerColumn struct {
	WorkerID string `json:"workerId"`
	Tasks    []Task `json:"tasks"`
}

type DayPlan struct {
	Date    string         `json:"date"` // YYYY-MM-DD
	Columns []WorkerColumn `json:"columns"`
}

// ScheduleRow is a task placed on the timeline.
//
// Start/Finish are wall-clock times of the spa expressed in UTC, so that
// 09:00 on the floor is 09:00Z on the chart axis.
type ScheduleRow struct {
	Day         string    `json:"day"`
	TaskID      string    `json:"taskId"`
	Customer    string    `json:"customer"`
	ServiceID   string    `json:"serviceId"`
	Service     string    `json:"service"`
	WorkerID    string    `json:"workerId"`
	Worker      string    `json:"worker"`
	Start       time.Time `json:"start"`
	Finish      time.Time `json:"finish"`
	DurationMin int       `json:"durationMin"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	ActorID  string    `json:"actorId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
