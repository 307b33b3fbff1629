package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"roster-cli/internal/model"
)

const sqliteFileName = "roster.sqlite"

// DB is the whole scheduling state of one store directory.
type DB struct {
	Version  int             `json:"version"`
	Seq      int             `json:"seq"`
	Workers  []model.Worker  `json:"workers"`
	Services []model.Service `json:"services"`
	Days     []model.DayPlan `json:"days"`
}

type Store struct {
	Dir string
}

// TaskRef locates a task inside DB.Days.
type TaskRef struct {
	Day    string
	Column int
	Index  int
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// ModTime returns the last write time of the store (zero if it does not exist yet).
func (s Store) ModTime() int64 {
	var latest int64
	for _, p := range []string{s.sqlitePath(), s.sqlitePath() + "-wal"} {
		if st, err := os.Stat(p); err == nil {
			if mt := st.ModTime().UnixNano(); mt > latest {
				latest = mt
			}
		}
	}
	return latest
}

// Load reads the store. An empty store is seeded with the default catalog in memory.
func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := s.LoadSQLite(context.Background())
	if err != nil {
		return nil, err
	}
	Seed(db)
	return db, nil
}

func (s Store) Save(db *DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	return s.SaveSQLite(context.Background(), db)
}

// DefaultDir is the data directory used when --dir is not given.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (db *DB) FindWorker(id string) (*model.Worker, bool) {
	id = strings.TrimSpace(id)
	for i := range db.Workers {
		if db.Workers[i].ID == id {
			return &db.Workers[i], true
		}
	}
	return nil, false
}

// FindWorkerByName matches names case-insensitively, as they are typed by people.
func (db *DB) FindWorkerByName(name string) (*model.Worker, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	for i := range db.Workers {
		if strings.EqualFold(db.Workers[i].Name, name) {
			return &db.Workers[i], true
		}
	}
	return nil, false
}

func (db *DB) FindService(id string) (*model.Service, bool) {
	id = strings.TrimSpace(id)
	for i := range db.Services {
		if db.Services[i].ID == id {
			return &db.Services[i], true
		}
	}
	return nil, false
}

func (db *DB) FindDay(date string) (*model.DayPlan, bool) {
	date = strings.TrimSpace(date)
	for i := range db.Days {
		if db.Days[i].Date == date {
			return &db.Days[i], true
		}
	}
	return nil, false
}

// EnsureDay returns the plan for date, creating it (and any missing worker
// columns) in catalog order.
func (db *DB) EnsureDay(date string) *model.DayPlan {
	date = strings.TrimSpace(date)
	d, ok := db.FindDay(date)
	if !ok {
		db.Days = append(db.Days, model.DayPlan{Date: date})
		sortDays(db.Days)
		d, _ = db.FindDay(date)
	}
	have := map[string]bool{}
	for _, c := range d.Columns {
		have[c.WorkerID] = true
	}
	for _, w := range db.Workers {
		if !have[w.ID] {
			d.Columns = append(d.Columns, model.WorkerColumn{WorkerID: w.ID})
		}
	}
	return d
}

// Column returns the worker's column of a day plan.
func Column(d *model.DayPlan, workerID string) (*model.WorkerColumn, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Columns {
		if d.Columns[i].WorkerID == workerID {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTask(taskID string) (TaskRef, *model.Task, bool) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return TaskRef{}, nil, false
	}
	for di := range db.Days {
		d := &db.Days[di]
		for ci := range d.Columns {
			for ti := range d.Columns[ci].Tasks {
				if d.Columns[ci].Tasks[ti].ID == taskID {
					return TaskRef{Day: d.Date, Column: ci, Index: ti}, &d.Columns[ci].Tasks[ti], true
				}
			}
		}
	}
	return TaskRef{}, nil, false
}

// RemoveTask takes the task out of its column and returns it.
func (db *DB) RemoveTask(taskID string) (TaskRef, model.Task, bool) {
	ref, t, ok := db.FindTask(taskID)
	if !ok {
		return TaskRef{}, model.Task{}, false
	}
	task := *t
	d, _ := db.FindDay(ref.Day)
	col := &d.Columns[ref.Column]
	col.Tasks = append(col.Tasks[:ref.Index:ref.Index], col.Tasks[ref.Index+1:]...)
	return ref, task, true
}

// InsertTask places t into the worker's column of date at index (clamped).
func (db *DB) InsertTask(date, workerID string, index int, t model.Task) (int, error) {
	if _, ok := db.FindWorker(workerID); !ok {
		return 0, errors.New("unknown worker: " + workerID)
	}
	d := db.EnsureDay(date)
	col, ok := Column(d, workerID)
	if !ok {
		return 0, errors.New("no column for worker: " + workerID)
	}
	if index < 0 {
		index = 0
	}
	if index > len(col.Tasks) {
		index = len(col.Tasks)
	}
	col.Tasks = append(col.Tasks, model.Task{})
	copy(col.Tasks[index+1:], col.Tasks[index:])
	col.Tasks[index] = t
	return index, nil
}
