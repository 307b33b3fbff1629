package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"roster-cli/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// The TUI and the web server may share one store directory.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			pos INTEGER NOT NULL,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			pos INTEGER NOT NULL,
			name TEXT NOT NULL,
			duration_min INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			day TEXT NOT NULL,
			worker_id TEXT NOT NULL,
			pos INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(day, worker_id, pos);`,
		`CREATE TABLE IF NOT EXISTS days (
			day TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			created_at_unixms INTEGER NOT NULL,
			actor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite reads the full state. A fresh store yields an empty DB.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := &DB{Version: 1}
	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if n, err := strconv.Atoi(readMeta("version")); err == nil {
		out.Version = n
	}
	if n, err := strconv.Atoi(readMeta("seq")); err == nil {
		out.Seq = n
	}

	rows, err := db.QueryContext(ctx, `SELECT id, name FROM workers ORDER BY pos ASC`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var w model.Worker
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			rows.Close()
			return nil, err
		}
		out.Workers = append(out.Workers, w)
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT id, name, duration_min FROM services ORDER BY pos ASC`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sv model.Service
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.DurationMin); err != nil {
			rows.Close()
			return nil, err
		}
		out.Services = append(out.Services, sv)
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT day FROM days ORDER BY day ASC`)
	if err != nil {
		return nil, err
	}
	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			rows.Close()
			return nil, err
		}
		days = append(days, d)
	}
	rows.Close()
	for _, d := range days {
		out.EnsureDay(d)
	}

	rows, err = db.QueryContext(ctx, `SELECT day, worker_id, json FROM tasks ORDER BY day ASC, worker_id ASC, pos ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var day, workerID, js string
		if err := rows.Scan(&day, &workerID, &js); err != nil {
			return nil, err
		}
		var t model.Task
		if err := json.Unmarshal([]byte(js), &t); err != nil {
			return nil, err
		}
		d := out.EnsureDay(day)
		col, ok := Column(d, workerID)
		if !ok {
			// Worker was removed from the catalog; keep the column so nothing is lost.
			d.Columns = append(d.Columns, model.WorkerColumn{WorkerID: workerID})
			col = &d.Columns[len(d.Columns)-1]
		}
		col.Tasks = append(col.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out.Workers == nil {
		out.Workers = []model.Worker{}
	}
	if out.Services == nil {
		out.Services = []model.Service{}
	}
	if out.Days == nil {
		out.Days = []model.DayPlan{}
	}
	return out, nil
}

func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"version": strconv.Itoa(st.Version),
		"seq":     strconv.Itoa(st.Seq),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all: the state is small and a save is always a full snapshot.
	for _, t := range []string{"workers", "services", "days", "tasks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	for i, w := range st.Workers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO workers(id, pos, name) VALUES(?, ?, ?)`, w.ID, i, w.Name); err != nil {
			return err
		}
	}
	for i, sv := range st.Services {
		if _, err := tx.ExecContext(ctx, `INSERT INTO services(id, pos, name, duration_min) VALUES(?, ?, ?, ?)`,
			sv.ID, i, sv.Name, sv.DurationMin); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for _, d := range st.Days {
		if _, err := tx.ExecContext(ctx, `INSERT INTO days(day) VALUES(?)`, d.Date); err != nil {
			return err
		}
		for _, col := range d.Columns {
			for pos, t := range col.Tasks {
				raw, err := json.Marshal(t)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, day, worker_id, pos, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
					t.ID, d.Date, col.WorkerID, pos, string(raw), nowMs); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

func sortDays(days []model.DayPlan) {
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
}
