package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"roster-cli/internal/model"
	"roster-cli/internal/store"
)

const DayLayout = "2006-01-02"

// Window is the time span shown by a multi-day view.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// RoundUpMinutes rounds t up to the next multiple of slot minutes within the hour.
// Times already on a slot boundary (with no seconds) are returned unchanged.
func RoundUpMinutes(t time.Time, slot int) time.Time {
	if slot <= 0 {
		return t
	}
	base := t.Truncate(time.Minute)
	if t.Minute()%slot == 0 && t.Equal(base) {
		return t
	}
	q := t.Minute() / slot
	return base.Add(time.Duration((q+1)*slot-t.Minute()) * time.Minute)
}

// ParseDay parses YYYY-MM-DD as a UTC midnight.
func ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}

// Today returns the local calendar date of now.
func Today(now time.Time) string {
	return now.Format(DayLayout)
}

// Days lists count consecutive dates starting at start.
func Days(start string, count int) ([]string, error) {
	d, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 1
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, d.AddDate(0, 0, i).Format(DayLayout))
	}
	return out, nil
}

// BuildDay lays out the tasks of one day back to back per worker, starting at
// the configured day start rounded up to the slot. Rows follow worker catalog
// order, then queue order.
func BuildDay(db *store.DB, cfg store.Config, day string) ([]model.ScheduleRow, error) {
	date, err := ParseDay(day)
	if err != nil {
		return nil, err
	}
	startOff, err := store.ParseClock(cfg.DayStart)
	if err != nil {
		return nil, err
	}
	rows := []model.ScheduleRow{}
	plan, ok := db.FindDay(day)
	if !ok {
		return rows, nil
	}
	first := RoundUpMinutes(date.Add(startOff), cfg.SlotMinutes)
	for _, col := range orderedColumns(db, plan) {
		workerName := col.WorkerID
		if w, ok := db.FindWorker(col.WorkerID); ok {
			workerName = w.Name
		}
		cur := first
		for _, t := range col.Tasks {
			svc, ok := db.FindService(t.ServiceID)
			if !ok {
				return nil, fmt.Errorf("task %s: unknown service %q", t.ID, t.ServiceID)
			}
			end := cur.Add(time.Duration(svc.DurationMin) * time.Minute)
			rows = append(rows, model.ScheduleRow{
				Day:         day,
				TaskID:      t.ID,
				Customer:    t.Customer,
				ServiceID:   svc.ID,
				Service:     svc.Name,
				WorkerID:    col.WorkerID,
				Worker:      workerName,
				Start:       cur,
				Finish:      end,
				DurationMin: svc.DurationMin,
			})
			cur = end
		}
	}
	return rows, nil
}

// Build returns the rows of days consecutive dates starting at startDay.
func Build(db *store.DB, cfg store.Config, startDay string, days int) ([]model.ScheduleRow, error) {
	dates, err := Days(startDay, days)
	if err != nil {
		return nil, err
	}
	out := []model.ScheduleRow{}
	for _, d := range dates {
		rows, err := BuildDay(db, cfg, d)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// WindowFor spans startDay's day start to the last day's day end, widened to
// cover rows that run past closing.
func WindowFor(cfg store.Config, startDay string, days int, rows []model.ScheduleRow) (Window, error) {
	dates, err := Days(startDay, days)
	if err != nil {
		return Window{}, err
	}
	startOff, err := store.ParseClock(cfg.DayStart)
	if err != nil {
		return Window{}, err
	}
	endOff, err := store.ParseClock(cfg.DayEnd)
	if err != nil {
		return Window{}, err
	}
	first, _ := ParseDay(dates[0])
	last, _ := ParseDay(dates[len(dates)-1])
	w := Window{Start: first.Add(startOff), End: last.Add(endOff)}
	for _, r := range rows {
		if r.Finish.After(w.End) {
			w.End = r.Finish
		}
	}
	return w, nil
}

// WorkerRows returns the rows of one worker sorted by start.
func WorkerRows(rows []model.ScheduleRow, workerID string) []model.ScheduleRow {
	var out []model.ScheduleRow
	for _, r := range rows {
		if r.WorkerID == workerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func orderedColumns(db *store.DB, plan *model.DayPlan) []model.WorkerColumn {
	pos := map[string]int{}
	for i, w := range db.Workers {
		pos[w.ID] = i
	}
	cols := append([]model.WorkerColumn(nil), plan.Columns...)
	sort.SliceStable(cols, func(i, j int) bool {
		pi, iok := pos[cols[i].WorkerID]
		pj, jok := pos[cols[j].WorkerID]
		if iok != jok {
			return iok
		}
		return pi < pj
	})
	return cols
}
