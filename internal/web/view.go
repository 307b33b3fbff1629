package web

import (
	"encoding/json"
	"time"

	"roster-cli/internal/gantt"
	"roster-cli/internal/model"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

type barVM struct {
	TaskID   string
	Customer string
	Service  string
	Trace    int
	Point    int
	LeftPct  float64
	WidthPct float64
	Color    string
	Title    string
}

type bandVM struct {
	Worker model.Worker
	Bars   []barVM
}

type itemVM struct {
	TaskID   string
	Customer string
	Service  string
	When     string
}

type listVM struct {
	WorkerID string
	Name     string
	Items    []itemVM
}

type tickVM struct {
	Label   string
	LeftPct float64
}

type legendVM struct {
	Service string
	Color   string
}

type scheduleVM struct {
	StartDay string
	PrevDay  string
	NextDay  string
	Days     int
	BoardDay string
	ReadOnly bool

	WindowStartMS  int64
	WindowEndMS    int64
	CategoriesJSON string

	Bands  []bandVM
	Lists  []listVM
	Ticks  []tickVM
	Legend []legendVM
}

// buildScheduleVM lays out days days from startDay. Bar trace and point
// indexes follow the gantt layout so both renderings address bars alike.
func buildScheduleVM(db *store.DB, cfg store.Config, startDay string, days int) (scheduleVM, error) {
	start, err := schedule.ParseDay(startDay)
	if err != nil {
		return scheduleVM{}, err
	}
	rows, err := schedule.Build(db, cfg, startDay, days)
	if err != nil {
		return scheduleVM{}, err
	}
	win, err := schedule.WindowFor(cfg, startDay, days, rows)
	if err != nil {
		return scheduleVM{}, err
	}
	l := gantt.Build(rows, db.Workers, win, 1000, len(db.Workers)+1)

	vm := scheduleVM{
		StartDay:      startDay,
		PrevDay:       start.AddDate(0, 0, -1).Format(schedule.DayLayout),
		NextDay:       start.AddDate(0, 0, 1).Format(schedule.DayLayout),
		Days:          days,
		BoardDay:      startDay,
		WindowStartMS: win.Start.UnixMilli(),
		WindowEndMS:   win.End.UnixMilli(),
	}

	cats := make([]string, len(db.Workers))
	for i, w := range db.Workers {
		cats[i] = w.Name
		vm.Bands = append(vm.Bands, bandVM{Worker: w})
	}
	b, _ := json.Marshal(cats)
	vm.CategoriesJSON = string(b)

	span := float64(win.Duration().Milliseconds())
	pct := func(t time.Time) float64 {
		if span <= 0 {
			return 0
		}
		return float64(t.Sub(win.Start).Milliseconds()) / span * 100
	}
	for _, bar := range l.Bars {
		r := bar.Row
		vm.Bands[bar.Band].Bars = append(vm.Bands[bar.Band].Bars, barVM{
			TaskID:   r.TaskID,
			Customer: r.Customer,
			Service:  r.Service,
			Trace:    bar.Ref.Trace,
			Point:    bar.Ref.Point,
			LeftPct:  pct(r.Start),
			WidthPct: pct(r.Finish) - pct(r.Start),
			Color:    gantt.TraceColor(bar.Ref.Trace).Dark,
			Title:    r.Customer + " · " + r.Service + " · " + r.Start.Format("Mon 15:04") + "-" + r.Finish.Format("15:04"),
		})
	}
	for i, tr := range l.Traces {
		vm.Legend = append(vm.Legend, legendVM{Service: tr.Service, Color: gantt.TraceColor(i).Dark})
	}

	step := time.Hour
	if win.Duration() > 24*time.Hour {
		step = 3 * time.Hour
	}
	for t := win.Start.Truncate(step); !t.After(win.End); t = t.Add(step) {
		if t.Before(win.Start) {
			continue
		}
		label := t.Format("15:04")
		if t.Hour() == 0 || t.Equal(win.Start) {
			label = t.Format("Mon 02 15:04")
		}
		vm.Ticks = append(vm.Ticks, tickVM{Label: label, LeftPct: pct(t)})
	}

	boardRows, err := schedule.BuildDay(db, cfg, startDay)
	if err != nil {
		return scheduleVM{}, err
	}
	for _, w := range db.Workers {
		lv := listVM{WorkerID: w.ID, Name: w.Name}
		for _, r := range schedule.WorkerRows(boardRows, w.ID) {
			lv.Items = append(lv.Items, itemVM{
				TaskID:   r.TaskID,
				Customer: r.Customer,
				Service:  r.Service,
				When:     r.Start.Format("15:04") + "-" + r.Finish.Format("15:04"),
			})
		}
		vm.Lists = append(vm.Lists, lv)
	}
	return vm, nil
}
