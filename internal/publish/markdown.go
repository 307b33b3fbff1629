package publish

import (
	"bytes"
	"fmt"
	"strings"

	"roster-cli/internal/model"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

// RenderDayMarkdown renders the floor sheet of one day: a section per worker
// listing bookings in queue order with their computed times.
func RenderDayMarkdown(db *store.DB, cfg store.Config, day string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	date, err := schedule.ParseDay(day)
	if err != nil {
		return "", err
	}
	rows, err := schedule.BuildDay(db, cfg, day)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Roster " + day + " (" + date.Format("Monday") + ")")
	writeLn("")
	writeLn(fmt.Sprintf("- Opening hours: %s-%s", cfg.DayStart, cfg.DayEnd))
	writeLn(fmt.Sprintf("- Bookings: %d", len(rows)))
	writeLn("")

	for _, w := range db.Workers {
		wr := schedule.WorkerRows(rows, w.ID)
		writeLn("## " + w.Name)
		writeLn("")
		if len(wr) == 0 {
			writeLn("_No bookings._")
			writeLn("")
			continue
		}
		writeLn("| Time | Customer | Service | Task |")
		writeLn("|---|---|---|---|")
		total := 0
		for _, r := range wr {
			writeLn(fmt.Sprintf("| %s-%s | %s | %s | %s |",
				r.Start.Format("15:04"), r.Finish.Format("15:04"),
				escapeCell(r.Customer), escapeCell(r.Service), r.TaskID))
			total += r.DurationMin
		}
		writeLn("")
		line := fmt.Sprintf("Booked %s, last finish %s.", formatMinutes(total), wr[len(wr)-1].Finish.Format("15:04"))
		if overtime(cfg, wr[len(wr)-1]) {
			line += " **Runs past closing.**"
		}
		writeLn(line)
		writeLn("")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// RenderIndexMarkdown links the day sheets written by WriteDays.
func RenderIndexMarkdown(db *store.DB, cfg store.Config, days []string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# Roster\n\n")
	for _, day := range days {
		rows, err := schedule.BuildDay(db, cfg, day)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "- [%s](days/%s.md): %d bookings\n", day, day, len(rows))
	}
	return buf.String(), nil
}

func overtime(cfg store.Config, last model.ScheduleRow) bool {
	end, err := store.ParseClock(cfg.DayEnd)
	if err != nil {
		return false
	}
	date, err := schedule.ParseDay(last.Day)
	if err != nil {
		return false
	}
	return last.Finish.After(date.Add(end))
}

func formatMinutes(m int) string {
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	default:
		return fmt.Sprintf("%dh%02dm", m/60, m%60)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}
