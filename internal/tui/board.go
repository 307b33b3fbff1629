package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"roster-cli/internal/dnd"
	"roster-cli/internal/gantt"
	"roster-cli/internal/model"
)

func listZoneID(day, workerID string) string { return "board-" + day + "-" + workerID }

func cardZoneID(taskID string) string { return "card-" + taskID }

func listElement(day, workerID string) dnd.Element {
	return dnd.Element{
		ID:      listZoneID(day, workerID),
		Classes: []string{dnd.ClassList},
		Attrs:   map[string]string{dnd.AttrListID: workerID},
	}
}

func cardElement(taskID string) dnd.Element {
	return dnd.Element{
		ID:      cardZoneID(taskID),
		Classes: []string{dnd.ClassItem},
		Attrs:   map[string]string{dnd.AttrItemID: taskID},
	}
}

// boardColumn is one worker's queue as drawn on the board.
type boardColumn struct {
	Worker model.Worker
	Rows   []model.ScheduleRow
}

func boardColumns(workers []model.Worker, rows []model.ScheduleRow) []boardColumn {
	out := make([]boardColumn, 0, len(workers))
	for _, w := range workers {
		col := boardColumn{Worker: w}
		for _, r := range rows {
			if r.WorkerID == w.ID {
				col.Rows = append(col.Rows, r)
			}
		}
		out = append(out, col)
	}
	return out
}

type boardView struct {
	day       string
	cols      []boardColumn
	width     int
	selWorker int
	selIndex  int
	dragging  string // task id of a card being dragged
	hoverList string // list zone id under the pointer during a card drag
}

func (b boardView) lists() []dnd.Element {
	out := make([]dnd.Element, 0, len(b.cols))
	for _, c := range b.cols {
		out = append(out, listElement(b.day, c.Worker.ID))
	}
	return out
}

func (b boardView) render(m gantt.Marker) string {
	if m == nil {
		m = gantt.NopMarker{}
	}
	inner := b.width - 2
	if inner < 8 {
		inner = 8
	}
	var sections []string
	for wi, c := range b.cols {
		zid := listZoneID(b.day, c.Worker.ID)
		title := c.Worker.Name
		if n := len(c.Rows); n > 0 {
			title = fmt.Sprintf("%s (%d)", title, n)
		}
		head := styleHeader()
		if zid == b.hoverList {
			head = head.Background(colorDropBorder)
		}
		lines := []string{head.Render(ansi.Truncate(title, inner, "…"))}
		for i, r := range c.Rows {
			selected := wi == b.selWorker && i == b.selIndex
			card := b.renderCard(r, inner, selected)
			lines = append(lines, m.Mark(cardZoneID(r.TaskID), card))
		}
		if len(c.Rows) == 0 {
			empty := "  empty"
			if wi == b.selWorker {
				empty = "› empty"
			}
			lines = append(lines, styleMuted().Render(empty))
		}
		// Trailing row so a card can be dropped after the last one.
		lines = append(lines, "")
		sections = append(sections, m.Mark(zid, strings.Join(lines, "\n")))
	}
	return strings.Join(sections, "\n")
}

func (b boardView) renderCard(r model.ScheduleRow, width int, selected bool) string {
	when := r.Start.Format("15:04") + "-" + r.Finish.Format("15:04")
	text := when + " " + r.Customer + "\n" + styleMuted().Render(r.Service)
	if r.TaskID == b.dragging {
		text = lipgloss.NewStyle().Reverse(true).Render(when) + " " + r.Customer + "\n" + styleMuted().Render(r.Service)
	}
	st := styleCard(selected, false)
	content := width - st.GetHorizontalFrameSize()
	if content < 4 {
		content = 4
	}
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = ansi.Truncate(p, content, "…")
	}
	return st.Width(content + st.GetHorizontalPadding()).Render(strings.Join(parts, "\n"))
}

// dropIndex is the position a card dropped at row y lands on in list: the
// number of other cards whose vertical center is above y.
func dropIndex(h hitTester, taskIDs []string, dragged string, y int) int {
	n := 0
	for _, id := range taskIDs {
		if id == dragged {
			continue
		}
		r, ok := h.rect(cardZoneID(id))
		if !ok {
			continue
		}
		if r.Top+r.Height/2 <= float64(y) {
			n++
		}
	}
	return n
}
