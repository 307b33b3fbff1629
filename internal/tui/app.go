package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"roster-cli/internal/dnd"
	"roster-cli/internal/docs"
	"roster-cli/internal/gantt"
	"roster-cli/internal/interpret"
	"roster-cli/internal/logging"
	"roster-cli/internal/model"
	"roster-cli/internal/mutate"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

type mode int

const (
	modeNormal mode = iota
	modeForm
	modeCommand
	modeHelp
)

type reloadTickMsg struct{}

// zoneScanner marks zones while rendering and resolves them once the frame
// is complete. *zone.Manager satisfies it.
type zoneScanner interface {
	gantt.Marker
	Scan(v string) string
}

type nopScanner struct{ gantt.NopMarker }

func (nopScanner) Scan(v string) string { return v }

type flash struct {
	text string
	err  bool
}

type appModel struct {
	dir   string
	store store.Store
	db    *store.DB
	cfg   store.Config
	actor string
	log   *zap.Logger
	now   func() time.Time

	width  int
	height int

	startDay   string
	windowDays int

	selWorker int
	selIndex  int

	mode    mode
	form    bookingForm
	cmdline textinput.Model
	flash   flash

	lastModTime int64

	zones zoneScanner
	rt    *dndRuntime
	// published reports whether the first frame has been handed to the
	// drag-and-drop watchers.
	published *bool
}

func newAppModel(dir string, db *store.DB, cfg store.Config, actor string, log *zap.Logger, zones zoneScanner, hits hitTester) appModel {
	if zones == nil {
		zones = nopScanner{}
	}
	if hits == nil {
		hits = zoneHits{}
	}
	log = logging.OrNop(log)
	ci := textinput.New()
	ci.Prompt = ": "
	ci.Placeholder = "book Nadia thai with Ayu"
	ci.CharLimit = 200

	m := appModel{
		dir:        dir,
		store:      store.Store{Dir: dir},
		db:         db,
		cfg:        cfg,
		actor:      actor,
		log:        log,
		now:        time.Now,
		windowDays: cfg.WindowDays,
		cmdline:    ci,
		zones:      zones,
		rt:         newDNDRuntime(hits, log),
		published:  new(bool),
	}
	if m.windowDays <= 0 {
		m.windowDays = 1
	}
	m.startDay = schedule.Today(m.now())
	m.lastModTime = m.store.ModTime()
	return m
}

func (m appModel) Init() tea.Cmd { return tickReload() }

func tickReload() tea.Cmd {
	return tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rt.gate.load()
		return m, nil

	case reloadTickMsg:
		if mt := m.store.ModTime(); mt != m.lastModTime && m.mode == modeNormal && m.rt.drag == nil {
			if err := m.reloadFromDisk(); err != nil {
				m.setFlash(err.Error(), true)
			}
		}
		return m, tickReload()

	case tea.MouseMsg:
		if m.mode != modeNormal {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeCommand:
			return m.updateCommand(msg)
		case modeHelp:
			switch msg.String() {
			case "esc", "q", "?":
				m.mode = modeNormal
			}
			return m, nil
		}
		return m.updateNormal(msg)
	}

	switch m.mode {
	case modeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	case modeCommand:
		var cmd tea.Cmd
		m.cmdline, cmd = m.cmdline.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		if err := m.reloadFromDisk(); err != nil {
			m.setFlash(err.Error(), true)
		} else {
			m.setFlash("reloaded", false)
		}
	case "?":
		m.mode = modeHelp
	case "a":
		w := ""
		if ws := m.db.Workers; m.selWorker < len(ws) {
			w = ws[m.selWorker].Name
		}
		m.form = newBookingForm("", "", "", w)
		m.mode = modeForm
		return m, textinput.Blink
	case "e", "enter":
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.form = newBookingForm(r.TaskID, r.Customer, r.Service, r.Worker)
		m.mode = modeForm
		return m, textinput.Blink
	case ":":
		m.cmdline.SetValue("")
		m.cmdline.Focus()
		m.mode = modeCommand
		return m, textinput.Blink
	case "d", "x":
		if r, ok := m.selectedRow(); ok {
			m.deleteBooking(r.TaskID)
		}
	case "h", "left":
		m.moveSelection(-1, 0)
	case "l", "right":
		m.moveSelection(1, 0)
	case "k", "up":
		m.moveSelection(0, -1)
	case "j", "down":
		m.moveSelection(0, 1)
	case "K", "shift+up":
		m.nudgeSelected(0, -1)
	case "J", "shift+down":
		m.nudgeSelected(0, 1)
	case "H", "shift+left":
		m.nudgeSelected(-1, 0)
	case "L", "shift+right":
		m.nudgeSelected(1, 0)
	case "[":
		m.shiftDays(-1)
	case "]":
		m.shiftDays(1)
	case "t":
		m.startDay = schedule.Today(m.now())
		m.clampSelection()
	case "w":
		m.windowDays = nextWindow(m.windowDays)
	}
	return m, nil
}

// nextWindow toggles between a three and a four day window.
func nextWindow(n int) int {
	if n == 3 {
		return 4
	}
	return 3
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		return m, nil
	case "enter":
		v, err := m.form.resolve(m.db.Workers, m.db.Services)
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if m.form.taskID == "" {
			err = m.addBooking(v.Customer, v.ServiceID, v.WorkerID)
		} else {
			err = m.editBooking(m.form.taskID, v)
		}
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cmdline.Blur()
		m.mode = modeNormal
		return m, nil
	case "enter":
		text := m.cmdline.Value()
		m.cmdline.Blur()
		m.mode = modeNormal
		cmd, ok := interpret.Parse(text, m.db.Workers, m.db.Services)
		if !ok {
			m.setFlash(fmt.Sprintf("could not read a customer, service and worker from %q", strings.TrimSpace(text)), true)
			return m, nil
		}
		if err := m.addBooking(cmd.Customer, cmd.ServiceID, cmd.WorkerID); err != nil {
			m.setFlash(err.Error(), true)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.cmdline, cmd = m.cmdline.Update(msg)
	return m, cmd
}

func (m *appModel) setFlash(text string, isErr bool) {
	m.flash = flash{text: text, err: isErr}
	if isErr {
		m.log.Debug("tui error", zap.String("msg", text))
	}
}

// boardDay is the day whose queues the board shows and reorders.
func (m appModel) boardDay() string { return m.startDay }

func (m *appModel) shiftDays(n int) {
	t, err := schedule.ParseDay(m.startDay)
	if err != nil {
		return
	}
	m.startDay = t.AddDate(0, 0, n).Format(schedule.DayLayout)
	m.clampSelection()
}

func (m appModel) boardRows() []model.ScheduleRow {
	rows, err := schedule.BuildDay(m.db, m.cfg, m.boardDay())
	if err != nil {
		return nil
	}
	return rows
}

func (m appModel) selectedRow() (model.ScheduleRow, bool) {
	if m.selWorker < 0 || m.selWorker >= len(m.db.Workers) {
		return model.ScheduleRow{}, false
	}
	rows := schedule.WorkerRows(m.boardRows(), m.db.Workers[m.selWorker].ID)
	if m.selIndex < 0 || m.selIndex >= len(rows) {
		return model.ScheduleRow{}, false
	}
	return rows[m.selIndex], true
}

func (m *appModel) moveSelection(dw, di int) {
	m.selWorker += dw
	m.selIndex += di
	if dw != 0 {
		m.selIndex = 0
	}
	m.clampSelection()
}

func (m *appModel) clampSelection() {
	n := len(m.db.Workers)
	if n == 0 {
		m.selWorker, m.selIndex = 0, 0
		return
	}
	if m.selWorker < 0 {
		m.selWorker = 0
	}
	if m.selWorker >= n {
		m.selWorker = n - 1
	}
	count := len(schedule.WorkerRows(m.boardRows(), m.db.Workers[m.selWorker].ID))
	if m.selIndex >= count {
		m.selIndex = count - 1
	}
	if m.selIndex < 0 {
		m.selIndex = 0
	}
}

// selectTask moves the selection onto taskID if it is on the board day.
func (m *appModel) selectTask(taskID string) {
	ref, _, ok := m.db.FindTask(taskID)
	if !ok || ref.Day != m.boardDay() {
		return
	}
	d, _ := m.db.FindDay(ref.Day)
	wid := d.Columns[ref.Column].WorkerID
	for i, w := range m.db.Workers {
		if w.ID == wid {
			m.selWorker = i
			m.selIndex = ref.Index
			return
		}
	}
}

// nudgeSelected moves the selected card with the keyboard, through the same
// reorder path a mouse drop takes.
func (m *appModel) nudgeSelected(dw, di int) {
	r, ok := m.selectedRow()
	if !ok {
		return
	}
	to := m.selWorker + dw
	if to < 0 || to >= len(m.db.Workers) {
		return
	}
	idx := m.selIndex + di
	if dw != 0 {
		idx = len(schedule.WorkerRows(m.boardRows(), m.db.Workers[to].ID))
	}
	if idx < 0 {
		return
	}
	m.applyEvent(dnd.Event{Type: dnd.EventListReorder, Detail: dnd.ReorderDetail{
		ItemID:   r.TaskID,
		FromID:   r.WorkerID,
		ToID:     m.db.Workers[to].ID,
		NewIndex: idx,
	}})
}

func (m *appModel) reloadFromDisk() error {
	db, err := m.store.Load()
	if err != nil {
		return err
	}
	m.db = db
	m.lastModTime = m.store.ModTime()
	m.clampSelection()
	return nil
}

// commit persists db and records one event for entityID.
func (m *appModel) commit(typ, entityID string, payload any) error {
	if err := m.store.Save(m.db); err != nil {
		return err
	}
	if err := m.store.AppendEvent(m.actor, typ, entityID, payload); err != nil {
		m.log.Warn("append event failed", zap.String("type", typ), zap.Error(err))
	}
	m.lastModTime = m.store.ModTime()
	return nil
}

func (m *appModel) addBooking(customer, serviceID, workerID string) error {
	res, err := mutate.AddBooking(m.db, m.boardDay(), customer, serviceID, workerID, m.now())
	if err != nil {
		return err
	}
	if err := m.commit("booking.add", res.Task.ID, res.EventPayload); err != nil {
		return err
	}
	m.selectTask(res.Task.ID)
	m.setFlash(fmt.Sprintf("booked %s (%s)", res.Task.Customer, res.Task.ID), false)
	return nil
}

func (m *appModel) editBooking(taskID string, v bookingValues) error {
	res, err := mutate.EditBooking(m.db, taskID, v.Customer, v.ServiceID, v.WorkerID)
	if err != nil {
		return err
	}
	if !res.Changed {
		m.setFlash("no changes", false)
		return nil
	}
	if err := m.commit("booking.edit", res.Task.ID, res.EventPayload); err != nil {
		return err
	}
	m.selectTask(res.Task.ID)
	m.setFlash("updated "+res.Task.ID, false)
	return nil
}

func (m *appModel) deleteBooking(taskID string) {
	res, err := mutate.DeleteBooking(m.db, taskID)
	if err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	if err := m.commit("booking.delete", res.Task.ID, res.EventPayload); err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	m.clampSelection()
	m.setFlash("deleted "+res.Task.ID, false)
}

func (m *appModel) workerName(id string) string {
	if w, ok := m.db.FindWorker(id); ok {
		return w.Name
	}
	return id
}

// applyEvent carries one drag-and-drop event into the store.
func (m *appModel) applyEvent(ev dnd.Event) {
	var (
		res mutate.MoveResult
		err error
		typ string
	)
	switch d := ev.Detail.(type) {
	case dnd.DropDetail:
		typ = "task.drop"
		res, err = mutate.ApplyGanttDrop(m.db, m.cfg, d)
	case dnd.ReorderDetail:
		typ = "task.reorder"
		res, err = mutate.ApplyListReorder(m.db, m.boardDay(), d)
	default:
		return
	}
	if err != nil {
		m.log.Debug("drop rejected", zap.String("event", ev.Type), zap.Error(err))
		m.setFlash(err.Error(), true)
		return
	}
	if !res.Changed {
		return
	}
	if err := m.commit(typ, res.Task.ID, res.EventPayload); err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	m.log.Info("task moved",
		zap.String("task", res.Task.ID),
		zap.String("day", res.ToDay),
		zap.String("worker", res.ToWorkerID),
		zap.Int("index", res.ToIndex),
	)
	m.selectTask(res.Task.ID)
	m.setFlash(fmt.Sprintf("moved %s to %s #%d on %s", res.Task.ID, m.workerName(res.ToWorkerID), res.ToIndex+1, res.ToDay), false)
}

func (m *appModel) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y
	rt := m.rt
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if rt.chart != nil {
			if el, ok := m.barAt(x, y); ok {
				rt.chart.Handle(dnd.Press{Target: el, ClientX: float64(x), ClientY: float64(y)})
				break
			}
			rt.chart.Handle(dnd.Press{ClientX: float64(x), ClientY: float64(y)})
		}
		if item, from, ok := m.cardAt(x, y); ok {
			rt.drag = &cardDrag{item: item, from: from}
			m.selectTask(mustAttr(item, dnd.AttrItemID))
		}

	case msg.Action == tea.MouseActionMotion:
		if rt.chart != nil {
			rt.chart.Handle(dnd.Move{ClientX: float64(x), ClientY: float64(y)})
		}

	case msg.Action == tea.MouseActionRelease:
		if rt.chart != nil {
			rt.chart.Handle(dnd.Release{ClientX: float64(x), ClientY: float64(y)})
		}
		if d := rt.drag; d != nil {
			rt.drag = nil
			if to, ok := m.listAt(x, y); ok {
				wid := mustAttr(to, dnd.AttrListID)
				ids := m.columnTaskIDs(wid)
				idx := dropIndex(rt.hits, ids, mustAttr(d.item, dnd.AttrItemID), y)
				rt.sortable.finish(dnd.SortEnd{Item: d.item, From: d.from, To: to, NewIndex: idx})
			}
		}
	}

	for _, ev := range rt.takePending() {
		m.applyEvent(ev)
	}
}

func mustAttr(el dnd.Element, name string) string {
	v, _ := el.Attr(name)
	return v
}

func (m appModel) barAt(x, y int) (dnd.Element, bool) {
	l := m.rt.layout
	if l == nil {
		return dnd.Element{}, false
	}
	for _, b := range l.Bars {
		if hit(m.rt.hits, gantt.BarZoneID(b.Ref), x, y) {
			return gantt.BarElement(b.Ref), true
		}
	}
	return dnd.Element{}, false
}

func (m appModel) listAt(x, y int) (dnd.Element, bool) {
	for _, w := range m.db.Workers {
		el := listElement(m.boardDay(), w.ID)
		if hit(m.rt.hits, el.ID, x, y) {
			return el, true
		}
	}
	return dnd.Element{}, false
}

func (m appModel) cardAt(x, y int) (item, from dnd.Element, ok bool) {
	for _, r := range m.boardRows() {
		if hit(m.rt.hits, cardZoneID(r.TaskID), x, y) {
			return cardElement(r.TaskID), listElement(m.boardDay(), r.WorkerID), true
		}
	}
	return dnd.Element{}, dnd.Element{}, false
}

func (m appModel) columnTaskIDs(workerID string) []string {
	var ids []string
	for _, r := range schedule.WorkerRows(m.boardRows(), workerID) {
		ids = append(ids, r.TaskID)
	}
	return ids
}

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	header := m.viewHeader()
	footer := m.viewFooter()
	bodyH := m.height - 2
	if bodyH < 3 {
		bodyH = 3
	}

	boardW, chartW := splitWidths(m.width)
	board := m.boardView(boardW)
	layout := m.chartLayout(chartW, bodyH-1)

	highlight := []string{}
	if m.rt.chart != nil {
		if s, ok := m.rt.chart.Session(); ok {
			highlight = append(highlight, s.TaskID)
		}
	}
	var chart string
	if layout != nil {
		chart = layout.Render(m.zones, highlight...) + "\n" + layout.Legend()
	} else {
		chart = styleMuted().Render("schedule unavailable")
	}

	sep := styleMuted().Render(strings.TrimRight(strings.Repeat("│\n", bodyH), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(board.render(m.zones), boardW, bodyH),
		sep,
		normalizePane(chart, chartW, bodyH),
	)
	out := strings.Join([]string{header, body, footer}, "\n")

	switch m.mode {
	case modeForm:
		out = overlay(out, m.form.view(), m.width, m.height)
	case modeHelp:
		out = overlay(out, m.viewHelp(), m.width, m.height)
	}

	m.rt.publish(layout, board.lists(), !*m.published)
	*m.published = true
	return m.zones.Scan(out)
}

func (m appModel) boardView(width int) boardView {
	b := boardView{
		day:       m.boardDay(),
		cols:      boardColumns(m.db.Workers, m.boardRows()),
		width:     width,
		selWorker: m.selWorker,
		selIndex:  m.selIndex,
	}
	if d := m.rt.drag; d != nil {
		b.dragging = mustAttr(d.item, dnd.AttrItemID)
	}
	return b
}

func (m appModel) chartLayout(width, height int) *gantt.Layout {
	rows, err := schedule.Build(m.db, m.cfg, m.startDay, m.windowDays)
	if err != nil {
		m.log.Warn("build schedule failed", zap.Error(err))
		return nil
	}
	win, err := schedule.WindowFor(m.cfg, m.startDay, m.windowDays, rows)
	if err != nil {
		m.log.Warn("schedule window failed", zap.Error(err))
		return nil
	}
	return gantt.Build(rows, m.db.Workers, win, width, height)
}

func (m appModel) viewHeader() string {
	days := m.startDay
	if m.windowDays > 1 {
		if t, err := schedule.ParseDay(m.startDay); err == nil {
			days += " → " + t.AddDate(0, 0, m.windowDays-1).Format(schedule.DayLayout)
		}
	}
	left := styleHeader().Render("Roster")
	info := styleMuted().Render(fmt.Sprintf(" %s  board %s  %s", days, m.boardDay(), m.dir))
	return normalizePane(left+info, m.width, 1)
}

func (m appModel) viewFooter() string {
	var s string
	switch {
	case m.mode == modeCommand:
		s = m.cmdline.View()
	case m.flash.text != "":
		c := colorFlashOK
		if m.flash.err {
			c = colorFlashErr
		}
		s = lipgloss.NewStyle().Foreground(c).Render(m.flash.text)
	default:
		s = styleMuted().Render("a: add  :: type a booking  e: edit  d: delete  HJKL: move  [ ]: day  w: window  ?: help  q: quit")
	}
	return normalizePane(s, m.width, 1)
}

func (m appModel) viewHelp() string {
	md, ok := docs.Get("tui")
	if !ok {
		md = "No help available."
	}
	w := m.width * 2 / 3
	if w < 30 {
		w = 30
	}
	h := m.height - 6
	body := renderMarkdown(md, w)
	if lines := strings.Split(body, "\n"); h > 0 && len(lines) > h {
		body = strings.Join(lines[:h], "\n")
	}
	return styleModal().Render(body)
}
