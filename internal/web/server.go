// Package web serves the schedule in a browser. The page carries the same
// drag-and-drop element contract as the terminal UI and posts the emitted
// gantt-dnd-drop and dnd-reorder payloads back to the server.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"roster-cli/internal/dnd"
	"roster-cli/internal/docs"
	"roster-cli/internal/logging"
	"roster-cli/internal/mutate"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr     string
	Dir      string
	ActorID  string
	ReadOnly bool
	Config   store.Config
	Logger   *zap.Logger

	// PollInterval is how often the store is checked for writes by other
	// processes. Zero disables polling.
	PollInterval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	// mu serializes load-mutate-save cycles.
	mu   sync.Mutex
	cfg  ServerConfig
	st   store.Store
	tmpl *template.Template
	log  *zap.Logger

	hub     *scheduleHub
	watcher *storeWatcher
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("web: missing dir")
	}
	if cfg.Config.WindowDays <= 0 {
		cfg.Config = store.DefaultConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"pct": func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) + "%" },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	s := &Server{
		cfg:  cfg,
		st:   store.Store{Dir: cfg.Dir},
		tmpl: tmpl,
		log:  logging.OrNop(cfg.Logger),
		hub:  newScheduleHub(),
	}
	s.watcher = newStoreWatcher(s.st, s.hub, cfg.PollInterval)
	if cfg.PollInterval > 0 {
		go s.watcher.loop()
	}
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close stops the store poller.
func (s *Server) Close() { s.watcher.Stop() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /schedule.json", s.handleScheduleJSON)
	mux.HandleFunc("GET /docs/{topic}", s.handleDocs)
	mux.HandleFunc("GET /static/roster.js", s.handleStatic("static/roster.js", "text/javascript; charset=utf-8"))
	mux.HandleFunc("GET /static/roster.css", s.handleStatic("static/roster.css", "text/css; charset=utf-8"))
	mux.HandleFunc("POST /gantt-dnd-drop", s.handleGanttDrop)
	mux.HandleFunc("POST /dnd-reorder", s.handleReorder)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(b)
	}
}

// window reads ?day= and ?days= with the configured defaults.
func (s *Server) window(r *http.Request) (string, int, error) {
	day := strings.TrimSpace(r.URL.Query().Get("day"))
	if day == "" {
		day = schedule.Today(s.cfg.Now())
	}
	if _, err := schedule.ParseDay(day); err != nil {
		return "", 0, mutate.InvalidError{Field: "day", Reason: err.Error()}
	}
	days := s.cfg.Config.WindowDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 14 {
			return "", 0, mutate.InvalidError{Field: "days", Reason: "must be between 1 and 14"}
		}
		days = n
	}
	return day, days, nil
}

func (s *Server) loadVM(day string, days int) (scheduleVM, error) {
	db, err := s.st.Load()
	if err != nil {
		return scheduleVM{}, err
	}
	vm, err := buildScheduleVM(db, s.cfg.Config, day, days)
	if err != nil {
		return scheduleVM{}, err
	}
	vm.ReadOnly = s.cfg.ReadOnly
	return vm, nil
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	day, days, err := s.window(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	vm, err := s.loadVM(day, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTMLTemplate(w, "index.html", vm)
}

// handleEvents streams the schedule fragment whenever the store changes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	day, days, err := s.window(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	render := func() {
		vm, err := s.loadVM(day, days)
		if err == nil {
			var html string
			html, err = s.renderTemplate("schedule", vm)
			if err == nil {
				err = sse.PatchElements(html, datastar.WithSelector("#schedule"), datastar.WithMode(datastar.ElementPatchModeOuter))
			}
		}
		if err != nil {
			s.log.Warn("schedule patch failed", zap.Error(err))
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		}
	}
	render()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			render()
		}
	}
}

type scheduleJSON struct {
	StartDay string `json:"startDay"`
	Days     int    `json:"days"`
	Window   struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"window"`
	Rows any `json:"rows"`
}

func (s *Server) handleScheduleJSON(w http.ResponseWriter, r *http.Request) {
	day, days, err := s.window(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	db, err := s.st.Load()
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := schedule.Build(db, s.cfg.Config, day, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	win, err := schedule.WindowFor(s.cfg.Config, day, days, rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := scheduleJSON{StartDay: day, Days: days, Rows: rows}
	out.Window.Start = win.Start
	out.Window.End = win.End
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	md, ok := docs.Get(topic)
	if !ok {
		http.Error(w, "unknown topic", http.StatusNotFound)
		return
	}
	s.writeHTMLTemplate(w, "docs.html", map[string]any{
		"Title":  docs.Title(topic),
		"Body":   renderMarkdownHTML(md),
		"Topics": docs.Topics(),
	})
}

// dropRequest accepts the gantt-dnd-drop payload, either as a plain JSON body
// or as datastar signals.
type dropRequest struct {
	dnd.DropDetail
}

type reorderRequest struct {
	dnd.ReorderDetail
	Day string `json:"day"`
}

func (s *Server) handleGanttDrop(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return
	}
	var req dropRequest
	if err := datastar.ReadSignals(r, &req); err != nil {
		s.writeError(w, mutate.InvalidError{Field: "body", Reason: err.Error()})
		return
	}
	res, err := s.apply("task.drop", func(db *store.DB) (mutate.MoveResult, error) {
		return mutate.ApplyGanttDrop(db, s.cfg.Config, req.DropDetail)
	})
	if err != nil {
		s.log.Info("drop rejected", zap.String("task", req.TaskID), zap.Error(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": moveJSON(res)})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return
	}
	var req reorderRequest
	if err := datastar.ReadSignals(r, &req); err != nil {
		s.writeError(w, mutate.InvalidError{Field: "body", Reason: err.Error()})
		return
	}
	day := strings.TrimSpace(req.Day)
	if day == "" {
		day = strings.TrimSpace(r.URL.Query().Get("day"))
	}
	if day == "" {
		s.writeError(w, mutate.InvalidError{Field: "day", Reason: "required"})
		return
	}
	res, err := s.apply("task.reorder", func(db *store.DB) (mutate.MoveResult, error) {
		return mutate.ApplyListReorder(db, day, req.ReorderDetail)
	})
	if err != nil {
		s.log.Info("reorder rejected", zap.String("item", req.ItemID), zap.Error(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": moveJSON(res)})
}

// apply runs one mutation against freshly loaded state, then saves, records
// the event and notifies open streams.
func (s *Server) apply(typ string, fn func(db *store.DB) (mutate.MoveResult, error)) (mutate.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.st.Load()
	if err != nil {
		return mutate.MoveResult{}, err
	}
	res, err := fn(db)
	if err != nil {
		return mutate.MoveResult{}, err
	}
	if !res.Changed {
		return res, nil
	}
	if err := s.st.Save(db); err != nil {
		return mutate.MoveResult{}, err
	}
	if err := s.st.AppendEvent(s.cfg.ActorID, typ, res.Task.ID, res.EventPayload); err != nil {
		s.log.Warn("append event failed", zap.String("type", typ), zap.Error(err))
	}
	s.watcher.note()
	s.hub.broadcast()
	return res, nil
}

func moveJSON(res mutate.MoveResult) map[string]any {
	return map[string]any{
		"taskId":  res.Task.ID,
		"changed": res.Changed,
		"from":    map[string]any{"day": res.FromDay, "workerId": res.FromWorkerID, "index": res.FromIndex},
		"to":      map[string]any{"day": res.ToDay, "workerId": res.ToWorkerID, "index": res.ToIndex},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var nf mutate.NotFoundError
	var inv mutate.InvalidError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &inv):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
