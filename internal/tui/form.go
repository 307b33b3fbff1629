package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"roster-cli/internal/interpret"
	"roster-cli/internal/model"
)

const (
	fieldCustomer = iota
	fieldService
	fieldWorker
	fieldCount
)

var fieldLabels = [fieldCount]string{"Customer", "Service", "Worker"}

// bookingForm collects a customer, service and worker. Service and worker are
// free text resolved against the catalog on submit.
type bookingForm struct {
	taskID string // empty when adding
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

type bookingValues struct {
	Customer  string
	ServiceID string
	WorkerID  string
}

func newBookingForm(taskID, customer, service, worker string) bookingForm {
	f := bookingForm{taskID: taskID}
	vals := [fieldCount]string{customer, service, worker}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 80
		ti.Width = 28
		ti.SetValue(vals[i])
		f.inputs[i] = ti
	}
	f.inputs[fieldCustomer].Placeholder = "Nadia"
	f.inputs[fieldService].Placeholder = "thai"
	f.inputs[fieldWorker].Placeholder = "Ayu"
	f.inputs[0].Focus()
	return f
}

func (f *bookingForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f bookingForm) update(msg tea.Msg) (bookingForm, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return f, nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return f, nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// resolve matches the typed values against the catalog. In edit mode blank
// fields are kept as they are.
func (f bookingForm) resolve(workers []model.Worker, services []model.Service) (bookingValues, error) {
	v := bookingValues{Customer: strings.TrimSpace(f.inputs[fieldCustomer].Value())}
	adding := f.taskID == ""
	if adding && v.Customer == "" {
		return v, errors.New("customer is required")
	}

	if s := strings.TrimSpace(f.inputs[fieldService].Value()); s != "" {
		svc := interpret.ResolveService(s, services)
		if svc == nil {
			return v, errors.New("unknown service: " + s)
		}
		v.ServiceID = svc.ID
	} else if adding {
		return v, errors.New("service is required")
	}

	if s := strings.TrimSpace(f.inputs[fieldWorker].Value()); s != "" {
		w := interpret.ResolveWorker(s, workers)
		if w == nil {
			return v, errors.New("unknown worker: " + s)
		}
		v.WorkerID = w.ID
	} else if adding {
		return v, errors.New("worker is required")
	}
	return v, nil
}

func (f bookingForm) view() string {
	title := "New booking"
	if f.taskID != "" {
		title = "Edit " + f.taskID
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Render(title), ""}
	for i, in := range f.inputs {
		label := lipgloss.NewStyle().Width(10).Render(fieldLabels[i])
		if i == f.focus {
			label = lipgloss.NewStyle().Width(10).Foreground(colorAccent).Bold(true).Render(fieldLabels[i])
		}
		lines = append(lines, label+in.View())
	}
	if f.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorFlashErr).Render(f.err))
	}
	lines = append(lines, "", styleMuted().Render("tab: next  enter: save  esc: cancel"))
	return styleModal().Render(strings.Join(lines, "\n"))
}
