package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"roster-cli/internal/store"
)

// Run starts the interactive scheduler: the worker board on the left and
// the schedule chart on the right. actor is recorded on every event.
func Run(dir string, db *store.DB, cfg store.Config, actor string, log *zap.Logger) error {
	applyColorProfilePreference()
	applyThemePreference()

	zones := zone.New()
	defer zones.Close()

	m := newAppModel(dir, db, cfg, actor, log, zones, zoneHits{z: zones})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
