package tui

import (
	zone "github.com/lrstanley/bubblezone"

	"roster-cli/internal/dnd"
)

// hitTester reports where a marked zone was last drawn.
type hitTester interface {
	rect(id string) (dnd.Rect, bool)
}

// zoneHits reads positions from a bubblezone manager.
type zoneHits struct {
	z *zone.Manager
}

func (h zoneHits) rect(id string) (dnd.Rect, bool) {
	if h.z == nil {
		return dnd.Rect{}, false
	}
	info := h.z.Get(id)
	if info == nil || info.IsZero() {
		return dnd.Rect{}, false
	}
	return dnd.Rect{
		Left:   float64(info.StartX),
		Top:    float64(info.StartY),
		Width:  float64(info.EndX - info.StartX + 1),
		Height: float64(info.EndY - info.StartY + 1),
	}, true
}

// Locate lets the gantt layout report its on-screen plot area.
func (h zoneHits) Locate(id string) (dnd.Rect, bool) { return h.rect(id) }

func contains(r dnd.Rect, x, y int) bool {
	fx, fy := float64(x), float64(y)
	return fx >= r.Left && fx < r.Left+r.Width && fy >= r.Top && fy < r.Top+r.Height
}

func hit(h hitTester, id string, x, y int) bool {
	r, ok := h.rect(id)
	return ok && contains(r, x, y)
}
