package dnd

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// SortEnd is what a sortable provider reports when an item drop completes.
type SortEnd struct {
	Item     Element
	From     Element
	To       Element
	NewIndex int
}

// SortableProvider reorders items within and between containers of the same
// group and calls onEnd once per completed drop.
type SortableProvider interface {
	Attach(container Element, group string, onEnd func(SortEnd)) error
}

// ListCoordinator forwards sortable drops as dnd-reorder events.
type ListCoordinator struct {
	host     string
	group    string
	provider SortableProvider
	out      Dispatcher
	log      *zap.Logger
}

func NewListCoordinator(host, group string, provider SortableProvider, out Dispatcher, opts ...Option) *ListCoordinator {
	o := buildOptions(opts)
	return &ListCoordinator{
		host:     normalizeHost(host),
		group:    strings.TrimSpace(group),
		provider: provider,
		out:      out,
		log:      o.log.With(zap.String("host", normalizeHost(host))),
	}
}

// Install attaches the sortable behavior to one container.
func (l *ListCoordinator) Install(container Element) error {
	if l.provider == nil {
		return errors.New("dnd: no sortable provider")
	}
	return l.provider.Attach(container, l.group, l.onEnd)
}

func (l *ListCoordinator) onEnd(e SortEnd) {
	itemID, _ := e.Item.Attr(AttrItemID)
	fromID, _ := e.From.Attr(AttrListID)
	toID, _ := e.To.Attr(AttrListID)
	if strings.TrimSpace(itemID) == "" || e.NewIndex < 0 {
		l.log.Debug("reorder dropped: missing item id or index", zap.String("item", itemID), zap.Int("index", e.NewIndex))
		return
	}
	if l.out == nil {
		return
	}
	l.out.Dispatch(Event{
		Type:    EventListReorder,
		Host:    l.host,
		Bubbles: true,
		Detail: ReorderDetail{
			ItemID:   itemID,
			FromID:   fromID,
			ToID:     toID,
			NewIndex: e.NewIndex,
		},
	})
}
