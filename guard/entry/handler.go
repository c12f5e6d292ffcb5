package entry

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/raidstone/wgevents/guard/region"
)

// RegionLookup returns the regions applicable at a coordinate.
// *region.Evaluator satisfies it.
type RegionLookup interface {
	RegionsAt(at region.Coordinate) (region.RegionSet, error)
}

// Handler turns actor session changes into region events. It keeps no
// per-actor state: each change is diffed from the regions at the old and
// new coordinates.
type Handler struct {
	lookup    RegionLookup
	guards    []Listener
	listeners []Listener
	mu        sync.RWMutex
}

// NewHandler creates an entry handler over lookup
func NewHandler(lookup RegionLookup) *Handler {
	return &Handler{lookup: lookup}
}

// Guard adds a listener that decides whether a move may go ahead. Guards see
// only cancellable events and run before any listener is told about the
// move; one returning false cancels it.
func (h *Handler) Guard(g Listener) {
	if g == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.guards = append(h.guards, g)
}

// Subscribe adds a listener. Listeners are called in subscription order and
// only for transitions that went ahead; their return value is ignored.
func (h *Handler) Subscribe(l Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

// OnJoin fires enter events for every region at the join position
func (h *Handler) OnJoin(actor region.ActorRef, at region.Coordinate) {
	current, ok := h.regionsAt(at)
	if !ok {
		return
	}
	h.crossBoundary(actor, MovementJoin, nil, &at, region.NewRegionSet(), current)
}

// OnMove fires events for the regions left and entered between from and to.
// It returns false if a listener cancelled one of the single-region events.
func (h *Handler) OnMove(actor region.ActorRef, from, to region.Coordinate) bool {
	previous, ok := h.regionsAt(from)
	if !ok {
		return true
	}
	current, ok := h.regionsAt(to)
	if !ok {
		return true
	}
	return h.crossBoundary(actor, MovementMove, &from, &to, previous, current)
}

// OnQuit fires leave events for every region at the last known position
func (h *Handler) OnQuit(actor region.ActorRef, last region.Coordinate) {
	previous, ok := h.regionsAt(last)
	if !ok {
		return
	}
	h.crossBoundary(actor, MovementQuit, &last, nil, previous, region.NewRegionSet())
}

func (h *Handler) regionsAt(at region.Coordinate) (region.RegionSet, bool) {
	set, err := h.lookup.RegionsAt(at)
	if err != nil {
		if !errors.Is(err, region.ErrDirectoryUnavailable) {
			log.Printf("Warning: region lookup at %s failed: %v", at, err)
		}
		return region.RegionSet{}, false
	}
	return set, true
}

// crossBoundary publishes the events for one transition. Guards vote on the
// single-region events first; a cancelled transition publishes nothing.
func (h *Handler) crossBoundary(actor region.ActorRef, movement Movement, from, to *region.Coordinate, previous, current region.RegionSet) bool {
	left := difference(previous, current)
	entered := difference(current, previous)
	if len(left) == 0 && len(entered) == 0 {
		return true
	}

	base := Event{
		Actor:    actor,
		Movement: movement,
		From:     from,
		To:       to,
		Time:     time.Now(),
	}

	singles := make([]Event, 0, len(left)+len(entered))
	for _, r := range left {
		ev := base
		ev.Kind = RegionLeft
		ev.Region = r.ID
		ev.Flags = r.Flags
		singles = append(singles, ev)
	}
	for _, r := range entered {
		ev := base
		ev.Kind = RegionEntered
		ev.Region = r.ID
		ev.Flags = r.Flags
		singles = append(singles, ev)
	}

	h.mu.RLock()
	guards := append([]Listener(nil), h.guards...)
	listeners := append([]Listener(nil), h.listeners...)
	h.mu.RUnlock()

	for _, ev := range singles {
		if !allowed(guards, ev) {
			return false
		}
	}

	for _, ev := range singles {
		publish(listeners, ev)
	}
	if len(left) > 0 {
		ev := base
		ev.Kind = RegionsLeft
		ev.Regions = ids(left)
		publish(listeners, ev)
	}
	if len(entered) > 0 {
		ev := base
		ev.Kind = RegionsEntered
		ev.Regions = ids(entered)
		publish(listeners, ev)
	}

	ev := base
	ev.Kind = RegionsChanged
	ev.Previous = previous.IDs()
	ev.Current = current.IDs()
	publish(listeners, ev)

	return true
}

// allowed asks every guard about ev. Non-cancellable events are always allowed.
func allowed(guards []Listener, ev Event) bool {
	if !ev.Cancellable() {
		return true
	}
	for _, g := range guards {
		if !g(ev) {
			return false
		}
	}
	return true
}

func publish(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}

// difference returns the regions of a whose names, ignoring case, are not in b
func difference(a, b region.RegionSet) []region.Region {
	var out []region.Region
	for _, r := range a.Regions() {
		if !b.Has(string(r.ID)) {
			out = append(out, r)
		}
	}
	return out
}

func ids(regions []region.Region) []region.RegionID {
	out := make([]region.RegionID, len(regions))
	for i, r := range regions {
		out[i] = r.ID
	}
	return out
}
