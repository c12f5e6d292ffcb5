package entry

import (
	"time"

	"github.com/raidstone/wgevents/guard/region"
)

// Kind names a region event
type Kind string

const (
	RegionEntered  Kind = "region_entered"
	RegionLeft     Kind = "region_left"
	RegionsEntered Kind = "regions_entered"
	RegionsLeft    Kind = "regions_left"
	RegionsChanged Kind = "regions_changed"
)

// Movement says what kind of session change produced an event
type Movement string

const (
	MovementJoin Movement = "join"
	MovementMove Movement = "move"
	MovementQuit Movement = "quit"
)

// Event describes an actor crossing region boundaries.
//
// Single-region events (RegionEntered, RegionLeft) carry Region and Flags.
// Aggregate events carry Regions, the regions entered or left in one step;
// RegionsChanged carries Previous and Current instead.
type Event struct {
	Kind     Kind               `json:"kind"`
	Actor    region.ActorRef    `json:"actor"`
	Movement Movement           `json:"movement"`
	Region   region.RegionID    `json:"region,omitempty"`
	Flags    map[string]string  `json:"flags,omitempty"`
	Regions  []region.RegionID  `json:"regions,omitempty"`
	Previous []region.RegionID  `json:"previous,omitempty"`
	Current  []region.RegionID  `json:"current,omitempty"`
	From     *region.Coordinate `json:"from,omitempty"`
	To       *region.Coordinate `json:"to,omitempty"`
	Time     time.Time          `json:"time"`
}

// Cancellable reports whether a guard can veto the movement behind the
// event. Only single-region events produced by a move can be cancelled.
func (e Event) Cancellable() bool {
	return e.Movement == MovementMove && (e.Kind == RegionEntered || e.Kind == RegionLeft)
}

// Listener receives region events. Registered as a guard, returning false
// for a cancellable event cancels the movement; the result is ignored
// otherwise.
type Listener func(ev Event) bool
