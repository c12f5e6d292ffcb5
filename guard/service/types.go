package service

import (
	"time"

	"github.com/raidstone/wgevents/guard/region"
)

// RegionsResult is the answer to a region query. Exactly one of Coordinate
// and Actor is set; Online only applies to actor queries.
type RegionsResult struct {
	Coordinate *region.Coordinate `json:"coordinate,omitempty"`
	Actor      *region.ActorRef   `json:"actor,omitempty"`
	Online     bool               `json:"online,omitempty"`
	Regions    []region.Region    `json:"regions"`
	Names      []region.RegionID  `json:"names"`
}

// MembershipResult is the answer to an ALL/ANY membership check
type MembershipResult struct {
	Actor    region.ActorRef   `json:"actor"`
	Mode     string            `json:"mode"`
	Required []string          `json:"required"`
	Member   bool              `json:"member"`
	Current  []region.RegionID `json:"current"`
}

// ActorInfo provides information about an online actor
type ActorInfo struct {
	ID         region.ActorRef   `json:"id"`
	Name       string            `json:"name"`
	Position   region.Coordinate `json:"position"`
	Regions    []region.RegionID `json:"regions"`
	JoinedAt   time.Time         `json:"joined_at"`
	LastSeenAt time.Time         `json:"last_seen_at"`
}

// MoveResult contains the result of a move
type MoveResult struct {
	Success bool       `json:"success"`
	Actor   *ActorInfo `json:"actor"`
	Message string     `json:"message"`
}
