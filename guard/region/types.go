package region

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GlobalRegionID is the id of the implicit region covering a whole world.
const GlobalRegionID RegionID = "__global__"

// RegionID identifies a region. Comparisons are case-insensitive; the value
// itself keeps the directory's spelling for display.
type RegionID string

// Normalized returns the lower-cased form used for comparisons
func (id RegionID) Normalized() string {
	return strings.ToLower(string(id))
}

// EqualFold reports whether two ids name the same region
func (id RegionID) EqualFold(other RegionID) bool {
	return strings.EqualFold(string(id), string(other))
}

// ActorRef is the stable identifier of a (possibly offline) actor
type ActorRef = uuid.UUID

// Vector is a point in a world
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Coordinate is a position in a named world
type Coordinate struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// Point returns the coordinate without its world
func (c Coordinate) Point() Vector {
	return Vector{X: c.X, Y: c.Y, Z: c.Z}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s(%.1f,%.1f,%.1f)", c.World, c.X, c.Y, c.Z)
}

// Region is a region reported by the directory. Priority and Flags are
// carried through untouched.
type Region struct {
	ID       RegionID          `json:"id"`
	Priority int               `json:"priority"`
	Flags    map[string]string `json:"flags,omitempty"`
}

// RegionSet is an immutable set of regions produced by a single query.
// Regions are keyed by their exact id, so duplicates reported by the
// directory collapse into one entry.
type RegionSet struct {
	regions map[RegionID]Region
}

// NewRegionSet builds a set from the given regions
func NewRegionSet(regions ...Region) RegionSet {
	set := RegionSet{regions: make(map[RegionID]Region, len(regions))}
	for _, r := range regions {
		set.regions[r.ID] = r
	}
	return set
}

// Len returns the number of regions in the set
func (s RegionSet) Len() int {
	return len(s.regions)
}

// IsEmpty reports whether the set has no regions
func (s RegionSet) IsEmpty() bool {
	return len(s.regions) == 0
}

// Get returns the region with the exact id
func (s RegionSet) Get(id RegionID) (Region, bool) {
	r, ok := s.regions[id]
	return r, ok
}

// Has reports whether a region with the given name is in the set, ignoring case
func (s RegionSet) Has(name string) bool {
	want := strings.ToLower(name)
	for id := range s.regions {
		if id.Normalized() == want {
			return true
		}
	}
	return false
}

// Regions returns the regions ordered by descending priority, then id
func (s RegionSet) Regions() []Region {
	out := make([]Region, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns the region ids as reported by the directory, sorted
func (s RegionSet) IDs() []RegionID {
	out := make([]RegionID, 0, len(s.regions))
	for id := range s.regions {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
