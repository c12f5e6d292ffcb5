package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/raidstone/wgevents/guard/region"
)

// RegionDef is a cuboid region as written in a world file
type RegionDef struct {
	ID       string            `json:"id" yaml:"id"`
	Priority int               `json:"priority,omitempty" yaml:"priority,omitempty"`
	Min      region.Vector     `json:"min" yaml:"min"`
	Max      region.Vector     `json:"max" yaml:"max"`
	Flags    map[string]string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// IsGlobal reports whether the region covers the whole world
func (r *RegionDef) IsGlobal() bool {
	return region.RegionID(r.ID).EqualFold(region.GlobalRegionID)
}

// Contains reports whether the block holding p lies inside the cuboid.
// Bounds are inclusive block coordinates.
func (r *RegionDef) Contains(p region.Vector) bool {
	if r.IsGlobal() {
		return true
	}
	x, y, z := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	return x >= r.Min.X && x <= r.Max.X &&
		y >= r.Min.Y && y <= r.Max.Y &&
		z >= r.Min.Z && z <= r.Max.Z
}

// Region converts the definition to the value reported by the directory
func (r *RegionDef) Region() region.Region {
	var flags map[string]string
	if len(r.Flags) > 0 {
		flags = make(map[string]string, len(r.Flags))
		for k, v := range r.Flags {
			flags[k] = v
		}
	}
	return region.Region{
		ID:       region.RegionID(r.ID),
		Priority: r.Priority,
		Flags:    flags,
	}
}

// WorldDef holds every region defined for one world
type WorldDef struct {
	World       string      `json:"world" yaml:"world"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Regions     []RegionDef `json:"regions" yaml:"regions"`
}

// WorldInfo summarizes a loaded world file
type WorldInfo struct {
	Filename    string `json:"filename"`
	World       string `json:"world"`
	Description string `json:"description,omitempty"`
	RegionCount int    `json:"region_count"`
	HasGlobal   bool   `json:"has_global"`
}

// ValidateWorld checks a world definition for correctness
func ValidateWorld(def *WorldDef) error {
	if def == nil {
		return fmt.Errorf("world validation: definition is nil")
	}
	if strings.TrimSpace(def.World) == "" {
		return fmt.Errorf("world validation: world is required")
	}
	if strings.ContainsAny(def.World, `/\`) || strings.Contains(def.World, "..") {
		return fmt.Errorf("world validation: world name %q must not contain path elements", def.World)
	}

	seen := make(map[string]int, len(def.Regions))
	for i := range def.Regions {
		r := &def.Regions[i]
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("world validation: region %d has no id", i+1)
		}
		if strings.ContainsAny(r.ID, " \t\n") {
			return fmt.Errorf("world validation: region id %q must not contain whitespace", r.ID)
		}

		key := strings.ToLower(r.ID)
		if first, dup := seen[key]; dup {
			return fmt.Errorf("world validation: region id %q at position %d duplicates position %d", r.ID, i+1, first)
		}
		seen[key] = i + 1

		if r.IsGlobal() {
			continue
		}
		if r.Min.X > r.Max.X || r.Min.Y > r.Max.Y || r.Min.Z > r.Max.Z {
			return fmt.Errorf("world validation: region %q has min %v greater than max %v", r.ID, r.Min, r.Max)
		}
	}

	return nil
}

// Overlaps returns pairs of non-global regions whose cuboids intersect.
// Overlapping regions are legal; callers use this for reporting.
func Overlaps(def *WorldDef) [][2]string {
	var pairs [][2]string
	for i := 0; i < len(def.Regions); i++ {
		a := &def.Regions[i]
		if a.IsGlobal() {
			continue
		}
		for j := i + 1; j < len(def.Regions); j++ {
			b := &def.Regions[j]
			if b.IsGlobal() {
				continue
			}
			if a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
				a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
				a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z {
				pairs = append(pairs, [2]string{a.ID, b.ID})
			}
		}
	}
	return pairs
}
