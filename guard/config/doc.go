// Package config provides the file-backed region directory.
//
// The config package handles:
//   - Loading world files (JSON or YAML) from the regions directory
//   - Validating region definitions
//   - Answering applicable-region queries for a coordinate
//   - Saving and reloading world files
//
// World File Format:
//
// Each file describes the regions of one world. Regions are cuboids given by
// inclusive block bounds, with an optional priority and free-form flags:
//
//	world: world
//	description: Main survival world
//	regions:
//	  - id: __global__
//	    flags: {pvp: deny}
//	  - id: Spawn
//	    priority: 10
//	    min: {x: -50, y: 0, z: -50}
//	    max: {x: 50, y: 255, z: 50}
//
// A region named __global__ has no bounds and applies everywhere in its world.
// Region ids are unique per world, ignoring case.
//
// Usage:
//
//	manager, err := config.NewManager("regions")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	regions := manager.ApplicableRegions(region.Coordinate{World: "world", X: 3, Y: 70, Z: 9})
//	worlds, err := manager.ListWorlds()
//
// The manager stands in for the host platform's region container; it does
// no spatial indexing and checks each region in turn.
package config
