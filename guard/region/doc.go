// Package region answers region-membership questions for coordinates and
// online actors.
//
// The region package implements:
//   - The region data model (RegionID, Coordinate, Region, RegionSet)
//   - A one-shot initialized handle to the external region directory
//   - Region lookups by coordinate and by actor
//   - ALL/ANY membership checks with case-insensitive region names
//
// Core Types:
//
// Evaluator is the entry point. It holds a DirectoryHandle, which is filled in
// once by the platform bootstrap, and an ActorDirectory used to turn an actor
// reference into its current coordinate. Spatial containment itself lives
// behind the RegionDirectory interface and is not computed here.
//
// Usage:
//
//	handle := region.NewDirectoryHandle()
//	evaluator := region.NewEvaluator(handle, actors)
//
//	// Later, during startup
//	if err := handle.Init(directory); err != nil {
//		log.Fatal(err)
//	}
//
//	names, err := evaluator.RegionNamesAt(region.Coordinate{World: "world", X: 10, Y: 64, Z: -3})
//	inSpawn, err := evaluator.IsInAny(playerID, "spawn", "lobby")
//
// Errors:
//
// Queries issued before the handle is initialized fail with
// ErrDirectoryUnavailable. Membership checks with no required regions fail
// with ErrInvalidArgument. An actor that is not online is not an error: it is
// simply in no regions.
package region
