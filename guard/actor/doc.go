// Package actor tracks which actors are online and where they stand.
//
// The actor package implements:
//   - Thread-safe join, move and leave of actors
//   - Lookup by id and by case-insensitive name
//   - Session handlers that observe, and may veto, movement
//   - Cleanup of actors that have gone idle
//
// Manager implements region.ActorDirectory, so an Evaluator can resolve an
// actor reference to its current coordinate. An actor that has left is no
// longer resolvable and is therefore in no regions.
//
// Session Handlers:
//
// Handlers registered with RegisterHandler are called after the manager has
// released its lock. OnMove runs before the new position is stored; returning
// false cancels the move.
//
// Usage:
//
//	actors := actor.NewManager()
//	actors.RegisterHandler(entryHandler)
//
//	a, err := actors.Join(uuid.Nil, "Notch", region.Coordinate{World: "world"})
//	_, err = actors.Move(a.ID, region.Coordinate{World: "world", X: 12, Y: 64, Z: 3})
//	err = actors.Leave(a.ID)
package actor
