// Package entry is the session handler that reports region boundary crossings.
//
// Registered with the actor manager, Handler is told about every join, move
// and quit. It looks up the regions at the old and new positions and
// publishes one event per region left or entered, followed by aggregate
// events for the whole transition.
//
// Event Order:
//
// For a move that crosses boundaries, listeners see:
//   - region_left for each region left
//   - region_entered for each region entered
//   - regions_left, regions_entered, regions_changed
//
// Guards are asked about region_left and region_entered before any listener
// sees the move. A guard returning false cancels the move and no event is
// published for it. Events produced by a join or quit cannot be cancelled.
//
// FlagPolicy is a ready-made guard that denies moves through regions
// flagged entry=deny or exit=deny.
//
// Usage:
//
//	handler := entry.NewHandler(evaluator)
//	handler.Guard(entry.FlagPolicy)
//	handler.Subscribe(func(ev entry.Event) bool {
//		log.Printf("%s %s %s", ev.Actor, ev.Kind, ev.Region)
//		return true
//	})
//	actors.RegisterHandler(handler)
package entry
