// Package service provides the operations layer between the transports and
// the region evaluator.
//
// Core Interfaces:
//
// RegionService is the interface the REST API, WebSocket hub and MCP tools
// call. Evaluator, ActorManager and WorldManager are the collaborators it is
// built from; *region.Evaluator, *actor.Manager and *config.Manager satisfy
// them.
//
// Usage:
//
//	svc := service.NewRegionService(evaluator, actors, worlds, metrics.New())
//
//	res, err := svc.CheckMembership(ctx, playerID, []string{"spawn", "market"}, "any")
//	if errors.Is(err, region.ErrDirectoryUnavailable) {
//		// the backend has not finished starting
//	}
//
// Errors from the evaluator, actor manager and world manager are returned
// unchanged or wrapped with %w, so callers can match them with errors.Is.
package service
