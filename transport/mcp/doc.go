// Package mcp exposes the region API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call is translated into a REST request
// against the api package and the JSON answer is rendered as text for the
// model. Errors from the API become tool errors rather than protocol errors.
//
// Tools:
//   - list_worlds, regions_at
//   - list_actors, join_actor, move_actor, leave_actor
//   - actor_regions, check_membership
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
