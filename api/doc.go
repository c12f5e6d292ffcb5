// Package api provides HTTP REST API handlers for region queries.
//
// Endpoints:
//
// Regions:
//   - GET /api/worlds - List loaded worlds
//   - GET /api/worlds/{world} - Get a world definition
//   - PUT /api/worlds/{world} - Validate and save a world definition
//   - GET /api/worlds/{world}/regions?x=&y=&z= - Regions at a coordinate
//
// Actors:
//   - GET /api/actors - List online actors
//   - POST /api/actors - Join an actor
//   - GET /api/actors/{id} - Get an online actor
//   - DELETE /api/actors/{id} - Take an actor offline
//   - POST /api/actors/{id}/position - Move an actor
//   - GET /api/actors/{id}/regions - Regions the actor stands in
//   - GET|POST /api/actors/{id}/check - ALL/ANY membership check
//
// Events:
//   - GET /ws?actor={id|*} - WebSocket stream of region events
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Join takes
//
//	{"id": "<optional uuid>", "name": "Steve", "position": {"world": "world", "x": 0, "y": 64, "z": 0}}
//
// and a membership check takes ?regions=spawn,market&mode=any or
//
//	{"regions": ["spawn", "market"], "mode": "any"}
//
// A move denied by a region flag returns 200 with "success": false.
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code:
//
//	{
//	  "error": "region directory unavailable",
//	  "code": 503
//	}
//
// Invalid arguments map to 400, unknown actors and worlds to 404, name
// clashes to 409 and an uninitialized region directory to 503.
package api
