// Package api provides the HTTP REST API for the memory puzzle.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {level?, seed?, profile?}
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Masked game state
//   - GET /api/sessions/{id}/stats - Moves, pairs, mismatches, elapsed
//   - POST /api/sessions/{id}/reveal - Reveal a tile {x, y, resolve_first?}
//   - POST /api/sessions/{id}/resolve - Hide a pending mismatch now
//   - POST /api/sessions/{id}/new-game - Deal a new board {level?, seed?}
//   - GET /api/sessions/{id}/history - Pair attempts (page, limit, order)
//
// Levels and Settings:
//   - GET /api/levels - Levels with their grid sizes
//   - GET /api/settings - Settings profiles
//   - GET /api/settings/{name} - One profile
//   - POST /api/settings - Save a profile
//
// Other:
//   - GET /health - Liveness
//   - GET /ws?session=ID - WebSocket updates for a session
//
// A rejected reveal is a normal 200 response whose result carries the
// reason. Errors are returned as JSON:
//
//	{"error": "session not found: session not found"}
//
// Unknown sessions and profiles map to 404, invalid levels and settings to
// 400, everything else to 500.
package api
