// Package mcp exposes the memory puzzle to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API served by package api, so agents and browsers share
// the same sessions. Boards are rendered as text with hidden tiles masked;
// an agent only learns a symbol by revealing its tile.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, reveal, resolve_mismatch, new_game
//   - stats, move_history
//   - list_levels, list_profiles, game_instructions, describe_tile
//
// The underlying server can be served over stdio with server.ServeStdio or
// mounted on an HTTP endpoint by passing request bodies to HandleMessage.
package mcp
