// Package service provides the business logic layer for the memory puzzle.
//
// The service package implements:
//   - Multi-session game management
//   - Settings profile selection per session
//   - Reveal, resolve and new-game processing
//   - Wall-clock timing of each session's game
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads settings profiles.
// Notifier receives state changes that happen between requests.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. It acts as the view for remote players: every call first
// advances the session clock by the wall time since the previous call, and a
// mismatch arms a timer that hides the pair after the profile's
// mismatch_delay_ms. The timer only fires on the board and pair it was armed
// for; NewGame and DeleteSession stop it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("settings")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionOptions{Level: "easy"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Reveal(ctx, info.ID, engine.Position{X: 0, Y: 0}, false)
//
// All returned game states are masked: hidden tiles carry engine.NoSymbol.
package service
