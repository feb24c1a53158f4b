// Package engine provides the core game logic for the Memory Puzzle.
//
// The engine package implements the game mechanics including:
//   - Seeded, reproducible board generation for three fixed levels
//   - Reveal, match and mismatch transitions per tile
//   - Move counting, elapsed time accumulation and completion detection
//   - Settings profiles consumed by views (tile metrics, palette, delays)
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the full state of one game,
// Board holds the tiles in row-major order and Settings describes how a
// view draws and times the game.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.Easy, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := gameEngine.Reveal(engine.Position{X: 0, Y: 0})
//	res = gameEngine.Reveal(engine.Position{X: 1, Y: 0})
//	if res.Outcome == engine.OutcomeMismatch {
//		// the view waits for Settings.MismatchDelay, then:
//		gameEngine.ResolveMismatch()
//	}
//
// Game Rules:
//
// Each board holds every symbol exactly twice, face down. The player turns
// two tiles over per move. Equal symbols stay face up as a matched pair;
// different symbols are turned back once the view resolves the mismatch.
// The game is complete when every pair is matched. The engine never sleeps
// or schedules anything itself: timing is the caller's job.
package engine
