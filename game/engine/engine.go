package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	NewGame(level Level, seed int64) error
	IsComplete() bool

	// Tile operations
	Reveal(pos Position) RevealResult
	ResolveMismatch() bool
	Pending() []Position

	// Clock
	Tick(delta time.Duration)

	// Read-only views
	Snapshot() *GameState
	Stats() Stats
	Level() Level
	Seed() int64
	Generation() int

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers own a GameEngine from a single goroutine or serialise access.
// The zero value has no game: reveals are rejected and the views are empty
// until NewGame is called.
type GameEngine struct {
	state      *GameState
	generation int
	now        func() time.Time
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new game engine with a board for the given level and seed
func NewEngine(level Level, seed int64) (*GameEngine, error) {
	e := &GameEngine{now: time.Now}
	if err := e.NewGame(level, seed); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine on the easy level with a random seed
func NewEngineWithDefaults() *GameEngine {
	e := &GameEngine{now: time.Now}
	// Easy is always a valid level.
	_ = e.NewGame(Easy, RandomSeed())
	return e
}

// RandomSeed returns an unpredictable seed for callers that did not supply one
func RandomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// NewGame discards the current game and starts a fresh one
func (e *GameEngine) NewGame(level Level, seed int64) error {
	board, err := GenerateBoard(level, seed)
	if err != nil {
		return err
	}

	if e.now == nil {
		e.now = time.Now
	}
	e.generation++
	e.state = &GameState{
		Board:      *board,
		Level:      level,
		Seed:       seed,
		TotalPairs: board.Pairs(),
		Revealed:   []Position{},
		Message:    fmt.Sprintf("New %s game: find all %d pairs", level, board.Pairs()),
		Generation: e.generation,
		History:    []MoveHistoryEntry{},
	}
	return nil
}

// Reveal turns the tile at pos face up and evaluates the pair once two tiles are showing
func (e *GameEngine) Reveal(pos Position) RevealResult {
	gs := e.state
	if reason := e.rejectReason(pos); reason != RejectNone {
		return RevealResult{Outcome: OutcomeRejected, Reason: reason, Position: pos}
	}

	tile := gs.Board.TileAt(pos)
	tile.State = Revealed
	gs.Revealed = append(gs.Revealed, pos)

	if len(gs.Revealed) == 1 {
		gs.Message = fmt.Sprintf("Revealed %s, pick a second tile", pos)
		return RevealResult{Outcome: OutcomeWaiting, Position: pos}
	}

	// Second tile of the attempt
	first := gs.Board.TileAt(gs.Revealed[0])
	second := tile
	pair := []Position{first.Position, second.Position}
	gs.Moves++

	matched := first.Symbol == second.Symbol
	gs.History = append(gs.History, MoveHistoryEntry{
		MoveNumber:   gs.Moves,
		First:        first.Position,
		Second:       second.Position,
		FirstSymbol:  first.Symbol,
		SecondSymbol: second.Symbol,
		Matched:      matched,
		Timestamp:    e.now().Unix(),
	})

	if !matched {
		gs.Message = fmt.Sprintf("No match: %s and %s", first.Position, second.Position)
		return RevealResult{Outcome: OutcomeMismatch, Position: pos, Pair: pair}
	}

	first.State = Matched
	second.State = Matched
	gs.Revealed = []Position{}
	gs.MatchedPairs++
	gs.Message = fmt.Sprintf("Match! %d/%d pairs found", gs.MatchedPairs, gs.TotalPairs)

	if gs.MatchedPairs == gs.TotalPairs {
		gs.Complete = true
		gs.Message = fmt.Sprintf("Complete! %d pairs in %d moves", gs.TotalPairs, gs.Moves)
	}

	return RevealResult{Outcome: OutcomeMatch, Position: pos, Pair: pair, Complete: gs.Complete}
}

func (e *GameEngine) rejectReason(pos Position) RejectReason {
	gs := e.state
	if gs == nil {
		return RejectNoGame
	}
	if gs.Complete {
		return RejectGameComplete
	}
	tile := gs.Board.TileAt(pos)
	switch {
	case tile == nil:
		return RejectOutOfBounds
	case tile.State == Matched:
		return RejectAlreadyMatched
	case tile.State == Revealed:
		return RejectAlreadyRevealed
	case len(gs.Revealed) >= 2:
		return RejectPendingMismatch
	}
	return RejectNone
}

// ResolveMismatch flips a pending mismatched pair back to hidden.
// It reports whether anything changed.
func (e *GameEngine) ResolveMismatch() bool {
	gs := e.state
	if gs == nil || len(gs.Revealed) != 2 {
		return false
	}
	a := gs.Board.TileAt(gs.Revealed[0])
	b := gs.Board.TileAt(gs.Revealed[1])
	if a == nil || b == nil || a.State != Revealed || b.State != Revealed {
		return false
	}
	a.State = Hidden
	b.State = Hidden
	gs.Revealed = []Position{}
	gs.Message = "Tiles hidden, try again"
	return true
}

// Pending returns the positions currently revealed but not matched
func (e *GameEngine) Pending() []Position {
	if e.state == nil {
		return []Position{}
	}
	out := make([]Position, len(e.state.Revealed))
	copy(out, e.state.Revealed)
	return out
}

// Tick advances the elapsed clock; it stops once the game is complete
func (e *GameEngine) Tick(delta time.Duration) {
	if delta <= 0 || e.state == nil || e.state.Complete {
		return
	}
	e.state.Elapsed += delta
}

// IsComplete reports whether every pair has been matched
func (e *GameEngine) IsComplete() bool {
	return e.state != nil && e.state.Complete
}

// Snapshot returns a deep copy of the game state for rendering
func (e *GameEngine) Snapshot() *GameState {
	if e.state == nil {
		return &GameState{Revealed: []Position{}, History: []MoveHistoryEntry{}}
	}
	return e.state.Clone()
}

// Stats returns the counters of the current game
func (e *GameEngine) Stats() Stats {
	gs := e.state
	if gs == nil {
		return Stats{}
	}
	return Stats{
		Moves:        gs.Moves,
		MatchedPairs: gs.MatchedPairs,
		TotalPairs:   gs.TotalPairs,
		Mismatches:   gs.Moves - gs.MatchedPairs,
		Elapsed:      gs.Elapsed,
		Complete:     gs.Complete,
	}
}

// Level returns the level of the current game
func (e *GameEngine) Level() Level {
	if e.state == nil {
		return Easy
	}
	return e.state.Level
}

// Seed returns the seed the current board was generated from
func (e *GameEngine) Seed() int64 {
	if e.state == nil {
		return 0
	}
	return e.state.Seed
}

// Generation increments on every NewGame and identifies the current board
func (e *GameEngine) Generation() int {
	return e.generation
}

// GetMoveHistory returns the pair attempts of the current game
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	if e.state == nil {
		return []MoveHistoryEntry{}
	}
	out := make([]MoveHistoryEntry, len(e.state.History))
	copy(out, e.state.History)
	return out
}

// GetLastMove returns the last pair attempt, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if e.state == nil || len(e.state.History) == 0 {
		return nil
	}
	last := e.state.History[len(e.state.History)-1]
	return &last
}
