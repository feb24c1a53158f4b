package engine

import (
	"fmt"
	"strings"
	"time"
)

// Level selects the board dimensions
type Level int

const (
	Easy Level = iota
	Medium
	Hard
)

// Symbol identifies the face of a tile; each symbol appears on exactly two tiles
type Symbol int

// NoSymbol marks a tile whose face is not visible to the caller
const NoSymbol Symbol = -1

// TileState represents the visibility of a tile
type TileState string

const (
	Hidden   TileState = "hidden"
	Revealed TileState = "revealed"
	Matched  TileState = "matched"
)

const (
	// Validation constants
	MinMismatchDelay = 0
	MaxMismatchDelay = 10 * time.Second
	MaxHistoryPage   = 100
)

var levelDimensions = map[Level][2]int{
	Easy:   {4, 4},
	Medium: {6, 4},
	Hard:   {6, 6},
}

// Levels returns every playable level in ascending difficulty
func Levels() []Level {
	return []Level{Easy, Medium, Hard}
}

// Dimensions returns the (columns, rows) of the level's grid
func (l Level) Dimensions() (columns, rows int) {
	d, ok := levelDimensions[l]
	if !ok {
		return 0, 0
	}
	return d[0], d[1]
}

// Pairs returns how many symbol pairs a board of this level holds
func (l Level) Pairs() int {
	c, r := l.Dimensions()
	return c * r / 2
}

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	_, ok := levelDimensions[l]
	return ok
}

func (l Level) String() string {
	switch l {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name (case-insensitive) into a Level
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy", "e":
		return Easy, nil
	case "medium", "m":
		return Medium, nil
	case "hard", "h":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown level %q (want easy, medium or hard)", name)
}

// MarshalText encodes a level as its name
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Position represents x,y coordinates (x is the column, y the row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile represents a single grid cell
type Tile struct {
	Position Position  `json:"position"`
	Symbol   Symbol    `json:"symbol"`
	State    TileState `json:"state"`
}

// Board is the row-major arrangement of tiles
type Board struct {
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Tiles   []Tile `json:"tiles"`
}

// GameState represents the complete game state
type GameState struct {
	Board        Board              `json:"board"`
	Level        Level              `json:"level"`
	Seed         int64              `json:"seed"`
	Moves        int                `json:"moves"`
	MatchedPairs int                `json:"matched_pairs"`
	TotalPairs   int                `json:"total_pairs"`
	Elapsed      time.Duration      `json:"elapsed_ns"`
	Revealed     []Position         `json:"revealed"`
	Complete     bool               `json:"complete"`
	Message      string             `json:"message"`
	Generation   int                `json:"generation"`
	History      []MoveHistoryEntry `json:"history"`
}

// MoveHistoryEntry records one pair attempt
type MoveHistoryEntry struct {
	MoveNumber   int      `json:"move_number"`
	First        Position `json:"first"`
	Second       Position `json:"second"`
	FirstSymbol  Symbol   `json:"first_symbol"`
	SecondSymbol Symbol   `json:"second_symbol"`
	Matched      bool     `json:"matched"`
	Timestamp    int64    `json:"timestamp"`
}

// Stats summarises the counters of the current game
type Stats struct {
	Moves        int           `json:"moves"`
	MatchedPairs int           `json:"matched_pairs"`
	TotalPairs   int           `json:"total_pairs"`
	Mismatches   int           `json:"mismatches"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Complete     bool          `json:"complete"`
}

// RevealOutcome classifies the effect of a Reveal call
type RevealOutcome string

const (
	OutcomeRejected RevealOutcome = "rejected"
	OutcomeWaiting  RevealOutcome = "waiting"
	OutcomeMatch    RevealOutcome = "match"
	OutcomeMismatch RevealOutcome = "mismatch"
)

// RejectReason explains why a reveal was ignored
type RejectReason string

const (
	RejectNone            RejectReason = ""
	RejectOutOfBounds     RejectReason = "out_of_bounds"
	RejectAlreadyRevealed RejectReason = "already_revealed"
	RejectAlreadyMatched  RejectReason = "already_matched"
	RejectPendingMismatch RejectReason = "pending_mismatch"
	RejectGameComplete    RejectReason = "game_complete"
	RejectNoGame          RejectReason = "no_game"
)

// RevealResult is returned by every Reveal call
type RevealResult struct {
	Outcome  RevealOutcome `json:"outcome"`
	Reason   RejectReason  `json:"reason,omitempty"`
	Position Position      `json:"position"`
	// Pair holds both positions of the attempt once the second tile is revealed.
	Pair     []Position `json:"pair,omitempty"`
	Complete bool       `json:"complete,omitempty"`
}

// Accepted reports whether the reveal changed the game state
func (r RevealResult) Accepted() bool {
	return r.Outcome != OutcomeRejected
}
