package service

import (
	"errors"
	"time"

	"github.com/wricardo/memory-puzzle/game/engine"
)

// ErrInvalidLevel is returned when a level name cannot be parsed
var ErrInvalidLevel = errors.New("invalid level")

// Event types carried in GameEvent.Type
const (
	EventReveal   = "reveal"
	EventMatch    = "match"
	EventMismatch = "mismatch"
	EventComplete = "complete"
	EventRejected = "rejected"
	EventResolved = "resolved"
	EventNewGame  = "new_game"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	Profile        string            `json:"profile"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Settings       *engine.Settings  `json:"settings"`
}

// CreateSessionOptions selects the first board of a new session.
// Level and Profile fall back to the profile's defaults; a nil Seed means random.
type CreateSessionOptions struct {
	Level   string `json:"level,omitempty"`
	Seed    *int64 `json:"seed,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// RevealResult contains the result of a reveal operation
type RevealResult struct {
	Success   bool                `json:"success"`
	Result    engine.RevealResult `json:"result"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
	// ResolveIn is set when a mismatch is pending and a timer will hide it.
	ResolveIn time.Duration `json:"resolve_in_ns,omitempty"`
}

// ResolveResult contains the result of a resolve_mismatch operation
type ResolveResult struct {
	Resolved  bool              `json:"resolved"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// NewGameResult contains the fresh state after new_game
type NewGameResult struct {
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "reveal", "match", "mismatch", "complete", "rejected", "resolved", "new_game"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Positions []engine.Position `json:"positions,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo describes a playable level
type LevelInfo struct {
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Pairs   int    `json:"pairs"`
}

// ProfileInfo provides information about a settings profile
type ProfileInfo struct {
	Filename        string `json:"filename"`
	ProfileID       string `json:"profile_id"` // The identifier to use for session creation
	Name            string `json:"name"`       // Display name
	Description     string `json:"description"`
	MismatchDelayMS int    `json:"mismatch_delay_ms"`
	AutoResolve     bool   `json:"auto_resolve"`
	DefaultLevel    string `json:"default_level"`
}
