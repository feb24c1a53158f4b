package service

import (
	"context"
	"time"

	"github.com/wricardo/memory-puzzle/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Reveal(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*RevealResult, error)
	ResolveMismatch(ctx context.Context, sessionID string) (*ResolveResult, error)
	NewGame(ctx context.Context, sessionID, level string, seed *int64) (*NewGameResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetStats(ctx context.Context, sessionID string) (*engine.Stats, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels and settings
	ListLevels(ctx context.Context) []LevelInfo
	ListProfiles(ctx context.Context) ([]*ProfileInfo, error)
	LoadSettings(ctx context.Context, profile string) (*engine.Settings, error)
	SaveSettings(ctx context.Context, profile string, settings *engine.Settings) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, settings *engine.Settings, level engine.Level, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, settings *engine.Settings, level engine.Level, seed int64) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles settings profile loading
type ConfigManager interface {
	LoadSettings(name string) (*engine.Settings, error)
	ListProfiles() ([]*ProfileInfo, error)
	GetDefault() *engine.Settings
	SaveSettings(name string, settings *engine.Settings) error
}

// Notifier receives state changes that happen outside a request, such as a
// timer hiding a mismatched pair. The WebSocket hub implements it.
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Settings       *engine.Settings
	Profile        string
	CreatedAt      time.Time
	LastAccessedAt time.Time

	lastTick     time.Time
	resolveTimer *time.Timer
}
