package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
)

// rejectTransport is reported by Reveal when the server could not be reached
const rejectTransport engine.RejectReason = "transport_error"

// RemoteEngine plays a server-side session through the REST API. It caches
// the state returned by the last call, so Snapshot never races the server's
// mismatch timer. Engine methods cannot return errors; the first transport
// failure is kept and reported by Err.
type RemoteEngine struct {
	baseURL   string
	sessionID string
	client    *http.Client
	ctx       context.Context

	state *engine.GameState
	err   error
}

var _ engine.Engine = (*RemoteEngine)(nil)

// NewRemoteEngine creates an engine bound to no session yet
func NewRemoteEngine(ctx context.Context, baseURL string) *RemoteEngine {
	return &RemoteEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		ctx: ctx,
	}
}

// SessionID returns the bound session
func (r *RemoteEngine) SessionID() string {
	return r.sessionID
}

// Err returns the first transport error seen
func (r *RemoteEngine) Err() error {
	return r.err
}

// CreateSession starts a new session on the server and binds to it
func (r *RemoteEngine) CreateSession(opts service.CreateSessionOptions) error {
	var info service.SessionInfo
	if err := r.call(http.MethodPost, "/api/sessions", opts, &info); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	r.sessionID = info.ID
	r.state = info.GameState
	return nil
}

// Attach binds to an existing session and loads its state
func (r *RemoteEngine) Attach(sessionID string) error {
	r.sessionID = sessionID
	if err := r.Refresh(); err != nil {
		r.sessionID = ""
		return err
	}
	return nil
}

// Refresh reloads the session state from the server
func (r *RemoteEngine) Refresh() error {
	var state engine.GameState
	if err := r.call(http.MethodGet, r.path("state"), nil, &state); err != nil {
		return fmt.Errorf("get state: %w", err)
	}
	r.state = &state
	return nil
}

func (r *RemoteEngine) NewGame(level engine.Level, seed int64) error {
	req := struct {
		Level string `json:"level"`
		Seed  int64  `json:"seed"`
	}{Level: level.String(), Seed: seed}

	var res service.NewGameResult
	if err := r.call(http.MethodPost, r.path("new-game"), req, &res); err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	r.state = res.GameState
	return nil
}

func (r *RemoteEngine) IsComplete() bool {
	return r.state != nil && r.state.Complete
}

func (r *RemoteEngine) Reveal(pos engine.Position) engine.RevealResult {
	req := map[string]int{"x": pos.X, "y": pos.Y}

	var res service.RevealResult
	if err := r.call(http.MethodPost, r.path("reveal"), req, &res); err != nil {
		r.fail(fmt.Errorf("reveal %s: %w", pos, err))
		return engine.RevealResult{Outcome: engine.OutcomeRejected, Reason: rejectTransport, Position: pos}
	}
	if res.GameState != nil {
		r.state = res.GameState
	}
	return res.Result
}

func (r *RemoteEngine) ResolveMismatch() bool {
	var res service.ResolveResult
	if err := r.call(http.MethodPost, r.path("resolve"), nil, &res); err != nil {
		r.fail(fmt.Errorf("resolve: %w", err))
		return false
	}
	if res.GameState != nil {
		r.state = res.GameState
	}
	return res.Resolved
}

func (r *RemoteEngine) Pending() []engine.Position {
	if r.state == nil || len(r.state.Revealed) != 2 {
		return nil
	}
	return append([]engine.Position{}, r.state.Revealed...)
}

// Tick is a no-op; the server owns the clock
func (r *RemoteEngine) Tick(time.Duration) {}

func (r *RemoteEngine) Snapshot() *engine.GameState {
	if r.state == nil {
		return &engine.GameState{}
	}
	return r.state.Clone()
}

// Stats asks the server, falling back to the cached counters
func (r *RemoteEngine) Stats() engine.Stats {
	var stats engine.Stats
	if err := r.call(http.MethodGet, r.path("stats"), nil, &stats); err == nil {
		return stats
	}
	if r.state == nil {
		return stats
	}
	mismatches := 0
	for _, h := range r.state.History {
		if !h.Matched {
			mismatches++
		}
	}
	return engine.Stats{
		Moves:        r.state.Moves,
		MatchedPairs: r.state.MatchedPairs,
		TotalPairs:   r.state.TotalPairs,
		Mismatches:   mismatches,
		Elapsed:      r.state.Elapsed,
		Complete:     r.state.Complete,
	}
}

func (r *RemoteEngine) Level() engine.Level {
	if r.state == nil {
		return engine.Easy
	}
	return r.state.Level
}

func (r *RemoteEngine) Seed() int64 {
	if r.state == nil {
		return 0
	}
	return r.state.Seed
}

func (r *RemoteEngine) Generation() int {
	if r.state == nil {
		return 0
	}
	return r.state.Generation
}

func (r *RemoteEngine) GetMoveHistory() []engine.MoveHistoryEntry {
	if r.state == nil {
		return nil
	}
	return append([]engine.MoveHistoryEntry{}, r.state.History...)
}

func (r *RemoteEngine) GetLastMove() *engine.MoveHistoryEntry {
	if r.state == nil || len(r.state.History) == 0 {
		return nil
	}
	last := r.state.History[len(r.state.History)-1]
	return &last
}

func (r *RemoteEngine) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *RemoteEngine) path(action string) string {
	return "/api/sessions/" + url.PathEscape(r.sessionID) + "/" + action
}

func (r *RemoteEngine) call(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(r.ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
