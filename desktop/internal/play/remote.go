package play

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
	hub "github.com/wricardo/memory-puzzle/transport/websocket"
)

const pollInterval = 500 * time.Millisecond

// Remote plays a server session. State pushed over the WebSocket replaces
// the local copy; without a socket the state is polled instead.
type Remote struct {
	baseURL   string
	sessionID string
	client    *http.Client
	settings  *engine.Settings

	mu       sync.RWMutex
	state    *engine.GameState
	conn     *websocket.Conn
	lastPoll time.Time
}

var _ Backend = (*Remote)(nil)

// Dial attaches to a server session and subscribes to its updates
func Dial(ctx context.Context, baseURL, sessionID string) (*Remote, error) {
	r := &Remote{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		client:    &http.Client{Timeout: 10 * time.Second},
	}

	var info service.SessionInfo
	if err := r.call(ctx, http.MethodGet, "", nil, &info); err != nil {
		return nil, fmt.Errorf("attach session %s: %w", sessionID, err)
	}
	r.settings = info.Settings
	if r.settings == nil {
		r.settings = engine.DefaultSettings()
	}
	r.state = info.GameState
	r.lastPoll = time.Now()

	if err := r.connect(ctx); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket unavailable, falling back to polling")
	} else {
		go r.listen()
	}
	return r, nil
}

// WebSocketURL derives the ws:// address of a session from the server URL
func WebSocketURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := url.Values{}
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Remote) connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(r.baseURL, r.sessionID)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	log.Info().Str("session", r.sessionID).Msg("websocket connected")
	return nil
}

// listen applies pushed states until the socket closes, then drops back to polling
func (r *Remote) listen() {
	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("session", r.sessionID).Msg("websocket closed")
			r.mu.Lock()
			if r.conn == conn {
				r.conn = nil
			}
			r.mu.Unlock()
			return
		}

		var msg hub.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("websocket message parse error")
			continue
		}
		if msg.GameState != nil {
			r.setState(msg.GameState)
		}
	}
}

// Connected reports whether updates arrive over the WebSocket
func (r *Remote) Connected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conn != nil
}

// SessionID returns the attached session
func (r *Remote) SessionID() string {
	return r.sessionID
}

func (r *Remote) State() *engine.GameState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return &engine.GameState{}
	}
	return r.state.Clone()
}

func (r *Remote) Settings() *engine.Settings {
	return r.settings
}

func (r *Remote) Reveal(pos engine.Position) (engine.RevealResult, error) {
	req := map[string]interface{}{"x": pos.X, "y": pos.Y, "resolve_first": true}
	var res service.RevealResult
	if err := r.call(context.Background(), http.MethodPost, "/reveal", req, &res); err != nil {
		return engine.RevealResult{}, fmt.Errorf("reveal %s: %w", pos, err)
	}
	r.setState(res.GameState)
	return res.Result, nil
}

func (r *Remote) ResolveMismatch() (bool, error) {
	var res service.ResolveResult
	if err := r.call(context.Background(), http.MethodPost, "/resolve", nil, &res); err != nil {
		return false, fmt.Errorf("resolve: %w", err)
	}
	r.setState(res.GameState)
	return res.Resolved, nil
}

func (r *Remote) NewGame(level engine.Level) error {
	req := map[string]string{"level": level.String()}
	var res service.NewGameResult
	if err := r.call(context.Background(), http.MethodPost, "/new-game", req, &res); err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	r.setState(res.GameState)
	return nil
}

// Update polls the server when no WebSocket is delivering state
func (r *Remote) Update() error {
	if r.Connected() || time.Since(r.lastPoll) < pollInterval {
		return nil
	}
	r.lastPoll = time.Now()

	var state engine.GameState
	if err := r.call(context.Background(), http.MethodGet, "/state", nil, &state); err != nil {
		return fmt.Errorf("poll state: %w", err)
	}
	r.setState(&state)
	return nil
}

func (r *Remote) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (r *Remote) setState(state *engine.GameState) {
	if state == nil {
		return
	}
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func (r *Remote) call(ctx context.Context, method, action string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	endpoint := r.baseURL + "/api/sessions/" + url.PathEscape(r.sessionID) + action
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
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
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return json.Unmarshal(data, result)
}
