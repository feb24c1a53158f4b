package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/memory-puzzle/game/config"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
	"github.com/wricardo/memory-puzzle/game/session"
	"github.com/wricardo/memory-puzzle/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	RevealFunc          func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error)
	ResolveMismatchFunc func(ctx context.Context, sessionID string) (*service.ResolveResult, error)
	NewGameFunc         func(ctx context.Context, sessionID, level string, seed *int64) (*service.NewGameResult, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetStatsFunc       func(ctx context.Context, sessionID string) (*engine.Stats, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Settings
	ListProfilesFunc func(ctx context.Context) ([]*service.ProfileInfo, error)
	LoadSettingsFunc func(ctx context.Context, profile string) (*engine.Settings, error)
	SaveSettingsFunc func(ctx context.Context, profile string, settings *engine.Settings) error
}

func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{ID: "ab12", Profile: "default", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, Profile: "default", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Reveal(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
	if m.RevealFunc != nil {
		return m.RevealFunc(ctx, sessionID, pos, resolveFirst)
	}
	return &service.RevealResult{
		Success:   true,
		Result:    engine.RevealResult{Outcome: engine.OutcomeWaiting, Position: pos},
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) ResolveMismatch(ctx context.Context, sessionID string) (*service.ResolveResult, error) {
	if m.ResolveMismatchFunc != nil {
		return m.ResolveMismatchFunc(ctx, sessionID)
	}
	return &service.ResolveResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) NewGame(ctx context.Context, sessionID, level string, seed *int64) (*service.NewGameResult, error) {
	if m.NewGameFunc != nil {
		return m.NewGameFunc(ctx, sessionID, level, seed)
	}
	return &service.NewGameResult{GameState: &engine.GameState{Generation: 2}}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetStats(ctx context.Context, sessionID string) (*engine.Stats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, sessionID)
	}
	return &engine.Stats{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListLevels(ctx context.Context) []service.LevelInfo {
	return []service.LevelInfo{{Name: "easy", Columns: 4, Rows: 4, Pairs: 8}}
}

func (m *MockGameService) ListProfiles(ctx context.Context) ([]*service.ProfileInfo, error) {
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx)
	}
	return []*service.ProfileInfo{}, nil
}

func (m *MockGameService) LoadSettings(ctx context.Context, profile string) (*engine.Settings, error) {
	if m.LoadSettingsFunc != nil {
		return m.LoadSettingsFunc(ctx, profile)
	}
	s := engine.DefaultSettings()
	s.Name = profile
	return s, nil
}

func (m *MockGameService) SaveSettings(ctx context.Context, profile string, settings *engine.Settings) error {
	if m.SaveSettingsFunc != nil {
		return m.SaveSettingsFunc(ctx, profile, settings)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) (*Server, *websocket.Hub) {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return NewServer(mockService, hub), hub
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func do(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func notFound(ctx context.Context, sessionID string) error {
	return fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with defaults",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					if opts.Level != "" || opts.Seed != nil || opts.Profile != "" {
						t.Errorf("Expected empty options, got %+v", opts)
					}
					return &service.SessionInfo{ID: "ab12", Profile: "default"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with level, seed and profile",
			requestBody: map[string]interface{}{"level": "hard", "seed": 42, "profile": "fast"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					if opts.Level != "hard" || opts.Seed == nil || *opts.Seed != 42 || opts.Profile != "fast" {
						t.Errorf("Unexpected options %+v", opts)
					}
					return &service.SessionInfo{ID: "cd34", Profile: opts.Profile}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Invalid level",
			requestBody: map[string]interface{}{"level": "extreme"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: unknown level", service.ErrInvalidLevel)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown profile",
			requestBody: map[string]interface{}{"profile": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("profile 'nope' unavailable: %w", config.ErrSettingsNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server, _ := setupTestServer(t, mockService)

			w := do(t, server, "POST", "/api/sessions", tt.requestBody)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}

	t.Run("Malformed body", func(t *testing.T) {
		server, _ := setupTestServer(t, &MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{")))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
			{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
			{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
		}
	}

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
	}{
		{name: "default sorts by last access desc", query: "", wantIDs: []string{"new", "old", "mid"}, wantTotal: 3},
		{name: "created ascending", query: "?sort=created&order=asc", wantIDs: []string{"old", "mid", "new"}, wantTotal: 3},
		{name: "limit", query: "?sort=created&limit=2", wantIDs: []string{"new", "mid"}, wantTotal: 3},
		{name: "invalid limit ignored", query: "?limit=abc", wantIDs: []string{"new", "old", "mid"}, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) { return sessions(), nil },
			}
			server, _ := setupTestServer(t, mock)
			w := do(t, server, "GET", "/api/sessions"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantIDs) {
				t.Errorf("Expected count %d of %d, got %d of %d", len(tt.wantIDs), tt.wantTotal, resp.Count, resp.Total)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}

	t.Run("service error", func(t *testing.T) {
		mock := &MockGameService{
			ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) { return nil, fmt.Errorf("boom") },
		}
		server, _ := setupTestServer(t, mock)
		if w := do(t, server, "GET", "/api/sessions", nil); w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(ctx, sessionID)
			}
			return &service.SessionInfo{ID: "ab12"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	}
	server, _ := setupTestServer(t, mock)

	if w := do(t, server, "GET", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(t, server, "GET", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w := do(t, server, "DELETE", "/api/sessions/ab12", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["message"] != "Session ab12 deleted" {
		t.Errorf("Unexpected message %q", resp["message"])
	}
	if w := do(t, server, "DELETE", "/api/sessions/zz99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestReveal(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Reveal a tile",
			body: map[string]interface{}{"x": 1, "y": 2},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
					if pos != (engine.Position{X: 1, Y: 2}) || resolveFirst {
						t.Errorf("Unexpected reveal %v resolveFirst=%v", pos, resolveFirst)
					}
					return &service.RevealResult{
						Success:   true,
						Result:    engine.RevealResult{Outcome: engine.OutcomeWaiting, Position: pos},
						GameState: &engine.GameState{Revealed: []engine.Position{pos}},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.RevealResult
				parseResponse(t, w, &resp)
				if !resp.Success || resp.Result.Outcome != engine.OutcomeWaiting {
					t.Errorf("Unexpected response %+v", resp)
				}
			},
		},
		{
			name: "Resolve first",
			body: map[string]interface{}{"x": 0, "y": 0, "resolve_first": true},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
					if !resolveFirst {
						t.Error("Expected resolve_first to be forwarded")
					}
					return &service.RevealResult{Success: true, GameState: &engine.GameState{}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Rejected reveal is not an HTTP error",
			body: map[string]interface{}{"x": 9, "y": 9},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
					return &service.RevealResult{
						Result:    engine.RevealResult{Outcome: engine.OutcomeRejected, Reason: engine.RejectOutOfBounds, Position: pos},
						GameState: &engine.GameState{},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.RevealResult
				parseResponse(t, w, &resp)
				if resp.Success || resp.Result.Reason != engine.RejectOutOfBounds {
					t.Errorf("Expected out_of_bounds rejection, got %+v", resp.Result)
				}
			},
		},
		{
			name:           "Missing coordinates",
			body:           map[string]interface{}{"x": 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown session",
			body: map[string]interface{}{"x": 0, "y": 0},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
					return nil, notFound(ctx, sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server, _ := setupTestServer(t, mockService)

			w := do(t, server, "POST", "/api/sessions/ab12/reveal", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestResolveAndNewGame(t *testing.T) {
	var gotLevel string
	var gotSeed *int64
	mock := &MockGameService{
		ResolveMismatchFunc: func(ctx context.Context, sessionID string) (*service.ResolveResult, error) {
			return &service.ResolveResult{Resolved: true, GameState: &engine.GameState{}}, nil
		},
		NewGameFunc: func(ctx context.Context, sessionID, level string, seed *int64) (*service.NewGameResult, error) {
			gotLevel, gotSeed = level, seed
			if level == "bogus" {
				return nil, fmt.Errorf("%w: bogus", service.ErrInvalidLevel)
			}
			return &service.NewGameResult{GameState: &engine.GameState{Generation: 2}}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	w := do(t, server, "POST", "/api/sessions/ab12/resolve", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resolved service.ResolveResult
	parseResponse(t, w, &resolved)
	if !resolved.Resolved {
		t.Error("Expected resolved=true")
	}

	// Empty body keeps level and picks a random seed
	if w := do(t, server, "POST", "/api/sessions/ab12/new-game", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotLevel != "" || gotSeed != nil {
		t.Errorf("Expected empty level and nil seed, got %q %v", gotLevel, gotSeed)
	}

	if w := do(t, server, "POST", "/api/sessions/ab12/new-game", map[string]interface{}{"level": "medium", "seed": 7}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotLevel != "medium" || gotSeed == nil || *gotSeed != 7 {
		t.Errorf("Expected medium/7, got %q %v", gotLevel, gotSeed)
	}

	if w := do(t, server, "POST", "/api/sessions/ab12/new-game", map[string]interface{}{"level": "bogus"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid level, got %d", w.Code)
	}
}

func TestGetStateStatsAndHistory(t *testing.T) {
	var gotOpts service.HistoryOptions
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "gone" {
				return nil, notFound(ctx, sessionID)
			}
			return &engine.GameState{Moves: 4, TotalPairs: 8}, nil
		},
		GetStatsFunc: func(ctx context.Context, sessionID string) (*engine.Stats, error) {
			return &engine.Stats{Moves: 4, Mismatches: 1, Elapsed: 2 * time.Second}, nil
		},
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			gotOpts = opts
			return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{{MoveNumber: 1}}, TotalMoves: 1}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	w := do(t, server, "GET", "/api/sessions/ab12/state", nil)
	var state engine.GameState
	parseResponse(t, w, &state)
	if w.Code != http.StatusOK || state.Moves != 4 {
		t.Errorf("Unexpected state response %d %+v", w.Code, state)
	}
	if w := do(t, server, "GET", "/api/sessions/gone/state", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = do(t, server, "GET", "/api/sessions/ab12/stats", nil)
	var stats engine.Stats
	parseResponse(t, w, &stats)
	if stats.Mismatches != 1 || stats.Elapsed != 2*time.Second {
		t.Errorf("Unexpected stats %+v", stats)
	}

	do(t, server, "GET", "/api/sessions/ab12/history", nil)
	if gotOpts != (service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}) {
		t.Errorf("Unexpected default history options %+v", gotOpts)
	}
	do(t, server, "GET", "/api/sessions/ab12/history?page=2&limit=5&order=asc", nil)
	if gotOpts != (service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}) {
		t.Errorf("Unexpected history options %+v", gotOpts)
	}
	do(t, server, "GET", "/api/sessions/ab12/history?page=-1&limit=x&order=sideways", nil)
	if gotOpts != (service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}) {
		t.Errorf("Invalid query values should fall back to defaults, got %+v", gotOpts)
	}
}

func TestCreateSettings_RejectsPathNames(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "configs")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create settings dir: %v", err)
	}
	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	server := NewServer(service.NewGameService(session.NewManager(), configs), nil)

	for _, name := range []string{"../escaped", "nested/escaped"} {
		w := do(t, server, "POST", "/api/settings", map[string]interface{}{"name": name})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %q, got %d: %s", name, w.Code, w.Body.String())
		}
	}
	if _, err := os.Stat(filepath.Join(parent, "escaped.json")); !os.IsNotExist(err) {
		t.Errorf("Expected no profile written outside the settings dir, stat returned %v", err)
	}

	if w := do(t, server, "POST", "/api/settings", map[string]interface{}{"name": "plain"}); w.Code != http.StatusCreated {
		t.Errorf("Expected 201 for a plain name, got %d: %s", w.Code, w.Body.String())
	}
}

// Level and Settings Tests

func TestLevelsAndSettings(t *testing.T) {
	var saved *engine.Settings
	mock := &MockGameService{
		ListProfilesFunc: func(ctx context.Context) ([]*service.ProfileInfo, error) {
			return []*service.ProfileInfo{{ProfileID: "default"}, {ProfileID: "fast"}}, nil
		},
		LoadSettingsFunc: func(ctx context.Context, profile string) (*engine.Settings, error) {
			if profile != "fast" {
				return nil, fmt.Errorf("%w: %s", config.ErrSettingsNotFound, profile)
			}
			s := engine.DefaultSettings()
			s.Name = "fast"
			s.MismatchDelayMS = 200
			return s, nil
		},
		SaveSettingsFunc: func(ctx context.Context, profile string, settings *engine.Settings) error {
			if settings.TileSize <= 0 {
				return fmt.Errorf("%w: tile_size", config.ErrInvalidSettings)
			}
			saved = settings
			return nil
		},
	}
	server, _ := setupTestServer(t, mock)

	var levels []service.LevelInfo
	parseResponse(t, do(t, server, "GET", "/api/levels", nil), &levels)
	if len(levels) != 1 || levels[0].Pairs != 8 {
		t.Errorf("Unexpected levels %+v", levels)
	}

	var profiles []service.ProfileInfo
	parseResponse(t, do(t, server, "GET", "/api/settings", nil), &profiles)
	if len(profiles) != 2 {
		t.Errorf("Expected 2 profiles, got %d", len(profiles))
	}

	var fast engine.Settings
	w := do(t, server, "GET", "/api/settings/fast", nil)
	parseResponse(t, w, &fast)
	if w.Code != http.StatusOK || fast.MismatchDelayMS != 200 {
		t.Errorf("Unexpected settings %d %+v", w.Code, fast)
	}
	if w := do(t, server, "GET", "/api/settings/slow", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = do(t, server, "POST", "/api/settings", map[string]interface{}{"name": "quick", "mismatch_delay_ms": 100})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if saved == nil || saved.MismatchDelayMS != 100 || saved.TileSize != engine.DefaultSettings().TileSize {
		t.Errorf("Expected defaults merged with the request, got %+v", saved)
	}
	if w := do(t, server, "POST", "/api/settings", map[string]interface{}{"mismatch_delay_ms": 100}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a name, got %d", w.Code)
	}
	if w := do(t, server, "POST", "/api/settings", map[string]interface{}{"name": "bad", "tile_size": 0}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid settings, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{})
	w := do(t, server, "GET", "/health", nil)
	var resp map[string]string
	parseResponse(t, w, &resp)
	if w.Code != http.StatusOK || resp["status"] != "healthy" {
		t.Errorf("Unexpected health response %d %v", w.Code, resp)
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(ctx, sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		RevealFunc: func(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*service.RevealResult, error) {
			return &service.RevealResult{
				Success:   true,
				Result:    engine.RevealResult{Outcome: engine.OutcomeWaiting, Position: pos},
				GameState: &engine.GameState{Moves: 0, Revealed: []engine.Position{pos}},
			}, nil
		},
	}
	server, hub := setupTestServer(t, mock)
	ts := httptest.NewServer(server)
	defer ts.Close()
	wsBase := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	t.Run("missing session parameter", func(t *testing.T) {
		if w := do(t, server, "GET", "/ws", nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if w := do(t, server, "GET", "/ws?session=zz99", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("reveal is broadcast", func(t *testing.T) {
		conn, _, err := gorillaws.DefaultDialer.Dial(wsBase+"?session=ab12", nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.ClientCount("ab12") != 1 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		if w := do(t, server, "POST", "/api/sessions/ab12/reveal", map[string]int{"x": 2, "y": 3}); w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		first := strings.SplitN(string(data), "\n", 2)[0]
		var msg websocket.Message
		if err := json.Unmarshal([]byte(first), &msg); err != nil {
			t.Fatalf("Failed to parse message: %v", err)
		}
		if msg.Event != websocket.EventStateUpdate || msg.GameState == nil || len(msg.GameState.Revealed) != 1 {
			t.Errorf("Unexpected message %+v", msg)
		}
	})
}

func TestServerWithoutHub(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)

	if w := do(t, server, "POST", "/api/sessions/ab12/reveal", map[string]int{"x": 0, "y": 0}); w.Code != http.StatusOK {
		t.Errorf("Expected 200 without a hub, got %d", w.Code)
	}
	if w := do(t, server, "GET", "/ws?session=ab12", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when websockets are disabled, got %d", w.Code)
	}
}
