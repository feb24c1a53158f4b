package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Every symbol on the board appears on exactly two tiles. Turn tiles face up two
at a time and match all pairs in as few moves as possible.

AVAILABLE TOOLS:
- create_session: Start a session (level easy/medium/hard, optional seed and profile)
- list_sessions / get_session: Inspect sessions
- game_state: Board, counters and pending tiles
- reveal: Turn the tile at (x, y) face up
- resolve_mismatch: Hide a mismatched pair now instead of waiting for the timer
- new_game: Start over on the same or a different level
- stats: Moves, matched pairs, mismatches and elapsed time
- move_history: Past pair attempts, paginated
- list_levels / list_profiles: Available levels and settings profiles
- describe_tile: Details about one tile
- game_instructions: Full rules

Hidden tiles never reveal their symbol through this interface. Remember what
you have seen.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Board size (defaults to the profile's level)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible board (optional)",
				},
				"profile": map[string]interface{}{
					"type":        "string",
					"description": "Settings profile to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and counters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal",
		Description: "Turn the tile at column x, row y face up",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
				"resolve_first": map[string]interface{}{
					"type":        "boolean",
					"description": "Hide a pending mismatched pair before revealing",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleReveal)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resolve_mismatch",
		Description: "Hide a pending mismatched pair immediately",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleResolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game in the session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"level": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Level for the new game (defaults to the current level)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible board (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "stats",
		Description: "Get the counters of the current game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the pair attempts of the current game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the playable levels and their board sizes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_profiles",
		Description: "List available settings profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListProfiles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules and a suggested strategy",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the state of one tile and, when it is face up, its symbol",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id string, parts ...string) string {
	p := "/api/sessions/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// optionalSeed returns a pointer to the "seed" argument when one was supplied
func optionalSeed(request mcp.CallToolRequest) *int64 {
	if _, ok := request.GetArguments()["seed"]; !ok {
		return nil
	}
	seed := int64(request.GetFloat("seed", 0))
	return &seed
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := service.CreateSessionOptions{
		Level:   request.GetString("level", ""),
		Seed:    optionalSeed(request),
		Profile: request.GetString("profile", ""),
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", opts, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nProfile: %s\n\n%s",
		session.ID, session.Profile, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", %s %d/%d pairs", s.GameState.Level, s.GameState.MatchedPairs, s.GameState.TotalPairs)
		}
		fmt.Fprintf(&b, "- %s (Profile: %s%s, Created: %s)\n",
			s.ID, s.Profile, progress, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"x":             x,
		"y":             y,
		"resolve_first": request.GetBool("resolve_first", false),
	}

	var result service.RevealResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "reveal"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRevealResult(&result)), nil
}

func (c *Client) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ResolveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "resolve"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := "No mismatched pair was pending"
	if result.Resolved {
		header = "Mismatched pair hidden"
	}
	return mcp.NewToolResultText(header + "\n\n" + formatGameState(result.GameState)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{}
	if level := request.GetString("level", ""); level != "" {
		body["level"] = level
	}
	if seed := optionalSeed(request); seed != nil {
		body["seed"] = *seed
	}

	var result service.NewGameResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "new-game"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(result.GameState)), nil
}

func (c *Client) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var stats engine.Stats
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "stats"), nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(&stats)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, l := range levels {
		fmt.Fprintf(&b, "• %s: %dx%d grid, %d pairs\n", l.Name, l.Columns, l.Rows, l.Pairs)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var profiles []service.ProfileInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/settings", nil, &profiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Profiles:\n\n")
	for _, p := range profiles {
		resolve := "manual"
		if p.AutoResolve {
			resolve = fmt.Sprintf("after %dms", p.MismatchDelayMS)
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Level: %s, mismatches hide %s\n\n",
			p.ProfileID, p.Name, p.Description, p.DefaultLevel, resolve)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Memory Puzzle - Instructions

GAME OBJECTIVE:
Match every pair of symbols on the board. The game is complete when all tiles
are matched. Fewer moves is better.

LEVELS:
• easy   - 4x4 grid, 8 pairs
• medium - 6x4 grid, 12 pairs
• hard   - 6x6 grid, 18 pairs

TURN STRUCTURE:
1. Reveal a first tile. It stays face up.
2. Reveal a second tile. This completes one move.
   • Same symbol: both tiles become matched and stay face up.
   • Different symbols: both stay face up until the mismatch is resolved.
3. A mismatched pair is hidden again after the profile's delay, or
   immediately with resolve_mismatch, or by passing resolve_first=true on
   the next reveal.

While a mismatched pair is showing, other reveals are rejected with
reason pending_mismatch.

BOARD LEGEND:
• --    hidden tile
• [C1]  face-up tile showing symbol C1
• (C1)  matched tile
Symbol labels are a glyph initial plus a number: C circle, S square,
D diamond, T triangle, * star, + plus, X cross, H hexagon.

COORDINATES:
x is the column and y is the row, both starting at 0 in the top-left corner.

REJECTED REVEALS:
• out_of_bounds     - (x, y) is not on the board
• already_revealed  - the tile is already face up
• already_matched   - the tile has been matched
• pending_mismatch  - a mismatched pair must be hidden first
• game_complete     - start a new game

STRATEGY:
Keep a map of every symbol you have seen. When the first tile of a move
shows a symbol you already saw elsewhere, reveal that position next. When
it is new, spend the second reveal on an unseen tile to learn more. A
perfect memory finishes an N-pair board in at most 2N-1 moves.

SESSIONS:
Multiple sessions can run at once, each with its own board, clock and
settings profile. A seed reproduces the same board layout.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := engine.Position{X: x, Y: y}
	tile := state.Board.TileAt(pos)
	if tile == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Board.Columns, state.Board.Rows, state.Board.Columns-1, state.Board.Rows-1)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tile %s\nState: %s\n", pos, tile.State)
	if tile.State == engine.Hidden || tile.Symbol == engine.NoSymbol {
		b.WriteString("Symbol: unknown until revealed\n")
	} else {
		id := engine.IdentityOf(tile.Symbol)
		fmt.Fprintf(&b, "Symbol: %s (%s %s)\n", tile.Symbol.Label(), id.Color, id.Glyph)
		if others := engine.FindSymbolPositions(&state.Board, tile.Symbol); len(others) == 2 && tile.State == engine.Matched {
			fmt.Fprintf(&b, "Matched with: %s\n", otherPosition(others, pos))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func otherPosition(pair []engine.Position, pos engine.Position) engine.Position {
	if pair[0] == pos {
		return pair[1]
	}
	return pair[0]
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nProfile: %s\nCreated: %s\n\n%s",
		session.ID, session.Profile,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s (%dx%d) | Pairs: %d/%d | Moves: %d | Time: %s\n\n",
		state.Level, state.Board.Columns, state.Board.Rows,
		state.MatchedPairs, state.TotalPairs, state.Moves,
		state.Elapsed.Truncate(100*time.Millisecond))

	b.WriteString(state.Board.Render(false))

	switch len(state.Revealed) {
	case 1:
		fmt.Fprintf(&b, "\nFace up: %s, reveal a second tile\n", state.Revealed[0])
	case 2:
		fmt.Fprintf(&b, "\nMismatch pending: %s and %s\n", state.Revealed[0], state.Revealed[1])
	}

	if state.Complete {
		b.WriteString("\nCOMPLETE!")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatRevealResult(result *service.RevealResult) string {
	var b strings.Builder
	switch result.Result.Outcome {
	case engine.OutcomeRejected:
		fmt.Fprintf(&b, "✗ Reveal %s rejected: %s\n", result.Result.Position, result.Result.Reason)
	case engine.OutcomeWaiting:
		fmt.Fprintf(&b, "✓ Revealed %s\n", result.Result.Position)
	case engine.OutcomeMatch:
		fmt.Fprintf(&b, "✓ Match at %s and %s\n", result.Result.Pair[0], result.Result.Pair[1])
	case engine.OutcomeMismatch:
		fmt.Fprintf(&b, "✗ No match at %s and %s\n", result.Result.Pair[0], result.Result.Pair[1])
		if result.ResolveIn > 0 {
			fmt.Fprintf(&b, "Tiles hide in %s\n", result.ResolveIn)
		} else {
			b.WriteString("Call resolve_mismatch or reveal with resolve_first to continue\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStats(stats *engine.Stats) string {
	status := "in progress"
	if stats.Complete {
		status = "complete"
	}
	return fmt.Sprintf("Moves: %d\nMatched pairs: %d/%d\nMismatches: %d\nElapsed: %s\nStatus: %s\n",
		stats.Moves, stats.MatchedPairs, stats.TotalPairs, stats.Mismatches,
		stats.Elapsed.Truncate(100*time.Millisecond), status)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), total moves: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("(no moves yet)\n")
		return b.String()
	}
	for _, move := range history.Moves {
		status := "✗"
		if move.Matched {
			status = "✓"
		}
		fmt.Fprintf(&b, "%d. %s %s + %s %s %s\n",
			move.MoveNumber, move.First, move.FirstSymbol.Label(),
			move.Second, move.SecondSymbol.Label(), status)
	}
	return b.String()
}
