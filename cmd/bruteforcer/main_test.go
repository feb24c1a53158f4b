package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/memory-puzzle/api"
	"github.com/wricardo/memory-puzzle/game/config"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
	"github.com/wricardo/memory-puzzle/game/session"
	"github.com/wricardo/memory-puzzle/game/solver"
)

func newTestServer(t *testing.T) (*httptest.Server, service.GameService) {
	t.Helper()
	configs, err := config.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), configs)
	srv := httptest.NewServer(api.NewServer(svc, nil).Router())
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestRemoteEngine_SolvesSession(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	remote := NewRemoteEngine(ctx, srv.URL+"/")
	seed := int64(11)
	require.NoError(t, remote.CreateSession(service.CreateSessionOptions{Level: "medium", Seed: &seed}))
	assert.NotEmpty(t, remote.SessionID())
	assert.Equal(t, engine.Medium, remote.Level())
	assert.Equal(t, seed, remote.Seed())

	res, err := solver.Solve(ctx, remote)
	require.NoError(t, err)
	require.NoError(t, remote.Err())
	assert.True(t, res.Complete)
	assert.True(t, remote.IsComplete())

	// The server agrees with the cached view
	state, err := svc.GetGameState(ctx, remote.SessionID())
	require.NoError(t, err)
	assert.True(t, state.Complete)
	assert.Equal(t, res.Moves, state.Moves)
	assert.Len(t, remote.GetMoveHistory(), res.Moves)
	assert.Equal(t, res.Moves, remote.GetLastMove().MoveNumber)

	stats := remote.Stats()
	assert.Equal(t, res.Mismatches, stats.Mismatches)
	assert.Equal(t, engine.Medium.Pairs(), stats.MatchedPairs)
}

func TestRemoteEngine_SnapshotIsMasked(t *testing.T) {
	srv, _ := newTestServer(t)
	remote := NewRemoteEngine(context.Background(), srv.URL)
	require.NoError(t, remote.CreateSession(service.CreateSessionOptions{}))

	for _, tile := range remote.Snapshot().Board.Tiles {
		assert.Equal(t, engine.NoSymbol, tile.Symbol)
	}

	res := remote.Reveal(engine.Position{X: 0, Y: 0})
	assert.Equal(t, engine.OutcomeWaiting, res.Outcome)
	assert.NotEqual(t, engine.NoSymbol, remote.Snapshot().Board.Tiles[0].Symbol)
	assert.Nil(t, remote.Pending())

	res = remote.Reveal(engine.Position{X: 0, Y: 0})
	assert.Equal(t, engine.OutcomeRejected, res.Outcome)
	assert.Equal(t, engine.RejectAlreadyRevealed, res.Reason)
	assert.NoError(t, remote.Err())
}

func TestRemoteEngine_NewGameAndAttach(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	remote := NewRemoteEngine(ctx, srv.URL)
	require.NoError(t, remote.CreateSession(service.CreateSessionOptions{Level: "easy"}))
	gen := remote.Generation()

	require.NoError(t, remote.NewGame(engine.Hard, 5))
	assert.Equal(t, engine.Hard, remote.Level())
	assert.Equal(t, int64(5), remote.Seed())
	assert.Greater(t, remote.Generation(), gen)

	other := NewRemoteEngine(ctx, srv.URL)
	require.NoError(t, other.Attach(remote.SessionID()))
	assert.Equal(t, engine.Hard, other.Level())

	missing := NewRemoteEngine(ctx, srv.URL)
	err := missing.Attach("nope")
	require.Error(t, err)
	assert.Empty(t, missing.SessionID())
}

func TestRemoteEngine_TransportError(t *testing.T) {
	srv, _ := newTestServer(t)
	remote := NewRemoteEngine(context.Background(), srv.URL)
	require.NoError(t, remote.CreateSession(service.CreateSessionOptions{}))
	srv.Close()

	res := remote.Reveal(engine.Position{X: 1, Y: 1})
	assert.Equal(t, engine.OutcomeRejected, res.Outcome)
	assert.Equal(t, rejectTransport, res.Reason)
	assert.Error(t, remote.Err())
	assert.False(t, remote.ResolveMismatch())

	// Stats fall back to the cached state
	assert.Equal(t, engine.Easy.Pairs(), remote.Stats().TotalPairs)
}

func TestCommand_PlaysAndRemembersSession(t *testing.T) {
	srv, _ := newTestServer(t)
	sessionFile := filepath.Join(t.TempDir(), "session")

	var out bytes.Buffer
	args := []string{"bruteforcer", "--url", srv.URL, "--session-file", sessionFile, "--seed", "3", "--games", "2", "--shuffle"}
	require.NoError(t, newCommand(&out).Run(context.Background(), args))

	text := out.String()
	assert.Contains(t, text, "Game 1 (easy, seed 3): 8 pairs in")
	assert.Contains(t, text, "Game 2 (easy, seed")

	saved, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.Contains(t, text, "Session: "+string(saved))

	// A second run resumes the remembered session and starts over since it is complete
	out.Reset()
	require.NoError(t, newCommand(&out).Run(context.Background(), []string{"bruteforcer", "--url", srv.URL, "--session-file", sessionFile}))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "Session: "+string(saved)))
}

func TestCommand_ContinueUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)
	var out bytes.Buffer
	args := []string{"bruteforcer", "--url", srv.URL, "--session-file", "", "--continue", "missing"}
	err := newCommand(&out).Run(context.Background(), args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume session missing")
}
