// Command bruteforcer plays sessions on a running Memory Puzzle server
// through its REST API. It drives the perfect-memory solver against the
// server, so every move shows up live on WebSocket watchers of the session.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
	"github.com/wricardo/memory-puzzle/game/solver"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("bruteforcer failed")
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "bruteforcer",
		Usage:  "Solve games on a running server through the REST API",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "level", Usage: "Level for new sessions and games (easy, medium, hard)"},
			&cli.StringFlag{Name: "profile", Usage: "Settings profile for new sessions"},
			&cli.Int64Flag{Name: "seed", Usage: "Seed of the first game (default random)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the last session ID (empty to disable)"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Number of games to play in a row"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between moves in milliseconds"},
			&cli.BoolFlag{Name: "shuffle", Usage: "Explore unseen tiles in random order"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log every move"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var level engine.Level
	if name := cmd.String("level"); name != "" {
		l, err := engine.ParseLevel(name)
		if err != nil {
			return err
		}
		level = l
	}

	remote := NewRemoteEngine(ctx, cmd.String("url"))
	log.Info().Str("url", cmd.String("url")).Msg("connecting to game server")

	sessionFile := cmd.String("session-file")
	if err := bindSession(cmd, remote, sessionFile); err != nil {
		return err
	}

	w := cmd.Root().Writer
	games := cmd.Int("games")
	if games < 1 {
		return fmt.Errorf("games must be at least 1, got %d", games)
	}

	for game := 1; game <= games; game++ {
		if game > 1 || remote.IsComplete() {
			lvl := remote.Level()
			if cmd.IsSet("level") {
				lvl = level
			}
			if err := remote.NewGame(lvl, engine.RandomSeed()); err != nil {
				return err
			}
		}

		res, err := solver.Solve(ctx, remote, solverOptions(ctx, cmd)...)
		if rerr := remote.Err(); rerr != nil {
			return rerr
		}
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}

		printResult(w, game, remote, res)
	}

	fmt.Fprintf(w, "Session: %s\n", remote.SessionID())
	return nil
}

// bindSession resumes the requested or remembered session, creating one
// when there is nothing to resume or it has expired.
func bindSession(cmd *cli.Command, remote *RemoteEngine, sessionFile string) error {
	resume := cmd.String("continue")
	if resume == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resume = string(bytes.TrimSpace(data))
		}
	}

	if resume != "" {
		if err := remote.Attach(resume); err == nil {
			state := remote.Snapshot()
			log.Info().
				Str("session", resume).
				Str("level", state.Level.String()).
				Int("pairs", state.MatchedPairs).
				Int("total", state.TotalPairs).
				Msg("session resumed")
			return nil
		} else if cmd.IsSet("continue") {
			return fmt.Errorf("resume session %s: %w", resume, err)
		} else {
			log.Warn().Err(err).Str("session", resume).Msg("saved session unavailable, creating a new one")
		}
	}

	opts := service.CreateSessionOptions{
		Level:   cmd.String("level"),
		Profile: cmd.String("profile"),
	}
	if cmd.IsSet("seed") {
		seed := cmd.Int64("seed")
		opts.Seed = &seed
	}
	if err := remote.CreateSession(opts); err != nil {
		return err
	}
	log.Info().Str("session", remote.SessionID()).Msg("session created")

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(remote.SessionID()), 0o644); err != nil {
			log.Warn().Err(err).Msg("failed to save session ID")
		}
	}
	return nil
}

func solverOptions(ctx context.Context, cmd *cli.Command) []solver.Option {
	var opts []solver.Option
	if cmd.Bool("shuffle") {
		opts = append(opts, solver.WithShuffledOrder(engine.RandomSeed()))
	}

	delay := time.Duration(cmd.Int("delay")) * time.Millisecond
	if delay > 0 {
		opts = append(opts, solver.WithObserver(func(solver.Step, *engine.GameState) {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}))
	}
	return opts
}

func printResult(w io.Writer, game int, remote *RemoteEngine, res solver.Result) {
	stats := remote.Stats()
	fmt.Fprintf(w, "Game %d (%s, seed %d): %d pairs in %d moves, %d mismatches, %s\n",
		game, remote.Level(), remote.Seed(), stats.TotalPairs, res.Moves, res.Mismatches,
		stats.Elapsed.Truncate(time.Millisecond))
}
