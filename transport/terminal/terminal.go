package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-puzzle/game/engine"
	"golang.org/x/term"
)

const clearScreen = "\033[H\033[2J"

// Game is an interactive text front end. One goroutine, the one calling Run,
// owns the engine; input lines and timers reach it over channels.
type Game struct {
	engine   *engine.GameEngine
	settings *engine.Settings
	in       io.Reader
	out      io.Writer
	clear    bool
	newSeed  func() int64
	now      func() time.Time

	resolveTimer *time.Timer
	resolveC     <-chan time.Time
	resolveGen   int
	lastTick     time.Time
}

// Option configures a Game
type Option func(*Game)

// WithSeedSource sets where seeds for new games come from
func WithSeedSource(fn func() int64) Option {
	return func(g *Game) {
		g.newSeed = fn
	}
}

// New creates a terminal game on the given level and seed. The screen is
// cleared between frames only when out is a terminal.
func New(settings *engine.Settings, level engine.Level, seed int64, in io.Reader, out io.Writer, opts ...Option) (*Game, error) {
	if settings == nil {
		settings = engine.DefaultSettings()
	}
	if err := engine.ValidateSettings(settings); err != nil {
		return nil, err
	}
	e, err := engine.NewEngine(level, seed)
	if err != nil {
		return nil, err
	}

	g := &Game{
		engine:   e,
		settings: settings,
		in:       in,
		out:      out,
		clear:    isTerminal(out),
		newSeed:  engine.RandomSeed,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Engine exposes the engine for inspection once Run has returned
func (g *Game) Engine() *engine.GameEngine {
	return g.engine
}

// Run processes commands until the input ends, "q" is entered or ctx is cancelled
func (g *Game) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go readLines(ctx, g.in, lines)

	ticker := time.NewTicker(g.settings.TickInterval())
	defer ticker.Stop()
	defer g.cancelResolve()

	g.lastTick = g.now()
	g.render("")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				g.tick()
				g.printSummary()
				return nil
			}
			g.tick()
			quit, msg := g.handle(strings.TrimSpace(line))
			if quit {
				g.printSummary()
				return nil
			}
			g.render(msg)

		case <-g.resolveC:
			g.resolveC = nil
			// A timer armed for an earlier game must not touch this one.
			if g.engine.Generation() == g.resolveGen && g.engine.ResolveMismatch() {
				g.tick()
				g.render("")
			}

		case <-ticker.C:
			g.tick()
		}
	}
}

func readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func (g *Game) tick() {
	now := g.now()
	g.engine.Tick(now.Sub(g.lastTick))
	g.lastTick = now
}

// handle applies one command and returns whether to quit plus a status line
func (g *Game) handle(cmd string) (bool, string) {
	fields := strings.Fields(strings.ReplaceAll(cmd, ",", " "))
	if len(fields) == 0 {
		return false, ""
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true, ""
	case "?", "help":
		return false, helpText
	case "s", "stats":
		return false, formatStats(g.engine.Stats())
	case "r", "resolve":
		if g.engine.ResolveMismatch() {
			g.cancelResolve()
			return false, ""
		}
		return false, "Nothing to hide"
	case "n", "new":
		return false, g.newGame(g.engine.Level())
	case "e", "easy":
		return false, g.newGame(engine.Easy)
	case "m", "medium":
		return false, g.newGame(engine.Medium)
	case "h", "hard":
		return false, g.newGame(engine.Hard)
	}

	if len(fields) != 2 {
		return false, fmt.Sprintf("Unknown command %q, type ? for help", cmd)
	}
	x, errX := strconv.Atoi(fields[0])
	y, errY := strconv.Atoi(fields[1])
	if errX != nil || errY != nil {
		return false, fmt.Sprintf("Unknown command %q, type ? for help", cmd)
	}
	return false, g.reveal(engine.Position{X: x, Y: y})
}

func (g *Game) reveal(pos engine.Position) string {
	res := g.engine.Reveal(pos)
	log.Debug().Stringer("pos", pos).Str("outcome", string(res.Outcome)).Msg("terminal reveal")

	switch res.Outcome {
	case engine.OutcomeRejected:
		return rejectMessage(res.Reason)
	case engine.OutcomeMismatch:
		if g.settings.AutoResolve {
			g.armResolve()
			return ""
		}
		return "Type r to hide the tiles"
	}
	return ""
}

func (g *Game) armResolve() {
	g.cancelResolve()
	g.resolveGen = g.engine.Generation()
	g.resolveTimer = time.NewTimer(g.settings.MismatchDelay())
	g.resolveC = g.resolveTimer.C
}

func (g *Game) cancelResolve() {
	if g.resolveTimer != nil {
		g.resolveTimer.Stop()
		g.resolveTimer = nil
	}
	g.resolveC = nil
}

func (g *Game) newGame(level engine.Level) string {
	g.cancelResolve()
	seed := g.newSeed()
	if err := g.engine.NewGame(level, seed); err != nil {
		return err.Error()
	}
	g.lastTick = g.now()
	log.Debug().Str("level", level.String()).Int64("seed", seed).Msg("terminal new game")
	return ""
}

func (g *Game) render(status string) {
	state := g.engine.Snapshot()

	var b strings.Builder
	if g.clear {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "Memory Puzzle - %s | Pairs %d/%d | Moves %d | %s\n\n",
		state.Level, state.MatchedPairs, state.TotalPairs, state.Moves,
		state.Elapsed.Truncate(time.Second))
	b.WriteString(state.Board.Render(false))
	b.WriteString("\n")
	if state.Message != "" {
		b.WriteString(state.Message)
		b.WriteString("\n")
	}
	if status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString("> ")

	_, _ = io.WriteString(g.out, b.String())
}

func (g *Game) printSummary() {
	_, _ = fmt.Fprintf(g.out, "\n%s", formatStats(g.engine.Stats()))
}

func formatStats(s engine.Stats) string {
	status := "in progress"
	if s.Complete {
		status = "complete"
	}
	return fmt.Sprintf("Moves %d, pairs %d/%d, mismatches %d, time %s (%s)\n",
		s.Moves, s.MatchedPairs, s.TotalPairs, s.Mismatches, s.Elapsed.Truncate(time.Millisecond), status)
}

func rejectMessage(reason engine.RejectReason) string {
	switch reason {
	case engine.RejectOutOfBounds:
		return "That tile is not on the board"
	case engine.RejectAlreadyRevealed:
		return "That tile is already face up"
	case engine.RejectAlreadyMatched:
		return "That tile is already matched"
	case engine.RejectPendingMismatch:
		return "Wait for the tiles to hide"
	case engine.RejectGameComplete:
		return "Game complete, type n for a new one"
	}
	return string(reason)
}

const helpText = `Commands:
  <col> <row>   reveal a tile, e.g. "2 3"
  r             hide a mismatched pair now
  n             new game on the same level
  e | m | h     new easy, medium or hard game
  s             show stats
  q             quit`
