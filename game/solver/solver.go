package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-puzzle/game/engine"
	"golang.org/x/exp/rand"
)

// ErrStuck is returned when the engine rejects a reveal the solver believed was legal
var ErrStuck = errors.New("solver stuck")

// Step is one pair attempt made by the solver
type Step struct {
	First   engine.Position  `json:"first"`
	Second  engine.Position  `json:"second"`
	Symbols [2]engine.Symbol `json:"symbols"`
	Matched bool             `json:"matched"`
}

// Result summarises a solver run
type Result struct {
	Moves      int    `json:"moves"`
	Mismatches int    `json:"mismatches"`
	Complete   bool   `json:"complete"`
	Steps      []Step `json:"steps"`
}

// Option configures a Solver
type Option func(*Solver)

// WithShuffledOrder makes the solver explore unseen tiles in a seeded random
// order instead of row-major order.
func WithShuffledOrder(seed int64) Option {
	return func(s *Solver) {
		s.rng = rand.New(rand.NewSource(uint64(seed)))
	}
}

// WithObserver registers a callback invoked after every pair attempt
func WithObserver(fn func(Step, *engine.GameState)) Option {
	return func(s *Solver) {
		s.observe = fn
	}
}

// Solver plays a game with perfect memory. It only ever looks at the masked
// state, so it learns a symbol by revealing its tile like a player would.
type Solver struct {
	rng     *rand.Rand
	observe func(Step, *engine.GameState)

	seen map[engine.Position]engine.Symbol
}

// New creates a solver
func New(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve plays the engine's current game to completion
func Solve(ctx context.Context, e engine.Engine, opts ...Option) (Result, error) {
	return New(opts...).Solve(ctx, e)
}

// Solve plays the engine's current game to completion. A pending mismatch
// left by an earlier player is resolved first.
func (s *Solver) Solve(ctx context.Context, e engine.Engine) (Result, error) {
	s.seen = make(map[engine.Position]engine.Symbol)
	var result Result

	state := s.look(e)
	if len(state.Revealed) == 2 {
		e.ResolveMismatch()
		state = s.look(e)
	}

	// Every attempt either matches a pair or uncovers at least one new tile.
	limit := len(state.Board.Tiles) * 2
	for !state.Complete {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if result.Moves >= limit {
			return result, fmt.Errorf("%w: no progress after %d moves", ErrStuck, result.Moves)
		}

		step, err := s.attempt(e, state)
		if err != nil {
			return result, err
		}
		result.Moves++
		result.Steps = append(result.Steps, step)
		if !step.Matched {
			result.Mismatches++
			e.ResolveMismatch()
		}
		state = s.look(e)

		log.Debug().
			Stringer("first", step.First).
			Stringer("second", step.Second).
			Bool("matched", step.Matched).
			Int("pairs", state.MatchedPairs).
			Msg("solver move")

		if s.observe != nil {
			s.observe(step, state)
		}
	}

	result.Complete = true
	return result, nil
}

// attempt makes one pair attempt, continuing from a single face-up tile if there is one
func (s *Solver) attempt(e engine.Engine, state *engine.GameState) (Step, error) {
	var first engine.Position
	if len(state.Revealed) == 1 {
		first = state.Revealed[0]
	} else if a, b, ok := s.knownPair(state); ok {
		if err := s.reveal(e, a); err != nil {
			return Step{}, err
		}
		return s.second(e, a, b)
	} else {
		var ok bool
		first, ok = s.unseen(state, nil)
		if !ok {
			return Step{}, fmt.Errorf("%w: no tile left to reveal", ErrStuck)
		}
		if err := s.reveal(e, first); err != nil {
			return Step{}, err
		}
	}

	sym := s.seen[first]
	if partner, ok := s.partnerOf(state, first, sym); ok {
		return s.second(e, first, partner)
	}

	second, ok := s.unseen(state, &first)
	if !ok {
		return Step{}, fmt.Errorf("%w: no partner for %s", ErrStuck, first)
	}
	return s.second(e, first, second)
}

func (s *Solver) second(e engine.Engine, first, second engine.Position) (Step, error) {
	if err := s.reveal(e, second); err != nil {
		return Step{}, err
	}
	return Step{
		First:   first,
		Second:  second,
		Symbols: [2]engine.Symbol{s.seen[first], s.seen[second]},
		Matched: s.seen[first] == s.seen[second],
	}, nil
}

func (s *Solver) reveal(e engine.Engine, pos engine.Position) error {
	res := e.Reveal(pos)
	if !res.Accepted() {
		return fmt.Errorf("%w: reveal %s rejected: %s", ErrStuck, pos, res.Reason)
	}
	s.look(e)
	return nil
}

// look records every visible symbol and returns the masked state
func (s *Solver) look(e engine.Engine) *engine.GameState {
	state := e.Snapshot().Masked()
	for _, t := range state.Board.Tiles {
		if t.State != engine.Hidden && t.Symbol != engine.NoSymbol {
			s.seen[t.Position] = t.Symbol
		}
	}
	return state
}

// knownPair finds two hidden tiles whose symbols are both remembered and equal
func (s *Solver) knownPair(state *engine.GameState) (engine.Position, engine.Position, bool) {
	bySymbol := make(map[engine.Symbol]engine.Position)
	for _, t := range state.Board.Tiles {
		if t.State != engine.Hidden {
			continue
		}
		sym, ok := s.seen[t.Position]
		if !ok {
			continue
		}
		if other, ok := bySymbol[sym]; ok {
			return other, t.Position, true
		}
		bySymbol[sym] = t.Position
	}
	return engine.Position{}, engine.Position{}, false
}

func (s *Solver) partnerOf(state *engine.GameState, pos engine.Position, sym engine.Symbol) (engine.Position, bool) {
	for _, t := range state.Board.Tiles {
		if t.State != engine.Hidden || t.Position == pos {
			continue
		}
		if known, ok := s.seen[t.Position]; ok && known == sym {
			return t.Position, true
		}
	}
	return engine.Position{}, false
}

// unseen picks a hidden tile the solver has never seen face up
func (s *Solver) unseen(state *engine.GameState, exclude *engine.Position) (engine.Position, bool) {
	var candidates []engine.Position
	for _, t := range state.Board.Tiles {
		if t.State != engine.Hidden {
			continue
		}
		if exclude != nil && t.Position == *exclude {
			continue
		}
		if _, ok := s.seen[t.Position]; ok {
			continue
		}
		candidates = append(candidates, t.Position)
	}
	if len(candidates) == 0 {
		return engine.Position{}, false
	}
	if s.rng == nil {
		return candidates[0], true
	}
	return candidates[s.rng.Intn(len(candidates))], true
}
