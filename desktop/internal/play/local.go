package play

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-puzzle/game/engine"
)

// Local runs a game in process. A mismatch is hidden once the settings'
// delay has passed, checked on every frame.
type Local struct {
	engine   *engine.GameEngine
	settings *engine.Settings
	now      func() time.Time

	last      time.Time
	resolveAt time.Time
}

var _ Backend = (*Local)(nil)

// NewLocal starts a local game; a nil settings uses the defaults
func NewLocal(settings *engine.Settings, level engine.Level, seed int64) (*Local, error) {
	return newLocal(settings, level, seed, time.Now)
}

func newLocal(settings *engine.Settings, level engine.Level, seed int64, now func() time.Time) (*Local, error) {
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
	return &Local{engine: e, settings: settings, now: now, last: now()}, nil
}

func (l *Local) State() *engine.GameState {
	return l.engine.Snapshot().Masked()
}

func (l *Local) Settings() *engine.Settings {
	return l.settings
}

func (l *Local) Reveal(pos engine.Position) (engine.RevealResult, error) {
	if len(l.engine.Pending()) == 2 {
		l.resolve()
	}

	res := l.engine.Reveal(pos)
	if res.Outcome == engine.OutcomeMismatch && l.settings.AutoResolve {
		l.resolveAt = l.now().Add(l.settings.MismatchDelay())
	}
	return res, nil
}

func (l *Local) ResolveMismatch() (bool, error) {
	return l.resolve(), nil
}

func (l *Local) resolve() bool {
	l.resolveAt = time.Time{}
	return l.engine.ResolveMismatch()
}

func (l *Local) NewGame(level engine.Level) error {
	seed := engine.RandomSeed()
	if err := l.engine.NewGame(level, seed); err != nil {
		return err
	}
	l.resolveAt = time.Time{}
	l.last = l.now()
	log.Info().Str("level", level.String()).Int64("seed", seed).Msg("new game")
	return nil
}

// Update advances the clock and hides a mismatch whose delay has passed
func (l *Local) Update() error {
	now := l.now()
	l.engine.Tick(now.Sub(l.last))
	l.last = now

	if !l.resolveAt.IsZero() && !now.Before(l.resolveAt) {
		l.resolve()
	}
	return nil
}

func (l *Local) Close() error {
	return nil
}
