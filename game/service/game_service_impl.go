package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/memory-puzzle/game/engine"
)

const defaultProfile = "default"

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	now      func() time.Time
	mu       sync.Mutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithNotifier registers the receiver of timer-driven state changes
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithClock replaces the wall clock used to advance elapsed time
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) {
		s.now = now
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, profile, err := s.resolveSettings(opts.Profile)
	if err != nil {
		return nil, err
	}

	level := settings.Level()
	if opts.Level != "" {
		if level, err = parseLevel(opts.Level); err != nil {
			return nil, err
		}
	}

	seed := engine.RandomSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", settings, level, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Profile = profile
	s.tick(sess)

	log.Info().Str("session", sess.ID).Str("level", level.String()).Int64("seed", seed).Str("profile", profile).Msg("session created")
	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) resolveSettings(profile string) (*engine.Settings, string, error) {
	if profile == "" {
		return s.configs.GetDefault(), defaultProfile, nil
	}

	settings, err := s.configs.LoadSettings(profile)
	if err != nil {
		// Provide helpful error message with available options
		if available, listErr := s.configs.ListProfiles(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, p := range available {
				ids = append(ids, p.ProfileID)
			}
			return nil, "", fmt.Errorf("profile '%s' unavailable (available profiles: %v): %w", profile, ids, err)
		}
		return nil, "", fmt.Errorf("failed to load profile %s: %w", profile, err)
	}
	return settings, profile, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		s.tick(sess)
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its pending resolve timer
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		stopResolve(sess)
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Reveal turns a tile face up. With resolveFirst, a pending mismatch is
// hidden before the reveal instead of rejecting it.
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, pos engine.Position, resolveFirst bool) (*RevealResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if resolveFirst && len(sess.Engine.Pending()) == 2 {
		pending := sess.Engine.Pending()
		stopResolve(sess)
		if sess.Engine.ResolveMismatch() {
			events = append(events, s.event(EventResolved, "Mismatched tiles hidden", pending...))
		}
	}

	res := sess.Engine.Reveal(pos)
	state := sess.Engine.Snapshot()
	result := &RevealResult{
		Success:   res.Accepted(),
		Result:    res,
		GameState: state.Masked(),
		Message:   state.Message,
	}

	switch res.Outcome {
	case engine.OutcomeRejected:
		ev := s.event(EventRejected, fmt.Sprintf("Reveal of %s rejected: %s", pos, res.Reason), pos)
		ev.Reason = string(res.Reason)
		events = append(events, ev)
		result.Message = ev.Message
	case engine.OutcomeWaiting:
		events = append(events, s.event(EventReveal, state.Message, pos))
	case engine.OutcomeMatch:
		events = append(events,
			s.event(EventReveal, fmt.Sprintf("Revealed %s", pos), pos),
			s.event(EventMatch, state.Message, res.Pair...))
		if res.Complete {
			events = append(events, s.event(EventComplete, state.Message))
			log.Info().Str("session", sess.ID).Int("moves", state.Moves).Dur("elapsed", state.Elapsed).Msg("game complete")
		}
	case engine.OutcomeMismatch:
		events = append(events,
			s.event(EventReveal, fmt.Sprintf("Revealed %s", pos), pos),
			s.event(EventMismatch, state.Message, res.Pair...))
		if s.armResolve(sess, res.Pair) {
			result.ResolveIn = sess.Settings.MismatchDelay()
		}
	}
	result.Events = events

	log.Debug().Str("session", sess.ID).Stringer("pos", pos).Str("outcome", string(res.Outcome)).Str("reason", string(res.Reason)).Msg("reveal")
	return result, nil
}

// ResolveMismatch hides a pending mismatched pair immediately
func (s *gameServiceImpl) ResolveMismatch(ctx context.Context, sessionID string) (*ResolveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	pending := sess.Engine.Pending()
	stopResolve(sess)
	result := &ResolveResult{Resolved: sess.Engine.ResolveMismatch()}
	if result.Resolved {
		result.Events = []GameEvent{s.event(EventResolved, "Mismatched tiles hidden", pending...)}
	}
	result.GameState = sess.Engine.Snapshot().Masked()
	return result, nil
}

// NewGame discards the session's board and deals a new one. An empty level
// keeps the current level; a nil seed picks a random one.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID, level string, seed *int64) (*NewGameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	lvl := sess.Engine.Level()
	if level != "" {
		if lvl, err = parseLevel(level); err != nil {
			return nil, err
		}
	}
	sd := engine.RandomSeed()
	if seed != nil {
		sd = *seed
	}

	stopResolve(sess)
	if err := sess.Engine.NewGame(lvl, sd); err != nil {
		return nil, fmt.Errorf("failed to start new game: %w", err)
	}

	state := sess.Engine.Snapshot()
	log.Info().Str("session", sess.ID).Str("level", lvl.String()).Int64("seed", sd).Int("generation", state.Generation).Msg("new game")
	return &NewGameResult{
		GameState: state.Masked(),
		Events:    []GameEvent{s.event(EventNewGame, state.Message)},
	}, nil
}

// GetGameState returns the masked state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot().Masked(), nil
}

// GetStats returns the counters of a session's current game
func (s *gameServiceImpl) GetStats(ctx context.Context, sessionID string) (*engine.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	stats := sess.Engine.Stats()
	return &stats, nil
}

// GetMoveHistory retrieves paginated pair attempts
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	board := sess.Engine.Snapshot().Board
	history := engine.MaskHistory(&board, sess.Engine.GetMoveHistory())
	total := len(history)

	// Apply defaults
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryPage {
		opts.Limit = engine.MaxHistoryPage
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns every level with its grid size
func (s *gameServiceImpl) ListLevels(ctx context.Context) []LevelInfo {
	levels := engine.Levels()
	out := make([]LevelInfo, 0, len(levels))
	for _, l := range levels {
		cols, rows := l.Dimensions()
		out = append(out, LevelInfo{Name: l.String(), Columns: cols, Rows: rows, Pairs: l.Pairs()})
	}
	return out
}

// ListProfiles returns available settings profiles
func (s *gameServiceImpl) ListProfiles(ctx context.Context) ([]*ProfileInfo, error) {
	return s.configs.ListProfiles()
}

// LoadSettings loads a settings profile; an empty name returns the default
func (s *gameServiceImpl) LoadSettings(ctx context.Context, profile string) (*engine.Settings, error) {
	if profile == "" {
		return s.configs.GetDefault(), nil
	}
	return s.configs.LoadSettings(profile)
}

// SaveSettings stores a settings profile
func (s *gameServiceImpl) SaveSettings(ctx context.Context, profile string, settings *engine.Settings) error {
	if err := s.configs.SaveSettings(profile, settings); err != nil {
		return err
	}
	log.Info().Str("profile", profile).Msg("settings profile saved")
	return nil
}

// touch looks a session up, records the access and advances its clock.
// Callers hold s.mu.
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	s.tick(sess)
	return sess, nil
}

// tick adds the wall time since the previous tick to the session's clock
func (s *gameServiceImpl) tick(sess *Session) {
	now := s.now()
	if !sess.lastTick.IsZero() {
		sess.Engine.Tick(now.Sub(sess.lastTick))
	}
	sess.lastTick = now
}

// armResolve schedules the hide of a mismatched pair. The callback only acts
// on the same session, board generation and pending pair it was armed for.
func (s *gameServiceImpl) armResolve(sess *Session, pair []engine.Position) bool {
	stopResolve(sess)
	if !sess.Settings.AutoResolve {
		return false
	}

	generation := sess.Engine.Generation()
	armed := append([]engine.Position(nil), pair...)
	sess.resolveTimer = time.AfterFunc(sess.Settings.MismatchDelay(), func() {
		s.autoResolve(sess, generation, armed)
	})
	return true
}

func (s *gameServiceImpl) autoResolve(armedFor *Session, generation int, pair []engine.Position) {
	s.mu.Lock()
	current, err := s.sessions.Get(armedFor.ID)
	if err != nil || current != armedFor {
		s.mu.Unlock()
		log.Debug().Str("session", armedFor.ID).Msg("resolve timer fired for a removed session")
		return
	}
	if current.Engine.Generation() != generation || !samePositions(current.Engine.Pending(), pair) {
		s.mu.Unlock()
		log.Debug().Str("session", current.ID).Msg("stale resolve timer ignored")
		return
	}

	s.tick(current)
	current.resolveTimer = nil
	if !current.Engine.ResolveMismatch() {
		s.mu.Unlock()
		return
	}
	state := current.Engine.Snapshot().Masked()
	ev := s.event(EventResolved, state.Message, pair...)
	s.mu.Unlock()

	log.Debug().Str("session", current.ID).Msg("mismatch resolved by timer")
	if s.notifier != nil {
		s.notifier.BroadcastToSession(current.ID, state)
		s.notifier.BroadcastEvent(current.ID, EventResolved, ev)
	}
}

func stopResolve(sess *Session) {
	if sess.resolveTimer != nil {
		sess.resolveTimer.Stop()
		sess.resolveTimer = nil
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Profile:        sess.Profile,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot().Masked(),
		Settings:       sess.Settings,
	}
}

func (s *gameServiceImpl) event(kind, message string, positions ...engine.Position) GameEvent {
	return GameEvent{
		Type:      kind,
		Message:   message,
		Timestamp: s.now(),
		Positions: positions,
	}
}

func parseLevel(name string) (engine.Level, error) {
	level, err := engine.ParseLevel(name)
	if err != nil {
		return engine.Easy, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return level, nil
}

func samePositions(a, b []engine.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
