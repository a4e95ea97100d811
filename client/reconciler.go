package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	game_constants "njuka/constants/game"
	"njuka/models"
	"njuka/services/realtime"
)

// State is the session lifecycle phase.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateRehydrating   State = "rehydrating"
	StateActive        State = "active"
	StateQuitting      State = "quitting"
	StateIdle          State = "idle"
)

// TargetKind says what kind of entity the session is following.
type TargetKind string

const (
	TargetNone  TargetKind = ""
	TargetLobby TargetKind = "lobby"
	TargetGame  TargetKind = "game"
)

// NavTarget is the entity a mounted session tracks.
type NavTarget struct {
	Kind TargetKind
	ID   string
}

// ParseNavTarget maps a navigation path ("/lobby/<id>", "/game/<id>") to a
// target. Anything else yields TargetNone.
func ParseNavTarget(path string) NavTarget {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		return NavTarget{}
	}
	switch parts[0] {
	case "lobby":
		return NavTarget{Kind: TargetLobby, ID: parts[1]}
	case "game":
		return NavTarget{Kind: TargetGame, ID: parts[1]}
	}
	return NavTarget{}
}

// Snapshot is a point-in-time view of the session for rendering.
type Snapshot struct {
	State   State
	Target  NavTarget
	Lobby   *models.Lobby
	Game    *models.Game
	Overlay []OverlayEntry
}

// Options tunes a Session. Zero values get sensible defaults.
type Options struct {
	// PollInterval is the fallback polling cadence. Defaults to the server's
	// advertised interval.
	PollInterval time.Duration
	// OverlayTTL bounds how long an unconfirmed action stays on the overlay.
	OverlayTTL time.Duration
	// OnChange, when set, runs after every state change with a fresh
	// snapshot. It runs on the session's internal goroutines and must not
	// call back into the Session.
	OnChange func(Snapshot)
}

var (
	ErrNoActiveGame  = errors.New("client: no active game session")
	ErrNoActiveLobby = errors.New("client: no active lobby session")
	ErrNotMounted    = errors.New("client: session not mounted")
)

// Session reconciles a local projection of one lobby or game against the
// server. Push events are authoritative when the push channel is confirmed
// live; otherwise polling fills in. A finished game never reverts to running
// locally, and the lobby→game switch at quorum happens exactly once per
// game id no matter how many duplicate signals arrive.
type Session struct {
	api     *API
	name    string
	uid     string
	poll    time.Duration
	onEvent func(Snapshot)

	mu       sync.Mutex
	state    State
	target   NavTarget
	lobby    *models.Lobby
	game     *models.Game
	gameOver map[string]bool
	switched map[string]bool
	overlay  *overlay
	gen      int
	runCtx   context.Context
	cancel   context.CancelFunc
	push     *pushChannel
	lastPush time.Time
}

func NewSession(api *API, playerName, playerUID string, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = game_constants.PollInterval
	}
	if opts.OverlayTTL <= 0 {
		opts.OverlayTTL = 2 * opts.PollInterval
	}
	return &Session{
		api:      api,
		name:     playerName,
		uid:      playerUID,
		poll:     opts.PollInterval,
		onEvent:  opts.OnChange,
		state:    StateUninitialized,
		gameOver: make(map[string]bool),
		switched: make(map[string]bool),
		overlay:  newOverlay(opts.OverlayTTL),
	}
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Target: s.target, Overlay: s.overlay.entries()}
	if s.lobby != nil {
		l := s.lobby.Clone()
		snap.Lobby = &l
	}
	if s.game != nil {
		g := s.game.Clone()
		snap.Game = &g
	}
	return snap
}

func (s *Session) emitLocked() {
	if s.onEvent != nil {
		s.onEvent(s.snapshotLocked())
	}
}

// Mount points the session at a navigation path, rehydrating from the server
// before going active. Mounting tears down any previous target first. A path
// that names no entity, or an entity the server no longer knows, lands the
// session in StateIdle with local state cleared.
func (s *Session) Mount(ctx context.Context, navPath string) error {
	target := ParseNavTarget(navPath)

	s.mu.Lock()
	s.teardownLocked()
	if target.Kind == TargetNone {
		s.state = StateIdle
		s.emitLocked()
		s.mu.Unlock()
		return nil
	}
	s.state = StateRehydrating
	s.target = target
	gen := s.gen
	s.emitLocked()
	s.mu.Unlock()

	// Exactly one rehydration fetch per mount, before any push handling.
	var (
		lobbySnap models.Lobby
		gameSnap  models.Game
		err       error
	)
	switch target.Kind {
	case TargetLobby:
		lobbySnap, err = s.api.GetLobby(ctx, target.ID)
	case TargetGame:
		gameSnap, err = s.api.GetGame(ctx, target.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	if IsNotFound(err) {
		s.teardownLocked()
		s.emitLocked()
		return nil
	}
	if err != nil {
		s.teardownLocked()
		s.emitLocked()
		return err
	}

	switch target.Kind {
	case TargetLobby:
		if lobbySnap.Cancelled {
			s.teardownLocked()
			s.emitLocked()
			return nil
		}
		s.lobby = &lobbySnap
	case TargetGame:
		s.applyGameLocked(gameSnap)
	}
	s.state = StateActive
	s.activateLocked()
	s.emitLocked()

	// A lobby that hit quorum while we were away switches immediately.
	if target.Kind == TargetLobby && lobbySnap.Started && lobbySnap.GameID != "" {
		s.switchLocked(lobbySnap.GameID)
	}
	return nil
}

// activateLocked starts the push and poll loops for the current generation.
func (s *Session) activateLocked() {
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	go s.pushLoop(s.runCtx, s.gen)
	go s.pollLoop(s.runCtx, s.gen)
}

// teardownLocked invalidates the generation so in-flight responses for the
// old target are dropped, stops the loops and clears local state. The
// game-over latch survives teardown.
func (s *Session) teardownLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.push != nil {
		s.push.Close()
		s.push = nil
	}
	s.target = NavTarget{}
	s.lobby = nil
	s.game = nil
	s.overlay.clear()
	s.state = StateIdle
}

// pushLoop keeps one websocket subscription alive for the current target,
// redialling after drops and after the lobby→game switch. Failures degrade
// the session to poll-only; they are never surfaced as errors.
func (s *Session) pushLoop(ctx context.Context, gen int) {
	for {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		target := s.target
		s.mu.Unlock()

		if target.Kind == TargetNone {
			return
		}
		pc, err := dialPush(ctx, s.api.base, string(target.Kind), target.ID, s.name)
		if err != nil {
			log.Debug().Err(err).Str("channel", target.ID).Msg("push dial failed, staying on poll")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.poll):
				continue
			}
		}

		s.mu.Lock()
		if gen != s.gen || target != s.target {
			s.mu.Unlock()
			pc.Close()
			continue
		}
		s.push = pc
		s.mu.Unlock()

		for ev := range pc.events {
			s.handleEvent(gen, ev)
		}

		s.mu.Lock()
		if s.push == pc {
			s.push = nil
		}
		s.mu.Unlock()
		pc.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.poll):
		}
	}
}

func (s *Session) handleEvent(gen int, ev pushEvent) {
	switch ev.Type {
	case realtime.EventLobbyUpdate:
		var l models.Lobby
		if err := json.Unmarshal(ev.Data, &l); err != nil {
			log.Debug().Err(err).Msg("push: bad lobby_update payload")
			return
		}
		s.applyLobby(gen, l, false)
	case realtime.EventGameUpdate:
		var g models.Game
		if err := json.Unmarshal(ev.Data, &g); err != nil {
			log.Debug().Err(err).Msg("push: bad game_update payload")
			return
		}
		s.applyGame(gen, g, false)
	case realtime.EventLobbyCancelled:
		s.sessionExpired(gen)
	}
}

// pollLoop is the fallback path: it fetches the target on a timer and applies
// the result only when push cannot be trusted.
func (s *Session) pollLoop(ctx context.Context, gen int) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		target := s.target
		s.mu.Unlock()

		switch target.Kind {
		case TargetLobby:
			l, err := s.api.GetLobby(ctx, target.ID)
			if IsNotFound(err) {
				s.sessionExpired(gen)
				return
			}
			if err != nil {
				continue
			}
			s.applyLobby(gen, l, true)
		case TargetGame:
			g, err := s.api.GetGame(ctx, target.ID)
			if IsNotFound(err) {
				s.sessionExpired(gen)
				return
			}
			if err != nil {
				continue
			}
			s.applyGame(gen, g, true)
		}
	}
}

// shouldApplyPollLocked gates poll results: push wins while it is confirmed
// live, recently heard from and carrying a roster that includes us.
func (s *Session) shouldApplyPollLocked() bool {
	if s.push == nil || !s.push.Open() {
		return true
	}
	if time.Since(s.lastPush) > 2*s.poll {
		return true
	}
	if s.target.Kind == TargetGame && s.game != nil && s.game.PlayerIndexByUID(s.uid) < 0 {
		return true
	}
	return false
}

func (s *Session) applyLobby(gen int, l models.Lobby, fromPoll bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.target.Kind != TargetLobby || s.target.ID != l.ID {
		return
	}
	// A cancelled snapshot (served from the archive after the live lobby is
	// gone) is definitive regardless of which path delivered it.
	if l.Cancelled {
		s.teardownLocked()
		s.emitLocked()
		return
	}
	if fromPoll && !s.shouldApplyPollLocked() {
		return
	}
	if !fromPoll {
		s.lastPush = time.Now()
	}
	s.lobby = &l
	s.emitLocked()

	if l.Started && l.GameID != "" {
		s.switchLocked(l.GameID)
	}
}

// switchLocked performs the lobby→game transition at most once per game id,
// regardless of how many updates, events or poll results report quorum.
func (s *Session) switchLocked(gameID string) {
	if s.switched[gameID] {
		return
	}
	s.switched[gameID] = true
	gen := s.gen
	ctx := s.runCtx
	go func() {
		g, err := s.api.GetGame(ctx, gameID)
		if err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("game fetch after quorum failed")
			s.mu.Lock()
			if gen == s.gen {
				// Allow a later lobby signal to retry the switch.
				delete(s.switched, gameID)
			}
			s.mu.Unlock()
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return
		}
		old := s.push
		s.push = nil
		s.target = NavTarget{Kind: TargetGame, ID: gameID}
		s.lobby = nil
		s.applyGameLocked(g)
		s.emitLocked()
		if old != nil {
			// pushLoop redials on the game channel.
			old.Close()
		}
	}()
}

func (s *Session) applyGame(gen int, g models.Game, fromPoll bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.target.Kind != TargetGame || s.target.ID != g.ID {
		return
	}
	if fromPoll && !s.shouldApplyPollLocked() {
		return
	}
	if !fromPoll {
		s.lastPush = time.Now()
	}
	s.applyGameLocked(g)
	s.emitLocked()
}

// applyGameLocked installs a game snapshot, honouring the one-way game-over
// latch: once a game id has been seen finished, a snapshot claiming it is
// still running is stale and gets dropped.
func (s *Session) applyGameLocked(g models.Game) {
	if s.gameOver[g.ID] && !g.GameOver {
		return
	}
	if g.GameOver {
		s.gameOver[g.ID] = true
	}
	s.game = &g
}

// sessionExpired handles the target vanishing server-side (lobby cancelled,
// archive TTL elapsed): clear everything and land in StateIdle.
func (s *Session) sessionExpired(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.teardownLocked()
	s.emitLocked()
}

// Draw requests a card for this player. The server response is applied as
// authoritative on success.
func (s *Session) Draw(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateActive || s.target.Kind != TargetGame {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	gen, gameID := s.gen, s.target.ID
	actionID := s.overlay.begin(overlayDraw, -1)
	s.emitLocked()
	s.mu.Unlock()

	g, err := s.api.Draw(ctx, gameID, s.uid)
	s.overlay.resolve(actionID)
	if err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.emitLocked()
		}
		s.mu.Unlock()
		return err
	}
	s.applyGame(gen, g, false)
	return nil
}

// Discard plays the card at cardIndex from the drawn hand.
func (s *Session) Discard(ctx context.Context, cardIndex int) error {
	s.mu.Lock()
	if s.state != StateActive || s.target.Kind != TargetGame {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	gen, gameID := s.gen, s.target.ID
	actionID := s.overlay.begin(overlayDiscard, cardIndex)
	s.emitLocked()
	s.mu.Unlock()

	g, err := s.api.Discard(ctx, gameID, s.uid, cardIndex)
	s.overlay.resolve(actionID)
	if err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.emitLocked()
		}
		s.mu.Unlock()
		return err
	}
	s.applyGame(gen, g, false)
	return nil
}

// Quit leaves the current target: game quit, lobby quit, or lobby cancel when
// this player is the host. The server call is best-effort; local teardown
// happens regardless so the session cannot wedge on a dead server.
func (s *Session) Quit(ctx context.Context) error {
	s.mu.Lock()
	if s.target.Kind == TargetNone {
		s.mu.Unlock()
		return ErrNotMounted
	}
	gen := s.gen
	target := s.target
	isHost := s.lobby != nil && s.lobby.HostUID == s.uid
	s.state = StateQuitting
	s.overlay.begin(overlayQuit, -1)
	s.emitLocked()
	s.mu.Unlock()

	var err error
	switch {
	case target.Kind == TargetGame:
		err = s.api.QuitGame(ctx, target.ID, s.uid)
	case isHost:
		err = s.api.CancelLobby(ctx, target.ID, s.uid)
	default:
		err = s.api.QuitLobby(ctx, target.ID, s.uid)
	}
	if err != nil && !IsNotFound(err) {
		log.Warn().Err(err).Str("target", target.ID).Msg("quit call failed, tearing down anyway")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.teardownLocked()
		s.emitLocked()
	}
	return nil
}

// Close releases the session's goroutines and connections.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}
