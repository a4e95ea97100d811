// Package lobby implements matchmaking: pre-game rooms, quorum detection and
// the atomic transition into a running game. All mutation of one lobby runs
// under its store lock, which is what makes the quorum transition race-free:
// two joins that would each fill the last seat are strictly ordered, and only
// the first one creates the game.
package lobby

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	game_constants "njuka/constants/game"
	"njuka/models"
	"njuka/services/game"
	"njuka/services/store"
	"njuka/services/wallet"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrLobbyStarted     = errors.New("lobby already started")
	ErrAlreadyJoined    = errors.New("player already in lobby")
	ErrForbidden        = errors.New("only the host may do that")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrInvalidCapacity  = errors.New("max players must be between 2 and 4")
	ErrInvalidEntryFee  = errors.New("entry fee must be non-negative")
)

// Archiver persists dead lobbies so late reconnecting members still get a
// definitive snapshot after the live entity is gone. Implemented by the redis
// archive; nil disables archival.
type Archiver interface {
	ArchiveLobby(ctx context.Context, l models.Lobby) error
}

type Manager struct {
	lobbies  *store.Store[models.Lobby]
	engine   *game.Engine
	wallet   wallet.Service
	archiver Archiver
	now      func() time.Time
}

func NewManager(lobbies *store.Store[models.Lobby], engine *game.Engine, w wallet.Service) *Manager {
	return &Manager{lobbies: lobbies, engine: engine, wallet: w, now: time.Now}
}

// SetArchiver enables archival of swept lobbies.
func (m *Manager) SetArchiver(a Archiver) {
	m.archiver = a
}

// Create opens a lobby with the host as sole member, debiting the host's
// entry fee up front.
func (m *Manager) Create(ctx context.Context, hostName, hostUID string, maxPlayers int, entryFee int64) (models.Lobby, error) {
	if maxPlayers < game_constants.MinLobbyPlayers || maxPlayers > game_constants.MaxLobbyPlayers {
		return models.Lobby{}, ErrInvalidCapacity
	}
	if entryFee < 0 {
		return models.Lobby{}, ErrInvalidEntryFee
	}

	id := uuid.NewString()
	if err := m.wallet.Debit(ctx, hostUID, entryFee, wallet.ReasonLobbyDebit, id); err != nil {
		return models.Lobby{}, err
	}

	now := m.now()
	l := models.Lobby{
		ID:          id,
		Host:        hostName,
		HostUID:     hostUID,
		Players:     []string{hostName},
		PlayerUIDs:  []string{hostUID},
		MaxPlayers:  maxPlayers,
		EntryFee:    entryFee,
		CreatedAt:   now,
		LastUpdated: now,
	}
	m.lobbies.Put(id, l)
	log.Info().Str("lobby_id", id).Str("host", hostName).Int("capacity", maxPlayers).
		Int64("entry_fee", entryFee).Msg("lobby created")
	return l, nil
}

// Join adds a player, debiting their entry fee. Filling the last seat
// transitions the lobby to a game atomically: exactly one game is ever
// created per lobby, and the caller that fills it gets the game back.
func (m *Manager) Join(ctx context.Context, lobbyID, playerName, playerUID string) (models.Lobby, *models.Game, error) {
	var (
		snap    models.Lobby
		started *models.Game
	)
	err := m.lobbies.Update(lobbyID, func(l *models.Lobby) error {
		if l.Started {
			return ErrLobbyStarted
		}
		if len(l.Players) >= l.MaxPlayers {
			return ErrLobbyFull
		}
		if l.MemberIndex(playerUID) >= 0 {
			return ErrAlreadyJoined
		}
		// Names identify players for turn matching, so uniqueness is
		// case-insensitive, matching the engine's seat validation.
		for _, name := range l.Players {
			if strings.EqualFold(name, playerName) {
				return ErrAlreadyJoined
			}
		}

		if err := m.wallet.Debit(ctx, playerUID, l.EntryFee, wallet.ReasonLobbyDebit, l.ID); err != nil {
			return err
		}
		l.Players = append(l.Players, playerName)
		l.PlayerUIDs = append(l.PlayerUIDs, playerUID)
		l.LastUpdated = m.now()

		if len(l.Players) == l.MaxPlayers {
			g, err := m.startLocked(ctx, l)
			if err != nil {
				// Unseat and refund: an error response must never leave the
				// joiner debited or the lobby wedged full-but-unstarted.
				l.Players = l.Players[:len(l.Players)-1]
				l.PlayerUIDs = l.PlayerUIDs[:len(l.PlayerUIDs)-1]
				if cerr := m.wallet.Credit(ctx, playerUID, l.EntryFee, wallet.ReasonLobbyRefund, l.ID); cerr != nil {
					log.Error().Err(cerr).Str("lobby_id", l.ID).Str("uid", playerUID).Msg("join rollback refund failed")
				}
				return err
			}
			started = &g
		}
		snap = l.Clone()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = ErrLobbyNotFound
	}
	if err != nil {
		return models.Lobby{}, nil, err
	}
	return snap, started, nil
}

// Start is the host-forced start once minimum quorum is met, bypassing full
// capacity.
func (m *Manager) Start(ctx context.Context, lobbyID, hostUID string) (models.Lobby, *models.Game, error) {
	var (
		snap    models.Lobby
		started *models.Game
	)
	err := m.lobbies.Update(lobbyID, func(l *models.Lobby) error {
		if l.HostUID != hostUID {
			return ErrForbidden
		}
		if l.Started {
			return ErrLobbyStarted
		}
		if len(l.Players) < game_constants.MinLobbyPlayers {
			return ErrNotEnoughPlayers
		}
		g, err := m.startLocked(ctx, l)
		if err != nil {
			return err
		}
		started = &g
		snap = l.Clone()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = ErrLobbyNotFound
	}
	if err != nil {
		return models.Lobby{}, nil, err
	}
	return snap, started, nil
}

// startLocked creates the game and flips the lobby to started. Caller holds
// the lobby lock.
func (m *Manager) startLocked(ctx context.Context, l *models.Lobby) (models.Game, error) {
	seats := make([]game.Seat, len(l.Players))
	for i := range l.Players {
		seats[i] = game.Seat{Name: l.Players[i], UID: l.PlayerUIDs[i]}
	}
	pot := l.EntryFee * int64(len(seats))
	g, err := m.engine.NewGame(ctx, game_constants.ModeMultiplayer, seats, l.EntryFee, pot)
	if err != nil {
		return models.Game{}, err
	}
	l.Started = true
	l.GameID = g.ID
	l.LastUpdated = m.now()
	log.Info().Str("lobby_id", l.ID).Str("game_id", g.ID).Int("players", len(seats)).Msg("quorum reached, game started")
	return g, nil
}

// Cancel tears a lobby down. Host only, and only while no move has been made
// in any resulting game. All collected entry fees are refunded.
func (m *Manager) Cancel(ctx context.Context, lobbyID, hostUID string) (models.Lobby, error) {
	var snap models.Lobby
	err := m.lobbies.Update(lobbyID, func(l *models.Lobby) error {
		if l.HostUID != hostUID {
			return ErrForbidden
		}
		if l.GameID != "" {
			g, err := m.engine.Get(l.GameID)
			if err == nil && g.AnyPlayerHasDrawn {
				return ErrForbidden
			}
		}
		for _, uid := range l.PlayerUIDs {
			if err := m.wallet.Credit(ctx, uid, l.EntryFee, wallet.ReasonLobbyRefund, l.ID); err != nil {
				log.Error().Err(err).Str("lobby_id", l.ID).Str("uid", uid).Msg("refund failed")
			}
		}
		// The archived snapshot must be recognizable as dead: poll-only
		// clients that fetch it after the cancel need a definitive signal.
		l.Cancelled = true
		l.LastUpdated = m.now()
		snap = l.Clone()
		return store.Remove
	})
	if errors.Is(err, store.ErrNotFound) {
		err = ErrLobbyNotFound
	}
	if err != nil {
		return models.Lobby{}, err
	}
	if snap.GameID != "" {
		m.RemoveGame(snap.GameID)
	}
	log.Info().Str("lobby_id", lobbyID).Msg("lobby cancelled, fees refunded")
	return snap, nil
}

// Quit removes a non-host member from a not-yet-started lobby and refunds
// their entry fee. The host cannot quit; they cancel instead.
func (m *Manager) Quit(ctx context.Context, lobbyID, playerUID string) (models.Lobby, error) {
	var snap models.Lobby
	err := m.lobbies.Update(lobbyID, func(l *models.Lobby) error {
		if l.Started {
			return ErrLobbyStarted
		}
		if playerUID == l.HostUID {
			return ErrForbidden
		}
		idx := l.MemberIndex(playerUID)
		if idx < 0 {
			return ErrLobbyNotFound
		}
		if err := m.wallet.Credit(ctx, playerUID, l.EntryFee, wallet.ReasonLobbyRefund, l.ID); err != nil {
			log.Error().Err(err).Str("lobby_id", l.ID).Str("uid", playerUID).Msg("refund failed")
		}
		l.Players = append(l.Players[:idx], l.Players[idx+1:]...)
		l.PlayerUIDs = append(l.PlayerUIDs[:idx], l.PlayerUIDs[idx+1:]...)
		l.LastUpdated = m.now()
		snap = l.Clone()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = ErrLobbyNotFound
	}
	return snap, err
}

// Get returns a lobby snapshot regardless of started state; used for
// rehydration and polling.
func (m *Manager) Get(lobbyID string) (models.Lobby, error) {
	l, ok := m.lobbies.Get(lobbyID)
	if !ok {
		return models.Lobby{}, ErrLobbyNotFound
	}
	return l, nil
}

// List returns open lobbies only, archiving and sweeping out expired ones
// along the way.
func (m *Manager) List() []models.Lobby {
	now := m.now()
	all := m.lobbies.List()
	open := make([]models.Lobby, 0, len(all))
	for _, l := range all {
		stale := now.Sub(l.LastUpdated)
		if (l.Started && stale > game_constants.StartedLobbyTTL) ||
			(!l.Started && stale > game_constants.OpenLobbyTTL) {
			if m.archiver != nil {
				// An expired open lobby is dead; a started one stays
				// followable through its game id.
				if !l.Started {
					l.Cancelled = true
				}
				if err := m.archiver.ArchiveLobby(context.Background(), l); err != nil {
					log.Warn().Err(err).Str("lobby_id", l.ID).Msg("swept lobby archival failed")
				}
			}
			m.lobbies.Delete(l.ID)
			log.Info().Str("lobby_id", l.ID).Msg("expired lobby swept")
			continue
		}
		if !l.Started {
			open = append(open, l)
		}
	}
	return open
}

// RemoveGame drops an unstarted game created for a cancelled lobby.
func (m *Manager) RemoveGame(gameID string) {
	m.engine.Remove(gameID)
}
