// Package game implements the authoritative game state machine: one round of
// Njuka per Game, mutated exclusively through the engine's turn actions under
// the per-game store lock.
package game

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	game_constants "njuka/constants/game"
	"njuka/models"
	"njuka/models/postgres"
	"njuka/services/store"
	"njuka/services/wallet"
)

// Seat describes one player joining a new game.
type Seat struct {
	Name  string
	UID   string
	IsCPU bool
}

// Recorder archives completed games. Implemented by the postgres wallet;
// nil disables archival.
type Recorder interface {
	RecordGame(ctx context.Context, rec postgres.GameRecord) error
}

type Engine struct {
	games    *store.Store[models.Game]
	wallet   wallet.Service
	recorder Recorder
}

func NewEngine(games *store.Store[models.Game], w wallet.Service) *Engine {
	return &Engine{games: games, wallet: w}
}

// SetRecorder enables game-record archival.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// NewGame deals a fresh round. Entry fees must already be collected by the
// caller (lobby manager for multiplayer, controller for solo modes);
// potAmount is the collected total.
func (e *Engine) NewGame(ctx context.Context, mode string, seats []Seat, entryFee, potAmount int64) (models.Game, error) {
	switch mode {
	case game_constants.ModeMultiplayer:
		if len(seats) < game_constants.MinLobbyPlayers || len(seats) > game_constants.MaxLobbyPlayers {
			return models.Game{}, ErrBadSeatCount
		}
	case game_constants.ModeCPU, game_constants.ModeTutorial:
		if len(seats) < 2 || len(seats) > game_constants.MaxLobbyPlayers {
			return models.Game{}, ErrBadSeatCount
		}
	default:
		return models.Game{}, ErrInvalidMode
	}

	// Display names identify players for turn matching, so they must be
	// unique within the game, case-insensitively.
	seen := make(map[string]bool, len(seats))
	for _, s := range seats {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return models.Game{}, ErrBadSeatCount
		}
		seen[key] = true
	}

	deck := NewDeck()
	ShuffleDeck(deck)

	players := make([]models.Player, len(seats))
	for i, s := range seats {
		players[i] = models.Player{Name: s.Name, UID: s.UID, IsCPU: s.IsCPU, Hand: []models.Card{}}
	}
	for range game_constants.HandSize {
		for i := range players {
			var top models.Card
			top, deck = drawTop(deck)
			players[i].Hand = append(players[i].Hand, top)
		}
	}

	g := models.Game{
		ID:            uuid.NewString(),
		Mode:          mode,
		Deck:          deck,
		Pot:           []models.Card{},
		Players:       players,
		CurrentPlayer: 0,
		MaxPlayers:    len(players),
		EntryFee:      entryFee,
		PotAmount:     potAmount,
	}
	e.games.Put(g.ID, g)
	log.Info().Str("game_id", g.ID).Str("mode", mode).Int("players", len(players)).
		Int64("pot", potAmount).Msg("game created")
	return g, nil
}

// Get returns a snapshot of the game.
func (e *Engine) Get(gameID string) (models.Game, error) {
	g, ok := e.games.Get(gameID)
	if !ok {
		return models.Game{}, ErrGameNotFound
	}
	return g, nil
}

// Remove drops a game outright. Used when a lobby is cancelled before any
// move was made in the game it spawned.
func (e *Engine) Remove(gameID string) {
	e.games.Delete(gameID)
}

// Draw moves the top deck card into the acting player's hand. When the deck
// is exhausted, the discard pile minus its top card is reshuffled back in;
// if even that leaves nothing to draw, the round resolves as a stalemate.
func (e *Engine) Draw(ctx context.Context, gameID, playerUID string) (models.Game, error) {
	var snap models.Game
	err := e.games.Update(gameID, func(g *models.Game) error {
		if g.GameOver {
			return ErrGameOver
		}
		idx := g.PlayerIndexByUID(playerUID)
		if idx < 0 {
			return ErrNotInGame
		}
		if idx != g.CurrentPlayer {
			return ErrNotYourTurn
		}
		if g.HasDrawn {
			return ErrAlreadyDrawn
		}
		if err := e.drawLocked(ctx, g); err != nil {
			return err
		}
		snap = g.Clone()
		return nil
	})
	if err == store.ErrNotFound {
		err = ErrGameNotFound
	}
	return snap, err
}

// Discard evaluates the acting player's 4-card hand for a win and, failing
// that, moves the chosen card onto the pot and advances the turn. The win
// check is automatic and mandatory: a qualifying hand wins instead of
// discarding.
func (e *Engine) Discard(ctx context.Context, gameID, playerUID string, cardIndex int) (models.Game, error) {
	var snap models.Game
	err := e.games.Update(gameID, func(g *models.Game) error {
		if g.GameOver {
			return ErrGameOver
		}
		idx := g.PlayerIndexByUID(playerUID)
		if idx < 0 {
			return ErrNotInGame
		}
		if idx != g.CurrentPlayer {
			return ErrNotYourTurn
		}
		if !g.HasDrawn {
			return ErrMustDrawFirst
		}
		if cardIndex < 0 || cardIndex >= len(g.Players[idx].Hand) {
			return ErrInvalidCardIndex
		}
		e.discardLocked(ctx, g, cardIndex)
		if !g.GameOver && g.Mode != game_constants.ModeMultiplayer {
			e.playCPUTurns(ctx, g)
		}
		snap = g.Clone()
		return nil
	})
	if err == store.ErrNotFound {
		err = ErrGameNotFound
	}
	return snap, err
}

// Quit marks the player as exited; the entry fee is forfeited. When every
// human seat has quit the pot transfers to the house and the round is marked
// forfeited; otherwise play continues with the remaining players.
func (e *Engine) Quit(ctx context.Context, gameID, playerUID string) (models.Game, error) {
	var snap models.Game
	err := e.games.Update(gameID, func(g *models.Game) error {
		if g.GameOver {
			snap = g.Clone()
			return nil
		}
		idx := g.PlayerIndexByUID(playerUID)
		if idx < 0 {
			return ErrNotInGame
		}
		if g.Players[idx].HasQuit {
			snap = g.Clone()
			return nil
		}
		g.Players[idx].HasQuit = true
		log.Info().Str("game_id", g.ID).Str("player", g.Players[idx].Name).Msg("player forfeited")

		humansLeft := 0
		for _, p := range g.Players {
			if !p.IsCPU && !p.HasQuit {
				humansLeft++
			}
		}
		if humansLeft == 0 {
			g.GameOver = true
			g.Forfeited = true
			g.HouseCut = g.PotAmount
			if g.PotAmount > 0 {
				if err := e.wallet.Credit(ctx, wallet.HouseAccountID, g.PotAmount, wallet.ReasonForfeitTransfer, g.ID); err != nil {
					log.Error().Err(err).Str("game_id", g.ID).Msg("forfeit transfer failed")
				}
			}
			e.record(ctx, g)
		} else if idx == g.CurrentPlayer {
			// Skip the quitter's turn. Any card they were holding stays in
			// the dead hand so card conservation holds.
			g.HasDrawn = false
			e.advanceTurn(g)
			if g.Mode != game_constants.ModeMultiplayer {
				e.playCPUTurns(ctx, g)
			}
		}
		snap = g.Clone()
		return nil
	})
	if err == store.ErrNotFound {
		err = ErrGameNotFound
	}
	return snap, err
}

// drawLocked performs the draw on a locked game, recycling the pot or
// resolving a stalemate when the deck runs dry.
func (e *Engine) drawLocked(ctx context.Context, g *models.Game) error {
	if len(g.Deck) == 0 {
		e.recycleDeck(g)
	}
	if len(g.Deck) == 0 {
		e.resolveStalemate(ctx, g)
		return nil
	}
	var top models.Card
	top, g.Deck = drawTop(g.Deck)
	g.Players[g.CurrentPlayer].Hand = append(g.Players[g.CurrentPlayer].Hand, top)
	g.HasDrawn = true
	g.AnyPlayerHasDrawn = true
	return nil
}

// discardLocked applies a validated discard on a locked game.
func (e *Engine) discardLocked(ctx context.Context, g *models.Game, cardIndex int) {
	player := &g.Players[g.CurrentPlayer]
	if IsWinningHand(player.Hand) {
		e.declareWin(ctx, g, g.CurrentPlayer)
		return
	}
	card := player.Hand[cardIndex]
	player.Hand = append(player.Hand[:cardIndex], player.Hand[cardIndex+1:]...)
	g.Pot = append(g.Pot, card)
	g.HasDrawn = false
	e.advanceTurn(g)
}

func (e *Engine) advanceTurn(g *models.Game) {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		next := (g.CurrentPlayer + i) % n
		if !g.Players[next].HasQuit {
			g.CurrentPlayer = next
			return
		}
	}
}

// recycleDeck reshuffles the pot minus its top (active) card back into the
// deck.
func (e *Engine) recycleDeck(g *models.Game) {
	if len(g.Pot) <= 1 {
		return
	}
	top := g.Pot[len(g.Pot)-1]
	recycled := append([]models.Card(nil), g.Pot[:len(g.Pot)-1]...)
	ShuffleDeck(recycled)
	g.Deck = recycled
	g.Pot = []models.Card{top}
	log.Info().Str("game_id", g.ID).Int("cards", len(recycled)).Msg("recycled pot into deck")
}

// declareWin ends the round and settles the pot: 10% house cut (floored),
// remainder to the winner. A CPU winner sends the whole pot to the house.
func (e *Engine) declareWin(ctx context.Context, g *models.Game, winnerIdx int) {
	winner := g.Players[winnerIdx]
	g.GameOver = true
	g.Winner = winner.Name
	g.WinnerUID = winner.UID
	g.WinnerHand = append([]models.Card(nil), winner.Hand...)

	gross := g.PotAmount
	if gross > 0 {
		if winner.IsCPU {
			g.HouseCut = gross
			g.WinnerAmount = 0
			if err := e.wallet.Credit(ctx, wallet.HouseAccountID, gross, wallet.ReasonHouseCut, g.ID); err != nil {
				log.Error().Err(err).Str("game_id", g.ID).Msg("house credit failed")
			}
		} else {
			cut := gross * game_constants.HouseCutPercent / 100
			net := gross - cut
			g.HouseCut = cut
			g.WinnerAmount = net
			if err := e.wallet.Credit(ctx, winner.UID, net, wallet.ReasonGameWinnings, g.ID); err != nil {
				log.Error().Err(err).Str("game_id", g.ID).Str("winner", winner.Name).Msg("winner credit failed")
			}
			if err := e.wallet.Credit(ctx, wallet.HouseAccountID, cut, wallet.ReasonHouseCut, g.ID); err != nil {
				log.Error().Err(err).Str("game_id", g.ID).Msg("house credit failed")
			}
		}
	}
	log.Info().Str("game_id", g.ID).Str("winner", winner.Name).
		Int64("gross", gross).Int64("house_cut", g.HouseCut).Int64("net", g.WinnerAmount).
		Msg("game over")
	e.record(ctx, g)
}

// resolveStalemate ends a round nobody can win: the pot splits equally among
// seats still in the round, in seat order, with CPU shares and the
// indivisible remainder going to the house.
func (e *Engine) resolveStalemate(ctx context.Context, g *models.Game) {
	g.GameOver = true
	g.Stalemate = true

	active := make([]int, 0, len(g.Players))
	for i, p := range g.Players {
		if !p.HasQuit {
			active = append(active, i)
		}
	}
	if g.PotAmount > 0 && len(active) > 0 {
		share := g.PotAmount / int64(len(active))
		house := g.PotAmount - share*int64(len(active))
		for _, i := range active {
			p := g.Players[i]
			if p.IsCPU {
				house += share
				continue
			}
			if err := e.wallet.Credit(ctx, p.UID, share, wallet.ReasonStalemateSplit, g.ID); err != nil {
				log.Error().Err(err).Str("game_id", g.ID).Str("player", p.Name).Msg("stalemate split failed")
			}
		}
		g.HouseCut = house
		if house > 0 {
			if err := e.wallet.Credit(ctx, wallet.HouseAccountID, house, wallet.ReasonStalemateSplit, g.ID); err != nil {
				log.Error().Err(err).Str("game_id", g.ID).Msg("stalemate house credit failed")
			}
		}
	}
	log.Info().Str("game_id", g.ID).Msg("stalemate: deck and pot exhausted")
	e.record(ctx, g)
}

// record archives the finished round. Failures are logged, never propagated:
// archival must not break game flow.
func (e *Engine) record(ctx context.Context, g *models.Game) {
	if e.recorder == nil {
		return
	}
	handJSON, err := json.Marshal(g.WinnerHand)
	if err != nil {
		handJSON = []byte("[]")
	}
	rec := postgres.GameRecord{
		GameID:       g.ID,
		Mode:         g.Mode,
		Winner:       g.Winner,
		WinnerUID:    g.WinnerUID,
		WinnerHand:   datatypes.JSON(handJSON),
		PotAmount:    g.PotAmount,
		HouseCut:     g.HouseCut,
		WinnerAmount: g.WinnerAmount,
		Forfeited:    g.Forfeited,
	}
	if err := e.recorder.RecordGame(ctx, rec); err != nil {
		log.Error().Err(err).Str("game_id", g.ID).Msg("game record archival failed")
	}
}
