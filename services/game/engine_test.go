package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	game_constants "njuka/constants/game"
	"njuka/models"
	"njuka/services/store"
	"njuka/services/wallet"
)

func newTestEngine() (*Engine, *store.Store[models.Game], *wallet.MemoryService) {
	games := store.New[models.Game]()
	w := wallet.NewMemoryService()
	return NewEngine(games, w), games, w
}

func twoSeats() []Seat {
	return []Seat{
		{Name: "Alice", UID: "u1"},
		{Name: "Bob", UID: "u2"},
	}
}

func TestNewGameDealsThreeEach(t *testing.T) {
	e, _, _ := newTestEngine()
	g, err := e.NewGame(context.Background(), game_constants.ModeMultiplayer, twoSeats(), 100, 200)
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 0, g.CurrentPlayer)
	assert.False(t, g.HasDrawn)
	assert.Len(t, g.Deck, 52-2*game_constants.HandSize)
	assert.Empty(t, g.Pot)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, game_constants.HandSize)
	}
	assert.Equal(t, 52, g.CardCount())
	assert.Equal(t, int64(200), g.PotAmount)
}

func TestNewGameRejectsBadSetups(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := e.NewGame(ctx, "poker", twoSeats(), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = e.NewGame(ctx, game_constants.ModeMultiplayer, []Seat{{Name: "Solo", UID: "u1"}}, 0, 0)
	assert.ErrorIs(t, err, ErrBadSeatCount)

	_, err = e.NewGame(ctx, game_constants.ModeMultiplayer, []Seat{
		{Name: "Alice", UID: "u1"}, {Name: "alice", UID: "u2"},
	}, 0, 0)
	assert.ErrorIs(t, err, ErrBadSeatCount)
}

func TestTurnOrderEnforced(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	g, err := e.NewGame(ctx, game_constants.ModeMultiplayer, twoSeats(), 0, 0)
	require.NoError(t, err)

	_, err = e.Draw(ctx, g.ID, "u2")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = e.Discard(ctx, g.ID, "u1", 0)
	assert.ErrorIs(t, err, ErrMustDrawFirst)

	_, err = e.Draw(ctx, g.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotInGame)

	snap, err := e.Draw(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Players[0].Hand, game_constants.DrawnHandSize)
	assert.True(t, snap.HasDrawn)
	assert.True(t, snap.AnyPlayerHasDrawn)

	_, err = e.Draw(ctx, g.ID, "u1")
	assert.ErrorIs(t, err, ErrAlreadyDrawn)

	_, err = e.Discard(ctx, g.ID, "u1", 7)
	assert.ErrorIs(t, err, ErrInvalidCardIndex)

	_, err = e.Draw(ctx, "no-such-game", "u1")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestCardConservationAcrossTurns(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	g, err := e.NewGame(ctx, game_constants.ModeMultiplayer, twoSeats(), 0, 0)
	require.NoError(t, err)

	uids := []string{"u1", "u2"}
	for i := 0; i < 6; i++ {
		snap, err := e.Draw(ctx, g.ID, uids[i%2])
		require.NoError(t, err)
		if snap.GameOver {
			return
		}
		snap, err = e.Discard(ctx, g.ID, uids[i%2], 0)
		require.NoError(t, err)
		assert.Equal(t, 52, snap.CardCount())
		if snap.GameOver {
			return
		}
	}
}

func TestWinPaysNetAndHouseCut(t *testing.T) {
	e, games, w := newTestEngine()
	w.Seed("u1", 0)
	w.Seed("u2", 0)

	games.Put("g1", models.Game{
		ID:   "g1",
		Mode: game_constants.ModeMultiplayer,
		Deck: []models.Card{card("2", "♣")},
		Pot:  []models.Card{},
		Players: []models.Player{
			{Name: "Alice", UID: "u1", Hand: []models.Card{card("7", "♠"), card("7", "♥"), card("7", "♦"), card("8", "♣")}},
			{Name: "Bob", UID: "u2", Hand: []models.Card{card("2", "♠"), card("5", "♥"), card("9", "♦")}},
		},
		CurrentPlayer: 0,
		HasDrawn:      true,
		MaxPlayers:    2,
		EntryFee:      125,
		PotAmount:     250,
	})

	snap, err := e.Discard(context.Background(), "g1", "u1", 3)
	require.NoError(t, err)
	assert.True(t, snap.GameOver)
	assert.Equal(t, "Alice", snap.Winner)
	assert.Equal(t, "u1", snap.WinnerUID)
	assert.Len(t, snap.WinnerHand, 4)
	assert.Equal(t, int64(25), snap.HouseCut)
	assert.Equal(t, int64(225), snap.WinnerAmount)

	bal, err := w.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(225), bal)
	house, err := w.GetBalance(context.Background(), wallet.HouseAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), house)

	_, err = e.Draw(context.Background(), "g1", "u2")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestHouseCutFloorsOddPots(t *testing.T) {
	e, games, w := newTestEngine()
	w.Seed("u1", 0)

	games.Put("g1", models.Game{
		ID:   "g1",
		Mode: game_constants.ModeMultiplayer,
		Deck: []models.Card{},
		Pot:  []models.Card{},
		Players: []models.Player{
			{Name: "Alice", UID: "u1", Hand: []models.Card{card("5", "♠"), card("5", "♥"), card("6", "♦"), card("7", "♣")}},
			{Name: "Bob", UID: "u2", Hand: []models.Card{card("2", "♠"), card("9", "♥"), card("K", "♦")}},
		},
		CurrentPlayer: 0,
		HasDrawn:      true,
		MaxPlayers:    2,
		PotAmount:     99,
	})

	snap, err := e.Discard(context.Background(), "g1", "u1", 0)
	require.NoError(t, err)
	require.True(t, snap.GameOver)
	// 10% of 99 floors to 9; winner gets the 90 remainder.
	assert.Equal(t, int64(9), snap.HouseCut)
	assert.Equal(t, int64(90), snap.WinnerAmount)
	assert.Equal(t, int64(99), snap.HouseCut+snap.WinnerAmount)
}

func TestForfeitureSendsPotToHouse(t *testing.T) {
	e, _, w := newTestEngine()
	ctx := context.Background()
	g, err := e.NewGame(ctx, game_constants.ModeMultiplayer, twoSeats(), 100, 200)
	require.NoError(t, err)

	snap, err := e.Quit(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.False(t, snap.GameOver)
	assert.True(t, snap.Players[0].HasQuit)
	assert.Equal(t, 1, snap.CurrentPlayer)

	snap, err = e.Quit(ctx, g.ID, "u2")
	require.NoError(t, err)
	assert.True(t, snap.GameOver)
	assert.True(t, snap.Forfeited)
	assert.Equal(t, int64(200), snap.HouseCut)

	house, err := w.GetBalance(ctx, wallet.HouseAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), house)
}

func TestQuitSkipsTurnAndStaysSkipped(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()
	seats := []Seat{
		{Name: "Alice", UID: "u1"},
		{Name: "Bob", UID: "u2"},
		{Name: "Cara", UID: "u3"},
	}
	g, err := e.NewGame(ctx, game_constants.ModeMultiplayer, seats, 0, 0)
	require.NoError(t, err)

	snap, err := e.Quit(ctx, g.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentPlayer)

	snap, err = e.Draw(ctx, g.ID, "u1")
	require.NoError(t, err)
	if snap.GameOver {
		t.Skip("dealt a winning hand")
	}
	snap, err = e.Discard(ctx, g.ID, "u1", 0)
	require.NoError(t, err)
	if !snap.GameOver {
		assert.Equal(t, 2, snap.CurrentPlayer, "turn must skip the quitter")
		_, err = e.Draw(ctx, g.ID, "u2")
		assert.ErrorIs(t, err, ErrNotYourTurn)
	}
}

func TestDeckRecycleKeepsTopDiscard(t *testing.T) {
	e, games, _ := newTestEngine()

	pot := []models.Card{card("2", "♠"), card("3", "♠"), card("4", "♠"), card("5", "♠"), card("6", "♠")}
	games.Put("g1", models.Game{
		ID:   "g1",
		Mode: game_constants.ModeMultiplayer,
		Deck: []models.Card{},
		Pot:  pot,
		Players: []models.Player{
			{Name: "Alice", UID: "u1", Hand: []models.Card{card("9", "♥"), card("J", "♦"), card("K", "♣")}},
			{Name: "Bob", UID: "u2", Hand: []models.Card{card("2", "♥"), card("5", "♦"), card("8", "♣")}},
		},
		CurrentPlayer: 0,
		MaxPlayers:    2,
	})

	snap, err := e.Draw(context.Background(), "g1", "u1")
	require.NoError(t, err)
	require.False(t, snap.GameOver)
	assert.Len(t, snap.Pot, 1)
	assert.Equal(t, card("6", "♠"), snap.Pot[0], "top discard stays in the pot")
	assert.Len(t, snap.Deck, 3)
	assert.Len(t, snap.Players[0].Hand, 4)
}

func TestStalemateSplitsPot(t *testing.T) {
	e, games, w := newTestEngine()
	w.Seed("u1", 0)
	w.Seed("u2", 0)

	games.Put("g1", models.Game{
		ID:   "g1",
		Mode: game_constants.ModeMultiplayer,
		Deck: []models.Card{},
		Pot:  []models.Card{card("6", "♠")},
		Players: []models.Player{
			{Name: "Alice", UID: "u1", Hand: []models.Card{card("9", "♥"), card("J", "♦"), card("K", "♣")}},
			{Name: "Bob", UID: "u2", Hand: []models.Card{card("2", "♥"), card("5", "♦"), card("8", "♣")}},
		},
		CurrentPlayer: 0,
		MaxPlayers:    2,
		PotAmount:     101,
	})

	snap, err := e.Draw(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.True(t, snap.GameOver)
	assert.True(t, snap.Stalemate)

	ctx := context.Background()
	b1, _ := w.GetBalance(ctx, "u1")
	b2, _ := w.GetBalance(ctx, "u2")
	house, _ := w.GetBalance(ctx, wallet.HouseAccountID)
	assert.Equal(t, int64(50), b1)
	assert.Equal(t, int64(50), b2)
	assert.Equal(t, int64(1), house, "indivisible remainder goes to the house")
}

func TestCPUPlaysAfterHumanDiscard(t *testing.T) {
	e, games, _ := newTestEngine()

	games.Put("g1", models.Game{
		ID:   "g1",
		Mode: game_constants.ModeCPU,
		Deck: []models.Card{card("3", "♥"), card("K", "♦")},
		Pot:  []models.Card{},
		Players: []models.Player{
			{Name: "Alice", UID: "u1", Hand: []models.Card{card("A", "♠"), card("5", "♥"), card("9", "♦")}},
			{Name: "CPU 1", UID: "cpu_1", IsCPU: true, Hand: []models.Card{card("2", "♣"), card("6", "♠"), card("10", "♥")}},
		},
		CurrentPlayer: 0,
		MaxPlayers:    2,
	})

	ctx := context.Background()
	_, err := e.Draw(ctx, "g1", "u1")
	require.NoError(t, err)
	snap, err := e.Discard(ctx, "g1", "u1", 0)
	require.NoError(t, err)

	// The CPU seat drew and discarded within the same call.
	require.False(t, snap.GameOver)
	assert.Equal(t, 0, snap.CurrentPlayer)
	assert.False(t, snap.HasDrawn)
	assert.Len(t, snap.Players[1].Hand, game_constants.HandSize)
	assert.Len(t, snap.Pot, 2)
	assert.Equal(t, 8, snap.CardCount())
}

func TestChooseDiscardKeepsPairs(t *testing.T) {
	hand := []models.Card{card("7", "♠"), card("7", "♥"), card("2", "♦"), card("K", "♣")}
	idx := chooseDiscard(hand)
	// Discarding the 2 or the K preserves the pair; never break it.
	discarded := hand[idx]
	assert.NotEqual(t, "7", discarded.Value)
}
