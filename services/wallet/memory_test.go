package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitCreditRoundTrip(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()
	s.Seed("u1", 100)

	require.NoError(t, s.Debit(ctx, "u1", 60, ReasonLobbyDebit, "lobby-1"))
	require.NoError(t, s.Credit(ctx, "u1", 30, ReasonLobbyRefund, "lobby-1"))

	bal, err := s.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)

	ledger := s.Ledger()
	require.Len(t, ledger, 2)
	assert.Equal(t, ReasonLobbyDebit, ledger[0].Type)
	assert.Equal(t, "lobby-1", ledger[0].Reference)
	assert.Equal(t, ReasonLobbyRefund, ledger[1].Type)
}

func TestDebitInsufficientBalance(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()
	s.Seed("u1", 40)

	err := s.Debit(ctx, "u1", 100, ReasonLobbyDebit, "lobby-1")
	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Required)
	assert.Equal(t, int64(40), insufficient.Available)

	// Failed debits leave balance and ledger untouched.
	bal, _ := s.GetBalance(ctx, "u1")
	assert.Equal(t, int64(40), bal)
	assert.Empty(t, s.Ledger())
}

func TestUnknownAccounts(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	_, err := s.GetBalance(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, s.Debit(ctx, "ghost", 10, ReasonLobbyDebit, "x"), ErrUserNotFound)
	assert.ErrorIs(t, s.Credit(ctx, "ghost", 10, ReasonGameWinnings, "x"), ErrUserNotFound)
}

func TestHouseAccountAutoCreatedOnCredit(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	require.NoError(t, s.Credit(ctx, HouseAccountID, 25, ReasonHouseCut, "game-1"))
	bal, err := s.GetBalance(ctx, HouseAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), bal)
}

func TestNegativeAmountsRejected(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()
	s.Seed("u1", 100)

	assert.Error(t, s.Debit(ctx, "u1", -50, ReasonLobbyDebit, "x"))
	assert.Error(t, s.Credit(ctx, "u1", -50, ReasonLobbyRefund, "x"))

	bal, _ := s.GetBalance(ctx, "u1")
	assert.Equal(t, int64(100), bal)
	assert.Empty(t, s.Ledger())
}

func TestZeroAmountsAreNoOps(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()
	s.Seed("u1", 10)

	require.NoError(t, s.Debit(ctx, "u1", 0, ReasonLobbyDebit, "free-lobby"))
	require.NoError(t, s.Credit(ctx, "u1", 0, ReasonLobbyRefund, "free-lobby"))
	assert.Empty(t, s.Ledger())
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	s := NewMemoryService()
	ctx := context.Background()

	require.NoError(t, s.EnsureAccount(ctx, "u1", "Alice"))
	s.Seed("u1", 50)
	require.NoError(t, s.EnsureAccount(ctx, "u1", "Alice"))

	bal, err := s.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), bal, "ensure must not reset an existing balance")
}
