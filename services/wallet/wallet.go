// Package wallet centralizes every real-money balance mutation. The lobby
// manager debits/refunds entry fees and the game engine credits payouts, but
// neither touches a balance directly: all paths go through Service so
// mutation stays atomic per user id.
package wallet

import (
	"context"
	"errors"
	"fmt"
)

// HouseAccountID is the platform account credited with house cuts and
// forfeited pots.
const HouseAccountID = "house"

// Ledger entry types, one per balance mutation reason.
const (
	ReasonLobbyDebit      = "lobby_debit"
	ReasonLobbyRefund     = "lobby_refund"
	ReasonGameWinnings    = "game_winnings"
	ReasonHouseCut        = "house_cut"
	ReasonForfeitTransfer = "forfeit_transfer"
	ReasonStalemateSplit  = "stalemate_split"
	ReasonDeposit         = "deposit"
)

// ErrUserNotFound is returned when the user id has no wallet account.
var ErrUserNotFound = errors.New("wallet: user not found")

// InsufficientBalanceError reports a debit that would overdraw the account.
// It carries the amounts so the client can surface them.
type InsufficientBalanceError struct {
	Required  int64 `json:"required"`
	Available int64 `json:"available"`
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("wallet: insufficient balance: required %d, available %d", e.Required, e.Available)
}

// Service is the wallet contract the session core consumes. Amounts are in
// the smallest currency unit and must be non-negative. Reference ties the
// ledger row to the lobby or game that caused the mutation.
type Service interface {
	GetBalance(ctx context.Context, uid string) (int64, error)
	Debit(ctx context.Context, uid string, amount int64, reason, reference string) error
	Credit(ctx context.Context, uid string, amount int64, reason, reference string) error
	// EnsureAccount creates the account with a zero balance if it does not
	// exist yet. Called when an identity first shows up.
	EnsureAccount(ctx context.Context, uid, name string) error
}
