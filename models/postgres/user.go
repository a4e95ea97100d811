package postgres

import (
	"time"

	"gorm.io/datatypes"
)

// User is the wallet-bearing account row. WalletBalance is in the smallest
// currency unit; it is mutated only through the wallet service, under a
// row-level lock.
type User struct {
	UID           string `gorm:"primaryKey;column:uid"`
	DisplayName   string `gorm:"column:display_name"`
	WalletBalance int64  `gorm:"column:wallet_balance;not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (User) TableName() string {
	return "users"
}

// WalletTransaction is one ledger row per balance mutation. The ledger is
// append-only; Amount is always positive and Type carries the direction.
type WalletTransaction struct {
	ID        uint   `gorm:"primaryKey"`
	Type      string `gorm:"column:type;index"`
	UserUID   string `gorm:"column:user_uid;index"`
	Amount    int64  `gorm:"column:amount"`
	Reference string `gorm:"column:reference;index"` // lobby or game id
	CreatedAt time.Time
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// GameRecord archives a completed game with its payout breakdown.
type GameRecord struct {
	GameID       string         `gorm:"primaryKey;column:game_id"`
	Mode         string         `gorm:"column:mode"`
	Winner       string         `gorm:"column:winner"`
	WinnerUID    string         `gorm:"column:winner_uid"`
	WinnerHand   datatypes.JSON `gorm:"column:winner_hand"`
	PotAmount    int64          `gorm:"column:pot_amount"`
	HouseCut     int64          `gorm:"column:house_cut"`
	WinnerAmount int64          `gorm:"column:winner_amount"`
	Forfeited    bool           `gorm:"column:forfeited"`
	CreatedAt    time.Time
}

func (GameRecord) TableName() string {
	return "game_records"
}
