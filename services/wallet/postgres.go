package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"njuka/models/postgres"
)

// PostgresService is the gorm-backed wallet. Each mutation runs in a
// transaction that locks the account row, so concurrent debits against the
// same user serialize at the database.
type PostgresService struct {
	db *gorm.DB
}

func NewPostgresService(db *gorm.DB) *PostgresService {
	return &PostgresService{db: db}
}

var _ Service = (*PostgresService)(nil)

func (s *PostgresService) GetBalance(ctx context.Context, uid string) (int64, error) {
	var user postgres.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("wallet: query balance: %w", err)
	}
	return user.WalletBalance, nil
}

func (s *PostgresService) Debit(ctx context.Context, uid string, amount int64, reason, reference string) error {
	if amount < 0 {
		return fmt.Errorf("wallet: negative debit %d", amount)
	}
	if amount == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user postgres.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("uid = ?", uid).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if user.WalletBalance < amount {
			return &InsufficientBalanceError{Required: amount, Available: user.WalletBalance}
		}
		if err := tx.Model(&user).Update("wallet_balance", user.WalletBalance-amount).Error; err != nil {
			return err
		}
		row := postgres.WalletTransaction{
			Type:      reason,
			UserUID:   uid,
			Amount:    amount,
			Reference: reference,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		log.Debug().Str("uid", uid).Int64("amount", amount).Str("reason", reason).Msg("wallet debit")
		return nil
	})
}

func (s *PostgresService) Credit(ctx context.Context, uid string, amount int64, reason, reference string) error {
	if amount < 0 {
		return fmt.Errorf("wallet: negative credit %d", amount)
	}
	if amount == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user postgres.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("uid = ?", uid).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The house account is created lazily on its first credit.
			if uid != HouseAccountID {
				return ErrUserNotFound
			}
			user = postgres.User{UID: HouseAccountID, DisplayName: "House"}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if err := tx.Model(&user).Update("wallet_balance", user.WalletBalance+amount).Error; err != nil {
			return err
		}
		row := postgres.WalletTransaction{
			Type:      reason,
			UserUID:   uid,
			Amount:    amount,
			Reference: reference,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		log.Debug().Str("uid", uid).Int64("amount", amount).Str("reason", reason).Msg("wallet credit")
		return nil
	})
}

func (s *PostgresService) EnsureAccount(ctx context.Context, uid, name string) error {
	user := postgres.User{UID: uid, DisplayName: name}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "uid"}}, DoNothing: true}).
		Create(&user).Error
}

// RecordGame archives a completed game's payout breakdown.
func (s *PostgresService) RecordGame(ctx context.Context, rec postgres.GameRecord) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}
