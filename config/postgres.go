package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pgmodels "njuka/models/postgres"
)

// ConnectGORM opens the PostgreSQL connection from DATABASE_URL, or from the
// individual POSTGRES_* variables when the URL is unset.
func ConnectGORM() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			getenv("POSTGRES_HOST", "localhost"),
			getenv("POSTGRES_USER", "postgres"),
			os.Getenv("POSTGRES_PASSWORD"),
			getenv("POSTGRES_DB", "njuka"),
			getenv("POSTGRES_PORT", "5432"),
			getenv("POSTGRES_SSLMODE", "disable"),
		)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// MigrateDatabase creates or updates the wallet tables.
func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&pgmodels.User{},
		&pgmodels.WalletTransaction{},
		&pgmodels.GameRecord{},
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
