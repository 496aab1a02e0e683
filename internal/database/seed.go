package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Development API key for the seeded demo user. The part before the dot is
// the key id (stored in clear for lookup); only the secret half is hashed.
const (
	devKeyID     = "dev"
	devKeySecret = "inkwell-dev-secret"
	devCredits   = 100
)

// Seed populates the database with initial development data: a demo user
// with a known API key and a funded credit account. No-op if users exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(devKeySecret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, api_key_id, api_key_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "demo@inkwell.local", devKeyID, string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO credit_accounts (user_id, total_credits)
		VALUES ($1, $2)
	`, userID, devCredits)
	if err != nil {
		return fmt.Errorf("seed insert credit account: %w", err)
	}

	slog.Info("database seeded with demo user",
		"email", "demo@inkwell.local",
		"api_key", devKeyID+"."+devKeySecret,
		"credits", devCredits,
	)

	return nil
}
