// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// UserStore handles user lookup for API-key authentication.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByAPIKey resolves an API key of the form "<key_id>.<secret>" to its
// user. The key id selects the row; the secret is verified against the
// stored bcrypt hash. Returns nil for unknown ids, malformed keys, and
// wrong secrets alike — callers cannot tell which check failed.
func (s *UserStore) FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	keyID, secret, ok := strings.Cut(apiKey, ".")
	if !ok || keyID == "" || secret == "" {
		return nil, nil
	}

	u := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, api_key_id, api_key_hash, created_at, updated_at
		FROM users WHERE api_key_id = $1
	`, keyID).Scan(
		&u.ID, &u.Email, &u.APIKeyID, &u.APIKeyHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by api key: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.APIKeyHash), []byte(secret)) != nil {
		return nil, nil
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed API-key secret.
func (s *UserStore) Create(ctx context.Context, email, keyID, secret string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	u := &models.User{Email: email, APIKeyID: keyID, APIKeyHash: string(hash)}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, api_key_id, api_key_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, email, keyID, string(hash)).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
