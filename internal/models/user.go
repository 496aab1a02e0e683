// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner entity for jobs and credit accounts. The dashboard that
// manages users lives outside this service; here a user is only the subject
// of API-key authentication and the foreign key everything hangs off.
//
// API keys have the form "<key_id>.<secret>". The key id is stored in clear
// for lookup; only a bcrypt hash of the secret is persisted.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	APIKeyID   string    `json:"-"`
	APIKeyHash string    `json:"-"` // Never serialize the hash
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
