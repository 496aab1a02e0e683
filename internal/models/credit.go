// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditAccount tracks one user's prepaid balance. The ledger maintains the
// invariant used + locked <= total after every operation; an operation that
// would break it is rejected, never clamped.
type CreditAccount struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	TotalCredits  int       `json:"total_credits"`
	UsedCredits   int       `json:"used_credits"`
	LockedCredits int       `json:"locked_credits"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Available returns the credits that are neither spent nor reserved.
func (a *CreditAccount) Available() int {
	return a.TotalCredits - a.UsedCredits - a.LockedCredits
}

// TransactionType is the business reason for a ledger entry.
type TransactionType string

const (
	TransactionUsage            TransactionType = "usage"
	TransactionRefund           TransactionType = "refund"
	TransactionManualAdjustment TransactionType = "manual_adjustment"
	TransactionReset            TransactionType = "reset"
)

// TransactionStatus tracks a reservation through its lifecycle. The only
// permitted transitions are locked -> completed and locked -> refunded.
type TransactionStatus string

const (
	TransactionLocked    TransactionStatus = "locked"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// CreditTransaction is an append-only audit row created by ledger
// operations. Amount is the locked reservation; after finalization it is
// the charged amount.
type CreditTransaction struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	JobID     *uuid.UUID        `json:"job_id,omitempty"`
	Type      TransactionType   `json:"type"`
	Amount    int               `json:"amount"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
