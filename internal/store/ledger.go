// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Ledger errors. Callers branch on these with errors.Is.
var (
	// ErrInsufficientCredits is returned by Lock when the reservation would
	// push used + locked past the account total.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrNoAccount is returned when the user has no credit account row.
	ErrNoAccount = errors.New("credit account not found")

	// ErrNoLockedTransaction is returned by Finalize when there is nothing
	// to convert. Refund treats the same situation as a clean no-op.
	ErrNoLockedTransaction = errors.New("no locked transaction for job")
)

// LedgerStore implements the three-phase credit reservation: Lock reserves
// an estimated amount, Finalize converts the reservation into a real charge,
// Refund releases it untouched. Every operation runs in a single database
// transaction that takes a row lock on the account, so concurrent calls for
// the same user serialize and the invariant used + locked <= total holds
// after every operation. A violating lock fails; it never clamps.
type LedgerStore struct {
	db *sql.DB
}

// NewLedgerStore creates a new LedgerStore with the given database connection.
func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Lock reserves amount credits for the given job. On success the account's
// locked balance grows and a transaction row with status=locked is appended.
// Returns ErrInsufficientCredits without mutating anything if the account
// cannot cover the reservation.
func (s *LedgerStore) Lock(ctx context.Context, userID, jobID uuid.UUID, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("lock credits: amount must be positive, got %d", amount)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var total, used, locked int
		err := tx.QueryRowContext(ctx, `
			SELECT total_credits, used_credits, locked_credits
			FROM credit_accounts WHERE user_id = $1
			FOR UPDATE
		`, userID).Scan(&total, &used, &locked)
		if err == sql.ErrNoRows {
			return ErrNoAccount
		}
		if err != nil {
			return fmt.Errorf("lock credits read account: %w", err)
		}

		if used+locked+amount > total {
			return ErrInsufficientCredits
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_accounts
			SET locked_credits = locked_credits + $1, updated_at = now()
			WHERE user_id = $2
		`, amount, userID)
		if err != nil {
			return fmt.Errorf("lock credits update account: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO credit_transactions (user_id, job_id, type, amount, status)
			VALUES ($1, $2, 'usage', $3, 'locked')
		`, userID, jobID, amount)
		if err != nil {
			return fmt.Errorf("lock credits insert transaction: %w", err)
		}
		return nil
	})
}

// Finalize converts the job's locked reservation into a real charge:
// the locked balance drops by the originally locked amount, used grows by
// actualAmount, and the transaction moves to status=completed. When the
// actual cost is below the estimate the difference returns to the
// available balance; the account absorbs nothing.
func (s *LedgerStore) Finalize(ctx context.Context, userID, jobID uuid.UUID, actualAmount int) error {
	if actualAmount < 0 {
		return fmt.Errorf("finalize credits: amount must not be negative, got %d", actualAmount)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		lockedAmount, txID, err := lockedTransaction(ctx, tx, userID, jobID)
		if err != nil {
			return err
		}

		// The balance check guards against actual > estimate overdrawing
		// the account; the CHECK constraint would reject it anyway, this
		// surfaces the typed error instead.
		var total, used, locked int
		err = tx.QueryRowContext(ctx, `
			SELECT total_credits, used_credits, locked_credits
			FROM credit_accounts WHERE user_id = $1
			FOR UPDATE
		`, userID).Scan(&total, &used, &locked)
		if err == sql.ErrNoRows {
			return ErrNoAccount
		}
		if err != nil {
			return fmt.Errorf("finalize credits read account: %w", err)
		}
		if used+actualAmount+(locked-lockedAmount) > total {
			return ErrInsufficientCredits
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_accounts
			SET locked_credits = locked_credits - $1,
			    used_credits = used_credits + $2,
			    updated_at = now()
			WHERE user_id = $3
		`, lockedAmount, actualAmount, userID)
		if err != nil {
			return fmt.Errorf("finalize credits update account: %w", err)
		}

		// Rows are immutable after creation except for the status
		// transition. The reserved amount stays as the audit record.
		_, err = tx.ExecContext(ctx, `
			UPDATE credit_transactions
			SET status = 'completed', updated_at = now()
			WHERE id = $1
		`, txID)
		if err != nil {
			return fmt.Errorf("finalize credits update transaction: %w", err)
		}
		return nil
	})
}

// Refund releases the job's locked reservation without charging anything
// and marks the transaction refunded. Idempotent: refunding twice, or
// refunding a job that never locked, is a clean no-op so the failure path
// can always call it without checking how far the job got.
func (s *LedgerStore) Refund(ctx context.Context, userID, jobID uuid.UUID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		lockedAmount, txID, err := lockedTransaction(ctx, tx, userID, jobID)
		if errors.Is(err, ErrNoLockedTransaction) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_accounts
			SET locked_credits = locked_credits - $1, updated_at = now()
			WHERE user_id = $2
		`, lockedAmount, userID)
		if err != nil {
			return fmt.Errorf("refund credits update account: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_transactions
			SET status = 'refunded', updated_at = now()
			WHERE id = $1
		`, txID)
		if err != nil {
			return fmt.Errorf("refund credits update transaction: %w", err)
		}
		return nil
	})
}

// Account returns the user's credit account. Returns ErrNoAccount if the
// user has none.
func (s *LedgerStore) Account(ctx context.Context, userID uuid.UUID) (*models.CreditAccount, error) {
	a := &models.CreditAccount{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_credits, used_credits, locked_credits, created_at, updated_at
		FROM credit_accounts WHERE user_id = $1
	`, userID).Scan(
		&a.ID, &a.UserID, &a.TotalCredits, &a.UsedCredits, &a.LockedCredits,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, fmt.Errorf("read credit account: %w", err)
	}
	return a, nil
}

// CreateAccount opens a credit account with an initial balance.
func (s *LedgerStore) CreateAccount(ctx context.Context, userID uuid.UUID, totalCredits int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_accounts (user_id, total_credits)
		VALUES ($1, $2)
	`, userID, totalCredits)
	if err != nil {
		return fmt.Errorf("create credit account: %w", err)
	}
	return nil
}

// Transactions returns the user's audit log, newest first, capped at limit.
func (s *LedgerStore) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, job_id, type, amount, status, created_at, updated_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list credit transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.JobID, &t.Type, &t.Amount, &t.Status,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// lockedTransaction finds the job's open reservation inside a transaction.
// The row lock prevents a concurrent finalize and refund from both seeing
// it as locked.
func lockedTransaction(ctx context.Context, tx *sql.Tx, userID, jobID uuid.UUID) (amount int, id uuid.UUID, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT id, amount FROM credit_transactions
		WHERE user_id = $1 AND job_id = $2 AND status = 'locked'
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, userID, jobID).Scan(&id, &amount)
	if err == sql.ErrNoRows {
		return 0, uuid.Nil, ErrNoLockedTransaction
	}
	if err != nil {
		return 0, uuid.Nil, fmt.Errorf("find locked transaction: %w", err)
	}
	return amount, id, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *LedgerStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}
