// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API: job CRUD, generation control,
// content preview, and the credit balance view.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/ai"
	"inkwell/internal/models"
	"inkwell/internal/progress"
)

// JobStore is the job persistence surface the API needs.
type JobStore interface {
	Create(ctx context.Context, j *models.ContentJob) error
	FindByIDForOwner(ctx context.Context, id, userID uuid.UUID) (*models.ContentJob, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.ContentJob, error)
	ResetForRetry(ctx context.Context, id uuid.UUID) error
}

// Ledger is the read side of the credit ledger.
type Ledger interface {
	Account(ctx context.Context, userID uuid.UUID) (*models.CreditAccount, error)
	Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error)
}

// Starter launches background generation runs. *generator.Runner
// satisfies it.
type Starter interface {
	Start(jobID uuid.UUID) bool
	Running(jobID uuid.UUID) bool
}

// Moderator screens job input before generation. *ai.Moderator satisfies
// it; a nil-backed implementation approves everything.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ai.ModerationResult, error)
}

// ProgressReader serves the latest live snapshot for a running job.
type ProgressReader interface {
	Latest(ctx context.Context, jobID uuid.UUID) (*progress.Snapshot, error)
}

// API bundles the HTTP handlers with their dependencies.
type API struct {
	jobs      JobStore
	ledger    Ledger
	runner    Starter
	moderator Moderator
	progress  ProgressReader
}

func NewAPI(jobs JobStore, ledger Ledger, runner Starter, moderator Moderator, snapshots ProgressReader) *API {
	return &API{
		jobs:      jobs,
		ledger:    ledger,
		runner:    runner,
		moderator: moderator,
		progress:  snapshots,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
