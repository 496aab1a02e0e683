// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

const defaultTransactionLimit = 50

type creditsResponse struct {
	TotalCredits     int                        `json:"total_credits"`
	UsedCredits      int                        `json:"used_credits"`
	LockedCredits    int                        `json:"locked_credits"`
	AvailableCredits int                        `json:"available_credits"`
	Transactions     []models.CreditTransaction `json:"transactions"`
}

// Credits returns the user's balance and recent ledger history.
// GET /api/credits
func (a *API) Credits(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	account, err := a.ledger.Account(r.Context(), user.ID)
	if err != nil && !errors.Is(err, store.ErrNoAccount) {
		slog.Error("credit account read failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "could not load credit account")
		return
	}

	resp := creditsResponse{Transactions: []models.CreditTransaction{}}
	if account != nil {
		resp.TotalCredits = account.TotalCredits
		resp.UsedCredits = account.UsedCredits
		resp.LockedCredits = account.LockedCredits
		resp.AvailableCredits = account.Available()
	}

	limit := defaultTransactionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	txs, err := a.ledger.Transactions(r.Context(), user.ID, limit)
	if err != nil {
		slog.Error("transaction list failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "could not load transactions")
		return
	}
	if txs != nil {
		resp.Transactions = txs
	}

	writeJSON(w, http.StatusOK, resp)
}
