// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

func creditsRequest(api *API, user *models.User, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/credits"+query, nil)
	ctx := context.WithValue(req.Context(), middleware.UserKey, user)
	rec := httptest.NewRecorder()
	api.Credits(rec, req.WithContext(ctx))
	return rec
}

func TestCredits(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	jobID := uuid.New()
	ledger := &fakeLedgerReader{
		account: &models.CreditAccount{TotalCredits: 100, UsedCredits: 40, LockedCredits: 10},
		txs: []models.CreditTransaction{
			{ID: uuid.New(), UserID: user.ID, JobID: &jobID, Type: models.TransactionUsage, Amount: 3, Status: models.TransactionCompleted},
		},
	}
	api := NewAPI(newFakeJobStore(), ledger, &fakeStarter{}, &fakeModerator{}, nil)

	rec := creditsRequest(api, user, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got creditsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AvailableCredits != 50 {
		t.Errorf("available = %d, want 50", got.AvailableCredits)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Amount != 3 {
		t.Errorf("transactions = %+v", got.Transactions)
	}
}

func TestCreditsNoAccount(t *testing.T) {
	api := NewAPI(newFakeJobStore(), &fakeLedgerReader{}, &fakeStarter{}, &fakeModerator{}, nil)

	rec := creditsRequest(api, &models.User{ID: uuid.New()}, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even without an account", rec.Code)
	}

	var got creditsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalCredits != 0 || got.AvailableCredits != 0 {
		t.Errorf("expected a zeroed balance, got %+v", got)
	}
	if got.Transactions == nil {
		t.Error("transactions should be an empty array, not null")
	}
}
