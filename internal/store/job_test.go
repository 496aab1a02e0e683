// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestJobCreateAndFind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	jobs := NewJobStore(db)

	u := testUser(t, db, 0)
	j := testJob(t, db, u.ID)

	got, err := jobs.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatal("FindByID returned nil for existing job")
	}
	if got.MainKeyword != "standing desks" || got.Status != models.JobStatusDraft {
		t.Errorf("job = %q/%s, want standing desks/draft", got.MainKeyword, got.Status)
	}
	if len(got.H2List) != 2 {
		t.Errorf("H2List = %v, want 2 headings", got.H2List)
	}
	if got.SecondaryKeywords == nil {
		t.Error("SecondaryKeywords should round-trip as empty slice, not nil")
	}
}

func TestJobFindByIDForOwner(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	jobs := NewJobStore(db)

	owner := testUser(t, db, 0)
	other := testUser(t, db, 0)
	j := testJob(t, db, owner.ID)

	got, err := jobs.FindByIDForOwner(ctx, j.ID, other.ID)
	if err != nil {
		t.Fatalf("FindByIDForOwner: %v", err)
	}
	if got != nil {
		t.Fatal("job visible to non-owner")
	}

	got, err = jobs.FindByIDForOwner(ctx, j.ID, owner.ID)
	if err != nil {
		t.Fatalf("FindByIDForOwner: %v", err)
	}
	if got == nil {
		t.Fatal("job not visible to owner")
	}
}

func TestJobUpdateFieldsPartial(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	jobs := NewJobStore(db)

	u := testUser(t, db, 0)
	j := testJob(t, db, u.ID)

	err := jobs.UpdateFields(ctx, j.ID, map[string]any{
		"status":             string(models.JobStatusGenerating),
		"generated_content":  "# Title\n\nIntro.\n\n",
		"sections_completed": 2,
		"current_section":    "How to Choose One",
		"h2_list":            []string{"One", "Two", "Three"},
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := jobs.FindByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.JobStatusGenerating || got.SectionsCompleted != 2 {
		t.Errorf("progress = %s/%d, want generating/2", got.Status, got.SectionsCompleted)
	}
	if len(got.H2List) != 3 {
		t.Errorf("H2List = %v, want 3 headings", got.H2List)
	}
	// Untouched input fields must survive the partial update.
	if got.MainKeyword != "standing desks" || got.WordCountTarget != 1200 {
		t.Errorf("input spec mutated by partial update: %q/%d", got.MainKeyword, got.WordCountTarget)
	}
}

func TestJobUpdateFieldsRejectsUnknownColumn(t *testing.T) {
	db := testDB(t)
	jobs := NewJobStore(db)

	u := testUser(t, db, 0)
	j := testJob(t, db, u.ID)

	err := jobs.UpdateFields(context.Background(), j.ID, map[string]any{
		"main_keyword": "hijacked",
	})
	if err == nil {
		t.Fatal("UpdateFields accepted a non-whitelisted column")
	}
}

func TestJobUpdateFieldsMissingJob(t *testing.T) {
	db := testDB(t)
	jobs := NewJobStore(db)
	testUser(t, db, 0)

	err := jobs.UpdateFields(context.Background(), uuid.New(), map[string]any{
		"status": string(models.JobStatusFailed),
	})
	if err == nil {
		t.Fatal("UpdateFields on missing job should error")
	}
}

func TestJobResetForRetry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	jobs := NewJobStore(db)

	u := testUser(t, db, 0)
	j := testJob(t, db, u.ID)

	err := jobs.UpdateFields(ctx, j.ID, map[string]any{
		"status":             string(models.JobStatusFailed),
		"generated_title":    "Old Title",
		"generated_content":  "partial output",
		"sections_completed": 3,
		"total_sections":     5,
		"current_section":    "Why Standing Desks Matter",
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if err := jobs.ResetForRetry(ctx, j.ID); err != nil {
		t.Fatalf("ResetForRetry: %v", err)
	}

	got, _ := jobs.FindByID(ctx, j.ID)
	if got.Status != models.JobStatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
	if got.GeneratedTitle != "" || got.GeneratedContent != "" {
		t.Error("output fields not cleared by reset")
	}
	if got.SectionsCompleted != 0 || got.TotalSections != 0 || got.CurrentSection != "" {
		t.Error("progress fields not cleared by reset")
	}
	// Input spec survives — the retry re-runs the same request.
	if got.MainKeyword != "standing desks" {
		t.Errorf("input spec lost on reset: %q", got.MainKeyword)
	}
}
