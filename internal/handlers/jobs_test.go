// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/ai"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/progress"
)

type fakeJobStore struct {
	jobs      map[uuid.UUID]*models.ContentJob
	resets    []uuid.UUID
	createErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*models.ContentJob)}
}

func (f *fakeJobStore) Create(_ context.Context, j *models.ContentJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	j.ID = uuid.New()
	f.jobs[j.ID] = j
	return nil
}

func (f *fakeJobStore) FindByIDForOwner(_ context.Context, id, userID uuid.UUID) (*models.ContentJob, error) {
	j, ok := f.jobs[id]
	if !ok || j.UserID != userID {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]models.ContentJob, error) {
	var out []models.ContentJob
	for _, j := range f.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobStore) ResetForRetry(_ context.Context, id uuid.UUID) error {
	f.resets = append(f.resets, id)
	f.jobs[id].Status = models.JobStatusDraft
	return nil
}

type fakeLedgerReader struct {
	account *models.CreditAccount
	txs     []models.CreditTransaction
}

func (f *fakeLedgerReader) Account(_ context.Context, _ uuid.UUID) (*models.CreditAccount, error) {
	return f.account, nil
}

func (f *fakeLedgerReader) Transactions(_ context.Context, _ uuid.UUID, _ int) ([]models.CreditTransaction, error) {
	return f.txs, nil
}

type fakeStarter struct {
	started []uuid.UUID
	running map[uuid.UUID]bool
	refuse  bool
}

func (f *fakeStarter) Start(jobID uuid.UUID) bool {
	if f.refuse {
		return false
	}
	f.started = append(f.started, jobID)
	return true
}

func (f *fakeStarter) Running(jobID uuid.UUID) bool { return f.running[jobID] }

type fakeModerator struct {
	result *ai.ModerationResult
	err    error
	seen   string
}

func (f *fakeModerator) CheckSafety(_ context.Context, text string) (*ai.ModerationResult, error) {
	f.seen = text
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &ai.ModerationResult{Safe: true}, nil
}

type fakeProgress struct {
	snap *progress.Snapshot
}

func (f *fakeProgress) Latest(_ context.Context, _ uuid.UUID) (*progress.Snapshot, error) {
	return f.snap, nil
}

type apiFixture struct {
	api    *API
	jobs   *fakeJobStore
	runner *fakeStarter
	mod    *fakeModerator
	prog   *fakeProgress
	user   *models.User
}

func newFixture() *apiFixture {
	jobs := newFakeJobStore()
	runner := &fakeStarter{}
	mod := &fakeModerator{}
	prog := &fakeProgress{}
	return &apiFixture{
		api:    NewAPI(jobs, &fakeLedgerReader{}, runner, mod, prog),
		jobs:   jobs,
		runner: runner,
		mod:    mod,
		prog:   prog,
		user:   &models.User{ID: uuid.New(), Email: "demo@inkwell.local"},
	}
}

// do routes the request through chi so URL params resolve, with the
// fixture user injected the way Authenticate would.
func (fx *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/api/jobs", fx.api.JobCreate)
	r.Get("/api/jobs", fx.api.JobList)
	r.Get("/api/jobs/{id}", fx.api.JobGet)
	r.Post("/api/jobs/{id}/generate", fx.api.JobGenerate)
	r.Get("/api/jobs/{id}/progress", fx.api.JobProgress)
	r.Get("/api/jobs/{id}/preview", fx.api.JobPreview)

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	ctx := context.WithValue(req.Context(), middleware.UserKey, fx.user)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (fx *apiFixture) seedJob(status models.JobStatus) *models.ContentJob {
	job := &models.ContentJob{
		ID:          uuid.New(),
		UserID:      fx.user.ID,
		MainKeyword: "standing desks",
		Status:      status,
	}
	fx.jobs.jobs[job.ID] = job
	return job
}

func TestJobCreate(t *testing.T) {
	fx := newFixture()

	rec := fx.do(http.MethodPost, "/api/jobs", createJobRequest{
		MainKeyword:     "standing desks",
		WordCountTarget: 1200,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got models.ContentJob
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.JobStatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
	if got.Tone != "informative" {
		t.Errorf("tone = %q, want the default", got.Tone)
	}
	if got.UserID != fx.user.ID {
		t.Errorf("user_id = %s, want the authenticated user", got.UserID)
	}
}

func TestJobCreateValidation(t *testing.T) {
	fx := newFixture()

	tests := []struct {
		name string
		req  createJobRequest
	}{
		{"missing keyword", createJobRequest{WordCountTarget: 1200}},
		{"blank keyword", createJobRequest{MainKeyword: "   "}},
		{"negative word target", createJobRequest{MainKeyword: "x", WordCountTarget: -5}},
		{"absurd word target", createJobRequest{MainKeyword: "x", WordCountTarget: 50_000}},
		{"too many headings", createJobRequest{MainKeyword: "x", H2List: make([]string, 13)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fx.do(http.MethodPost, "/api/jobs", tt.req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
		})
	}
}

func TestJobGetOwnership(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusDraft)

	if rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String(), nil); rec.Code != http.StatusOK {
		t.Errorf("own job: status = %d, want 200", rec.Code)
	}

	// Same job, different authenticated user: indistinguishable from missing.
	fx.user = &models.User{ID: uuid.New()}
	if rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String(), nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign job: status = %d, want 404", rec.Code)
	}

	if rec := fx.do(http.MethodGet, "/api/jobs/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestJobGenerateStartsRun(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusDraft)

	rec := fx.do(http.MethodPost, "/api/jobs/"+job.ID.String()+"/generate", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(fx.runner.started) != 1 || fx.runner.started[0] != job.ID {
		t.Errorf("started = %v, want [%s]", fx.runner.started, job.ID)
	}
	if !strings.Contains(fx.mod.seen, "standing desks") {
		t.Error("moderation should have screened the keyword")
	}
	if len(fx.jobs.resets) != 0 {
		t.Error("a draft job must not be reset")
	}
}

func TestJobGenerateResetsTerminalJob(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusFailed)

	rec := fx.do(http.MethodPost, "/api/jobs/"+job.ID.String()+"/generate", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(fx.jobs.resets) != 1 {
		t.Errorf("resets = %v, want exactly one", fx.jobs.resets)
	}
}

func TestJobGenerateRecoversStrandedJob(t *testing.T) {
	fx := newFixture()
	// Stored as generating but no run in flight, as after a crash.
	job := fx.seedJob(models.JobStatusGenerating)

	rec := fx.do(http.MethodPost, "/api/jobs/"+job.ID.String()+"/generate", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(fx.jobs.resets) != 1 {
		t.Errorf("resets = %v, want the stranded job reset", fx.jobs.resets)
	}
	if len(fx.runner.started) != 1 || fx.runner.started[0] != job.ID {
		t.Errorf("started = %v, want [%s]", fx.runner.started, job.ID)
	}
}

func TestJobGenerateConflicts(t *testing.T) {
	fx := newFixture()

	generating := fx.seedJob(models.JobStatusGenerating)
	fx.runner.running = map[uuid.UUID]bool{generating.ID: true}
	if rec := fx.do(http.MethodPost, "/api/jobs/"+generating.ID.String()+"/generate", nil); rec.Code != http.StatusConflict {
		t.Errorf("generating job: status = %d, want 409", rec.Code)
	}

	published := fx.seedJob(models.JobStatusPublished)
	if rec := fx.do(http.MethodPost, "/api/jobs/"+published.ID.String()+"/generate", nil); rec.Code != http.StatusConflict {
		t.Errorf("published job: status = %d, want 409", rec.Code)
	}

	fx.runner.refuse = true
	draft := fx.seedJob(models.JobStatusDraft)
	if rec := fx.do(http.MethodPost, "/api/jobs/"+draft.ID.String()+"/generate", nil); rec.Code != http.StatusConflict {
		t.Errorf("runner refusal: status = %d, want 409", rec.Code)
	}
}

func TestJobGenerateModerationBlocks(t *testing.T) {
	fx := newFixture()
	fx.mod.result = &ai.ModerationResult{Safe: false, Categories: []string{"violence"}}
	job := fx.seedJob(models.JobStatusDraft)

	rec := fx.do(http.MethodPost, "/api/jobs/"+job.ID.String()+"/generate", nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "violence") {
		t.Error("response should name the flagged categories")
	}
	if len(fx.runner.started) != 0 {
		t.Error("flagged jobs must not start")
	}
}

func TestJobProgressPrefersSnapshot(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusGenerating)
	fx.prog.snap = &progress.Snapshot{
		JobID:             job.ID,
		Status:            models.JobStatusGenerating,
		SectionsCompleted: 4,
		TotalSections:     7,
		CurrentSection:    "Hidden Costs",
	}

	rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String()+"/progress", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Hidden Costs") {
		t.Errorf("expected snapshot data, got %s", rec.Body.String())
	}
}

func TestJobProgressFallsBackToJobRow(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusCompleted)
	job.SectionsCompleted = 7
	job.TotalSections = 7
	job.CurrentSection = models.SectionDone

	rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String()+"/progress", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"current_section":"Done"`) {
		t.Errorf("expected job-row fallback, got %s", rec.Body.String())
	}
}

func TestJobPreview(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusCompleted)
	job.GeneratedContent = "# Standing Desks\n\nSome **bold** copy."

	rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String()+"/preview", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("rendered HTML looks wrong:\n%s", body)
	}
}

func TestJobPreviewEmpty(t *testing.T) {
	fx := newFixture()
	job := fx.seedJob(models.JobStatusDraft)

	if rec := fx.do(http.MethodGet, "/api/jobs/"+job.ID.String()+"/preview", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for empty content", rec.Code)
	}
}
