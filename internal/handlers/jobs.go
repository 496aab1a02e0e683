// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/ai"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

type createJobRequest struct {
	MainKeyword       string   `json:"main_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	WordCountTarget   int      `json:"word_count_target"`
	Tone              string   `json:"tone"`
	TargetCountry     string   `json:"target_country"`
	H2List            []string `json:"h2_list"`
	H3List            []string `json:"h3_list"`
	Details           string   `json:"details"`
	InternalLinks     []string `json:"internal_links"`
}

// JobCreate registers a new draft job from its input spec.
// POST /api/jobs
func (a *API) JobCreate(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateJobInput(&req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = "informative"
	}

	job := &models.ContentJob{
		UserID:            user.ID,
		MainKeyword:       req.MainKeyword,
		SecondaryKeywords: req.SecondaryKeywords,
		WordCountTarget:   req.WordCountTarget,
		Tone:              tone,
		TargetCountry:     strings.TrimSpace(req.TargetCountry),
		H2List:            req.H2List,
		H3List:            req.H3List,
		Details:           strings.TrimSpace(req.Details),
		InternalLinks:     req.InternalLinks,
		Status:            models.JobStatusDraft,
	}
	if err := a.jobs.Create(r.Context(), job); err != nil {
		slog.Error("job create failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// JobList returns the user's jobs, newest first.
// GET /api/jobs
func (a *API) JobList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	jobs, err := a.jobs.ListByOwner(r.Context(), user.ID)
	if err != nil {
		slog.Error("job list failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "could not list jobs")
		return
	}
	if jobs == nil {
		jobs = []models.ContentJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// JobGet returns one job with its full input spec, output, and progress.
// GET /api/jobs/{id}
func (a *API) JobGet(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// JobGenerate starts background generation for a job and returns 202.
// Failed, completed, and stranded jobs are reset to draft first so they
// can be regenerated; published jobs are immutable.
// POST /api/jobs/{id}/generate
func (a *API) JobGenerate(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}

	switch job.Status {
	case models.JobStatusGenerating:
		// Conflict only while a run is actually in flight. A crash can
		// strand a job in generating; those fall through and get reset.
		if a.runner.Running(job.ID) {
			writeError(w, http.StatusConflict, "generation already in progress")
			return
		}
	case models.JobStatusPublished:
		writeError(w, http.StatusConflict, "published jobs cannot be regenerated")
		return
	}

	// Moderation covers everything the user controls that reaches a
	// provider prompt. A nil moderator approves everything.
	check, err := a.checkSafety(r.Context(), moderationInput(job))
	if err != nil {
		slog.Error("moderation check failed", "error", err, "job_id", job.ID)
		writeError(w, http.StatusBadGateway, "safety check unavailable, try again later")
		return
	}
	if !check.Safe {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "job input was flagged by content moderation",
			"categories": check.Categories,
		})
		return
	}

	if job.IsTerminal() || job.Status == models.JobStatusGenerating {
		if err := a.jobs.ResetForRetry(r.Context(), job.ID); err != nil {
			slog.Error("job reset failed", "error", err, "job_id", job.ID)
			writeError(w, http.StatusInternalServerError, "could not reset job for regeneration")
			return
		}
	}

	if !a.runner.Start(job.ID) {
		writeError(w, http.StatusConflict, "generation already in progress")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job_id": job.ID.String(),
	})
}

// JobProgress returns the live progress snapshot when Valkey has one,
// falling back to the job row's projection.
// GET /api/jobs/{id}/progress
func (a *API) JobProgress(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}

	if a.progress != nil {
		snap, err := a.progress.Latest(r.Context(), job.ID)
		if err != nil {
			slog.Warn("progress snapshot read failed", "error", err, "job_id", job.ID)
		} else if snap != nil {
			writeJSON(w, http.StatusOK, snap)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":             job.ID,
		"status":             job.Status,
		"total_sections":     job.TotalSections,
		"sections_completed": job.SectionsCompleted,
		"current_section":    job.CurrentSection,
		"updated_at":         job.UpdatedAt,
	})
}

// JobPreview renders the generated markdown as HTML.
// GET /api/jobs/{id}/preview
func (a *API) JobPreview(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}
	if job.GeneratedContent == "" {
		writeError(w, http.StatusNotFound, "job has no generated content yet")
		return
	}

	html, err := markdown.ToHTML(job.GeneratedContent)
	if err != nil {
		slog.Error("preview render failed", "error", err, "job_id", job.ID)
		writeError(w, http.StatusInternalServerError, "could not render preview")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// ownedJob loads the {id} job for the authenticated user, writing the
// error response itself when the id is bad or the job is not theirs.
func (a *API) ownedJob(w http.ResponseWriter, r *http.Request) (*models.ContentJob, bool) {
	user := middleware.UserFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return nil, false
	}

	job, err := a.jobs.FindByIDForOwner(r.Context(), id, user.ID)
	if err != nil {
		slog.Error("job lookup failed", "error", err, "job_id", id)
		writeError(w, http.StatusInternalServerError, "could not load job")
		return nil, false
	}
	if job == nil {
		// Missing and not-owned are indistinguishable on purpose.
		writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return job, true
}

func (a *API) checkSafety(ctx context.Context, text string) (*ai.ModerationResult, error) {
	if a.moderator == nil {
		return &ai.ModerationResult{Safe: true}, nil
	}
	return a.moderator.CheckSafety(ctx, text)
}

// moderationInput collects the free-text fields a user controls.
func moderationInput(job *models.ContentJob) string {
	parts := []string{job.MainKeyword}
	parts = append(parts, job.SecondaryKeywords...)
	if job.Details != "" {
		parts = append(parts, job.Details)
	}
	return strings.Join(parts, "\n")
}
