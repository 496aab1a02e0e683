// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all inkwell entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// JobStore handles all content-job database operations.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a new JobStore with the given database connection.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

const jobColumns = `
	id, user_id,
	main_keyword, secondary_keywords, word_count_target, tone, target_country,
	h2_list, h3_list, details, internal_links,
	generated_title, slug, meta_description, generated_content, featured_image_url,
	status, total_sections, sections_completed, current_section,
	created_at, updated_at`

// Create inserts a new draft job from its input spec and fills in the
// generated identity and timestamps.
func (s *JobStore) Create(ctx context.Context, j *models.ContentJob) error {
	secondary, err := json.Marshal(orEmpty(j.SecondaryKeywords))
	if err != nil {
		return fmt.Errorf("create job marshal: %w", err)
	}
	h2s, _ := json.Marshal(orEmpty(j.H2List))
	h3s, _ := json.Marshal(orEmpty(j.H3List))
	links, _ := json.Marshal(orEmpty(j.InternalLinks))

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO content_jobs (
			user_id, main_keyword, secondary_keywords, word_count_target,
			tone, target_country, h2_list, h3_list, details, internal_links, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'draft')
		RETURNING id, status, created_at, updated_at
	`,
		j.UserID, j.MainKeyword, secondary, j.WordCountTarget,
		j.Tone, j.TargetCountry, h2s, h3s, j.Details, links,
	).Scan(&j.ID, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// FindByID retrieves a job by its UUID. Returns nil if not found.
func (s *JobStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ContentJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM content_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// FindByIDForOwner retrieves a job only if it belongs to the given user.
// Returns nil if the job does not exist or is owned by someone else, so
// callers cannot distinguish the two (no existence leak).
func (s *JobStore) FindByIDForOwner(ctx context.Context, id, userID uuid.UUID) (*models.ContentJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM content_jobs WHERE id = $1 AND user_id = $2`, id, userID)
	return scanJob(row)
}

// ListByOwner returns the user's jobs, newest first.
func (s *JobStore) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.ContentJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM content_jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.ContentJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// updatableJobColumns whitelists the columns UpdateFields may touch. The
// orchestrator only ever writes output and progress fields plus the
// resolved outline; input-spec columns stay owned by the creating client.
var updatableJobColumns = map[string]bool{
	"generated_title":    true,
	"slug":               true,
	"meta_description":   true,
	"generated_content":  true,
	"featured_image_url": true,
	"status":             true,
	"total_sections":     true,
	"sections_completed": true,
	"current_section":    true,
	"h2_list":            true,
}

// UpdateFields performs a partial update: only the given columns change,
// everything else is untouched. Column names outside the whitelist are
// rejected so a bad caller cannot rewrite the input spec. String-slice
// values are stored as JSONB.
func (s *JobStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	// Deterministic column order keeps queries stable for logs and tests.
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !updatableJobColumns[col] {
			return fmt.Errorf("update job: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var set strings.Builder
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		if i > 0 {
			set.WriteString(", ")
		}
		fmt.Fprintf(&set, "%s = $%d", col, i+1)

		v := fields[col]
		if ss, ok := v.([]string); ok {
			b, err := json.Marshal(orEmpty(ss))
			if err != nil {
				return fmt.Errorf("update job marshal %s: %w", col, err)
			}
			v = b
		}
		args = append(args, v)
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE content_jobs SET %s, updated_at = now() WHERE id = $%d",
		set.String(), len(args),
	)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update job: job %s not found", id)
	}
	return nil
}

// ResetForRetry clears a job's output and progress so a fresh generation
// run can start over the same id. The input spec is preserved; a retry is
// a new run, never a resume.
func (s *JobStore) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE content_jobs SET
			generated_title = '', slug = '', meta_description = '',
			generated_content = '', featured_image_url = NULL,
			status = 'draft', total_sections = 0, sections_completed = 0,
			current_section = '', updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("reset job: %w", err)
	}
	return nil
}

// scanJob reads one job from a row scanner shared by QueryRow and Query.
func scanJob(row interface{ Scan(...any) error }) (*models.ContentJob, error) {
	j := &models.ContentJob{}
	var secondary, h2s, h3s, links []byte

	err := row.Scan(
		&j.ID, &j.UserID,
		&j.MainKeyword, &secondary, &j.WordCountTarget, &j.Tone, &j.TargetCountry,
		&h2s, &h3s, &j.Details, &links,
		&j.GeneratedTitle, &j.Slug, &j.MetaDescription, &j.GeneratedContent, &j.FeaturedImageURL,
		&j.Status, &j.TotalSections, &j.SectionsCompleted, &j.CurrentSection,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{secondary, &j.SecondaryKeywords},
		{h2s, &j.H2List},
		{h3s, &j.H3List},
		{links, &j.InternalLinks},
	} {
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("scan job lists: %w", err)
		}
	}
	return j, nil
}

// orEmpty normalizes a nil slice to an empty one so JSONB columns never
// store null.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
