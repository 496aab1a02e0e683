// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted entities shared across stores and
// the generation orchestrator.
package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a content job.
type JobStatus string

const (
	JobStatusDraft      JobStatus = "draft"
	JobStatusGenerating JobStatus = "generating"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusPublished  JobStatus = "published"
)

// SectionDone is the current_section sentinel written when generation
// has finished the closing step.
const SectionDone = "Done"

// ContentJob is one blog-generation request. The input spec is written by
// the dashboard when the job is created; the output and progress fields are
// mutated exclusively by the orchestrator while the job is generating.
type ContentJob struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Input spec.
	MainKeyword       string   `json:"main_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	WordCountTarget   int      `json:"word_count_target"`
	Tone              string   `json:"tone"`
	TargetCountry     string   `json:"target_country"`
	H2List            []string `json:"h2_list"`
	H3List            []string `json:"h3_list"`
	Details           string   `json:"details"`
	InternalLinks     []string `json:"internal_links"`

	// Output.
	GeneratedTitle   string  `json:"generated_title"`
	Slug             string  `json:"slug"`
	MetaDescription  string  `json:"meta_description"`
	GeneratedContent string  `json:"generated_content"`
	FeaturedImageURL *string `json:"featured_image_url,omitempty"`

	// Progress projection, read by polling clients while generating.
	Status            JobStatus `json:"status"`
	TotalSections     int       `json:"total_sections"`
	SectionsCompleted int       `json:"sections_completed"`
	CurrentSection    string    `json:"current_section"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final state and a new
// generation run would have to start from scratch.
func (j *ContentJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusPublished
}
