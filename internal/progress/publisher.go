// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/models"
)

const (
	// snapshotKeyPrefix is the Valkey key holding the latest snapshot per
	// job, for clients that connect mid-run and need the current state
	// before the next publish arrives.
	snapshotKeyPrefix = "job:snapshot:"

	// channelPrefix is the pub/sub channel per job.
	channelPrefix = "job:"

	// DefaultSnapshotTTL bounds how long a stale snapshot lingers after a
	// job finishes or the worker dies.
	DefaultSnapshotTTL = 30 * time.Minute
)

// Snapshot is the wire format published on each progress step.
type Snapshot struct {
	JobID             uuid.UUID        `json:"job_id"`
	Status            models.JobStatus `json:"status"`
	TotalSections     int              `json:"total_sections"`
	SectionsCompleted int              `json:"sections_completed"`
	CurrentSection    string           `json:"current_section"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Publisher emits job progress to Valkey. Progress is advisory: publish
// errors are logged and swallowed so a flaky Valkey never fails a
// generation run. A nil Publisher is a no-op, which is how deployments
// without Valkey run.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPublisher(client *redis.Client, ttl time.Duration) *Publisher {
	if client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Publisher{client: client, ttl: ttl}
}

// JobProgress publishes the job's current progress projection. Satisfies
// the orchestrator's Notifier.
func (p *Publisher) JobProgress(ctx context.Context, job *models.ContentJob) {
	if p == nil {
		return
	}

	snap := Snapshot{
		JobID:             job.ID,
		Status:            job.Status,
		TotalSections:     job.TotalSections,
		SectionsCompleted: job.SectionsCompleted,
		CurrentSection:    job.CurrentSection,
		UpdatedAt:         time.Now().UTC(),
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("progress snapshot marshal error", "job_id", job.ID, "error", err)
		return
	}

	if err := p.client.Set(ctx, snapshotKeyPrefix+job.ID.String(), payload, p.ttl).Err(); err != nil {
		slog.Warn("progress snapshot set error", "job_id", job.ID, "error", err)
	}
	if err := p.client.Publish(ctx, ChannelFor(job.ID), payload).Err(); err != nil {
		slog.Warn("progress publish error", "job_id", job.ID, "error", err)
	}
}

// Latest returns the most recent snapshot for a job, or nil when none is
// stored. Used by clients that subscribe mid-run.
func (p *Publisher) Latest(ctx context.Context, jobID uuid.UUID) (*Snapshot, error) {
	if p == nil {
		return nil, nil
	}

	raw, err := p.client.Get(ctx, snapshotKeyPrefix+jobID.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ChannelFor returns the pub/sub channel name for a job.
func ChannelFor(jobID uuid.UUID) string {
	return channelPrefix + jobID.String()
}
