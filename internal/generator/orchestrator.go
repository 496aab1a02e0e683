// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator turns a content job's input spec into a finished
// markdown article, one model call per section, while keeping the job row
// and the credit ledger consistent at every step.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// minWordTarget is substituted when a job asks for fewer words than a
// coherent article can carry. The clamp is local to the run; the job's
// stored word_count_target is never rewritten.
const (
	wordFloor     = 500
	clampedTarget = 1000

	outlineAttempts = 2
)

// jsonObject extracts the first {...} block from a model response that may
// wrap its JSON in prose or code fences.
var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// JobStore is the slice of the job store the orchestrator writes through.
type JobStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ContentJob, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

// Ledger covers the three-phase credit flow: lock before any model call,
// finalize on success, refund on failure.
type Ledger interface {
	Lock(ctx context.Context, userID, jobID uuid.UUID, amount int) error
	Finalize(ctx context.Context, userID, jobID uuid.UUID, actualAmount int) error
	Refund(ctx context.Context, userID, jobID uuid.UUID) error
}

// TextGateway is the model-facing dependency. *ai.Gateway satisfies it.
type TextGateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Notifier receives a progress snapshot after every persisted step.
// A nil Notifier disables notifications.
type Notifier interface {
	JobProgress(ctx context.Context, job *models.ContentJob)
}

// Orchestrator runs content jobs end to end.
type Orchestrator struct {
	jobs     JobStore
	ledger   Ledger
	gateway  TextGateway
	notifier Notifier
	logger   *slog.Logger
}

func NewOrchestrator(jobs JobStore, ledger Ledger, gateway TextGateway, notifier Notifier, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{jobs: jobs, ledger: ledger, gateway: gateway, notifier: notifier, logger: logger}
}

// Run generates the article for one job. Credits are locked up front and
// finalized only after the last section lands; any failure after the lock
// refunds it and records a diagnostic in the job's content so the user
// sees where generation stopped.
func (o *Orchestrator) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := o.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.Status != models.JobStatusDraft {
		return fmt.Errorf("job %s is %s, not draft", jobID, job.Status)
	}

	log := o.logger.With("job_id", jobID, "keyword", job.MainKeyword)

	words := job.WordCountTarget
	if words < wordFloor {
		log.Info("word target below floor, clamping for this run", "requested", words, "using", clampedTarget)
		words = clampedTarget
	}

	estimate := EstimateCredits(words, len(job.H3List) > 0, true)
	if err := o.ledger.Lock(ctx, job.UserID, job.ID, estimate); err != nil {
		if errors.Is(err, store.ErrInsufficientCredits) || errors.Is(err, store.ErrNoAccount) {
			// Nothing was locked, so there is nothing to refund.
			job.CurrentSection = "Credit check"
			o.markFailed(ctx, job, "", fmt.Errorf("credit lock: %w", err), false)
			return err
		}
		return fmt.Errorf("credit lock: %w", err)
	}

	run := &runState{job: job, words: words, estimate: estimate, log: log}
	if err := o.generate(ctx, run); err != nil {
		o.markFailed(ctx, job, run.content.String(), err, true)
		return err
	}

	if err := o.ledger.Finalize(ctx, job.UserID, job.ID, estimate); err != nil {
		// The article is done and persisted. A finalize failure leaves the
		// lock in place for manual reconciliation rather than failing the job.
		log.Error("credit finalize failed", "error", err)
		return fmt.Errorf("credit finalize: %w", err)
	}

	log.Info("generation complete", "sections", job.TotalSections, "credits", estimate)
	return nil
}

type runState struct {
	job      *models.ContentJob
	words    int
	estimate int
	content  strings.Builder
	log      *slog.Logger
}

func (o *Orchestrator) generate(ctx context.Context, run *runState) error {
	job := run.job

	job.Status = models.JobStatusGenerating
	job.CurrentSection = "Planning outline"
	if err := o.step(ctx, job, map[string]any{
		"status":          string(models.JobStatusGenerating),
		"current_section": "Planning outline",
	}); err != nil {
		return err
	}

	headings, err := o.resolveOutline(ctx, run)
	if err != nil {
		return fmt.Errorf("outline: %w", err)
	}

	budget := PlanBudget(run.words, len(headings))
	system := SystemPrompt(job)

	// Title, intro and closing plus one step per body heading.
	job.TotalSections = 3 + len(headings)
	job.SectionsCompleted = 0
	job.CurrentSection = "Generating title"
	if err := o.step(ctx, job, map[string]any{
		"total_sections":     job.TotalSections,
		"sections_completed": 0,
		"current_section":    "Generating title",
	}); err != nil {
		return err
	}

	title, meta, err := o.generateTitle(ctx, job)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	job.GeneratedTitle = title
	job.MetaDescription = meta
	job.Slug = slug.Generate(title)
	job.SectionsCompleted = 1
	job.CurrentSection = "Writing introduction"
	run.content.WriteString("# " + title)
	if err := o.step(ctx, job, map[string]any{
		"generated_title":    title,
		"slug":               job.Slug,
		"meta_description":   meta,
		"sections_completed": 1,
		"current_section":    "Writing introduction",
	}); err != nil {
		return err
	}

	intro, err := o.gateway.Complete(ctx, system,
		introPrompt(title, job.MainKeyword, job.SecondaryKeywords, job.Tone, budget.IntroWords),
		maxTokensFor(budget.IntroWords))
	if err != nil {
		return fmt.Errorf("introduction: %w", err)
	}
	run.content.WriteString("\n\n" + stripTitleEcho(intro, title))
	job.SectionsCompleted = 2
	if err := o.persistProgress(ctx, run, 2, firstOr(headings, "Writing conclusion")); err != nil {
		return err
	}

	for i, heading := range headings {
		text, err := o.gateway.Complete(ctx, system,
			sectionPrompt(heading, job.MainKeyword, job.SecondaryKeywords, job.Tone, budget.BodySectionWords),
			maxTokensFor(budget.BodySectionWords))
		if err != nil {
			return fmt.Errorf("section %q: %w", heading, err)
		}
		run.content.WriteString("\n\n## " + heading + "\n\n" + strings.TrimSpace(text))
		job.SectionsCompleted = 3 + i
		next := "Writing conclusion"
		if i+1 < len(headings) {
			next = headings[i+1]
		}
		if err := o.persistProgress(ctx, run, job.SectionsCompleted, next); err != nil {
			return err
		}
	}

	closingWords := budget.ConclusionWords + budget.FAQWords
	closing, err := o.gateway.Complete(ctx, system,
		closingPrompt(title, job.MainKeyword, job.Tone, closingWords),
		maxTokensFor(closingWords))
	if err != nil {
		return fmt.Errorf("conclusion: %w", err)
	}
	run.content.WriteString("\n\n## Conclusion\n\n" + stripConclusionHeading(closing))

	job.GeneratedContent = run.content.String()
	job.Status = models.JobStatusCompleted
	job.SectionsCompleted = job.TotalSections
	job.CurrentSection = models.SectionDone
	return o.step(ctx, job, map[string]any{
		"generated_content":  job.GeneratedContent,
		"status":             string(models.JobStatusCompleted),
		"sections_completed": job.SectionsCompleted,
		"current_section":    models.SectionDone,
	})
}

// resolveOutline returns the H2 headings to write, capped at the count the
// word target supports. User-supplied headings win unless they look like
// placeholders, in which case a fresh outline is generated and persisted so
// retries reuse it.
func (o *Orchestrator) resolveOutline(ctx context.Context, run *runState) ([]string, error) {
	job := run.job
	target := TargetHeadingCount(run.words)
	if len(job.H2List) > 0 && !NeedsRegeneration(job.H2List) {
		// User lists obey the same cap as generated ones; section count,
		// not the request, bounds generation cost.
		if len(job.H2List) > target {
			return job.H2List[:target], nil
		}
		return job.H2List, nil
	}

	var headings []string
	for attempt := 0; attempt < outlineAttempts; attempt++ {
		raw, err := o.gateway.Complete(ctx, outlineSystemPrompt,
			outlinePrompt(job.MainKeyword, target), maxTokensFor(target*20))
		if err != nil {
			return nil, err
		}
		accepted, ok := AcceptHeadings(ParseHeadings(raw), target)
		headings = accepted
		if ok {
			break
		}
		run.log.Warn("outline attempt fell short", "attempt", attempt+1, "got", len(accepted), "target", target)
	}
	if len(headings) == 0 {
		return nil, fmt.Errorf("no usable headings after %d attempts", outlineAttempts)
	}

	job.H2List = headings
	if err := o.step(ctx, job, map[string]any{"h2_list": headings}); err != nil {
		return nil, err
	}
	return headings, nil
}

func (o *Orchestrator) generateTitle(ctx context.Context, job *models.ContentJob) (title, meta string, err error) {
	raw, err := o.gateway.Complete(ctx, titleSystemPrompt, titlePrompt(job.MainKeyword), 500)
	if err != nil {
		return "", "", err
	}
	title, meta = parseTitleMeta(raw, job.MainKeyword)
	return title, meta, nil
}

// parseTitleMeta pulls the title/meta JSON out of a model response,
// tolerating surrounding prose. Falls back to a deterministic title so a
// sloppy model response never fails the whole run.
func parseTitleMeta(raw, keyword string) (title, meta string) {
	var parsed struct {
		Title           string `json:"title"`
		MetaDescription string `json:"meta_description"`
	}
	if m := jsonObject.FindString(raw); m != "" {
		if err := json.Unmarshal([]byte(m), &parsed); err == nil {
			title = strings.TrimSpace(parsed.Title)
			meta = strings.TrimSpace(parsed.MetaDescription)
		}
	}
	if title == "" {
		title = keyword + ": A Complete Guide"
	}
	if meta == "" {
		meta = "Everything you need to know about " + keyword + ", with practical advice and real data."
	}
	return title, meta
}

// stripTitleEcho removes the article title when a model opens the
// introduction by repeating it, as a heading or a bare first line.
func stripTitleEcho(text, title string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"# " + title, "## " + title, "**" + title + "**", title} {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}

// stripConclusionHeading drops a leading "## Conclusion" the model emitted
// despite instructions, since the orchestrator writes that heading itself.
func stripConclusionHeading(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, prefix := range []string{"## conclusion", "# conclusion", "conclusion\n"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}

func (o *Orchestrator) persistProgress(ctx context.Context, run *runState, completed int, current string) error {
	run.job.CurrentSection = current
	return o.step(ctx, run.job, map[string]any{
		"generated_content":  run.content.String(),
		"sections_completed": completed,
		"current_section":    current,
	})
}

func (o *Orchestrator) step(ctx context.Context, job *models.ContentJob, fields map[string]any) error {
	if err := o.jobs.UpdateFields(ctx, job.ID, fields); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	if o.notifier != nil {
		o.notifier.JobProgress(ctx, job)
	}
	return nil
}

// markFailed records the failure on the job itself and, if credits were
// locked, releases them. It runs on a detached context so a cancelled
// request cannot strand the job mid-generating with credits held.
func (o *Orchestrator) markFailed(ctx context.Context, job *models.ContentJob, partial string, cause error, refund bool) {
	dctx := context.WithoutCancel(ctx)

	// Refund before writing the diagnostic so it can tell the truth
	// about whether the hold was released. When nothing was locked there
	// is nothing to release.
	released := !refund
	if refund {
		if err := o.ledger.Refund(dctx, job.UserID, job.ID); err != nil {
			o.logger.Error("credit refund failed", "job_id", job.ID, "error", err)
		} else {
			released = true
		}
	}

	var b strings.Builder
	if partial != "" {
		b.WriteString(partial)
		b.WriteString("\n\n")
	}
	b.WriteString("### Generation Error\n\n")
	fmt.Fprintf(&b, "Generation stopped at %q: %v\n\n", job.CurrentSection, cause)
	if released {
		b.WriteString("No credits were charged for this attempt. Fix the issue and retry the job.")
	} else {
		b.WriteString("The credit hold for this attempt could not be released yet. Retry the job, or contact support if the hold persists.")
	}

	job.Status = models.JobStatusFailed
	if err := o.jobs.UpdateFields(dctx, job.ID, map[string]any{
		"status":            string(models.JobStatusFailed),
		"generated_content": b.String(),
	}); err != nil {
		o.logger.Error("failed to persist job failure", "job_id", job.ID, "error", err)
	}
	if o.notifier != nil {
		o.notifier.JobProgress(dctx, job)
	}
	o.logger.Warn("generation failed", "job_id", job.ID, "error", cause)
}

// maxTokensFor converts a word budget into a generous token ceiling.
func maxTokensFor(words int) int {
	return words*3/2 + 100
}

func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}
