// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator drives the multi-stage blog-generation pipeline:
// outline resolution, word budgeting, credit metering, sequential section
// generation, and progress projection.
package generator

import "math"

// Word-count shares per article part. The remainder after intro,
// conclusion, and FAQ is divided evenly across body sections.
const (
	introShare      = 0.12
	conclusionShare = 0.08
	faqShare        = 0.12
)

// Budget is the per-step word allocation for one job.
type Budget struct {
	IntroWords       int
	BodySectionWords int // per body section
	ConclusionWords  int
	FAQWords         int
}

// PlanBudget deterministically splits totalWords across the article parts.
// Pure function: same inputs always produce the same split.
func PlanBudget(totalWords, bodySections int) Budget {
	b := Budget{
		IntroWords:      round(float64(totalWords) * introShare),
		ConclusionWords: round(float64(totalWords) * conclusionShare),
		FAQWords:        round(float64(totalWords) * faqShare),
	}

	remaining := totalWords - b.IntroWords - b.ConclusionWords - b.FAQWords
	if bodySections > 0 {
		b.BodySectionWords = round(float64(remaining) / float64(bodySections))
	}
	return b
}

// Total returns the planned word count across all parts for n body sections.
func (b Budget) Total(bodySections int) int {
	return b.IntroWords + bodySections*b.BodySectionWords + b.ConclusionWords + b.FAQWords
}

func round(f float64) int {
	return int(math.Round(f))
}
