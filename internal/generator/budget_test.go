// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import "testing"

func TestPlanBudget(t *testing.T) {
	b := PlanBudget(1200, 4)

	if b.IntroWords != 144 {
		t.Errorf("IntroWords = %d, want 144", b.IntroWords)
	}
	if b.ConclusionWords != 96 {
		t.Errorf("ConclusionWords = %d, want 96", b.ConclusionWords)
	}
	if b.FAQWords != 144 {
		t.Errorf("FAQWords = %d, want 144", b.FAQWords)
	}
	// 1200 - 144 - 96 - 144 = 816, split over 4 sections.
	if b.BodySectionWords != 204 {
		t.Errorf("BodySectionWords = %d, want 204", b.BodySectionWords)
	}
}

func TestPlanBudgetDeterministic(t *testing.T) {
	if PlanBudget(2000, 6) != PlanBudget(2000, 6) {
		t.Error("same inputs produced different budgets")
	}
}

func TestPlanBudgetNoBodySections(t *testing.T) {
	b := PlanBudget(1000, 0)
	if b.BodySectionWords != 0 {
		t.Errorf("BodySectionWords = %d, want 0 with no sections", b.BodySectionWords)
	}
}

func TestBudgetTotalNearTarget(t *testing.T) {
	for _, words := range []int{1000, 1200, 1800, 2500, 4000} {
		for _, sections := range []int{3, 4, 6, 8} {
			b := PlanBudget(words, sections)
			total := b.Total(sections)
			diff := total - words
			if diff < 0 {
				diff = -diff
			}
			// Rounding may drift by a few words per part, never more.
			if diff > sections+3 {
				t.Errorf("PlanBudget(%d, %d).Total = %d, drift %d too large", words, sections, total, diff)
			}
		}
	}
}
