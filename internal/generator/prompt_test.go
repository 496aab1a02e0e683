// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"strings"
	"testing"

	"inkwell/internal/models"
)

func TestSystemPromptFragments(t *testing.T) {
	job := &models.ContentJob{
		MainKeyword:       "standing desks",
		SecondaryKeywords: []string{"ergonomic desk", "sit-stand desk"},
		TargetCountry:     "India",
		Details:           "call us at 555-0134",
		InternalLinks:     []string{"https://example.com/desks"},
	}

	got := SystemPrompt(job)

	for _, want := range []string{
		"INR",
		"555-0134",
		"ergonomic desk, sit-stand desk",
		"https://example.com/desks",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	// Fragments continue the base rule numbering without gaps.
	for _, n := range []string{"\n\n13. ", "\n\n14. ", "\n\n15. ", "\n\n16. "} {
		if !strings.Contains(got, n) {
			t.Errorf("system prompt missing rule number %q", strings.TrimSpace(n))
		}
	}
}

func TestSystemPromptSkipsEmptyFragments(t *testing.T) {
	job := &models.ContentJob{MainKeyword: "standing desks", TargetCountry: "Germany"}

	got := SystemPrompt(job)

	if strings.Contains(got, "SECONDARY KEYWORDS") || strings.Contains(got, "INTERNAL LINKS") || strings.Contains(got, "REQUIRED DETAILS") {
		t.Error("empty fragments should not appear")
	}
	if !strings.Contains(got, "\n\n13. ") {
		t.Error("currency rule should still be present as rule 13")
	}
	if strings.Contains(got, "\n\n14. ") {
		t.Error("numbering should stop after the only active fragment")
	}
}

func TestCurrencyRule(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"India", "INR"},
		{"india (tier-1 cities)", "INR"},
		{"Global", "USD"},
		{"United States", "USD"},
		{"United Kingdom", "USD"},
		{"Romania", "USD"},
	}

	for _, tt := range tests {
		if got := currencyRule(tt.country); !strings.Contains(got, tt.want) {
			t.Errorf("currencyRule(%q) = %q, want mention of %s", tt.country, got, tt.want)
		}
	}
}

func TestTitlePromptDemandsExactKeyword(t *testing.T) {
	got := titlePrompt("best budget laptops")
	if strings.Count(got, `"best budget laptops"`) < 2 {
		t.Error("title prompt should restate the exact keyword in the rules")
	}
	if !strings.Contains(got, "meta_description") {
		t.Error("title prompt must spell out the JSON contract")
	}
}

func TestClosingPromptStructure(t *testing.T) {
	got := closingPrompt("Best Budget Laptops in 2026", "best budget laptops", "conversational", 240)
	if !strings.Contains(got, "## Frequently Asked Questions") {
		t.Error("closing prompt must demand the FAQ heading")
	}
	if !strings.Contains(got, `Do NOT output "## Conclusion"`) {
		t.Error("closing prompt must forbid the conclusion heading")
	}
	if !strings.Contains(got, "around 240 words") {
		t.Error("closing prompt must carry the word budget")
	}
}

func TestSectionPromptCarriesBudgetAndTone(t *testing.T) {
	got := sectionPrompt("Hidden Costs", "standing desks", nil, "professional", 204)
	for _, want := range []string{`"Hidden Costs"`, "around 204 words", "professional"} {
		if !strings.Contains(got, want) {
			t.Errorf("section prompt missing %q", want)
		}
	}
	if strings.Contains(got, "Also reference:") {
		t.Error("no secondary keywords should mean no reference clause")
	}
}
