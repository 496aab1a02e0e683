// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"regexp"
	"strings"
)

// Outline sizing: one body heading per ~200 words of body content, after
// subtracting the fixed intro/closing overhead, bounded to a sane range so
// neither a tiny nor a huge word target produces a degenerate outline.
const (
	headingOverheadWords = 320 // intro ~120 + conclusion/FAQ ~200
	wordsPerHeading      = 200
	minHeadings          = 3
	maxHeadings          = 12
)

// placeholderHeading matches unresolved template stubs the dashboard's
// outline builder leaves behind ("Top Pick #1", "[Item 2]", "Step 3",
// "1. [thing]"). A list containing any of these must be regenerated.
var placeholderHeading = regexp.MustCompile(`Top Pick #|\[Item|^Step \d|^\d+\. \[`)

// Heading lines arrive with markdown hashes or bullets, often followed by
// list numbering ("## 3. Why It Works"). The strips are applied in order
// because ^ only matches once per string.
var (
	headingMarker    = regexp.MustCompile(`^#+\s*|^[-*]\s+`)
	headingNumbering = regexp.MustCompile(`^\d+\.?\s*`)
)

// NeedsRegeneration reports whether the requested headings are unusable:
// either none were given or at least one is a template placeholder.
func NeedsRegeneration(headings []string) bool {
	if len(headings) == 0 {
		return true
	}
	for _, h := range headings {
		if placeholderHeading.MatchString(h) {
			return true
		}
	}
	return false
}

// TargetHeadingCount computes how many body headings are needed to
// naturally reach the target word count.
func TargetHeadingCount(wordCount int) int {
	n := round(float64(wordCount-headingOverheadWords) / wordsPerHeading)
	if n < minHeadings {
		return minHeadings
	}
	if n > maxHeadings {
		return maxHeadings
	}
	return n
}

// ParseHeadings splits a one-heading-per-line provider response into a
// clean list, dropping markdown prefixes, numbering, and blank lines.
func ParseHeadings(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		h := headingMarker.ReplaceAllString(strings.TrimSpace(line), "")
		h = strings.TrimSpace(headingNumbering.ReplaceAllString(h, ""))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// AcceptHeadings decides whether a generated list is good enough for the
// requested target. A shortfall of up to two headings is tolerated (the
// job just runs a little short); a bigger shortfall rejects the list so
// the caller keeps the original. Accepted lists are capped at target to
// bound total generation time and cost.
func AcceptHeadings(generated []string, target int) ([]string, bool) {
	floor := target - 2
	if floor < 2 {
		floor = 2
	}
	if len(generated) < floor {
		return nil, false
	}
	if len(generated) > target {
		generated = generated[:target]
	}
	return generated, true
}
