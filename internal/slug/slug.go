// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly slugs from generated article titles.
package slug

import (
	"regexp"
	"strings"
)

// maxLen bounds slug length; model-generated titles occasionally run long
// and the cut lands on a word boundary when possible.
const maxLen = 80

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space,
	// or hyphen after lowercasing.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators collapses runs of spaces and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a URL-friendly slug from a title.
// Example: "Standing Desks: A Complete Guide!" → "standing-desks-a-complete-guide"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxLen {
		result = result[:maxLen]
		if idx := strings.LastIndexByte(result, '-'); idx > 0 {
			result = result[:idx]
		}
	}
	return result
}
