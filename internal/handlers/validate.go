// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for job input fields.
const (
	maxKeywordLen       = 200
	maxSecondaryCount   = 10
	maxWordTarget       = 8_000
	maxToneLen          = 50
	maxCountryLen       = 100
	maxHeadingLen       = 300
	maxHeadingCount     = 12
	maxDetailsLen       = 2_000
	maxInternalLinks    = 10
	maxInternalLinkLen  = 500
)

// validateJobInput checks a create-job request and returns the first error
// found, or "" when the input is acceptable.
func validateJobInput(req *createJobRequest) string {
	req.MainKeyword = strings.TrimSpace(req.MainKeyword)
	if req.MainKeyword == "" {
		return "main_keyword is required."
	}
	if utf8.RuneCountInString(req.MainKeyword) > maxKeywordLen {
		return "main_keyword is too long (max 200 characters)."
	}
	if len(req.SecondaryKeywords) > maxSecondaryCount {
		return "too many secondary_keywords (max 10)."
	}
	for _, kw := range req.SecondaryKeywords {
		if utf8.RuneCountInString(kw) > maxKeywordLen {
			return "a secondary keyword is too long (max 200 characters)."
		}
	}
	if req.WordCountTarget < 0 || req.WordCountTarget > maxWordTarget {
		return "word_count_target must be between 0 and 8,000."
	}
	if utf8.RuneCountInString(req.Tone) > maxToneLen {
		return "tone is too long (max 50 characters)."
	}
	if utf8.RuneCountInString(req.TargetCountry) > maxCountryLen {
		return "target_country is too long (max 100 characters)."
	}
	if len(req.H2List) > maxHeadingCount {
		return "too many h2_list entries (max 12)."
	}
	for _, h := range append(append([]string{}, req.H2List...), req.H3List...) {
		if utf8.RuneCountInString(h) > maxHeadingLen {
			return "a heading is too long (max 300 characters)."
		}
	}
	if utf8.RuneCountInString(req.Details) > maxDetailsLen {
		return "details is too long (max 2,000 characters)."
	}
	if len(req.InternalLinks) > maxInternalLinks {
		return "too many internal_links (max 10)."
	}
	for _, link := range req.InternalLinks {
		if utf8.RuneCountInString(link) > maxInternalLinkLen {
			return "an internal link is too long (max 500 characters)."
		}
	}
	return ""
}
