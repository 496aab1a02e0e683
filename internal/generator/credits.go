// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

// EstimateCredits prices a generation job from its target word count and
// feature flags. The same function runs at lock time and at finalize time,
// so the charge always equals the reservation: pricing is predictable for
// the user rather than usage-metered. If per-token billing ever lands,
// finalize is where the actual cost would diverge from this estimate.
func EstimateCredits(wordCount int, hasH3, hasFAQ bool) int {
	credits := 1
	if wordCount >= 800 {
		credits = 2
	}
	if wordCount >= 1500 {
		credits = 3
	}
	if wordCount >= 2500 {
		credits = 4
	}
	if hasH3 {
		credits++
	}
	if hasFAQ {
		credits++
	}
	return credits
}
