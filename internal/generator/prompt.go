// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"fmt"
	"strings"

	"inkwell/internal/models"
)

// baseStylePrompt is the shared writing-style contract for every prose
// step. Per-job policy fragments are appended as additional numbered rules
// by SystemPrompt.
const baseStylePrompt = `Act as a senior SEO content strategist with 20+ years of hands-on experience in Google algorithms, EEAT, topical authority, NLP, and conversion-focused content. You write fully SEO-optimized, high-ranking, human-friendly blog posts.

STRICT RULES:

1. PARAGRAPHS: MAXIMUM 2 sentences per paragraph. NO EXCEPTIONS.

2. SENTENCES: 10-15 words each. Short, concise, direct. No filler words.

3. SIMPLE WORDS: Everyday common language. 7th-grade reading level.

4. KEYWORD CONTROL: Total keyword density must NOT exceed 1.05%. Use the exact main keyword only 1-2 times per section. Use natural variations and synonyms everywhere else. NEVER repeat the exact keyword 3+ times in one section.

5. TRANSITION CONTROL: Use "However", "Additionally", "Moreover", "Therefore" at most once each in the entire article. Prefer natural segues.

6. ACTIVE VOICE ONLY: No passive voice.

7. BOLD: Use **bold** for key terms, product names, and data points.

8. LISTS: Use dashes (-) for bullet points. NEVER asterisks, emoji, or special symbols.

9. NO HEADINGS in body content. No h1, h2, h3, or ### in your output.

10. DATA REQUIREMENT: Every section MUST include at least one real data point: user numbers, market size, growth percentages, cost comparisons, or performance metrics. Use REAL publicly known data, or reasonable ranges when exact numbers are uncertain.

11. BLOCKING RULES: No repetition of the same idea in different words. No vague statements. No motivational language. No theory without a practical example. No claims without a reason or data behind them.

12. BANNED PHRASES: Never use: "In today's", "It's important", "In conclusion", "Let's dive", "When it comes to", "At the end of the day", "game-changer", "revolutionary".`

// Dedicated system prompts for the structured (non-prose) steps.
const (
	titleSystemPrompt = `You generate SEO blog titles and meta descriptions. Return ONLY a JSON object with 'title' and 'meta_description' string properties. No markdown formatting, no explanation.`

	outlineSystemPrompt = `Generate SEO blog section headings. Return ONLY headings, one per line. No numbering, no explanation, no quotes.`
)

// SystemPrompt assembles the per-job system prompt from the base style
// contract plus the policy fragments the job's spec activates. The result
// is built once per run and never mutated afterwards; each fragment is a
// pure function of the job so it can be tested on its own.
func SystemPrompt(job *models.ContentJob) string {
	var b strings.Builder
	b.WriteString(baseStylePrompt)

	rule := 13
	for _, fragment := range []string{
		currencyRule(job.TargetCountry),
		detailsRule(job.Details),
		secondaryKeywordsRule(job.SecondaryKeywords),
		internalLinksRule(job.InternalLinks),
	} {
		if fragment == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n%d. %s", rule, fragment)
		rule++
	}
	return b.String()
}

// currencyRule pins monetary values to the target market's currency.
// Always present — USD is the default for unrecognized countries.
func currencyRule(country string) string {
	c := strings.ToLower(country)
	switch {
	case strings.Contains(c, "india"):
		return "CRITICAL CURRENCY RULE: You MUST use ONLY INR (₹ / Rupees) for all pricing, salaries, costs, and monetary values. NEVER use USD ($)."
	case strings.Contains(c, "global"),
		strings.Contains(c, "united states"),
		strings.Contains(c, "uk"),
		strings.Contains(c, "united kingdom"):
		return "CRITICAL CURRENCY RULE: You MUST use ONLY USD ($) for all pricing, salaries, costs, and monetary values."
	default:
		return "Use USD ($) for all pricing, costs, and monetary values."
	}
}

// detailsRule forces user-supplied facts (a phone number, a location, a
// name) into the article verbatim.
func detailsRule(details string) string {
	details = strings.TrimSpace(details)
	if details == "" {
		return ""
	}
	return fmt.Sprintf(`CRITICAL REQUIRED DETAILS: The user explicitly requested you include this specific information: %q. You MUST seamlessly weave these exact details into the article.`, details)
}

func secondaryKeywordsRule(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	return fmt.Sprintf("SECONDARY KEYWORDS: You MUST try to naturally weave in these secondary keywords: %s.", strings.Join(keywords, ", "))
}

func internalLinksRule(links []string) string {
	if len(links) == 0 {
		return ""
	}
	return fmt.Sprintf("INTERNAL LINKS: You MUST naturally integrate the following URLs into the content using highly relevant anchor text: %s.", strings.Join(links, ", "))
}

// --- Per-step user prompts ---

func titlePrompt(keyword string) string {
	return fmt.Sprintf(`Create an SEO title and meta description for the keyword: %q.

STRICT RULES:
- MUST contain the EXACT, UNALTERED keyword: %q
- Title Length: 50-70 characters maximum
- Meta Description Length: STRICTLY 150-160 characters. Provide a compelling summary that drives clicks.
- Use simple, everyday words only
- Return ONLY valid JSON format: {"title": "...", "meta_description": "..."}`, keyword, keyword)
}

func outlinePrompt(keyword string, count int) string {
	return fmt.Sprintf(`Generate exactly %d H2 headings for a blog about %q. Short, specific, SEO-friendly. One per line.`, count, keyword)
}

func introPrompt(title, keyword string, secondary []string, tone string, words int) string {
	return fmt.Sprintf(`Write the introduction for a blog titled %q about %q.%s Tone: %s.
CRITICAL LENGTH: STRICTLY limit your response to around %d words. DO NOT WRITE MORE THAN THIS.

STRUCTURE:
1. PROBLEM STATEMENT: State the real problem the reader faces, anchored with a specific number or data point.
2. GAP: Show why current approaches fail. Name the specific gap — cost, speed, quality, or scale.
3. WHAT THIS ARTICLE DELIVERS: Tell the reader exactly what they will get.

KEYWORD RULES:
- MUST use the EXACT keyword %q exactly 1 time.
- Use synonyms and variations for all other mentions.

FORMAT: MAXIMUM 2 sentences per paragraph. No headings.
- DO NOT start your response with the blog title. DO NOT repeat the title. JUST write the introduction paragraphs.`,
		title, keyword, referenceClause(secondary), tone, words, keyword)
}

func sectionPrompt(heading, keyword string, secondary []string, tone string, words int) string {
	return fmt.Sprintf(`Write the section %q for a blog about %q.%s Tone: %s.
CRITICAL LENGTH: STRICTLY limit your response to around %d words. DO NOT WRITE MORE THAN THIS.

STRUCTURE:
1. CORE CLAIM: State the main point with a supporting data point.
2. HOW IT WORKS: Explain the mechanism in plain terms.
3. COMPARISON OR EVIDENCE: Compare options or provide a real-world example with measurable criteria (cost, speed, engagement, ROI).
4. PRACTICAL LIST: Include 3-5 items using dashes (-) with **bold labels** and short explanations.
5. BOTTOM LINE: End with a clear verdict — what works, what does not, and for whom.

KEYWORD RULES:
- MUST use the EXACT keyword %q between 1 and 2 times in this section (never 0, never 3+).
- Use synonyms and variations for all other mentions.

FORMAT: MAXIMUM 2 sentences per paragraph. No section heading in output.`,
		heading, keyword, referenceClause(secondary), tone, words, keyword)
}

func closingPrompt(title, keyword, tone string, words int) string {
	return fmt.Sprintf(`Write the conclusion AND FAQs for the blog %q about %q. Tone: %s.
CRITICAL LENGTH: STRICTLY limit the ENTIRE output to around %d words combined.

CONCLUSION (write first):
- DECISION SUMMARY: State clearly what is the best option, who should choose it, and why it wins.
- WHEN NOT TO USE: Mention one scenario where a different approach is better.
- FINAL VERDICT: End with a clear, actionable statement.
- MUST use the EXACT keyword %q exactly 1 time.
- Do NOT start with "In conclusion" or "To sum up".
- DO NOT INCLUDE A HEADING FOR THE CONCLUSION. Do NOT output "## Conclusion". Start writing the actual conclusion body immediately.

Then write FAQs:

## Frequently Asked Questions

### 1. [Specific question about %s with a data angle]?
[2-3 sentence answer with a real number or benchmark.]

### 2. [How/Why comparison question]?
[Answer with clear comparison and measurable criteria.]

### 3. [Common misconception or concern]?
[Answer that corrects the misconception with evidence or logic.]

FORMAT: MAXIMUM 2 sentences per paragraph. Dashes (-) for lists, never asterisks.`,
		title, keyword, tone, words, keyword, keyword)
}

// referenceClause renders the optional "Also reference: …" tail shared by
// the intro and section prompts.
func referenceClause(secondary []string) string {
	if len(secondary) == 0 {
		return ""
	}
	return " Also reference: " + strings.Join(secondary, ", ") + "."
}
