// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides the generation gateway: an ordered chain of LLM
// provider candidates tried in turn with per-candidate rate-limit retries.
// Each provider handles its own HTTP communication and response parsing.
package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Provider is one model/endpoint combination the gateway may call.
// maxTokens bounds the response size so a runaway completion cannot
// balloon a job's cost.
type Provider interface {
	// Complete sends a system+user message pair and returns the raw
	// generated text.
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

	// Name returns the candidate identifier used in logs (e.g. "groq").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
}

// APIError is a non-2xx provider response. The gateway inspects the status
// code to distinguish rate limiting (retry the same candidate) from other
// failures (move to the next candidate).
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// thinkingBlock matches the <think>…</think> wrapper that reasoning models
// (DeepSeek R1 and friends) emit around their actual answer.
var thinkingBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinking removes reasoning-model wrapper tags and trims the result.
func stripThinking(text string) string {
	return strings.TrimSpace(thinkingBlock.ReplaceAllString(text, ""))
}
