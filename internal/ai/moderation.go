// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // list of flagged category names (empty when safe)
}

// Moderator checks a job's keyword and custom details for policy
// violations before any credits are locked or providers called.
type Moderator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewModerator creates a moderator backed by the OpenAI moderation API
// (POST /v1/moderations), free for all API key holders. Returns nil when
// no key is configured; a nil Moderator approves everything, so callers
// never need to branch on availability.
func NewModerator(apiKey, baseURL string) *Moderator {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Moderator{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckSafety evaluates a text prompt and returns whether it is safe to
// send to a generation provider. If not safe, Categories lists the reasons.
func (m *Moderator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}

	payload, err := json.Marshal(modRequest{
		Model: "omni-moderation-latest",
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("moderation marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/moderations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("moderation read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result modResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("moderation unmarshal: %w", err)
	}

	if len(result.Results) == 0 || !result.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	// Collect flagged category names in human-readable form:
	// "hate/threatening" → "hate (threatening)".
	var flagged []string
	for cat, isFlagged := range result.Results[0].Categories {
		if !isFlagged {
			continue
		}
		display := strings.ReplaceAll(cat, "/", " (")
		if strings.Contains(cat, "/") {
			display += ")"
		}
		flagged = append(flagged, strings.ReplaceAll(display, "_", " "))
	}

	return &ModerationResult{Safe: false, Categories: flagged}, nil
}

type modRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type modResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}
