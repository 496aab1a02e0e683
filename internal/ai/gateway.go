// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrUnavailable is returned when every candidate in the chain has been
// exhausted. It wraps the last underlying error so the failure reason
// survives into the job's diagnostic output.
var ErrUnavailable = errors.New("generation unavailable")

const (
	defaultCallDelay   = 3 * time.Second
	defaultRetries     = 3
	defaultBackoffStep = 5 * time.Second
)

// Gateway tries an ordered list of provider candidates until one produces
// a usable completion. Per candidate: HTTP 429 waits and retries up to the
// attempt cap; any other error moves on to the next candidate immediately.
// Successful output has reasoning-model wrapper tags stripped.
//
// A fixed delay runs before every provider call. That is deliberate — the
// cheap high-throughput providers meter tokens per minute, and a multi-call
// job that bursts gets itself rate limited into the slower fallbacks.
type Gateway struct {
	candidates []Provider

	callDelay   time.Duration
	retries     int
	backoffStep time.Duration

	// sleep is swapped out in tests so retry paths run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithCallDelay sets the fixed pre-call delay. Zero disables it.
func WithCallDelay(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.callDelay = d }
}

// WithRetryAttempts sets the per-candidate attempt cap on HTTP 429.
func WithRetryAttempts(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.retries = n
		}
	}
}

// WithBackoffStep sets the base wait added per rate-limited attempt.
func WithBackoffStep(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.backoffStep = d }
}

// NewGateway builds a gateway over the given candidates, tried in order.
func NewGateway(candidates []Provider, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		candidates:  candidates,
		callDelay:   defaultCallDelay,
		retries:     defaultRetries,
		backoffStep: defaultBackoffStep,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Candidates returns the names of the configured chain, in order.
func (g *Gateway) Candidates() []string {
	names := make([]string, len(g.candidates))
	for i, c := range g.candidates {
		names[i] = c.Name()
	}
	return names
}

// Complete walks the candidate chain and returns the first usable
// completion, cleaned of <think> wrappers and trimmed. Returns an error
// wrapping ErrUnavailable when the whole chain is exhausted.
func (g *Gateway) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if len(g.candidates) == 0 {
		return "", fmt.Errorf("%w: no provider candidates configured", ErrUnavailable)
	}

	var lastErr error
	for _, p := range g.candidates {
		text, err := g.tryCandidate(ctx, p, systemPrompt, userPrompt, maxTokens)
		if err == nil {
			slog.Debug("generation succeeded", "provider", p.Name())
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("provider candidate exhausted, falling back",
			"provider", p.Name(), "error", err)
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// tryCandidate issues up to g.retries attempts against one provider.
// Only rate limiting earns a retry; everything else fails the candidate
// on the spot.
func (g *Gateway) tryCandidate(ctx context.Context, p Provider, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	var lastErr error

	for attempt := 0; attempt < g.retries; attempt++ {
		if g.callDelay > 0 {
			if err := g.sleep(ctx, g.callDelay); err != nil {
				return "", err
			}
		}

		text, err := p.Complete(ctx, systemPrompt, userPrompt, maxTokens)
		if err == nil {
			cleaned := stripThinking(text)
			if cleaned == "" {
				return "", fmt.Errorf("%s: empty response after cleanup", p.Name())
			}
			return cleaned, nil
		}

		if !isRateLimited(err) {
			return "", err
		}

		lastErr = err
		slog.Warn("provider rate limited, backing off",
			"provider", p.Name(), "attempt", attempt+1, "cap", g.retries)
		if err := g.sleep(ctx, g.backoffStep*time.Duration(attempt+1)); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%s: rate limited after %d attempts: %w", p.Name(), g.retries, lastErr)
}

// isRateLimited reports whether the error is an HTTP 429 from a provider.
func isRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
