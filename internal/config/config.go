// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Candidate names one provider/model combination the generation gateway may
// try, in fallback order. Kind selects the wire protocol: "chat" for
// OpenAI-compatible chat completions (OpenAI, Groq, OpenRouter, Mistral)
// or "claude" for the Anthropic Messages API.
type Candidate struct {
	Name    string
	Kind    string
	Model   string
	APIKey  string
	BaseURL string
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible) — optional, used for live progress pub/sub.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Generation gateway tuning.
	Candidates    []Candidate
	CallDelay     time.Duration // fixed delay before every provider call
	RetryAttempts int           // per-candidate attempts on HTTP 429

	// Moderation — optional prompt-safety check before accepting a job.
	ModerationKey     string
	ModerationBaseURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is merged in first; real environment variables always win. Returns an
// error if critical values are missing in production mode.
func Load() (*Config, error) {
	// Best effort: a missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inkwell"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "inkwell"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CallDelay:     envDuration("AI_CALL_DELAY", 3*time.Second),
		RetryAttempts: envInt("AI_RETRY_ATTEMPTS", 3),

		ModerationKey:     os.Getenv("MODERATION_API_KEY"),
		ModerationBaseURL: os.Getenv("MODERATION_BASE_URL"),
	}

	cfg.Candidates = loadCandidates()

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if len(cfg.Candidates) == 0 {
			return nil, fmt.Errorf("at least one AI provider must be configured in production")
		}
	}

	return cfg, nil
}

// loadCandidates builds the ordered provider fallback chain from the
// environment. AI_CANDIDATES lists candidate names in fallback order; each
// candidate reads its own key/model/base-url variables (e.g. GROQ_API_KEY,
// GROQ_MODEL). Candidates without an API key are silently skipped, matching
// how provider configs behave elsewhere.
func loadCandidates() []Candidate {
	order := strings.Split(envOrDefault("AI_CANDIDATES", "groq,openrouter,claude"), ",")

	known := map[string]Candidate{
		"groq": {
			Name:    "groq",
			Kind:    "chat",
			Model:   envOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
			APIKey:  os.Getenv("GROQ_API_KEY"),
			BaseURL: envOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		},
		"openrouter": {
			Name:    "openrouter",
			Kind:    "chat",
			Model:   envOrDefault("OPENROUTER_MODEL", "nvidia/llama-nemotron-super-49b-v1:free"),
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		},
		"openai": {
			Name:    "openai",
			Kind:    "chat",
			Model:   envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		"claude": {
			Name:    "claude",
			Kind:    "claude",
			Model:   envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
			APIKey:  os.Getenv("CLAUDE_API_KEY"),
			BaseURL: envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		},
	}

	var out []Candidate
	for _, name := range order {
		c, ok := known[strings.TrimSpace(name)]
		if !ok || c.APIKey == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasValkey reports whether a Valkey host is configured. Live progress
// publishing is skipped entirely when it is not.
func (c *Config) HasValkey() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable, falling back on parse errors.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envDuration reads a duration environment variable (e.g. "3s", "500ms").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
