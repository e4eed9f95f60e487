// Package config provides configuration for the library assistant.
package config

import (
	"os"
	"strconv"
	"time"
)

// FailMode controls what the guardrail does when the classifier itself fails.
type FailMode string

const (
	// FailClosed treats classifier failures as rejections.
	FailClosed FailMode = "closed"
	// FailOpen treats classifier failures as in-domain and lets the run proceed.
	FailOpen FailMode = "open"
)

// Config holds the assistant configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Completion service
	LLMBaseURL     string
	LLMAPIKey      string
	Model          string
	GuardrailModel string
	LLMTimeout     time.Duration
	LLMMaxRetries  int

	// Orchestration
	GuardrailFailMode FailMode
	MaxTurns          int

	// Seed data
	LibraryFile string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:       getEnv("DATABASE_URL", "file:librarian.db?cache=shared&mode=rwc"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		Model:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		GuardrailModel:    getEnv("GUARDRAIL_MODEL", getEnv("LLM_MODEL", "gpt-4o-mini")),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		LLMMaxRetries:     getEnvInt("LLM_MAX_RETRIES", 2),
		GuardrailFailMode: parseFailMode(getEnv("GUARDRAIL_FAIL_MODE", string(FailClosed))),
		MaxTurns:          getEnvInt("MAX_TURNS", 8),
		LibraryFile:       getEnv("LIBRARY_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func parseFailMode(s string) FailMode {
	if s == string(FailOpen) {
		return FailOpen
	}
	return FailClosed
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
