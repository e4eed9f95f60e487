package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "GUARDRAIL_FAIL_MODE", "MAX_TURNS", "LLM_TIMEOUT_MS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.GuardrailFailMode != FailClosed {
		t.Fatalf("expected fail-closed default, got %s", cfg.GuardrailFailMode)
	}
	if cfg.MaxTurns != 8 {
		t.Fatalf("expected default turn cap 8, got %d", cfg.MaxTurns)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.LLMTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("GUARDRAIL_FAIL_MODE", "open")
	t.Setenv("MAX_TURNS", "3")
	t.Setenv("LLM_MODEL", "gpt-4o")

	cfg := Load()

	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.GuardrailFailMode != FailOpen {
		t.Fatalf("expected fail-open, got %s", cfg.GuardrailFailMode)
	}
	if cfg.MaxTurns != 3 {
		t.Fatalf("expected turn cap 3, got %d", cfg.MaxTurns)
	}
	if cfg.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %q", cfg.Model)
	}
	if cfg.GuardrailModel != "gpt-4o" {
		t.Fatalf("guardrail model should follow LLM_MODEL, got %q", cfg.GuardrailModel)
	}
}

func TestParseFailModeUnknownValuesFailClosed(t *testing.T) {
	t.Setenv("GUARDRAIL_FAIL_MODE", "sideways")

	cfg := Load()
	if cfg.GuardrailFailMode != FailClosed {
		t.Fatalf("unknown fail mode must fall back to closed, got %s", cfg.GuardrailFailMode)
	}
}
