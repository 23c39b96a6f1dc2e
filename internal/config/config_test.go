package config

import (
	"os"
	"testing"
	"time"
)

const sampleConfig = `
server:
  host: 127.0.0.1
  port: "9090"
log_level: debug
llm:
  call_timeout: 45s
  allow_placeholder: false
experiment:
  rounds: 3
  concurrent: true
  max_question_runes: 500
  primary_provider: openai
  secondary_provider: anthropic
providers:
  openai:
    api_key_env: OPENAI_API_KEY
    model: gpt-4o
    fallbacks: ["gpt-4o-mini", "gpt-3.5-turbo"]
    min_spacing: 2s
    base_delay: 1s
    max_attempts: 4
  anthropic:
    model: claude-sonnet-4-20250514
    min_spacing: 1500ms
`

// TestLoad verifies that Load unmarshals the full configuration shape.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.LLM.CallTimeout != 45*time.Second {
		t.Fatalf("unexpected call timeout: %v", cfg.LLM.CallTimeout)
	}
	if cfg.LLM.AllowPlaceholder {
		t.Fatalf("allow_placeholder should be false")
	}
	if cfg.Experiment.Rounds != 3 || !cfg.Experiment.Concurrent {
		t.Fatalf("unexpected experiment config: %+v", cfg.Experiment)
	}
	oa, ok := cfg.Providers["openai"]
	if !ok {
		t.Fatalf("openai provider missing")
	}
	if oa.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %s", oa.Model)
	}
	if len(oa.Fallbacks) != 2 || oa.Fallbacks[0] != "gpt-4o-mini" {
		t.Fatalf("fallbacks not parsed: %v", oa.Fallbacks)
	}
	if oa.MinSpacing != 2*time.Second || oa.MaxAttempts != 4 {
		t.Fatalf("pacing not parsed: %+v", oa)
	}
	an := cfg.Providers["anthropic"]
	if an.MinSpacing != 1500*time.Millisecond {
		t.Fatalf("anthropic min_spacing not parsed: %v", an.MinSpacing)
	}
}

// TestLoad_RejectsZeroRounds verifies round-count validation.
func TestLoad_RejectsZeroRounds(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString("experiment:\n  rounds: 0\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero rounds")
	}
}
