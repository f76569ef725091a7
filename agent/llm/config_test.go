package llm

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

func TestOpenRouterForUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:      "key",
		Model:       "openai/gpt-4o-mini",
		Temperature: 0.2,

		SupervisorTemperature: -1,
		WorkerTemperature:     -1,
	}

	got := cfg.OpenRouterFor(contractx.AgentTypeSupervisor)
	if got.Model != "openai/gpt-4o-mini" {
		t.Fatalf("Model = %q", got.Model)
	}
	if got.Temperature != 0.2 {
		t.Fatalf("Temperature = %v", got.Temperature)
	}
}

func TestOpenRouterForPerAgentOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:      "key",
		Model:       "openai/gpt-4o-mini",
		Temperature: 0.5,

		SupervisorModel:       "anthropic/claude-sonnet",
		SupervisorTemperature: 0.1,
		WorkerModel:           "openai/gpt-4o",
		WorkerTemperature:     -1,
	}

	sup := cfg.OpenRouterFor(contractx.AgentTypeSupervisor)
	if sup.Model != "anthropic/claude-sonnet" {
		t.Fatalf("supervisor Model = %q", sup.Model)
	}
	if sup.Temperature != 0.1 {
		t.Fatalf("supervisor Temperature = %v", sup.Temperature)
	}

	wrk := cfg.OpenRouterFor(contractx.AgentTypeWorker)
	if wrk.Model != "openai/gpt-4o" {
		t.Fatalf("worker Model = %q", wrk.Model)
	}
	if wrk.Temperature != 0.5 {
		t.Fatalf("worker Temperature = %v, want shared default", wrk.Temperature)
	}
}

func TestOpenRouterForBuildsModelDirectly(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                "key",
		Model:                 "openai/gpt-4o-mini",
		SupervisorTemperature: -1,
		WorkerTemperature:     -1,
	}

	// The derived config must be usable without assigning it to a variable
	// first, matching how startup wires the per-agent models.
	m, err := cfg.OpenRouterFor(contractx.AgentTypeWorker).New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m == nil {
		t.Fatal("expected a chat model")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation without api key, got %v", err)
	}
	if err := (Config{APIKey: "k"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation without model, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m"}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	if (Config{}).Enabled() {
		t.Fatal("empty config must not be enabled")
	}
	if !(Config{APIKey: " key "}).Enabled() {
		t.Fatal("config with api key must be enabled")
	}
}
