package profile

import (
	"os"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"Addr default", "127.0.0.1", p.Addr},
		{"Driver default", "sqlite", p.Driver},
		{"Persona default", "Personal", p.Persona},
		{"AIOpenAIBaseURL default", "https://api.openai.com/v1", p.AIOpenAIBaseURL},
		{"AIChatModel default", "gpt-4o-mini", p.AIChatModel},
		{"AIEmbeddingModel default", "text-embedding-3-small", p.AIEmbeddingModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.actual)
			}
		})
	}

	if p.Port != 8787 {
		t.Errorf("Port default: expected 8787, got %d", p.Port)
	}
	if p.AIEnabled {
		t.Error("AIEnabled should be false by default")
	}
}

func TestFromEnvLegacyFallback(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("DEFAULT_PERSONA", "Work")
	t.Setenv("ROUTER_PORT", "9999")

	p := &Profile{}
	p.FromEnv()

	if p.AIOpenAIAPIKey != "sk-legacy" {
		t.Errorf("expected legacy OPENAI_API_KEY to apply, got %q", p.AIOpenAIAPIKey)
	}
	if p.Persona != "Work" {
		t.Errorf("expected legacy DEFAULT_PERSONA to apply, got %q", p.Persona)
	}
	if p.Port != 9999 {
		t.Errorf("expected legacy ROUTER_PORT to apply, got %d", p.Port)
	}
}

func TestFromEnvNewPrefixWins(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("MEMWALLET_OPENAI_API_KEY", "sk-new")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	p := &Profile{}
	p.FromEnv()

	if p.AIOpenAIAPIKey != "sk-new" {
		t.Errorf("expected MEMWALLET_OPENAI_API_KEY to win, got %q", p.AIOpenAIAPIKey)
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"disabled", Profile{AIEnabled: false, AIOpenAIAPIKey: "sk-x"}, false},
		{"enabled without key", Profile{AIEnabled: true}, false},
		{"enabled with key", Profile{AIEnabled: true, AIOpenAIAPIKey: "sk-x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.IsAIEnabled(); got != tt.want {
				t.Errorf("IsAIEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	p := &Profile{Mode: "bogus", Data: dir, Driver: "sqlite"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if p.Mode != "dev" {
		t.Errorf("invalid mode should fall back to dev, got %q", p.Mode)
	}
	if p.DSN == "" {
		t.Error("sqlite DSN should default under the data directory")
	}

	p = &Profile{Mode: "prod", Data: dir, Driver: "postgres"}
	if err := p.Validate(); err == nil {
		t.Error("postgres without DSN should fail validation")
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	keys := []string{
		"MEMWALLET_ADDR", "ROUTER_HOST",
		"MEMWALLET_PORT", "ROUTER_PORT",
		"MEMWALLET_DATA", "WALLET_PATH",
		"MEMWALLET_DRIVER", "WALLET_DRIVER",
		"MEMWALLET_DSN", "WALLET_DSN",
		"MEMWALLET_PERSONA", "DEFAULT_PERSONA",
		"MEMWALLET_SECRET_KEY", "WALLET_KEY",
		"MEMWALLET_JWT_SECRET", "ROUTER_JWT_SECRET",
		"MEMWALLET_AI_ENABLED", "AI_ENABLED",
		"MEMWALLET_OPENAI_API_KEY", "OPENAI_API_KEY",
		"MEMWALLET_OPENAI_BASE_URL", "OPENAI_BASE_URL",
		"MEMWALLET_AI_CHAT_MODEL", "AI_CHAT_MODEL",
		"MEMWALLET_AI_EMBEDDING_MODEL", "AI_EMBEDDING_MODEL",
	}
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
			os.Unsetenv(k)
		}
	}
}
