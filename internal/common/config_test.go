package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", config.Server.Port)
	}
	if config.LLM.DefaultProvider != LLMProviderGemini {
		t.Errorf("default provider = %s, want gemini", config.LLM.DefaultProvider)
	}
	if config.Gemini.Model == "" || config.Claude.Model == "" {
		t.Error("default models must be set")
	}
	if !config.Gemini.Search {
		t.Error("search grounding should default to on")
	}
	if err := ValidateSchedule(config.Digest.Schedule); err != nil {
		t.Errorf("default schedule invalid: %v", err)
	}
}

func TestLoadFromFilesLayering(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	if err := os.WriteFile(base, []byte(`
environment = "production"

[server]
port = 9001

[gemini]
model = "gemini-base"
`), 0644); err != nil {
		t.Fatal(err)
	}

	override := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(override, []byte(`
[server]
port = 9002
`), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	// Later file wins
	if config.Server.Port != 9002 {
		t.Errorf("port = %d, want later file's 9002", config.Server.Port)
	}
	// Values only in the earlier file survive
	if config.Environment != "production" {
		t.Errorf("environment = %q, want base file's value", config.Environment)
	}
	if config.Gemini.Model != "gemini-base" {
		t.Errorf("gemini model = %q, want base file's value", config.Gemini.Model)
	}
	// Untouched values keep defaults
	if config.Server.Host != "localhost" {
		t.Errorf("host = %q, want default", config.Server.Host)
	}
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/stockbrief.toml"); err == nil {
		t.Error("missing config file should be an error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOCKBRIEF_SERVER_PORT", "7777")
	t.Setenv("STOCKBRIEF_LOG_LEVEL", "debug")
	t.Setenv("STOCKBRIEF_SMTP_HOST", "smtp.env.example.com")

	config, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if config.Server.Port != 7777 {
		t.Errorf("port = %d, env should override default", config.Server.Port)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("log level = %q, env should override default", config.Logging.Level)
	}
	if config.SMTP.Host != "smtp.env.example.com" {
		t.Errorf("smtp host = %q, env should override default", config.SMTP.Host)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9999, "0.0.0.0")
	if config.Server.Port != 9999 || config.Server.Host != "0.0.0.0" {
		t.Errorf("flag overrides not applied: %+v", config.Server)
	}

	// Zero values leave the config untouched
	ApplyFlagOverrides(config, 0, "")
	if config.Server.Port != 9999 || config.Server.Host != "0.0.0.0" {
		t.Errorf("zero flags should not reset config: %+v", config.Server)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	ctx := context.Background()

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")
		got, err := ResolveAPIKey(ctx, nil, "gemini_api_key", "from-config")
		if err != nil || got != "from-env" {
			t.Errorf("ResolveAPIKey = (%q, %v), want env value", got, err)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		got, err := ResolveAPIKey(ctx, nil, "gemini_api_key", "from-config")
		if err != nil || got != "from-config" {
			t.Errorf("ResolveAPIKey = (%q, %v), want config fallback", got, err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if _, err := ResolveAPIKey(ctx, nil, "gemini_api_key", ""); err == nil {
			t.Error("unresolvable key should be an error")
		}
	})
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"30 7 * * *", false},
		{"0 9 * * 1-5", false},
		{"*/15 * * * *", false},
		{"not a cron", true},
		{"61 7 * * *", true},
		{"30 7 * *", true}, // 4 fields
	}

	for _, tt := range tests {
		err := ValidateSchedule(tt.schedule)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSchedule(%q) error = %v, wantErr %v", tt.schedule, err, tt.wantErr)
		}
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{" prod ", true},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		config := &Config{Environment: tt.env}
		if got := config.IsProduction(); got != tt.want {
			t.Errorf("IsProduction(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}
