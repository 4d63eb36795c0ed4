package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeSettings(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(cfg.Quality) == 0 || len(cfg.Prompts) == 0 {
		t.Error("defaults should include quality and prompt tables")
	}
	if cfg.IdleSeconds != 120 {
		t.Errorf("idle-seconds default = %d", cfg.IdleSeconds)
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := writeSettings(t, `
archive-dir = "shots"
idle-seconds = 0

[flash]
auto = false
dark-threshold = 45

[network]
timeout-seconds = 10
max-attempts = 5
retry-delay-seconds = 1

[display]
wrap-width = 30
lines-per-page = 6
brief-chars = 120

[[quality]]
name = "MEDIUM"
label = "M"
resolution = "640x480"
target-bytes = 200000
max-bytes = 800000

[[prompts]]
name = "DESCRIBE"
label = "Describe"
text = "Describe this."

[[prompts]]
name = "HAIKU"
label = "Haiku"
text = "Write a haiku."
never-truncate = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.ArchiveDir != "shots" {
		t.Errorf("archive-dir = %q", cfg.ArchiveDir)
	}
	if cfg.IdleTimeout() != 0 {
		t.Errorf("idle timeout = %v, want 0 (screensaver disabled)", cfg.IdleTimeout())
	}
	if cfg.Flash.Auto || cfg.Flash.DarkThreshold != 45 {
		t.Errorf("flash = %+v", cfg.Flash)
	}
	if len(cfg.Quality) != 1 || cfg.Quality[0].Name != "MEDIUM" {
		t.Errorf("quality = %+v", cfg.Quality)
	}
	if len(cfg.Prompts) != 2 || !cfg.Prompts[1].NeverTruncate {
		t.Errorf("prompts = %+v", cfg.Prompts)
	}

	vc := cfg.VisionConfig()
	if vc.MaxAttempts != 5 || vc.Timeout.Seconds() != 10 {
		t.Errorf("vision config = %+v", vc)
	}
	pc := cfg.PresentConfig()
	if pc.WrapWidth != 30 || pc.LinesPerPage != 6 || pc.BriefChars != 120 {
		t.Errorf("present config = %+v", pc)
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("SIGHTBOX_API_KEY", "sk-test")

	cfg, err := Load(writeSettings(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("api key = %q, want env value", cfg.APIKey)
	}
	if err := cfg.RequireCredential(); err != nil {
		t.Errorf("RequireCredential: %v", err)
	}
}

func TestRequireCredentialMissing(t *testing.T) {
	cfg, _ := Load(writeSettings(t, ""))
	if err := cfg.RequireCredential(); err == nil {
		t.Error("missing API key should be reported")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty archive dir", func(c *Config) { c.ArchiveDir = "" }},
		{"zero ceiling", func(c *Config) { c.HardCeilingBytes = 0 }},
		{"negative idle", func(c *Config) { c.IdleSeconds = -1 }},
		{"threshold too high", func(c *Config) { c.Flash.DarkThreshold = 300 }},
		{"zero attempts", func(c *Config) { c.Network.MaxAttempts = 0 }},
		{"empty model", func(c *Config) { c.API.Model = "" }},
		{"zero wrap width", func(c *Config) { c.Display.WrapWidth = 0 }},
		{"bad resolution", func(c *Config) { c.Quality[0].Resolution = "huge" }},
		{"target over max", func(c *Config) { c.Quality[0].TargetBytes = c.Quality[0].MaxBytes + 1 }},
		{"empty prompts", func(c *Config) { c.Prompts = nil }},
		{"prompt without text", func(c *Config) { c.Prompts[0].Text = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeSettings(t, ""))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
