// Package config loads and validates device settings. The rest of the
// application treats the result as immutable, already-validated values.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sightbox/sightbox/internal/present"
	"github.com/sightbox/sightbox/internal/prompt"
	"github.com/sightbox/sightbox/internal/quality"
	"github.com/sightbox/sightbox/internal/vision"
)

var resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)

// QualityMode is one row of the configured quality table.
type QualityMode struct {
	Name        string `mapstructure:"name"`
	Label       string `mapstructure:"label"`
	Resolution  string `mapstructure:"resolution"`
	TargetBytes int    `mapstructure:"target-bytes"`
	MaxBytes    int    `mapstructure:"max-bytes"`
}

// PromptMode is one row of the configured prompt table, in display order.
type PromptMode struct {
	Name          string `mapstructure:"name"`
	Label         string `mapstructure:"label"`
	Text          string `mapstructure:"text"`
	NeverTruncate bool   `mapstructure:"never-truncate"`
}

// FlashConfig controls the pre-capture darkness check.
type FlashConfig struct {
	Auto          bool `mapstructure:"auto"`
	DarkThreshold int  `mapstructure:"dark-threshold"`
}

// NetworkConfig controls the analysis transport.
type NetworkConfig struct {
	TimeoutSeconds    int `mapstructure:"timeout-seconds"`
	MaxAttempts       int `mapstructure:"max-attempts"`
	RetryDelaySeconds int `mapstructure:"retry-delay-seconds"`
}

// APIConfig identifies the remote analysis service.
type APIConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max-tokens"`
}

// DisplayConfig carries the text geometry of the device screen.
type DisplayConfig struct {
	WrapWidth    int `mapstructure:"wrap-width"`
	LinesPerPage int `mapstructure:"lines-per-page"`
	BriefChars   int `mapstructure:"brief-chars"`
}

// Config holds all application configuration.
type Config struct {
	ArchiveDir       string `mapstructure:"archive-dir"`
	LogPath          string `mapstructure:"log-path"`
	Scene            string `mapstructure:"scene"`
	HardCeilingBytes int    `mapstructure:"hard-ceiling-bytes"`
	IdleSeconds      int    `mapstructure:"idle-seconds"`
	APIKey           string `mapstructure:"api-key"`

	Flash   FlashConfig   `mapstructure:"flash"`
	Network NetworkConfig `mapstructure:"network"`
	API     APIConfig     `mapstructure:"api"`
	Display DisplayConfig `mapstructure:"display"`

	Quality []QualityMode `mapstructure:"quality"`
	Prompts []PromptMode  `mapstructure:"prompts"`
}

// Load reads configuration from defaults, an optional TOML file, and
// SIGHTBOX_-prefixed environment variables. The credential is expected from
// the environment (SIGHTBOX_API_KEY) so it stays out of the settings file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("archive-dir", "captures")
	v.SetDefault("log-path", "sightbox.log")
	v.SetDefault("scene", "")
	v.SetDefault("hard-ceiling-bytes", 2*1024*1024)
	v.SetDefault("idle-seconds", 120)
	v.SetDefault("api-key", "")
	v.SetDefault("flash.auto", true)
	v.SetDefault("flash.dark-threshold", 30)
	v.SetDefault("network.timeout-seconds", 30)
	v.SetDefault("network.max-attempts", 3)
	v.SetDefault("network.retry-delay-seconds", 2)
	v.SetDefault("api.base-url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("api.model", "claude-3-haiku-20240307")
	v.SetDefault("api.max-tokens", 1024)
	v.SetDefault("display.wrap-width", 26)
	v.SetDefault("display.lines-per-page", 8)
	v.SetDefault("display.brief-chars", 180)

	v.SetEnvPrefix("SIGHTBOX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sightbox")
		_ = v.ReadInConfig() // optional when unnamed
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if len(cfg.Quality) == 0 {
		cfg.Quality = defaultQuality()
	}
	if len(cfg.Prompts) == 0 {
		cfg.Prompts = defaultPrompts()
	}

	return &cfg, nil
}

func defaultQuality() []QualityMode {
	return []QualityMode{
		{Name: "LOW", Label: "L", Resolution: "320x240", TargetBytes: 40_000, MaxBytes: 120_000},
		{Name: "MEDIUM", Label: "M", Resolution: "640x480", TargetBytes: 150_000, MaxBytes: 800_000},
		{Name: "HIGH", Label: "H", Resolution: "1024x768", TargetBytes: 350_000, MaxBytes: 1_200_000},
	}
}

func defaultPrompts() []PromptMode {
	return []PromptMode{
		{Name: "DESCRIBE", Label: "Describe", Text: "Describe this scene in two or three short sentences."},
		{Name: "IDENTIFY", Label: "Identify", Text: "Identify the main subject of this photo in one sentence."},
		{Name: "READ", Label: "Read", Text: "Read out any visible text in this photo."},
		{Name: "HAIKU", Label: "Haiku", Text: "Write a haiku about this scene.", NeverTruncate: true},
	}
}

// Validate checks configuration for errors before the device starts.
func (c *Config) Validate() error {
	if c.ArchiveDir == "" {
		return fmt.Errorf("archive-dir cannot be empty")
	}
	if c.HardCeilingBytes <= 0 {
		return fmt.Errorf("hard-ceiling-bytes must be positive")
	}
	if c.IdleSeconds < 0 {
		return fmt.Errorf("idle-seconds must be non-negative (0 disables the screensaver)")
	}
	if c.Flash.DarkThreshold < 0 || c.Flash.DarkThreshold > 255 {
		return fmt.Errorf("flash.dark-threshold must be between 0 and 255")
	}
	if c.Network.TimeoutSeconds <= 0 {
		return fmt.Errorf("network.timeout-seconds must be positive")
	}
	if c.Network.MaxAttempts < 1 {
		return fmt.Errorf("network.max-attempts must be at least 1")
	}
	if c.Network.RetryDelaySeconds < 0 {
		return fmt.Errorf("network.retry-delay-seconds must be non-negative")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base-url cannot be empty")
	}
	if c.API.Model == "" {
		return fmt.Errorf("api.model cannot be empty")
	}
	if c.API.MaxTokens <= 0 {
		return fmt.Errorf("api.max-tokens must be positive")
	}
	if c.Display.WrapWidth <= 0 || c.Display.LinesPerPage <= 0 {
		return fmt.Errorf("display geometry must be positive")
	}
	if c.Display.BriefChars <= 0 {
		return fmt.Errorf("display.brief-chars must be positive")
	}
	if len(c.Quality) == 0 {
		return fmt.Errorf("quality table cannot be empty")
	}
	for _, q := range c.Quality {
		if q.Name == "" {
			return fmt.Errorf("quality mode without a name")
		}
		if !resolutionPattern.MatchString(q.Resolution) {
			return fmt.Errorf("quality mode %q: resolution %q is not WxH", q.Name, q.Resolution)
		}
		if q.TargetBytes <= 0 || q.MaxBytes <= 0 {
			return fmt.Errorf("quality mode %q: byte budgets must be positive", q.Name)
		}
		if q.TargetBytes > q.MaxBytes {
			return fmt.Errorf("quality mode %q: target %d exceeds maximum %d", q.Name, q.TargetBytes, q.MaxBytes)
		}
	}
	if len(c.Prompts) == 0 {
		return fmt.Errorf("prompt table cannot be empty")
	}
	for _, p := range c.Prompts {
		if p.Name == "" || p.Label == "" || p.Text == "" {
			return fmt.Errorf("prompt %q: name, label, and text are all required", p.Name)
		}
	}
	return nil
}

// RequireCredential checks the API key is present. Kept out of Validate so
// the settings checker can report structure problems without a credential.
func (c *Config) RequireCredential() error {
	if c.APIKey == "" {
		return fmt.Errorf("missing API key: set SIGHTBOX_API_KEY")
	}
	return nil
}

// IndexPath is where the capture index database lives.
func (c *Config) IndexPath() string {
	return filepath.Join(c.ArchiveDir, "index.db")
}

// QualityModes converts the configured table into selector modes.
func (c *Config) QualityModes() []quality.Mode {
	modes := make([]quality.Mode, 0, len(c.Quality))
	for _, q := range c.Quality {
		modes = append(modes, quality.Mode{
			Name:        q.Name,
			Label:       q.Label,
			Resolution:  q.Resolution,
			TargetBytes: q.TargetBytes,
			MaxBytes:    q.MaxBytes,
		})
	}
	return modes
}

// PromptModes converts the configured table into selector modes.
func (c *Config) PromptModes() []prompt.Mode {
	modes := make([]prompt.Mode, 0, len(c.Prompts))
	for _, p := range c.Prompts {
		modes = append(modes, prompt.Mode{
			Name:          p.Name,
			Label:         p.Label,
			Text:          p.Text,
			NeverTruncate: p.NeverTruncate,
		})
	}
	return modes
}

// VisionConfig assembles the transport parameters.
func (c *Config) VisionConfig() vision.Config {
	return vision.Config{
		BaseURL:     c.API.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.API.Model,
		MaxTokens:   c.API.MaxTokens,
		Timeout:     time.Duration(c.Network.TimeoutSeconds) * time.Second,
		MaxAttempts: c.Network.MaxAttempts,
		RetryDelay:  time.Duration(c.Network.RetryDelaySeconds) * time.Second,
	}
}

// PresentConfig assembles the presenter geometry.
func (c *Config) PresentConfig() present.Config {
	return present.Config{
		WrapWidth:    c.Display.WrapWidth,
		LinesPerPage: c.Display.LinesPerPage,
		BriefChars:   c.Display.BriefChars,
	}
}

// IdleTimeout returns the screensaver timeout; zero disables it.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleSeconds) * time.Second
}
