// Package config loads the JSON configuration shared by the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config/config.json"

// Config is the top-level configuration file.
type Config struct {
	LLM            LLMConfig    `json:"llm"`
	ServerAddr     string       `json:"server_addr,omitempty"`
	DBPath         string       `json:"db_path,omitempty"`
	RequestTimeout string       `json:"request_timeout,omitempty"`
	Editor         EditorConfig `json:"editor"`
	Export         ExportConfig `json:"export"`
	Log            LogConfig    `json:"log"`
}

// LLMConfig selects and parameterizes the model backend.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"` // openai, deepseek, mock
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	// APIKeyEnv names an environment variable read when APIKey is empty.
	APIKeyEnv   string   `json:"api_key_env,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

// EditorConfig bounds the reference image editor.
type EditorConfig struct {
	CanvasSize int     `json:"canvas_size,omitempty"`
	MinScale   float64 `json:"min_scale,omitempty"`
	MaxScale   float64 `json:"max_scale,omitempty"`
	ScaleStep  float64 `json:"scale_step,omitempty"`
}

// ExportConfig lists the raster sizes offered for PNG/JPEG export. A zero
// DefaultSize selects 1024 when offered, else the smallest size.
type ExportConfig struct {
	Sizes       []int `json:"sizes,omitempty"`
	DefaultSize int   `json:"default_size,omitempty"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"` // json, text
}

// Default returns the configuration used for fields the file leaves out.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		ServerAddr:     ":8080",
		DBPath:         "data/icon_studio.db",
		RequestTimeout: "90s",
		Editor: EditorConfig{
			CanvasSize: 512,
			MinScale:   0.5,
			MaxScale:   3.0,
			ScaleStep:  0.1,
		},
		// DefaultSize stays zero so a file that narrows Sizes gets a
		// default picked from its own set.
		Export: ExportConfig{
			Sizes: []int{512, 1024, 2048, 4096},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads JSON config from disk on top of Default. A missing file at
// DefaultPath is not an error; a missing explicitly named file is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Editor.CanvasSize <= 0 {
		return fmt.Errorf("editor.canvas_size must be positive")
	}
	if c.Editor.MinScale <= 0 || c.Editor.MaxScale < c.Editor.MinScale {
		return fmt.Errorf("editor scale range [%g, %g] is invalid", c.Editor.MinScale, c.Editor.MaxScale)
	}
	for _, s := range c.Export.Sizes {
		if s <= 0 {
			return fmt.Errorf("export.sizes contains non-positive size %d", s)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// Timeout parses RequestTimeout; empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout must not be negative")
	}
	return d, nil
}

// ResolveAPIKey returns APIKey, falling back to the APIKeyEnv variable.
func (l LLMConfig) ResolveAPIKey() string {
	if l.APIKey != "" {
		return l.APIKey
	}
	if l.APIKeyEnv != "" {
		return os.Getenv(l.APIKeyEnv)
	}
	return ""
}
