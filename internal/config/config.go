// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/termgpt/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termgpt configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Sampling defaults, overridable per request from the CLI
	DefaultTemperature float64 `toml:"default_temperature" json:"default_temperature"`
	DefaultTopP        float64 `toml:"default_top_p" json:"default_top_p"`

	// Ollama (completion service) configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Cache configuration
	Cache CacheConfig `toml:"cache" json:"cache"`

	// Chat persistence configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains completion service configuration.
type OllamaConfig struct {
	// URL is the Ollama server base URL
	URL string `toml:"url" json:"url"`
	// TimeoutSecs is the request timeout in seconds (0 = no timeout; completions
	// are network-bound and may legitimately run for minutes)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond caps outgoing completion requests (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// Timeout returns TimeoutSecs as a duration.
func (o OllamaConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Enabled controls whether completions are cached by default.
	// Individual requests can still opt out with --no-cache.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.termgpt/cache.db)
	Path string `toml:"path" json:"path"`
}

// ChatConfig contains conversation persistence configuration.
type ChatConfig struct {
	// Dir is the conversations directory (empty = ~/.termgpt/chats)
	Dir string `toml:"dir" json:"dir"`
	// MaxMessages caps persisted messages per chat (0 = unlimited)
	MaxMessages int `toml:"max_messages" json:"max_messages"`
}

// UIConfig contains output rendering configuration.
type UIConfig struct {
	// Markdown enables glamour markdown rendering on TTY output
	Markdown bool `toml:"markdown" json:"markdown"`
	// HighlightTheme is the chroma style for command/code highlighting
	HighlightTheme string `toml:"highlight_theme" json:"highlight_theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Version:            "1",
		DefaultModel:       "qwen2.5:7b",
		DefaultTemperature: 0.1,
		DefaultTopP:        1.0,
		Ollama: OllamaConfig{
			URL:               "http://127.0.0.1:11434",
			TimeoutSecs:       0,
			RequestsPerSecond: 0,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Chat: ChatConfig{
			MaxMessages: 0,
		},
		UI: UIConfig{
			Markdown:       true,
			HighlightTheme: "monokai",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the termgpt configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".termgpt"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

var (
	globalConfig *Config
	globalOnce   sync.Once
	globalMu     sync.Mutex
)

// Global returns the process-wide configuration, loading it on first use.
// Failures fall back to defaults; commands that need to distinguish a broken
// config file from a missing one should call Load directly.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalMu.Lock()
		globalConfig = cfg
		globalMu.Unlock()
	})
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration. Used by the config
// watcher and by tests.
func SetGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// Load reads the configuration from disk, preferring TOML over JSON, and
// applies environment overrides. Missing files are not an error; the result
// is the defaults.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, err
			}
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// LoadTOML decodes a TOML config file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON config file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads configuration from an explicit file path, choosing the
// decoder from the extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = LoadTOML(cfg, path)
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		err = fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the TOML config path atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML to path.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TERMGPT_* environment variables over cfg.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TERMGPT_DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("TERMGPT_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("TERMGPT_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = !b
		}
	}
	if v := os.Getenv("TERMGPT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DefaultTemperature = f
		}
	}
	if v := os.Getenv("TERMGPT_TOP_P"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DefaultTopP = f
		}
	}
	if v := os.Getenv("TERMGPT_CHAT_DIR"); v != "" {
		c.Chat.Dir = v
	}
	if v := os.Getenv("TERMGPT_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%s): %s", e.Field, e.Value, e.Reason)
}

// ValidateErrors aggregates validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that cfg is internally consistent.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.DefaultTemperature < 0.0 || c.DefaultTemperature > 2.0 {
		errs = append(errs, ValidationError{
			Field:  "default_temperature",
			Value:  strconv.FormatFloat(c.DefaultTemperature, 'f', -1, 64),
			Reason: "must be between 0.0 and 2.0",
		})
	}
	if c.DefaultTopP < 0.1 || c.DefaultTopP > 1.0 {
		errs = append(errs, ValidationError{
			Field:  "default_top_p",
			Value:  strconv.FormatFloat(c.DefaultTopP, 'f', -1, 64),
			Reason: "must be between 0.1 and 1.0",
		})
	}
	if c.Ollama.URL != "" {
		if _, err := url.Parse(c.Ollama.URL); err != nil {
			errs = append(errs, ValidationError{
				Field:  "ollama.url",
				Value:  c.Ollama.URL,
				Reason: "not a valid URL",
			})
		}
	}
	if c.Ollama.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:  "ollama.requests_per_second",
			Value:  strconv.FormatFloat(c.Ollama.RequestsPerSecond, 'f', -1, 64),
			Reason: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED PATHS
// =============================================================================

// ChatDir returns the conversations directory, falling back to the default
// under the config dir.
func (c *Config) ChatDir() (string, error) {
	if c.Chat.Dir != "" {
		return c.Chat.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chats"), nil
}

// CachePath returns the response cache database path.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// RolesDir returns the custom roles directory.
func RolesDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roles"), nil
}

// HistoryPath returns the REPL input history file path.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "repl_history"), nil
}

// =============================================================================
// KEY ACCESS (config show/set)
// =============================================================================

// Get returns the value of a dotted config key.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "default_model":
		return c.DefaultModel, nil
	case "default_temperature":
		return strconv.FormatFloat(c.DefaultTemperature, 'f', -1, 64), nil
	case "default_top_p":
		return strconv.FormatFloat(c.DefaultTopP, 'f', -1, 64), nil
	case "ollama.url":
		return c.Ollama.URL, nil
	case "ollama.timeout_secs":
		return strconv.Itoa(c.Ollama.TimeoutSecs), nil
	case "ollama.requests_per_second":
		return strconv.FormatFloat(c.Ollama.RequestsPerSecond, 'f', -1, 64), nil
	case "cache.enabled":
		return strconv.FormatBool(c.Cache.Enabled), nil
	case "cache.path":
		return c.Cache.Path, nil
	case "chat.dir":
		return c.Chat.Dir, nil
	case "chat.max_messages":
		return strconv.Itoa(c.Chat.MaxMessages), nil
	case "ui.markdown":
		return strconv.FormatBool(c.UI.Markdown), nil
	case "ui.highlight_theme":
		return c.UI.HighlightTheme, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set assigns a dotted config key from its string representation.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "default_model":
		c.DefaultModel = value
	case "default_temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %q", key, value)
		}
		c.DefaultTemperature = f
	case "default_top_p":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %q", key, value)
		}
		c.DefaultTopP = f
	case "ollama.url":
		c.Ollama.URL = value
	case "ollama.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Ollama.TimeoutSecs = n
	case "ollama.requests_per_second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %q", key, value)
		}
		c.Ollama.RequestsPerSecond = f
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		c.Cache.Enabled = b
	case "cache.path":
		c.Cache.Path = value
	case "chat.dir":
		c.Chat.Dir = value
	case "chat.max_messages":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Chat.MaxMessages = n
	case "ui.markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		c.UI.Markdown = b
	case "ui.highlight_theme":
		c.UI.HighlightTheme = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Keys lists all settable config keys.
func Keys() []string {
	return []string{
		"default_model",
		"default_temperature",
		"default_top_p",
		"ollama.url",
		"ollama.timeout_secs",
		"ollama.requests_per_second",
		"cache.enabled",
		"cache.path",
		"chat.dir",
		"chat.max_messages",
		"ui.markdown",
		"ui.highlight_theme",
	}
}
