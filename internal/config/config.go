// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/util"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete showcase-chat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// APIConfig describes the chat backend.
type APIConfig struct {
	BaseURL string `toml:"base_url" json:"base_url"`

	// TokenFile holds the bearer token and profile written by `login`.
	TokenFile string `toml:"token_file" json:"token_file"`

	// Token comes from SHOWCASE_TOKEN only and is never written to disk.
	Token string `toml:"-" json:"-"`

	TimeoutSeconds    int     `toml:"timeout_seconds" json:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `toml:"burst" json:"burst"`
}

// UIConfig controls the chat surface.
type UIConfig struct {
	TypingIntervalMs int  `toml:"typing_interval_ms" json:"typing_interval_ms"`
	RenderMarkdown   bool `toml:"render_markdown" json:"render_markdown"`
	WordWrap         int  `toml:"word_wrap" json:"word_wrap"`
	SidebarWidth     int  `toml:"sidebar_width" json:"sidebar_width"`
}

// StorageConfig controls local files.
type StorageConfig struct {
	TranscriptsDir string `toml:"transcripts_dir" json:"transcripts_dir"`
	HistoryFile    string `toml:"history_file" json:"history_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), "showcase")
	}
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:           transport.DefaultBaseURL,
			TokenFile:         filepath.Join(dir, "credentials.json"),
			TimeoutSeconds:    int(transport.DefaultTimeout / time.Second),
			RequestsPerSecond: 5,
			Burst:             5,
		},
		UI: UIConfig{
			TypingIntervalMs: 100,
			RenderMarkdown:   true,
			WordWrap:         80,
			SidebarWidth:     28,
		},
		Storage: StorageConfig{
			TranscriptsDir: filepath.Join(dir, "transcripts"),
			HistoryFile:    filepath.Join(dir, "chat_history"),
		},
	}
}

// TransportOptions converts the API section for transport.New.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		BaseURL:           c.API.BaseURL,
		Timeout:           time.Duration(c.API.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.API.RequestsPerSecond,
		Burst:             c.API.Burst,
	}
}

// TypingInterval returns the typing cadence.
func (c *Config) TypingInterval() time.Duration {
	return time.Duration(c.UI.TypingIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the showcase-chat configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SHOWCASE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".showcase"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.showcase/config.toml, falling back to config.json and then
// to defaults. Environment overrides are applied last. A file that fails to
// parse is reported alongside the default configuration.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg, err := LoadFromPath(tomlPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	if loadErr == nil {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				cfg, err := LoadFromPath(jsonPath)
				if err == nil {
					return cfg, nil
				}
				loadErr = err
			}
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads one file (TOML unless it ends in .json) over the
// defaults, then applies env overrides, defaults and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg as TOML with a header comment and 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# showcase-chat configuration file\n")
	b.WriteString("# Generated by showcase-chat - edit with care\n")
	b.WriteString("#\n")
	b.WriteString("# The bearer token is not stored here; see api.token_file.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "must be an http(s) URL"})
	}
	if strings.TrimSpace(c.API.TokenFile) == "" {
		errs = append(errs, ValidationError{Field: "api.token_file", Message: "must not be empty"})
	}
	if c.API.TimeoutSeconds < 1 || c.API.TimeoutSeconds > 600 {
		errs = append(errs, ValidationError{Field: "api.timeout_seconds", Message: "must be between 1 and 600"})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must not be negative"})
	}
	if c.API.Burst < 0 {
		errs = append(errs, ValidationError{Field: "api.burst", Message: "must not be negative"})
	}
	if c.UI.TypingIntervalMs < 1 || c.UI.TypingIntervalMs > 5000 {
		errs = append(errs, ValidationError{Field: "ui.typing_interval_ms", Message: "must be between 1 and 5000"})
	}
	if c.UI.WordWrap < 20 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be at least 20"})
	}
	if c.UI.SidebarWidth < 12 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{Field: "ui.sidebar_width", Message: "must be between 12 and 80"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TokenFile == "" {
		c.API.TokenFile = d.API.TokenFile
	}
	c.API.TokenFile = expandHome(c.API.TokenFile)
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = d.API.TimeoutSeconds
	}
	if c.UI.TypingIntervalMs == 0 {
		c.UI.TypingIntervalMs = d.UI.TypingIntervalMs
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if c.Storage.TranscriptsDir == "" {
		c.Storage.TranscriptsDir = d.Storage.TranscriptsDir
	}
	c.Storage.TranscriptsDir = expandHome(c.Storage.TranscriptsDir)
	if c.Storage.HistoryFile == "" {
		c.Storage.HistoryFile = d.Storage.HistoryFile
	}
	c.Storage.HistoryFile = expandHome(c.Storage.HistoryFile)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SHOWCASE_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SHOWCASE_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHOWCASE_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("SHOWCASE_TOKEN_FILE"); v != "" {
		c.API.TokenFile = v
	}
	if v := os.Getenv("SHOWCASE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("SHOWCASE_TYPING_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.UI.TypingIntervalMs = ms
		}
	}
	if v := os.Getenv("SHOWCASE_NO_MARKDOWN"); v == "1" || strings.EqualFold(v, "true") {
		c.UI.RenderMarkdown = false
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value using dot notation (e.g. "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value using dot notation. String values are converted to
// the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		want := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, want)
		})
		if !field.IsValid() || isHidden(v.Type(), want) {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// isHidden reports fields tagged toml:"-", which are not addressable by key.
func isHidden(t reflect.Type, name string) bool {
	f, ok := t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	return ok && f.Tag.Get("toml") == "-"
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all settable keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"api.base_url",
		"api.token_file",
		"api.timeout_seconds",
		"api.requests_per_second",
		"api.burst",
		"ui.typing_interval_ms",
		"ui.render_markdown",
		"ui.word_wrap",
		"ui.sidebar_width",
		"storage.transcripts_dir",
		"storage.history_file",
	}
}

// =============================================================================
// CLONE / STRING
// =============================================================================

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as JSON with the in-memory token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	view := struct {
		*Config
		Token string `json:"token,omitempty"`
	}{Config: safe}
	if safe.API.Token != "" {
		view.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(view, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
