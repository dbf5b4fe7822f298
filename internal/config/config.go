// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/freecom-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete freecom configuration.
type Config struct {
	Version string `toml:"version" yaml:"version" json:"version"`

	// Presentation settings handed to the widget
	Widget WidgetConfig `toml:"widget" yaml:"widget" json:"widget"`

	// Remote conversation service
	API APIConfig `toml:"api" yaml:"api" json:"api"`

	// Local identity persistence
	Identity IdentityConfig `toml:"identity" yaml:"identity" json:"identity"`

	// Customer bootstrap behavior
	Customer CustomerConfig `toml:"customer" yaml:"customer" json:"customer"`

	UI  UIConfig  `toml:"ui" yaml:"ui" json:"ui"`
	Log LogConfig `toml:"log" yaml:"log" json:"log"`
}

// WidgetConfig holds the values the widget uses purely for presentation.
type WidgetConfig struct {
	// MainColor is a hex color ("#RRGGBB") used for headers and the toggle button
	MainColor string `toml:"main_color" yaml:"main_color" json:"main_color"`
	// CompanyName is shown when no agent is assigned
	CompanyName string `toml:"company_name" yaml:"company_name" json:"company_name"`
	// CompanyLogoURL is the fallback profile image
	CompanyLogoURL string `toml:"company_logo_url" yaml:"company_logo_url" json:"company_logo_url"`
}

// APIConfig configures the GraphQL client.
type APIConfig struct {
	// Endpoint is the GraphQL HTTP endpoint
	Endpoint string `toml:"endpoint" yaml:"endpoint" json:"endpoint"`
	// Token is an optional bearer token sent with every request
	Token string `toml:"token" yaml:"token" json:"token"`
	// TimeoutSecs bounds every request
	TimeoutSecs int `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of attempts for transient failures (5xx, 429)
	// of read queries. Mutations are never retried.
	MaxRetries int `toml:"max_retries" yaml:"max_retries" json:"max_retries"`
	// RateLimit is the client-side request rate per second (0 = unlimited)
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	// RateBurst is the burst size for RateLimit
	RateBurst int `toml:"rate_burst" yaml:"rate_burst" json:"rate_burst"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// IdentityConfig selects the identity store backend.
type IdentityConfig struct {
	// Backend is "file", "sqlite" or "memory"
	Backend string `toml:"backend" yaml:"backend" json:"backend"`
	// Path is the file or database path (empty = default under ~/.freecom)
	Path string `toml:"path" yaml:"path" json:"path"`
}

// CustomerConfig controls how new customers are created.
type CustomerConfig struct {
	// MaxUsernameLength bounds the generated display name
	MaxUsernameLength int `toml:"max_username_length" yaml:"max_username_length" json:"max_username_length"`
	// TestWithNewCustomer wipes the stored identity at every start
	TestWithNewCustomer bool `toml:"test_with_new_customer" yaml:"test_with_new_customer" json:"test_with_new_customer"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" yaml:"theme" json:"theme"`
	// StartOpen opens the panel immediately instead of showing only the toggle
	StartOpen bool `toml:"start_open" yaml:"start_open" json:"start_open"`
	// RenderMarkdown renders message text as markdown
	RenderMarkdown bool `toml:"render_markdown" yaml:"render_markdown" json:"render_markdown"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" yaml:"level" json:"level"`
	// Format is "text" or "json"
	Format string `toml:"format" yaml:"format" json:"format"`
	// Path is the log file (empty = ~/.freecom/freecom.log)
	Path string `toml:"path" yaml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Widget: WidgetConfig{
			MainColor:      "#427FE1",
			CompanyName:    "Freecom",
			CompanyLogoURL: "http://imgur.com/qPjLkW0.png",
		},

		API: APIConfig{
			Endpoint:    "http://localhost:60000/simple/v1/freecom",
			TimeoutSecs: 15,
			MaxRetries:  3,
			RateLimit:   5,
			RateBurst:   10,
		},

		Identity: IdentityConfig{
			Backend: "file",
		},

		Customer: CustomerConfig{
			MaxUsernameLength: 22,
		},

		UI: UIConfig{
			Theme:          "auto",
			StartOpen:      true,
			RenderMarkdown: true,
		},

		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the freecom configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("FREECOM_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".freecom"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ResolvedIdentityPath returns the identity store path, filling in the
// backend-specific default when none is configured.
func (c *Config) ResolvedIdentityPath() (string, error) {
	if c.Identity.Path != "" {
		return c.Identity.Path, nil
	}
	switch c.Identity.Backend {
	case "sqlite":
		return configPath("identity.db")
	default:
		return configPath("identity.json")
	}
}

// ResolvedLogPath returns the log file path used by the TUI.
func (c *Config) ResolvedLogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return configPath("freecom.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// ActivePath returns the config file Load would read: the first of TOML,
// YAML and JSON that exists. When none exists it returns the TOML path and
// found is false.
func ActivePath() (path string, found bool, err error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML, ConfigPathJSON} {
		p, err := pathFn()
		if err != nil {
			return "", false, err
		}
		if _, statErr := os.Stat(p); statErr == nil {
			return p, true, nil
		}
	}
	p, err := ConfigPathTOML()
	return p, false, err
}

// Load loads configuration from the first config file found (TOML, YAML,
// then JSON) and falls back to defaults. Environment overrides are applied
// last, after ./.env has been read.
func Load() (*Config, error) {
	path, found, err := ActivePath()
	if err == nil && found {
		return LoadFromPath(path)
	}

	cfg := Default()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format is chosen
// by extension; anything other than .json/.yaml/.yml is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config) error {
	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadDotEnv reads ./.env into the process environment. Variables that are
// already set win over the file. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
// The API token may live in this file, so it is never group or world readable.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# freecom configuration file\n")
	buf.WriteString("# Generated by freecom - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
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

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Widget
	if !hexColor.MatchString(c.Widget.MainColor) {
		add("widget.main_color", "invalid color '%s', must be #RGB or #RRGGBB", c.Widget.MainColor)
	}
	if strings.TrimSpace(c.Widget.CompanyName) == "" {
		add("widget.company_name", "must not be empty")
	}

	// API
	if u, err := url.Parse(c.API.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.endpoint", "invalid URL '%s', must be an absolute http(s) URL", c.API.Endpoint)
	}
	if c.API.TimeoutSecs <= 0 || c.API.TimeoutSecs > 300 {
		add("api.timeout_secs", "must be 1-300, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 1 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be 1-10, got %d", c.API.MaxRetries)
	}
	if c.API.RateLimit < 0 {
		add("api.rate_limit", "cannot be negative")
	}

	// Identity
	validBackends := map[string]bool{"file": true, "sqlite": true, "memory": true}
	if !validBackends[c.Identity.Backend] {
		add("identity.backend", "invalid backend '%s', must be one of: file, sqlite, memory", c.Identity.Backend)
	}

	// Customer
	if c.Customer.MaxUsernameLength < 4 || c.Customer.MaxUsernameLength > 64 {
		add("customer.max_username_length", "must be 4-64, got %d", c.Customer.MaxUsernameLength)
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		add("log.format", "invalid format '%s', must be one of: text, json", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills any missing or zero-value fields from Default().
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Widget.MainColor == "" {
		c.Widget.MainColor = d.Widget.MainColor
	}
	if c.Widget.CompanyName == "" {
		c.Widget.CompanyName = d.Widget.CompanyName
	}
	if c.API.Endpoint == "" {
		c.API.Endpoint = d.API.Endpoint
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = d.API.MaxRetries
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = d.API.RateBurst
	}
	if c.Identity.Backend == "" {
		c.Identity.Backend = d.Identity.Backend
	}
	if c.Customer.MaxUsernameLength == 0 {
		c.Customer.MaxUsernameLength = d.Customer.MaxUsernameLength
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - FREECOM_API_ENDPOINT: overrides api.endpoint
//   - FREECOM_API_TOKEN: overrides api.token
//   - FREECOM_MAIN_COLOR: overrides widget.main_color
//   - FREECOM_COMPANY_NAME: overrides widget.company_name
//   - FREECOM_COMPANY_LOGO_URL: overrides widget.company_logo_url
//   - FREECOM_IDENTITY_BACKEND: overrides identity.backend
//   - FREECOM_IDENTITY_PATH: overrides identity.path
//   - FREECOM_TEST_WITH_NEW_CUSTOMER: "1" or "true" wipes identity at start
//   - FREECOM_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	stringVars := map[string]*string{
		"FREECOM_API_ENDPOINT":     &c.API.Endpoint,
		"FREECOM_API_TOKEN":        &c.API.Token,
		"FREECOM_MAIN_COLOR":       &c.Widget.MainColor,
		"FREECOM_COMPANY_NAME":     &c.Widget.CompanyName,
		"FREECOM_COMPANY_LOGO_URL": &c.Widget.CompanyLogoURL,
		"FREECOM_IDENTITY_BACKEND": &c.Identity.Backend,
		"FREECOM_IDENTITY_PATH":    &c.Identity.Path,
		"FREECOM_LOG_LEVEL":        &c.Log.Level,
	}
	for name, dst := range stringVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("FREECOM_TEST_WITH_NEW_CUSTOMER"); v != "" {
		b, err := strconv.ParseBool(v)
		c.Customer.TestWithNewCustomer = err == nil && b
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON rendering of the config with the API token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.API.Token != "" {
		safe.API.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
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

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
