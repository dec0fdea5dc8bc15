// Package config builds the Go values the core packages consume (provider
// options, tool defaults) from a TOML file plus environment variable
// overrides. The core provider/tools/permission/agent packages never import
// this package directly; it exists only to assemble their inputs for
// cmd/symb, exactly as the teacher's internal/config does for its own CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root on-disk configuration structure: provider base
// URLs/model aliases/capabilities and tool defaults. API keys are never
// read from this file — they resolve from environment variables, per
// spec.md §3's "<PROVIDER>_API_KEY" convention.
type Config struct {
	DefaultProvider string                    `toml:"default_provider"`
	Providers       map[string]ProviderConfig `toml:"providers"`
	Tools           ToolConfig                `toml:"tools"`
}

// ProviderConfig holds the non-secret parts of one provider's wiring: its
// base URL, model alias/id, capability flags, and any extra headers the
// chat-completion-compatible family needs (e.g. referer/title).
type ProviderConfig struct {
	Family       string            `toml:"family"`
	BaseURL      string            `toml:"base_url"`
	Model        string            `toml:"model"`
	Temperature  float64           `toml:"temperature"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
	Vision       bool              `toml:"vision"`
	Tools        bool              `toml:"tools"`
	Streaming    bool              `toml:"streaming"`
	ParallelTool bool              `toml:"parallel_tool_calls"`
	JSONMode     bool              `toml:"json_mode"`
}

// ToolConfig holds the tool-execution defaults spec.md §4.4 leaves to the
// caller: the bash timeout and the output-truncation ceiling.
type ToolConfig struct {
	DefaultTimeoutMS int `toml:"default_timeout_ms"`
	MaxOutputSize    int `toml:"max_output_size"`
}

// DefaultTimeoutMSOrDefault returns the configured bash timeout or 120s if unset.
func (t ToolConfig) DefaultTimeoutMSOrDefault() int {
	if t.DefaultTimeoutMS <= 0 {
		return 120_000
	}
	return t.DefaultTimeoutMS
}

// MaxOutputSizeOrDefault returns the configured output ceiling or 1 MiB if unset.
func (t ToolConfig) MaxOutputSizeOrDefault() int {
	if t.MaxOutputSize <= 0 {
		return 1 << 20
	}
	return t.MaxOutputSize
}

// providerAPIKeyEnv names the environment variable each known provider
// family's API key is read from, per spec.md §3/§7.
var providerAPIKeyEnv = map[string]string{
	"anthropic":       "ANTHROPIC_API_KEY",
	"openai":          "OPENAI_API_KEY",
	"openai-responses": "OPENAI_API_KEY",
	"gemini":          "GEMINI_API_KEY",
	"openrouter":      "OPENROUTER_API_KEY",
	"together":        "TOGETHER_API_KEY",
	"groq":            "GROQ_API_KEY",
	"fireworks":       "FIREWORKS_API_KEY",
	"azure-openai":    "AZURE_OPENAI_API_KEY",
	"zen":             "ZEN_API_KEY",
}

// APIKeyEnvVar returns the environment variable name a provider named by
// family resolves its API key from, and whether family is recognized.
func APIKeyEnvVar(family string) (string, bool) {
	v, ok := providerAPIKeyEnv[family]
	return v, ok
}

// Load reads configuration from a TOML file; path may be empty, in which
// case an empty Config is returned (every provider is still constructible
// purely from environment variables and CLI-supplied defaults).
func Load(path string) (*Config, error) {
	cfg := &Config{Providers: make(map[string]ProviderConfig)}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is internally inconsistent.
func (c *Config) Validate() error {
	var errs []error
	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			errs = append(errs, fmt.Errorf("default_provider=%q does not exist in providers", c.DefaultProvider))
		}
	}
	for name, p := range c.Providers {
		if p.Temperature < 0.0 || p.Temperature > 2.0 {
			errs = append(errs, fmt.Errorf("providers.%s.temperature=%v must be between 0.0 and 2.0", name, p.Temperature))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ResolveAPIKey returns the API key for a provider named name: the
// environment variable named after its configured (or same-named) family
// takes precedence, falling back to creds (a saved credentials file) when
// the environment doesn't have it. creds may be nil.
func (c *Config) ResolveAPIKey(name string, creds *Credentials) string {
	family := name
	if p, ok := c.Providers[name]; ok && p.Family != "" {
		family = p.Family
	}
	if envVar, ok := providerAPIKeyEnv[family]; ok {
		if v := os.Getenv(envVar); v != "" {
			return v
		}
	}
	return creds.GetAPIKey(name)
}

// DataDir returns the path to symb's XDG config directory (~/.config/symb).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "symb"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}
