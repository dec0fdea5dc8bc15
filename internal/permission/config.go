package permission

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persisted, user-curated allow-list: patterns matched
// against a call's target before ever prompting. FileRead is always
// allowed (tools read freely; only mutation and execution are gated).
// SystemModification is never allowed from config — it has no approval
// path at all. Grounded on original_source/src/permission/config.rs.
type Config struct {
	AllowedCommands    []Pattern `json:"allowed_commands"`
	AllowedWritePaths  []Pattern `json:"allowed_write_paths"`
	AllowedDeletePaths []Pattern `json:"allowed_delete_paths"`
	AllowedNetworkHosts []Pattern `json:"allowed_network_hosts"`
	CreatedAt          time.Time `json:"created_at"`
	LastUpdated        time.Time `json:"last_updated"`
}

type wirePattern struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	var kind string
	switch p.Kind {
	case Exact:
		kind = "exact"
	case Glob:
		kind = "glob"
	case Regex:
		kind = "regex"
	}
	return json.Marshal(wirePattern{Kind: kind, Text: p.Text})
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var w wirePattern
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "glob":
		p.Kind = Glob
	case "regex":
		p.Kind = Regex
	default:
		p.Kind = Exact
	}
	p.Text = w.Text
	return nil
}

// NewConfig returns an empty Config stamped with the current time.
func NewConfig(now time.Time) *Config {
	return &Config{CreatedAt: now, LastUpdated: now}
}

// Load reads a Config from path, returning a fresh empty Config if the
// file doesn't exist yet.
func Load(path string, now time.Time) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewConfig(now), nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save persists the config to path, creating parent directories as needed.
func (c *Config) Save(path string, now time.Time) error {
	c.LastUpdated = now
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// matchesAny reports whether target matches any pattern in the list, short-
// circuiting with an error the moment a pattern fails to compile (a
// malformed glob or regex) rather than silently treating it as a
// non-match.
func matchesAny(patterns []Pattern, target string) (bool, error) {
	for _, p := range patterns {
		ok, err := p.Matches(target)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// IsAllowed reports whether target is pre-approved for opType by this
// config. FileRead is always true; SystemModification is always false. A
// malformed pattern in the relevant list is a configuration error, not a
// non-match.
func (c *Config) IsAllowed(opType Type, target string) (bool, error) {
	switch opType {
	case FileRead:
		return true, nil
	case FileWrite:
		return matchesAny(c.AllowedWritePaths, target)
	case FileDelete:
		return matchesAny(c.AllowedDeletePaths, target)
	case CommandExecute:
		return matchesAny(c.AllowedCommands, target)
	case NetworkAccess:
		return matchesAny(c.AllowedNetworkHosts, target)
	case SystemModification:
		return false, nil
	default:
		return false, nil
	}
}

// DefaultConfigDir resolves where permissions.json lives: a `.symb`
// directory under cwd if one already exists, else falls back to dataDir
// (the user's XDG config directory, resolved by internal/config), else a
// bare `.symb` under cwd.
func DefaultConfigDir(dataDir string) string {
	if info, err := os.Stat(".symb"); err == nil && info.IsDir() {
		return ".symb"
	}
	if dataDir != "" {
		return dataDir
	}
	return ".symb"
}

// DefaultConfigFile joins dir with the conventional permissions file name.
func DefaultConfigFile(dir string) string {
	return filepath.Join(dir, "permissions.json")
}
