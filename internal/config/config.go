package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
)

// EnvPrefix prefixes environment overrides, e.g. SHIPTEA_AGENT_TIMEOUT_MS.
const EnvPrefix = "SHIPTEA_"

// Config holds application configuration.
type Config struct {
	Agent struct {
		Path         string `koanf:"path"`
		TimeoutMs    int    `koanf:"timeout_ms"`
		MaxTurns     int    `koanf:"max_turns"`
		AllowedTools string `koanf:"allowed_tools"`
	} `koanf:"agent"`

	UI struct {
		Locale         string `koanf:"locale"`
		PollIntervalMs int    `koanf:"poll_interval_ms"`
		Notify         bool   `koanf:"notify"`
		MarkdownStyle  string `koanf:"markdown_style"`
	} `koanf:"ui"`

	Analytics struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"analytics"`

	Providers struct {
		Verify   bool   `koanf:"verify"`
		Override string `koanf:"override"`
	} `koanf:"providers"`

	Log struct {
		File  string `koanf:"file"`
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// Defaults
const (
	DefaultAgentTimeoutMs = 600000
	DefaultAgentMaxTurns  = 30
	DefaultAllowedTools   = "Read,Edit,Write,Glob,Grep,Bash"
	DefaultPollIntervalMs = 5000
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"agent.path":          "",
		"agent.timeout_ms":    DefaultAgentTimeoutMs,
		"agent.max_turns":     DefaultAgentMaxTurns,
		"agent.allowed_tools": DefaultAllowedTools,
		"ui.locale":           "",
		"ui.poll_interval_ms": DefaultPollIntervalMs,
		"ui.notify":           true,
		"ui.markdown_style":   "",
		"analytics.enabled":   true,
		"providers.verify":    false,
		"providers.override":  "",
		"log.file":            filepath.Join(DefaultConfigDir(), "shiptea.log"),
		"log.level":           "info",
	}
}

// DefaultConfigDir returns the platform-appropriate config directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "shiptea")
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".config", "shiptea")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "shiptea")
		}
		return filepath.Join(home, ".config", "shiptea")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "shiptea")
		}
		return filepath.Join(home, ".config", "shiptea")
	}
}

// DefaultConfigPath returns the config file used when none is given.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// Load layers defaults, the TOML file and SHIPTEA_ environment variables.
// An explicit path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SHIPTEA_AGENT_TIMEOUT_MS to agent.timeout_ms: only the first
// underscore separates section from key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Agent.TimeoutMs <= 0 {
		return fmt.Errorf("agent.timeout_ms must be positive, got %d", c.Agent.TimeoutMs)
	}
	if c.Agent.MaxTurns <= 0 {
		return fmt.Errorf("agent.max_turns must be positive, got %d", c.Agent.MaxTurns)
	}
	if c.UI.PollIntervalMs < 500 {
		return fmt.Errorf("ui.poll_interval_ms must be at least 500, got %d", c.UI.PollIntervalMs)
	}
	if _, err := provider.ParseID(c.Providers.Override); err != nil {
		return fmt.Errorf("providers.override: %w", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// AgentTimeout returns the configured agent timeout as a time.Duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutMs) * time.Millisecond
}

// PollInterval returns how often the conversation is re-detected.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.UI.PollIntervalMs) * time.Millisecond
}

// ProviderOverride returns the parsed provider override (empty when unset).
func (c *Config) ProviderOverride() provider.ID {
	id, _ := provider.ParseID(c.Providers.Override)
	return id
}

const sampleConfig = `# shiptea configuration

[agent]
# path = "/usr/local/bin/claude"
timeout_ms = 600000
max_turns = 30
allowed_tools = "Read,Edit,Write,Glob,Grep,Bash"

[ui]
# locale = "de"
poll_interval_ms = 5000
# desktop notification when an agent turn finishes
notify = true
# glamour style: dark, light, notty (default picks from the terminal)
# markdown_style = "dark"

[analytics]
enabled = true

[providers]
verify = false
# override = "gitlab"

[log]
level = "info"
`

// InitConfig writes a commented sample config to path.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
