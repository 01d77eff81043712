// Package config loads and persists the proxy configuration. The file lives
// in the XDG config directory as config.json; TENANTGATE_* environment
// variables override individual fields for container deployments.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Listen is the address the proxy accepts client connections on.
	Listen string `json:"listen"`
	// Backend is the host:port every request is forwarded to.
	Backend string `json:"backend"`
	// HostSuffix replaces the wildcard zone when the Host header is
	// rewritten: tenant.1.2.3.4.nip.io becomes tenant.<hostSuffix>.
	HostSuffix string `json:"hostSuffix"`

	Admin AdminConfig `json:"admin"`

	// PolicyFile points at the YAML file listing blocked tenants. Empty
	// means no policy is enforced.
	PolicyFile string `json:"policyFile,omitempty"`

	DialTimeoutSeconds  int `json:"dialTimeoutSeconds"`
	DrainTimeoutSeconds int `json:"drainTimeoutSeconds"`

	// LogFormat is "auto", "text" or "json". Auto picks text on a
	// terminal and JSON otherwise.
	LogFormat string `json:"logFormat,omitempty"`
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `json:"logLevel,omitempty"`
}

type AdminConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}

func Default() Config {
	return Config{
		Listen:     "0.0.0.0:8100",
		Backend:    "localhost:80",
		HostSuffix: "localhost",
		Admin: AdminConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8101",
		},
		DialTimeoutSeconds:  10,
		DrainTimeoutSeconds: 5,
		LogFormat:           "auto",
		LogLevel:            "info",
	}
}

func Path(dir string) string { return filepath.Join(dir, "config.json") }

// LoadOrCreate reads the config from configDir, writing the defaults first
// when no file exists yet. Fields an older file does not carry fall back to
// their defaults.
func LoadOrCreate(configDir string) (Config, error) {
	p := Path(configDir)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(configDir, cfg); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func Save(configDir string, cfg Config) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(configDir), b, 0o644)
}

func (c *Config) applyDefaults() {
	d := Default()
	c.Listen = defaultIfEmpty(c.Listen, d.Listen)
	c.Backend = defaultIfEmpty(c.Backend, d.Backend)
	c.HostSuffix = defaultIfEmpty(c.HostSuffix, d.HostSuffix)
	c.Admin.Listen = defaultIfEmpty(c.Admin.Listen, d.Admin.Listen)
	c.DialTimeoutSeconds = valueOrDefault(c.DialTimeoutSeconds, d.DialTimeoutSeconds)
	c.DrainTimeoutSeconds = valueOrDefault(c.DrainTimeoutSeconds, d.DrainTimeoutSeconds)
	c.LogFormat = defaultIfEmpty(c.LogFormat, d.LogFormat)
	c.LogLevel = defaultIfEmpty(c.LogLevel, d.LogLevel)
}

// ApplyEnv overrides fields from TENANTGATE_* environment variables so
// containerized deployments can skip the config file entirely.
func (c *Config) ApplyEnv() {
	setIfEnv(&c.Listen, "TENANTGATE_LISTEN")
	setIfEnv(&c.Backend, "TENANTGATE_BACKEND")
	setIfEnv(&c.HostSuffix, "TENANTGATE_HOST_SUFFIX")
	setIfEnv(&c.Admin.Listen, "TENANTGATE_ADMIN_LISTEN")
	setIfEnv(&c.PolicyFile, "TENANTGATE_POLICY_FILE")
	setIfEnv(&c.LogFormat, "TENANTGATE_LOG_FORMAT")
	setIfEnv(&c.LogLevel, "TENANTGATE_LOG_LEVEL")
	if v := strings.TrimSpace(os.Getenv("TENANTGATE_ADMIN_DISABLED")); v == "1" || v == "true" {
		c.Admin.Enabled = false
	}
}

// Validate rejects configurations the proxy could not start with.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	if _, _, err := net.SplitHostPort(c.Backend); err != nil {
		return fmt.Errorf("invalid backend address %q: %w", c.Backend, err)
	}
	if strings.TrimSpace(c.HostSuffix) == "" {
		return errors.New("hostSuffix must not be empty")
	}
	if c.Admin.Enabled {
		if _, _, err := net.SplitHostPort(c.Admin.Listen); err != nil {
			return fmt.Errorf("invalid admin listen address %q: %w", c.Admin.Listen, err)
		}
	}
	switch c.LogFormat {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid logFormat %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logLevel %q", c.LogLevel)
	}
	return nil
}

func (c Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

func (c Config) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutSeconds) * time.Second
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func valueOrDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func setIfEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
