package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tenantgate/internal/config"
	"tenantgate/internal/xdg"
)

// isTruthyEnv returns true for truthy environment variable values.
func isTruthyEnv(key string) bool {
	val := strings.TrimSpace(os.Getenv(key))
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// resolveConfigDir honors an explicit --config-dir flag before falling back to
// the XDG location.
func resolveConfigDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("config-dir"); dir != "" {
		return dir, nil
	}
	return xdg.ConfigDir()
}

// loadConfig reads the config file (creating it with defaults on first run)
// and layers environment overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	configDir, err := resolveConfigDir(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.LoadOrCreate(configDir)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg.ApplyEnv()
	return cfg, configDir, nil
}

// flagOverride copies a string flag into target when the flag was set
// explicitly on the command line.
func flagOverride(cmd *cobra.Command, name string, target *string) {
	if cmd.Flags().Changed(name) {
		if v, err := cmd.Flags().GetString(name); err == nil {
			*target = v
		}
	}
}
