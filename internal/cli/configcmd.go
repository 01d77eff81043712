package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"tenantgate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tenantgate configuration",
}

var configKeys = []string{
	"listen", "backend", "hostSuffix", "policyFile", "adminEnabled",
	"adminListen", "dialTimeoutSeconds", "drainTimeoutSeconds",
	"logFormat", "logLevel",
}

var configGetCmd = &cobra.Command{
	Use:       "get KEY",
	Short:     "Get a config value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: configKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.LoadOrCreate(configDir)
		if err != nil {
			return err
		}
		val, err := getConfigField(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "Set a config value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: configKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.LoadOrCreate(configDir)
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := setConfigField(&cfg, key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return config.Save(configDir, cfg)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show full config JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.LoadOrCreate(configDir)
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Path(configDir))
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config file in your editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		// Ensure config exists
		_, err = config.LoadOrCreate(configDir)
		if err != nil {
			return err
		}

		configPath := config.Path(configDir)
		editor := getEditor()

		editorCmd := exec.Command(editor, configPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr

		return editorCmd.Run()
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(configDir, config.Default()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Config reset to default values")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.PersistentFlags().String("config-dir", "", "Directory holding config.json (defaults to the XDG config dir)")
}

func getConfigField(cfg config.Config, key string) (string, error) {
	switch key {
	case "listen":
		return cfg.Listen, nil
	case "backend":
		return cfg.Backend, nil
	case "hostSuffix":
		return cfg.HostSuffix, nil
	case "policyFile":
		return cfg.PolicyFile, nil
	case "adminEnabled":
		return strconv.FormatBool(cfg.Admin.Enabled), nil
	case "adminListen":
		return cfg.Admin.Listen, nil
	case "dialTimeoutSeconds":
		return strconv.Itoa(cfg.DialTimeoutSeconds), nil
	case "drainTimeoutSeconds":
		return strconv.Itoa(cfg.DrainTimeoutSeconds), nil
	case "logFormat":
		return cfg.LogFormat, nil
	case "logLevel":
		return cfg.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

func setConfigField(cfg *config.Config, key, val string) error {
	switch key {
	case "listen":
		cfg.Listen = val
	case "backend":
		cfg.Backend = val
	case "hostSuffix":
		cfg.HostSuffix = val
	case "policyFile":
		cfg.PolicyFile = val
	case "adminEnabled":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		cfg.Admin.Enabled = v
	case "adminListen":
		cfg.Admin.Listen = val
	case "dialTimeoutSeconds":
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.DialTimeoutSeconds = v
	case "drainTimeoutSeconds":
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.DrainTimeoutSeconds = v
	case "logFormat":
		cfg.LogFormat = val
	case "logLevel":
		cfg.LogLevel = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// getEditor returns the user's preferred editor based on environment variables
// or a sensible default for the platform.
func getEditor() string {
	// Check VISUAL first (for full-screen editors)
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	// Fall back to EDITOR
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	// Default to vi (available on virtually all Unix systems)
	return "vi"
}
