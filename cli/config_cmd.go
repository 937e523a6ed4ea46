package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/animebridge/anime-proxy/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify AnimeProxy CLI configuration.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		printSuccess(fmt.Sprintf("Configuration written to %s", path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration not initialized, run: animeproxy config init")
		}

		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long:  `Set a configuration value. Key should be in format 'section.key' (e.g., upstream.base_url).`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration not initialized, run: animeproxy config init")
		}
		if err := setConfigValue(cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		printSuccess(fmt.Sprintf("Updated %s to %s", key, value))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key'")
	}

	switch strings.ToLower(parts[0]) + "." + strings.ToLower(parts[1]) {
	case "server.host":
		cfg.Server.Host = value
	case "server.http_port":
		v, err := strconv.Atoi(value)
		if err != nil || v <= 0 || v > 65535 {
			return fmt.Errorf("invalid port for http_port")
		}
		cfg.Server.HTTPPort = v
	case "upstream.base_url":
		cfg.Upstream.BaseURL = strings.TrimRight(value, "/")
	case "upstream.timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for timeout")
		}
		cfg.Upstream.Timeout = value
	case "rules.path":
		cfg.Rules.Path = value
	case "output.json":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for json")
		}
		cfg.Output.JSON = v
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.path":
		cfg.Logging.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
