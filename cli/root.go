package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/animebridge/anime-proxy/cli/config"
	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultServerURL = "http://localhost:3000"

var (
	jsonOutput bool
	serverURL  string
	logFile    *os.File
)

var rootCmd = &cobra.Command{
	Use:           "animeproxy",
	Short:         "AnimeProxy command line client",
	Long:          `Query a running anime proxy, or resolve and normalize titles locally.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(config.LoadOrDefault())
	},
}

func Execute() error {
	defer closeLogFile()
	err := rootCmd.Execute()
	if err != nil {
		printError(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a summary")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "proxy base URL (defaults to the configured server)")

	rootCmd.AddCommand(animeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(logsCmd)
}

// setupLogging sends CLI logs to <logging.path>/animeproxy.log so that the
// logs command can search them later.
func setupLogging(cfg *config.Config) error {
	closeLogFile()
	level := logger.LogLevel(cfg.Logging.Level)
	if level == "" {
		level = logger.INFO
	}
	if cfg.Logging.Path == "" {
		logger.Init(level, true, nil)
		return nil
	}
	if err := os.MkdirAll(cfg.Logging.Path, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.Logging.Path, "animeproxy.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	logger.Init(level, true, f)
	return nil
}

func closeLogFile() {
	if logFile != nil {
		logger.Init(logger.INFO, true, nil)
		logFile.Close()
		logFile = nil
	}
}

func resolveServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	if url, err := config.GetServerURL(); err == nil {
		return url
	}
	return defaultServerURL
}

// wantJSON is true when asked for explicitly, configured, or when stdout is
// piped somewhere other than a terminal.
func wantJSON(cmd *cobra.Command) bool {
	if jsonOutput {
		return true
	}
	if config.GlobalConfig != nil && config.GlobalConfig.Output.JSON {
		return true
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return !term.IsTerminal(int(f.Fd()))
	}
	return false
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSuccess(msg string) {
	fmt.Fprintf(rootCmd.OutOrStdout(), "✓ %s\n", msg)
}

func printError(msg string) {
	fmt.Fprintf(rootCmd.ErrOrStderr(), "✗ %s\n", msg)
}
