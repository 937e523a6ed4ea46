package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/animebridge/anime-proxy/cli/config"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Manage logs",
	Long:  `View, search, and manage AnimeProxy CLI logs.`,
}

var logsErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show error logs",
	Long:  `Display error entries from the log files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Error Logs:")
		fmt.Fprintln(out, "-----------")

		found, err := scanLogs(func(name string, lineNum int, line string) bool {
			if !strings.Contains(line, `"level":"error"`) {
				return false
			}
			fmt.Fprintf(out, "[%s] %s\n", name, line)
			return true
		})
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(out, "No errors found in logs.")
		}
		return nil
	},
}

var logsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search logs",
	Long:  `Search for a specific string in the log files.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.ToLower(args[0])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Searching for \"%s\" in logs...\n", query)
		fmt.Fprintln(out, "-----------------------------------")

		found, err := scanLogs(func(name string, lineNum int, line string) bool {
			if !strings.Contains(strings.ToLower(line), query) {
				return false
			}
			fmt.Fprintf(out, "[%s:%d] %s\n", name, lineNum, line)
			return true
		})
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(out, "No matches found.")
		}
		return nil
	},
}

var logsRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate logs",
	Long:  `Archive current logs and start fresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		closeLogFile()
		logDir, files, err := logFiles()
		if err != nil {
			return err
		}

		timestamp := time.Now().Format("20060102-150405")
		count := 0
		for _, name := range files {
			if strings.Contains(name, ".archive.") {
				continue
			}
			archived := fmt.Sprintf("%s.archive.%s.log", strings.TrimSuffix(name, ".log"), timestamp)
			if err := os.Rename(filepath.Join(logDir, name), filepath.Join(logDir, archived)); err == nil {
				count++
			}
		}

		printSuccess(fmt.Sprintf("Rotated %d log files", count))
		return nil
	},
}

var logsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old logs",
	Long:  `Delete all log files in the log directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		closeLogFile()
		logDir, files, err := logFiles()
		if err != nil {
			return err
		}

		count := 0
		for _, name := range files {
			if err := os.Remove(filepath.Join(logDir, name)); err == nil {
				count++
			}
		}

		printSuccess(fmt.Sprintf("Deleted %d log files", count))
		return nil
	},
}

func init() {
	logsCmd.AddCommand(logsErrorsCmd)
	logsCmd.AddCommand(logsSearchCmd)
	logsCmd.AddCommand(logsRotateCmd)
	logsCmd.AddCommand(logsCleanCmd)
}

func logFiles() (string, []string, error) {
	logDir := config.LoadOrDefault().Logging.Path
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			files = append(files, e.Name())
		}
	}
	return logDir, files, nil
}

// scanLogs feeds every line of every log file to match and reports whether
// any call matched.
func scanLogs(match func(name string, lineNum int, line string) bool) (bool, error) {
	logDir, files, err := logFiles()
	if err != nil {
		return false, err
	}

	found := false
	for _, name := range files {
		f, err := os.Open(filepath.Join(logDir, name))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if match(name, lineNum, scanner.Text()) {
				found = true
			}
		}
		f.Close()
	}
	return found, nil
}
