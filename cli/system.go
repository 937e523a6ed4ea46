package cli

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/animebridge/anime-proxy/cli/config"
	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "System information",
	Long:  `Display system information and diagnostics.`,
}

var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system info",
	Long:  `Display OS details, the active configuration and whether the proxy is reachable and ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "System Information:")
		fmt.Fprintln(out, "-------------------")
		fmt.Fprintf(out, "OS: %s\n", runtime.GOOS)
		fmt.Fprintf(out, "Architecture: %s\n", runtime.GOARCH)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "CPUs: %d\n", runtime.NumCPU())

		if cfg, err := config.Load(); err != nil {
			fmt.Fprintln(out, "\nConfiguration: Not initialized")
		} else {
			path, _ := config.GetConfigPath()
			fmt.Fprintln(out, "\nConfiguration:")
			fmt.Fprintf(out, "  Config Path: %s\n", path)
			fmt.Fprintf(out, "  Server: %s:%d\n", cfg.Server.Host, cfg.Server.HTTPPort)
			fmt.Fprintf(out, "  Upstream: %s\n", cfg.Upstream.BaseURL)
		}

		base := resolveServerURL()
		fmt.Fprintf(out, "\nServer Connectivity (%s):\n", base)
		client := http.Client{Timeout: 2 * time.Second}
		for _, probe := range []string{"/healthz", "/readyz"} {
			fmt.Fprintf(out, "  %s: %s\n", probe, probeStatus(client, base+probe))
		}
		return nil
	},
}

func probeStatus(client http.Client, url string) string {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Sprintf("✗ Unreachable (%s)", err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return fmt.Sprintf("✓ OK (HTTP %d)", resp.StatusCode)
	}
	return fmt.Sprintf("⚠ Issues (HTTP %d)", resp.StatusCode)
}

func init() {
	systemCmd.AddCommand(systemInfoCmd)
}
