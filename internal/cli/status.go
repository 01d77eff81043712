package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tenantgate/internal/policy"
	"tenantgate/internal/proxy"
)

type statusPayload struct {
	Version string         `json:"version"`
	Proxy   proxy.Snapshot `json:"proxy"`
	Policy  *policy.Info   `json:"policy,omitempty"`
}

type statusEnvelope struct {
	OK    bool          `json:"ok"`
	Error string        `json:"error,omitempty"`
	Data  statusPayload `json:"data"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live proxy counters from the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Admin.Listen
		flagOverride(cmd, "addr", &addr)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return runStatusTUI(addr)
		}

		st, err := fetchStatus(addr)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			b, _ := json.MarshalIndent(st, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("addr", "", "Admin API address (defaults to the configured admin listen address)")
	statusCmd.Flags().Bool("json", false, "Print the raw status JSON")
	statusCmd.Flags().Bool("watch", false, "Open a live dashboard that refreshes every second")
	statusCmd.Flags().String("config-dir", "", "Directory holding config.json (defaults to the XDG config dir)")
}

func fetchStatus(addr string) (statusPayload, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/status", addr))
	if err != nil {
		return statusPayload{}, fmt.Errorf("admin API unreachable at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var env statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return statusPayload{}, fmt.Errorf("decode status response: %w", err)
	}
	if !env.OK {
		return statusPayload{}, fmt.Errorf("admin API error: %s", env.Error)
	}
	return env.Data, nil
}

func printStatus(w io.Writer, st statusPayload) {
	p := st.Proxy
	uptime := (time.Duration(p.UptimeSeconds) * time.Second).String()
	fmt.Fprintf(w, "tenantgate %s, up %s\n", st.Version, uptime)
	fmt.Fprintf(w, "  connections  %d open / %d total\n", p.OpenConnections, p.TotalConnections)
	fmt.Fprintf(w, "  requests     %d handled, %d proxied\n", p.Requests, p.Proxied)
	fmt.Fprintf(w, "  rejected     %d unroutable host, %d blocked tenant\n", p.RejectedHosts, p.BlockedTenants)
	fmt.Fprintf(w, "  failures     %d backend, %d upgrade mismatch\n", p.BackendFailures, p.UpgradeMismatches)
	fmt.Fprintf(w, "  tunnels      %d active / %d total (%s from clients, %s from backend)\n",
		p.ActiveTunnels, p.TotalTunnels,
		formatBytes(p.TunnelClientBytes), formatBytes(p.TunnelBackendBytes))
	if st.Policy != nil {
		fmt.Fprintf(w, "  policy       %d blocked tenants", len(st.Policy.BlockedTenants))
		if st.Policy.Path != "" {
			fmt.Fprintf(w, " (%s)", st.Policy.Path)
		}
		fmt.Fprintln(w)
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
