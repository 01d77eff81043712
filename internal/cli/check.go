package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenantgate/internal/policy"
	"tenantgate/internal/proxy"
)

var checkCmd = &cobra.Command{
	Use:   "check <host>",
	Short: "Explain how a Host header would be routed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flagOverride(cmd, "host-suffix", &cfg.HostSuffix)
		flagOverride(cmd, "policy-file", &cfg.PolicyFile)

		host := args[0]
		prefix, ok := proxy.TenantPrefix(host)
		if !ok {
			return fmt.Errorf("%s is outside the wildcard zone; the proxy answers 400", host)
		}

		tenant := proxy.TenantName(prefix)
		fmt.Fprintf(cmd.OutOrStdout(), "tenant:    %s\n", tenant)
		fmt.Fprintf(cmd.OutOrStdout(), "forwarded: %s\n", proxy.RewriteHost(prefix, cfg.HostSuffix))

		if cfg.PolicyFile != "" {
			list := policy.NewList(cfg.PolicyFile, nil)
			if err := list.Load(); err != nil {
				return err
			}
			if list.Blocked(tenant) {
				fmt.Fprintf(cmd.OutOrStdout(), "policy:    blocked; the proxy answers 403\n")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "policy:    allowed\n")
			}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("host-suffix", "", "Suffix substituted for the wildcard zone")
	checkCmd.Flags().String("policy-file", "", "YAML file listing blocked tenants")
	checkCmd.Flags().String("config-dir", "", "Directory holding config.json (defaults to the XDG config dir)")
}
