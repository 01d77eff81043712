package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tenantgate/internal/admin"
	"tenantgate/internal/logging"
	"tenantgate/internal/policy"
	"tenantgate/internal/proxy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tenantgate proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		flagOverride(cmd, "listen", &cfg.Listen)
		flagOverride(cmd, "backend", &cfg.Backend)
		flagOverride(cmd, "host-suffix", &cfg.HostSuffix)
		flagOverride(cmd, "policy-file", &cfg.PolicyFile)
		flagOverride(cmd, "admin-listen", &cfg.Admin.Listen)
		flagOverride(cmd, "log-format", &cfg.LogFormat)
		flagOverride(cmd, "log-level", &cfg.LogLevel)
		if noAdmin, _ := cmd.Flags().GetBool("no-admin"); noAdmin {
			cfg.Admin.Enabled = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.LogLevel
		if isTruthyEnv("TENANTGATE_VERBOSE") {
			level = "debug"
		}
		logger := logging.Setup(os.Stderr, cfg.LogFormat, level)

		list := policy.NewList(cfg.PolicyFile, logger)
		if err := list.Load(); err != nil {
			return err
		}

		srv := proxy.New(proxy.Config{
			Listen:       cfg.Listen,
			Backend:      cfg.Backend,
			HostSuffix:   cfg.HostSuffix,
			DialTimeout:  cfg.DialTimeout(),
			DrainTimeout: cfg.DrainTimeout(),
			Policy:       list,
			Logger:       logger,
		})

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sig := make(chan os.Signal, 2)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			logger.Info("shutting down")
			cancel()
			<-sig
			logger.Warn("force shutdown requested")
			os.Exit(130)
		}()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(ctx) })
		g.Go(func() error { return list.Watch(ctx) })
		if cfg.Admin.Enabled {
			// Without a policy file the admin API reports no policy at
			// all instead of a perpetually empty list.
			adminPolicy := list
			if cfg.PolicyFile == "" {
				adminPolicy = nil
			}
			adm := admin.New(cfg.Admin.Listen, srv, adminPolicy, version, logger)
			g.Go(func() error { return adm.Run(ctx) })
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Address to accept client connections on")
	serveCmd.Flags().String("backend", "", "host:port requests are forwarded to")
	serveCmd.Flags().String("host-suffix", "", "Suffix substituted for the wildcard zone in rewritten Host headers")
	serveCmd.Flags().String("policy-file", "", "YAML file listing blocked tenants")
	serveCmd.Flags().String("admin-listen", "", "Address for the admin API")
	serveCmd.Flags().Bool("no-admin", false, "Disable the admin API")
	serveCmd.Flags().String("log-format", "", "Log format: auto, text or json")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	serveCmd.Flags().String("config-dir", "", "Directory holding config.json (defaults to the XDG config dir)")
}
