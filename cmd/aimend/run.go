package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mnbossa/AImend/pkg/cli"
	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/security/secrets"
	"github.com/mnbossa/AImend/pkg/server"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
	"github.com/mnbossa/AImend/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay gateway",
	Long: `Start the relay gateway with the specified configuration.

The shared secret and the upstream token are resolved once at startup from
the configured secret providers. A missing credential does not stop the
gateway: /chat answers 500 and /ready reports it until a restart.

Examples:
  # Start with defaults and environment overrides
  aimend run

  # Start with a config file
  aimend run --config /etc/aimend/aimend.yaml

  # Override listen address
  aimend run --listen 0.0.0.0:8787

  # Validate config without starting the gateway
  aimend run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.OTLP.Timeout)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	manager, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer manager.Close()

	creds, err := secrets.Resolve(ctx, manager, cfg.Secrets)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	srv, err := server.New(cfg, creds,
		server.WithLogger(logger),
		server.WithVersion(versionInfo()),
	)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
