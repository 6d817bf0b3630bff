package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnbossa/AImend/pkg/cli"
	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/security/secrets"
	"github.com/mnbossa/AImend/pkg/telemetry/logging"
)

var validateFlags struct {
	checkSecrets bool
	format       string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file with environment overrides applied, validate
it and print a summary of the effective settings.

With --check-secrets the configured secret providers are queried and the
summary reports whether each credential is present. Values are never
printed.

Examples:
  # Validate a config file
  aimend validate --config aimend.yaml

  # Also check that credentials resolve
  aimend validate --config aimend.yaml --check-secrets

  # Machine-readable summary
  aimend validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkSecrets, "check-secrets", false, "resolve credentials and report whether they are set")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summary := configSummary(cfg)

	if validateFlags.checkSecrets {
		manager, err := secrets.NewManagerFromConfig(cfg.Secrets, logging.Discard())
		if err != nil {
			return cli.NewConfigError(cfgFile, err)
		}
		defer manager.Close()

		creds, err := secrets.Resolve(cmd.Context(), manager, cfg.Secrets)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		summary = append(summary,
			cli.Field{Key: "shared_secret", Value: creds.SharedSecret != ""},
			cli.Field{Key: "upstream_key", Value: creds.UpstreamKey != ""},
		)
	}

	return formatter.FormatTo(cmd.OutOrStdout(), summary)
}

func configSummary(cfg *config.Config) cli.Fields {
	source := cfgFile
	if source == "" {
		source = "(defaults)"
	}

	replay := "disabled"
	if cfg.Replay.Enabled {
		replay = cfg.Replay.Backend
	}

	tlsMode := "disabled"
	if cfg.Server.TLS.Enabled {
		tlsMode = "TLS " + cfg.Server.TLS.MinVersion + "+"
	}

	providers := make([]string, 0, len(cfg.Secrets.Providers))
	for _, p := range cfg.Secrets.Providers {
		providers = append(providers, p.Type)
	}

	return cli.Fields{
		{Key: "config", Value: source},
		{Key: "listen_address", Value: cfg.Server.ListenAddress},
		{Key: "tls", Value: tlsMode},
		{Key: "allowed_origin", Value: cfg.CORS.AllowedOrigin},
		{Key: "max_body_bytes", Value: cfg.Envelope.MaxBodyBytes},
		{Key: "freshness_window", Value: cfg.Envelope.FreshnessWindow.String()},
		{Key: "signature_header", Value: cfg.Envelope.SignatureHeader},
		{Key: "replay", Value: replay},
		{Key: "upstream_endpoint", Value: cfg.Upstream.Endpoint},
		{Key: "upstream_timeout", Value: cfg.Upstream.Timeout.String()},
		{Key: "secret_providers", Value: strings.Join(providers, ",")},
		{Key: "metrics", Value: cfg.Telemetry.Metrics.Enabled},
		{Key: "tracing", Value: cfg.Telemetry.Tracing.Enabled},
	}
}
