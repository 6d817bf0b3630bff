package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnbossa/AImend/pkg/cli"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "aimend",
	Short: "AImend - signed-envelope relay gateway for chat completions",
	Long: `AImend relays chat requests from trusted callers to an upstream
chat-completion API.

Every request body is an envelope signed with HMAC-SHA256 over a shared
secret. The gateway checks the signature, the timestamp window and the
nonce before forwarding anything, so the upstream credential never leaves
the gateway.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and AIMEND_* variables apply when empty)")
}
