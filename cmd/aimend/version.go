package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mnbossa/AImend/pkg/cli"
	"github.com/mnbossa/AImend/pkg/telemetry/health"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionFlags struct {
	short bool
	json  bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE:  printVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionFlags.short, "short", false, "print the version number only")
	versionCmd.Flags().BoolVar(&versionFlags.json, "json", false, "print version information as JSON")
}

// versionInfo is the build information served on the version endpoint.
func versionInfo() health.VersionInfo {
	return health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	}
}

func printVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if versionFlags.short {
		_, err := fmt.Fprintln(out, Version)
		return err
	}

	if versionFlags.json {
		formatter, err := cli.NewFormatter(cli.FormatJSON)
		if err != nil {
			return err
		}
		return formatter.FormatTo(out, versionInfo())
	}

	fmt.Fprintf(out, "AImend %s\n", Version)
	fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
	fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
