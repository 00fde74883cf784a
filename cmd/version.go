package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/ethpandaops/rbi/cmd.Release=..."
//
//nolint:gochecknoglobals // Build-time variables for version info
var (
	Release   = "dev"
	GitCommit = "none"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rbi version",
	Run: func(cmd *cobra.Command, _ []string) {
		goVersion := runtime.Version()
		if info, ok := debug.ReadBuildInfo(); ok && info.GoVersion != "" {
			goVersion = info.GoVersion
		}

		fmt.Fprintf(cmd.OutOrStdout(), "rbi %s (commit %s, %s, %s/%s)\n",
			Release, GitCommit, goVersion, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
