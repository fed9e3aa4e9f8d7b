package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		printVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion() {
	fmt.Fprintf(os.Stdout, "codescope %s\n", AppVersion)
	fmt.Fprintf(os.Stdout, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(os.Stdout, "Git Commit: %s\n", GitCommit)
}
