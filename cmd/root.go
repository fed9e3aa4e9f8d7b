// Package cmd provides CLI commands for codescope.
//
// Commands:
//   - scan: analyze a directory tree and print a report
//   - search: search file contents with a safety-checked regex
//   - validate: check a path, regex, or glob against the security engine
//   - history: list recent scans
//   - serve: HTTP API server
//   - mcp: Model Context Protocol server for IDE integration
//
// Signal handling and graceful shutdown are implemented for the server
// commands via context cancellation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codescope",
	Short: "codescope - sandboxed multi-language code analysis",
	Long: `codescope analyzes source trees without ever stepping outside the
project boundary. Every path, glob, and regex passes through the
security engine before the filesystem is touched.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point for the codescope CLI.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return rootCmd.Execute()
}

func init() {
	// Subcommands register themselves in their own files
}
