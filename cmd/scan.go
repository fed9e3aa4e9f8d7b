package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koopa0/codescope/internal/app"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/report"
)

var scanFormat string

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze a directory tree and print a per-language report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", string(report.DefaultFormat),
		"output format: json, markdown, table, csv")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(scanFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(cmd.Context(), cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer closeApp(a)

	dir := cfg.ProjectRoot
	if len(args) > 0 {
		dir = args[0]
	}

	result, err := a.Analyzer.Scan(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}

	if a.History != nil {
		if _, err := a.History.RecordScan(cmd.Context(), result); err != nil {
			a.Logger.Warn("recording scan history", "error", err)
		}
	}

	return report.Write(os.Stdout, format, result)
}

// closeApp closes the container, logging instead of failing the command.
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warn("shutdown error", "error", err)
	}
}
