package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/koopa0/codescope/internal/app"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent scans",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit,
		"maximum number of scans to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("scan history is disabled (history.enabled: false)")
	}

	a, err := app.Setup(cmd.Context(), cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer closeApp(a)

	scans, err := a.History.RecentScans(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("listing scans: %w", err)
	}
	if len(scans) == 0 {
		fmt.Fprintln(os.Stdout, "no scans recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tROOT\tFILES\tLINES\tDURATION")
	for _, s := range scans {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			s.StartedAt.Local().Format(time.DateTime),
			s.Root, s.Files, s.Lines,
			s.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}
