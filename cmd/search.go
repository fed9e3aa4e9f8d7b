package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koopa0/codescope/internal/app"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/tools"
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern> [path]",
	Short: "Search source files for a regular expression pattern",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

// errToolFailed signals a tool-level failure already described to the user.
var errToolFailed = errors.New("operation failed")

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(cmd.Context(), cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer closeApp(a)

	input := tools.SearchContentInput{Pattern: args[0]}
	if len(args) > 1 {
		input.Path = args[1]
	}

	result := a.Kit.SearchContent(cmd.Context(), input)
	if result.Status == tools.StatusError {
		return resultError(result)
	}

	matches, _ := result.Data["matches"].([]tools.Match)
	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%s:%d: %s\n", m.Path, m.Line, m.Text)
	}
	if truncated, _ := result.Data["truncated"].(bool); truncated {
		fmt.Fprintln(os.Stderr, "(match limit reached, output truncated)")
	}
	return nil
}

// resultError converts an error Result into a command error carrying
// the code and message.
func resultError(result tools.Result) error {
	if result.Error != nil {
		return fmt.Errorf("%w: [%s] %s", errToolFailed, result.Error.Code, result.Error.Message)
	}
	return fmt.Errorf("%w: %s", errToolFailed, result.Message)
}
