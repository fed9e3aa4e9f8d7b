package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koopa0/codescope/internal/app"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/security"
)

var (
	validatePathFlag  string
	validateRegexFlag string
	validateGlobFlag  string
)

// errRejected reports a denied verdict; the process exits non-zero so
// shell scripts can branch on it.
var errRejected = errors.New("rejected")

var validateCmd = &cobra.Command{
	Use:   "validate (--path|--regex|--glob) <value>",
	Short: "Check a path, regex, or glob against the security engine",
	Long: `validate runs one input through the security engine and prints the
verdict. A denial exits with status 1 and the static rejection reason;
the input itself never appears in the reason.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validatePathFlag, "path", "", "file path to validate")
	validateCmd.Flags().StringVar(&validateRegexFlag, "regex", "", "regex pattern to validate")
	validateCmd.Flags().StringVar(&validateGlobFlag, "glob", "", "glob pattern to validate")
	validateCmd.MarkFlagsOneRequired("path", "regex", "glob")
	validateCmd.MarkFlagsMutuallyExclusive("path", "regex", "glob")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(cmd.Context(), cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer closeApp(a)

	var verdict security.Verdict
	switch {
	case validatePathFlag != "":
		verdict = a.Validator.ValidateFilePath(validatePathFlag)
	case validateRegexFlag != "":
		verdict = a.Validator.ValidateRegexPattern(validateRegexFlag)
	default:
		verdict = a.Validator.ValidateGlobPattern(validateGlobFlag)
	}

	if !verdict.Allowed {
		return fmt.Errorf("%w: %s", errRejected, verdict.Reason)
	}
	fmt.Fprintln(os.Stdout, "allowed")
	return nil
}
