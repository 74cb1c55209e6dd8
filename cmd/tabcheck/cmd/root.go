// Package cmd implements the tabcheck command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes of validate and normalize.
const (
	ExitSuccess = 0
	ExitFailure = 1 // the table is invalid
	ExitError   = 2 // the table could not be validated
)

// StatusError carries a non-zero exit code. The report has already been
// printed when it is returned.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("validation status %s", e.Status)
}

var logLevel string

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tabcheck",
		Short: "Validate tabular data files",
		Long: `tabcheck validates CSV, TSV, Excel and JSON tables with the same
structural checks and style rules the validation service runs for
catalog resources.

Default options come from VALIDATION_DEFAULT_OPTIONS and
VALIDATION_OPTIONS_FILE; a .env file in the working directory is read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newChecksCmd())
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
