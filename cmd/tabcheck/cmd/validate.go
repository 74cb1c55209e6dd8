package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/JonMunkholm/tabcheck/internal/scan"
	"github.com/JonMunkholm/tabcheck/internal/source"
	"github.com/JonMunkholm/tabcheck/internal/table"
	"github.com/spf13/cobra"
)

type validateFlags struct {
	format      string
	schemaFile  string
	optionsFile string
	url         string
	maxBytes    int64
}

func newValidateCmd() *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "validate <path-or-url>",
		Short: "Validate a local file or URL",
		Long: `Validate a table and print the normalized report as JSON.

Exit codes: 0 success, 1 failure (the table is invalid), 2 error (the
table could not be validated or produced warnings).`,
		Example: `  tabcheck validate data.csv
  tabcheck validate https://example.org/data.xlsx --schema schema.json
  tabcheck validate export.txt --format tsv --options options.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.format, "format", "", "table format (csv, tsv, xlsx, json); guessed from the name when empty")
	cmd.Flags().StringVar(&f.schemaFile, "schema", "", "Table Schema JSON file")
	cmd.Flags().StringVar(&f.optionsFile, "options", "", "validation options YAML or JSON file")
	cmd.Flags().StringVar(&f.url, "url", "", "URL reported as the table place instead of a local path")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", 0, "stop reading after this many bytes (0 for no cap)")
	return cmd
}

func runValidate(cmd *cobra.Command, locator string, f validateFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	defaults, err := scan.LoadDefaults(os.Getenv("VALIDATION_DEFAULT_OPTIONS"), os.Getenv("VALIDATION_OPTIONS_FILE"))
	if err != nil {
		printError("default options", err)
		return &StatusError{Code: ExitError, Status: report.StatusError}
	}

	override := scan.RawOptions{}
	if f.optionsFile != "" {
		if override, err = scan.LoadOptionsFile(f.optionsFile); err != nil {
			printError("options", err)
			return &StatusError{Code: ExitError, Status: report.StatusError}
		}
	}

	var schema *table.Schema
	if f.schemaFile != "" {
		data, err := os.ReadFile(f.schemaFile)
		if err != nil {
			printError("schema", err)
			return &StatusError{Code: ExitError, Status: report.StatusError}
		}
		if schema, err = table.ParseSchema(data); err != nil {
			printError("schema", err)
			return &StatusError{Code: ExitError, Status: report.StatusError}
		}
	}

	resolver, err := source.NewResolver(source.Config{Proxy: os.Getenv("DOWNLOAD_PROXY")}, nil, nil)
	if err != nil {
		printError("proxy", err)
		return &StatusError{Code: ExitError, Status: report.StatusError}
	}
	scanner := scan.NewScanner(check.Default(), resolver, defaults, f.maxBytes)

	originalURL := f.url
	if originalURL == "" && table.IsRemote(locator) {
		originalURL = locator
	}

	var raw report.Raw
	rep, err := scanner.ValidateFile(ctx, locator, f.format, schema, override)
	if err != nil {
		raw = report.LooseError(err)
	} else {
		raw = report.Structured(rep)
	}

	result := report.Normalize(raw, originalURL)
	return printResult(cmd.OutOrStdout(), result)
}

// output is the JSON document printed by validate and normalize.
type output struct {
	Status string               `json:"status"`
	Report *report.Report       `json:"report"`
	Error  *report.ErrorPayload `json:"error,omitempty"`
}

// printResult writes result and maps its status to an exit code.
func printResult(w io.Writer, result report.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Status: result.Status, Report: result.Report, Error: result.Error}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	switch result.Status {
	case report.StatusSuccess:
		return nil
	case report.StatusFailure:
		return &StatusError{Code: ExitFailure, Status: result.Status}
	default:
		return &StatusError{Code: ExitError, Status: result.Status}
	}
}
