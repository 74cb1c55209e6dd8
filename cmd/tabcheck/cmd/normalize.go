package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var originalURL string

	cmd := &cobra.Command{
		Use:   "normalize <report.json|->",
		Short: "Normalize a stored raw report",
		Long: `Read a raw report in either of its shapes, a structured report with
"valid" or a mapping with top-level "errors", and print it normalized with
its derived status. Local paths in task places are replaced by --url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}

			raw, err := report.ParseRaw(data)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), report.Normalize(raw, originalURL))
		},
	}

	cmd.Flags().StringVar(&originalURL, "url", "", "original resource URL")
	return cmd
}
