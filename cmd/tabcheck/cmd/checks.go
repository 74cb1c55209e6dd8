package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/spf13/cobra"
)

func newChecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List registered checks",
		Long: `List the check identifiers usable in the "checks" option. Built-in
checks run on every table whether or not they are configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tBUILT-IN")
			for _, id := range check.Default().IDs() {
				builtin := ""
				if slices.Contains(check.Builtins, id) {
					builtin = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\n", id, builtin)
			}
			return w.Flush()
		},
	}
}
