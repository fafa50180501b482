package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

func newLabelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Print the column labels and their translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, err := a.language()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "#\tfield\t%s\t%s\n", lang.Upper(), lang.Other().Upper())
			for _, f := range pricing.Fields() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", int(f)+1, f.Key(), labels.Label(lang, f), labels.Label(lang.Other(), f))
			}
			return w.Flush()
		},
	}
}
