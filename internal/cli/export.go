package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Simplici0/gr24/internal/export"
	"github.com/Simplici0/gr24/internal/sheet"
)

func newExportCmd(a *app) *cobra.Command {
	var input, format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a saved sheet document to xlsx or csv",
		Long: `Read a sheet document saved by the web front end, recompute every row and
write it as a spreadsheet. Rows that cannot be computed are written with their
inputs and empty results and reported on stderr.

Examples:
  gr24 export --input sheet.json
  gr24 export --input sheet.json --format csv --output prices.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = string(export.FormatXLSX)
				if ext := filepath.Ext(output); ext != "" {
					format = ext
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer in.Close()

			sh, err := sheet.Load(a.pricing, in)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lang") {
				lang, err := a.language()
				if err != nil {
					return err
				}
				sh.Language = lang
			}

			table, err := sh.Table()
			rowErrs := sheet.RowErrors(err)
			for _, rowErr := range rowErrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rowErr)
				a.metrics.RowComputed(cmd.Context(), "cli", rowErr)
			}
			for i := len(rowErrs); i < len(table.Rows); i++ {
				a.metrics.RowComputed(cmd.Context(), "cli", nil)
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, f, table); err != nil {
				return err
			}

			if output == "" {
				output = export.Filename(sh.Language, f)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			a.metrics.Exported(cmd.Context(), string(f))

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Sheet document (JSON) to read")
	cmd.Flags().StringVar(&format, "format", "", "Output format: xlsx or csv (default from --output, else xlsx)")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default pricing_<LANG>.<format>)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
