package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

type priceValue struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func newPriceCmd(a *app) *cobra.Command {
	var (
		raw    pricing.RawInput
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compute the selling price of one item",
		Long: `Compute one pricing row. Amounts accept a comma or a period as decimal
separator; omitted values are zero.

Examples:
  gr24 price --quantity 10 --purchase-price 20 --shipping-cost 2 --packaging-cost 1 \
    --margin 20 --amazon-fee 15 --extra-fee 5 --vat 19
  gr24 price --purchase-price 12,50 --vat 19 --lang en --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, err := a.language()
			if err != nil {
				return err
			}

			out, err := pricing.ComputeRaw(a.pricing, raw)
			a.metrics.RowComputed(cmd.Context(), "cli", err)
			if err != nil {
				return err
			}

			cells := out.Strings(a.pricing.Places)
			values := make([]priceValue, 0, pricing.FieldCount)
			for _, f := range pricing.Fields() {
				values = append(values, priceValue{Field: f.Key(), Label: labels.Label(lang, f), Value: cells[f]})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			for _, v := range values {
				fmt.Fprintf(w, "%s\t%s\t\n", v.Label, v.Value)
			}
			return w.Flush()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&raw.Quantity, "quantity", "", "Number of units")
	flags.StringVar(&raw.PurchasePrice, "purchase-price", "", "Purchase price per item")
	flags.StringVar(&raw.ShippingCost, "shipping-cost", "", "Shipping cost")
	flags.StringVar(&raw.PackagingCost, "packaging-cost", "", "Packaging cost")
	flags.StringVar(&raw.MarginPct, "margin", "", "Profit margin in percent of the purchase price")
	flags.StringVar(&raw.AmazonFeePct, "amazon-fee", "", "Amazon fee in percent of the selling price")
	flags.StringVar(&raw.EbayFeePct, "ebay-fee", "", "eBay fee in percent of the selling price")
	flags.StringVar(&raw.ExtraFeePct, "extra-fee", "", "Extra fee in percent of the selling price")
	flags.StringVar(&raw.VATPct, "vat", "", "VAT in percent of the selling price")
	flags.BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
