package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/gr24/internal/config"
	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/telemetry"
)

// app carries the settings shared by every command.
type app struct {
	pricing pricing.Config
	lang    string
	metrics *telemetry.Metrics
}

func (a *app) language() (labels.Language, error) {
	return labels.ParseLanguage(a.lang)
}

// NewRootCmd builds the gr24 command tree.
func NewRootCmd(cfg config.Config) *cobra.Command {
	a := &app{pricing: cfg.Pricing()}
	// Without a registered provider the global meter is a no-op.
	if metrics, err := telemetry.NewMetrics(nil); err == nil {
		a.metrics = metrics
	}

	defaultLang := string(labels.Normalize(string(cfg.DefaultLanguage)))

	root := &cobra.Command{
		Use:   "gr24",
		Short: "Marketplace selling price calculator",
		Long: `gr24 computes the selling price that covers purchase cost, shipping,
packaging, profit margin, VAT and the Amazon, eBay and extra fees charged on
the selling price itself.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.lang, "lang", defaultLang, "Label language (de or en)")

	root.AddCommand(newPriceCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newLabelsCmd(a))
	return root
}

// Execute runs the command tree with configuration from the environment.
func Execute() {
	if err := NewRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
