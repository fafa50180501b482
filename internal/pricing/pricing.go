package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	defaultDivisionScale int32 = 28
	defaultPlaces        int32 = 2
)

// Config holds the decimal settings used by a calculation. It is a plain value:
// callers build one at startup and pass it to every Compute call. Zero fields
// fall back to the defaults.
type Config struct {
	// DivisionScale is the number of fractional digits kept when solving for the selling price.
	DivisionScale int32
	// Places is the number of fractional digits every output is rounded to.
	Places int32
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	return Config{DivisionScale: defaultDivisionScale, Places: defaultPlaces}
}

// Normalized replaces unset fields with the defaults.
func (c Config) Normalized() Config {
	if c.DivisionScale <= 0 {
		c.DivisionScale = defaultDivisionScale
	}
	if c.Places <= 0 {
		c.Places = defaultPlaces
	}
	return c
}

// Input represents one parsed row of per-unit pricing inputs.
type Input struct {
	Quantity      int64
	PurchasePrice decimal.Decimal
	ShippingCost  decimal.Decimal
	PackagingCost decimal.Decimal
	MarginPct     decimal.Decimal
	AmazonFeePct  decimal.Decimal
	EbayFeePct    decimal.Decimal
	ExtraFeePct   decimal.Decimal
	VATPct        decimal.Decimal
}

// Output contains the echoed inputs and the derived per-unit amounts, all rounded.
type Output struct {
	Quantity      int64
	PurchasePrice decimal.Decimal
	ShippingCost  decimal.Decimal
	PackagingCost decimal.Decimal
	MarginPct     decimal.Decimal
	AmazonFeePct  decimal.Decimal
	EbayFeePct    decimal.Decimal
	ExtraFeePct   decimal.Decimal
	VATPct        decimal.Decimal

	Profit          decimal.Decimal
	TotalTax        decimal.Decimal
	TotalCost       decimal.Decimal
	AmazonFeeAmount decimal.Decimal
	EbayFeeAmount   decimal.Decimal
	ExtraFeeAmount  decimal.Decimal
	SellingPrice    decimal.Decimal
}

// Breakdown exposes the unrounded intermediate values of a calculation.
type Breakdown struct {
	BaseCost         decimal.Decimal
	Profit           decimal.Decimal
	TotalCost        decimal.Decimal
	TotalFeeFraction decimal.Decimal
	Divisor          decimal.Decimal
	SellingPrice     decimal.Decimal
	TotalTax         decimal.Decimal
	AmazonFee        decimal.Decimal
	EbayFee          decimal.Decimal
	ExtraFee         decimal.Decimal
}

// fraction converts a percentage to a fraction. Shifting the exponent keeps it exact.
func fraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Shift(-2)
}

// Solve computes the unrounded breakdown for in.
//
// Fees are charged against the selling price itself, so the price is
// totalCost / (1 - sum of fee fractions). When the fee fractions add up to
// exactly 1 the divisor falls back to 1 and the price equals the total cost.
func Solve(cfg Config, in Input) Breakdown {
	cfg = cfg.Normalized()

	marginFraction := fraction(in.MarginPct)
	amazonFraction := fraction(in.AmazonFeePct)
	ebayFraction := fraction(in.EbayFeePct)
	extraFraction := fraction(in.ExtraFeePct)
	vatFraction := fraction(in.VATPct)

	baseCost := in.PurchasePrice.Add(in.ShippingCost).Add(in.PackagingCost)
	profit := in.PurchasePrice.Mul(marginFraction)
	totalCost := baseCost.Add(profit)

	totalFeeFraction := amazonFraction.Add(ebayFraction).Add(extraFraction).Add(vatFraction)
	divisor := decimal.NewFromInt(1).Sub(totalFeeFraction)
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
	}
	sellingPrice := totalCost.DivRound(divisor, cfg.DivisionScale)

	return Breakdown{
		BaseCost:         baseCost,
		Profit:           profit,
		TotalCost:        totalCost,
		TotalFeeFraction: totalFeeFraction,
		Divisor:          divisor,
		SellingPrice:     sellingPrice,
		TotalTax:         sellingPrice.Mul(vatFraction),
		AmazonFee:        sellingPrice.Mul(amazonFraction),
		EbayFee:          sellingPrice.Mul(ebayFraction),
		ExtraFee:         sellingPrice.Mul(extraFraction),
	}
}

// Compute derives the rounded output row for in. Every field is rounded on its
// own exact value, so the rounded fees need not add up to the rounded price.
func Compute(cfg Config, in Input) Output {
	cfg = cfg.Normalized()
	b := Solve(cfg, in)
	round := func(d decimal.Decimal) decimal.Decimal { return d.Round(cfg.Places) }

	return Output{
		Quantity:      in.Quantity,
		PurchasePrice: round(in.PurchasePrice),
		ShippingCost:  round(in.ShippingCost),
		PackagingCost: round(in.PackagingCost),
		MarginPct:     round(in.MarginPct),
		AmazonFeePct:  round(in.AmazonFeePct),
		EbayFeePct:    round(in.EbayFeePct),
		ExtraFeePct:   round(in.ExtraFeePct),
		VATPct:        round(in.VATPct),

		Profit:          round(b.Profit),
		TotalTax:        round(b.TotalTax),
		TotalCost:       round(b.TotalCost),
		AmazonFeeAmount: round(b.AmazonFee),
		EbayFeeAmount:   round(b.EbayFee),
		ExtraFeeAmount:  round(b.ExtraFee),
		SellingPrice:    round(b.SellingPrice),
	}
}

// ComputeRaw parses raw text inputs and computes the output row.
func ComputeRaw(cfg Config, raw RawInput) (Output, error) {
	in, err := ParseInput(raw)
	if err != nil {
		return Output{}, err
	}
	return Compute(cfg, in), nil
}

// Values returns the output in field order.
func (o Output) Values() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.NewFromInt(o.Quantity),
		o.PurchasePrice,
		o.ShippingCost,
		o.PackagingCost,
		o.MarginPct,
		o.AmazonFeePct,
		o.EbayFeePct,
		o.ExtraFeePct,
		o.VATPct,
		o.Profit,
		o.TotalTax,
		o.TotalCost,
		o.AmazonFeeAmount,
		o.EbayFeeAmount,
		o.ExtraFeeAmount,
		o.SellingPrice,
	}
}

// Strings renders the output as the sixteen display cells of a row.
func (o Output) Strings(places int32) []string {
	values := o.Values()
	out := make([]string, len(values))
	for i, v := range values {
		if Field(i) == FieldQuantity {
			out[i] = v.String()
			continue
		}
		out[i] = v.StringFixed(places)
	}
	return out
}
