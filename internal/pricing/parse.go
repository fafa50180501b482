package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field identifies one of the sixteen columns of a pricing row.
type Field int

const (
	FieldQuantity Field = iota
	FieldPurchasePrice
	FieldShippingCost
	FieldPackagingCost
	FieldMarginPct
	FieldAmazonFeePct
	FieldEbayFeePct
	FieldExtraFeePct
	FieldVATPct
	FieldProfit
	FieldTotalTax
	FieldTotalCost
	FieldAmazonFeeAmount
	FieldEbayFeeAmount
	FieldExtraFeeAmount
	FieldSellingPrice
)

const (
	// FieldCount is the number of cells in a row.
	FieldCount = 16
	// InputCount is the number of leading editable cells in a row.
	InputCount = 9
)

var fieldKeys = [FieldCount]string{
	"quantity",
	"purchase_price",
	"shipping_cost",
	"packaging_cost",
	"margin_pct",
	"amazon_fee_pct",
	"ebay_fee_pct",
	"extra_fee_pct",
	"vat_pct",
	"profit",
	"total_tax",
	"total_cost",
	"amazon_fee_amount",
	"ebay_fee_amount",
	"extra_fee_amount",
	"selling_price",
}

// Key returns the stable machine name of the field.
func (f Field) Key() string {
	if f < 0 || int(f) >= FieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

func (f Field) String() string { return f.Key() }

// IsInput reports whether the field is one of the editable inputs.
func (f Field) IsInput() bool { return f >= 0 && int(f) < InputCount }

// Fields returns every field in row order.
func Fields() []Field {
	out := make([]Field, FieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// FieldByKey looks a field up by its machine name.
func FieldByKey(key string) (Field, bool) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return 0, false
}

// ErrInvalidNumber is wrapped by every ParseError.
var ErrInvalidNumber = errors.New("invalid number")

// ParseError reports a field whose text is not a number.
type ParseError struct {
	Field Field
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field.Key(), e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RawInput holds the nine inputs as the text a user typed.
type RawInput struct {
	Quantity      string `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	ShippingCost  string `json:"shipping_cost"`
	PackagingCost string `json:"packaging_cost"`
	MarginPct     string `json:"margin_pct"`
	AmazonFeePct  string `json:"amazon_fee_pct"`
	EbayFeePct    string `json:"ebay_fee_pct"`
	ExtraFeePct   string `json:"extra_fee_pct"`
	VATPct        string `json:"vat_pct"`
}

// RawInputFromCells builds a RawInput from the leading cells of a row. Missing cells are empty.
func RawInputFromCells(cells []string) RawInput {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return RawInput{
		Quantity:      cell(0),
		PurchasePrice: cell(1),
		ShippingCost:  cell(2),
		PackagingCost: cell(3),
		MarginPct:     cell(4),
		AmazonFeePct:  cell(5),
		EbayFeePct:    cell(6),
		ExtraFeePct:   cell(7),
		VATPct:        cell(8),
	}
}

// Cells returns the inputs in row order.
func (r RawInput) Cells() []string {
	return []string{
		r.Quantity,
		r.PurchasePrice,
		r.ShippingCost,
		r.PackagingCost,
		r.MarginPct,
		r.AmazonFeePct,
		r.EbayFeePct,
		r.ExtraFeePct,
		r.VATPct,
	}
}

// normalize trims the text and accepts a comma as decimal separator.
func normalize(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
}

// ParseQuantity parses a quantity through a float and truncates toward zero.
// Empty text is zero.
func ParseQuantity(raw string) (int64, error) {
	text := normalize(raw)
	if text == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{Field: FieldQuantity, Value: raw, Err: ErrInvalidNumber}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &ParseError{Field: FieldQuantity, Value: raw, Err: ErrInvalidNumber}
	}
	return int64(f), nil
}

// Bounds on parsed decimals. Rounding a value with an extreme exponent
// expands it to that many digits.
const (
	maxExponent = 100
	maxDigits   = 64
)

// ParseDecimal parses a money or percentage field. Empty text is zero.
func ParseDecimal(field Field, raw string) (decimal.Decimal, error) {
	text := normalize(raw)
	if text == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, &ParseError{Field: field, Value: raw, Err: ErrInvalidNumber}
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent || d.NumDigits() > maxDigits {
		return decimal.Zero, &ParseError{Field: field, Value: raw, Err: ErrInvalidNumber}
	}
	return d, nil
}

// ParseInput parses every field of raw. The first malformed field fails the whole row.
func ParseInput(raw RawInput) (Input, error) {
	var in Input
	var err error

	if in.Quantity, err = ParseQuantity(raw.Quantity); err != nil {
		return Input{}, err
	}

	targets := []struct {
		field Field
		text  string
		dst   *decimal.Decimal
	}{
		{FieldPurchasePrice, raw.PurchasePrice, &in.PurchasePrice},
		{FieldShippingCost, raw.ShippingCost, &in.ShippingCost},
		{FieldPackagingCost, raw.PackagingCost, &in.PackagingCost},
		{FieldMarginPct, raw.MarginPct, &in.MarginPct},
		{FieldAmazonFeePct, raw.AmazonFeePct, &in.AmazonFeePct},
		{FieldEbayFeePct, raw.EbayFeePct, &in.EbayFeePct},
		{FieldExtraFeePct, raw.ExtraFeePct, &in.ExtraFeePct},
		{FieldVATPct, raw.VATPct, &in.VATPct},
	}
	for _, t := range targets {
		if *t.dst, err = ParseDecimal(t.field, t.text); err != nil {
			return Input{}, err
		}
	}

	return in, nil
}
