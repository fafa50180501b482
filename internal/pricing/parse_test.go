package pricing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"", 0},
		{"  ", 0},
		{"10", 10},
		{"12.7", 12},
		{"12,7", 12},
		{" 3 ", 3},
		{"1e2", 100},
	}
	for _, tc := range cases {
		got, err := ParseQuantity(tc.raw)
		if err != nil {
			t.Fatalf("ParseQuantity(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseQuantity(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestParseQuantity_Rejects(t *testing.T) {
	for _, raw := range []string{"abc", "NaN", "inf", "1.2.3", "1e30"} {
		_, err := ParseQuantity(raw)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("ParseQuantity(%q): expected *ParseError, got %v", raw, err)
		}
		if perr.Field != FieldQuantity {
			t.Fatalf("ParseQuantity(%q): field = %s", raw, perr.Field)
		}
	}
}

func TestParseDecimal_NormalizesCommaAndBlank(t *testing.T) {
	d, err := ParseDecimal(FieldVATPct, " 19,5 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if d.String() != "19.5" {
		t.Fatalf("got %s, want 19.5", d)
	}

	d, err = ParseDecimal(FieldVATPct, "")
	if err != nil {
		t.Fatalf("ParseDecimal blank: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("blank parsed to %s, want 0", d)
	}
}

func TestParseDecimal_RejectsExtremeMagnitudes(t *testing.T) {
	long := "1" + strings.Repeat("0", 80)
	for _, raw := range []string{"1e100000000", "1e-100000000", "5E101", "5e-101", long} {
		_, err := ParseDecimal(FieldPurchasePrice, raw)
		var perr *ParseError
		if !errors.As(err, &perr) || !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseDecimal(%q): expected ParseError, got %v", raw, err)
		}
	}

	for _, raw := range []string{"1e100", "1e-100", "0.00", "123456789.123456789"} {
		if _, err := ParseDecimal(FieldPurchasePrice, raw); err != nil {
			t.Fatalf("ParseDecimal(%q): %v", raw, err)
		}
	}
}

func TestComputeRaw_ExtremeExponentFailsFast(t *testing.T) {
	inputs := []RawInput{
		{PurchasePrice: "1e100000000"},
		{PurchasePrice: "1e-100000000", AmazonFeePct: "10"},
		{PurchasePrice: "10", AmazonFeePct: "1e-100000000"},
	}
	for _, raw := range inputs {
		done := make(chan error, 1)
		go func() {
			_, err := ComputeRaw(DefaultConfig(), raw)
			done <- err
		}()
		select {
		case err := <-done:
			if !errors.Is(err, ErrInvalidNumber) {
				t.Fatalf("ComputeRaw(%+v): expected ErrInvalidNumber, got %v", raw, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("ComputeRaw(%+v) did not return", raw)
		}
	}
}

func TestParseInput_DefaultsMissingToZero(t *testing.T) {
	in, err := ParseInput(RawInput{PurchasePrice: "5"})
	if err != nil {
		t.Fatalf("ParseInput: %v", err)
	}
	if in.Quantity != 0 || !in.ShippingCost.IsZero() || !in.VATPct.IsZero() {
		t.Fatalf("unexpected defaults: %+v", in)
	}
}

func TestRawInputFromCells_RoundTrip(t *testing.T) {
	cells := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "ignored"}
	raw := RawInputFromCells(cells)
	got := raw.Cells()
	if len(got) != InputCount {
		t.Fatalf("got %d cells, want %d", len(got), InputCount)
	}
	for i := 0; i < InputCount; i++ {
		if got[i] != cells[i] {
			t.Fatalf("cell %d = %q, want %q", i, got[i], cells[i])
		}
	}

	short := RawInputFromCells([]string{"4"})
	if short.Quantity != "4" || short.VATPct != "" {
		t.Fatalf("unexpected short row: %+v", short)
	}
}

func TestFieldByKey(t *testing.T) {
	for _, f := range Fields() {
		got, ok := FieldByKey(f.Key())
		if !ok || got != f {
			t.Fatalf("FieldByKey(%q) = %v, %v", f.Key(), got, ok)
		}
	}
	if _, ok := FieldByKey("nope"); ok {
		t.Fatalf("expected unknown key to miss")
	}
	if !FieldVATPct.IsInput() || FieldProfit.IsInput() {
		t.Fatalf("unexpected IsInput classification")
	}
}
