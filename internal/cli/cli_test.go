package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Simplici0/gr24/internal/config"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(config.Config{DefaultLanguage: "de"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var referenceArgs = []string{
	"price",
	"--quantity", "10",
	"--purchase-price", "20",
	"--shipping-cost", "2",
	"--packaging-cost", "1",
	"--margin", "20",
	"--amazon-fee", "15",
	"--extra-fee", "5",
	"--vat", "19",
}

func TestPrice_Table(t *testing.T) {
	out, _, err := run(t, referenceArgs...)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	for _, want := range []string{"Verkaufspreis (€)", "44.26", "Profit (€)", "4.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrice_JSON(t *testing.T) {
	args := append(append([]string{}, referenceArgs...), "--json", "--lang", "en")
	out, _, err := run(t, args...)
	if err != nil {
		t.Fatalf("price: %v", err)
	}

	var values []priceValue
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(values) != 16 {
		t.Fatalf("expected 16 values, got %d", len(values))
	}
	last := values[len(values)-1]
	if last.Field != "selling_price" || last.Value != "44.26" || last.Label != "Selling Price (€)" {
		t.Fatalf("unexpected last value: %+v", last)
	}
}

func TestPrice_FeesSummingToHundred(t *testing.T) {
	out, _, err := run(t, "price", "--quantity", "1", "--purchase-price", "10", "--amazon-fee", "50", "--ebay-fee", "50", "--json")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	var values []priceValue
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if price := values[len(values)-1]; price.Value != "10.00" {
		t.Fatalf("selling price = %q, want 10.00", price.Value)
	}
}

func TestPrice_Errors(t *testing.T) {
	if _, _, err := run(t, "price", "--vat", "nineteen"); err == nil || !strings.Contains(err.Error(), "vat_pct") {
		t.Fatalf("expected vat parse error, got %v", err)
	}
	if _, _, err := run(t, "price", "--lang", "fr"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}

func TestLabels(t *testing.T) {
	out, _, err := run(t, "labels", "--lang", "en")
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 17 {
		t.Fatalf("expected header and 16 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "Quantity") || !strings.Contains(lines[1], "Menge") {
		t.Fatalf("first label line = %q", lines[1])
	}
}

func TestExport_CSVWithFailedRow(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sheet.json")
	doc := `{"language": "en", "rows": [
		["10", "20", "2", "1", "20", "15", "0", "5", "19"],
		["1", "x", "0", "0", "0", "0", "0", "0", "0"]
	]}`
	if err := os.WriteFile(input, []byte(doc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(dir, "out.csv")

	stdout, stderr, err := run(t, "export", "--input", input, "--output", output)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(stdout, "wrote 2 rows") {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "row 2") {
		t.Fatalf("expected warning for row 2, got %q", stderr)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 || records[0][0] != "Quantity" || records[1][15] != "44.26" {
		t.Fatalf("unexpected csv: %v", records)
	}
}

func TestExport_DefaultFilenameAndFormat(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("sheet.json", []byte(`{"language": "de", "rows": []}`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if _, _, err := run(t, "export", "--input", "sheet.json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pricing_DE.xlsx")); err != nil {
		t.Fatalf("expected pricing_DE.xlsx: %v", err)
	}

	if _, _, err := run(t, "export", "--input", "sheet.json", "--format", "pdf"); err == nil {
		t.Fatalf("expected unknown format error")
	}
	if _, _, err := run(t, "export"); err == nil {
		t.Fatalf("expected missing --input error")
	}
}
