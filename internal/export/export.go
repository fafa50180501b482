package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/sheet"
)

// Format is a spreadsheet file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const worksheetName = "Pricing"

// ErrUnknownFormat is returned for formats other than xlsx and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "xlsx" or "csv" in any case, with or without a leading dot.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// Filename suggests a file name such as pricing_DE.xlsx.
func Filename(lang labels.Language, format Format) string {
	return fmt.Sprintf("pricing_%s.%s", lang.Upper(), format)
}

// ContentType returns the MIME type of format.
func ContentType(format Format) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write serializes t in the given format.
func Write(w io.Writer, format Format, t sheet.Table) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteCSV writes the header row followed by every table row.
func WriteCSV(w io.Writer, t sheet.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Numeric cells are stored as
// numbers; cells that do not parse are stored as text.
func WriteXLSX(w io.Writer, t sheet.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", worksheetName); err != nil {
		return fmt.Errorf("rename worksheet: %w", err)
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(worksheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(worksheetName, "A1", last, bold); err != nil {
			return fmt.Errorf("style header row: %w", err)
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d position: %w", i+1, err)
		}
		values := make([]any, len(row))
		for c, text := range row {
			values[c] = cellValue(pricing.Field(c), text)
		}
		if err := f.SetSheetRow(worksheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(f pricing.Field, text string) any {
	if text == "" {
		return ""
	}
	if f == pricing.FieldQuantity {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		return text
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return text
	}
	v, _ := d.Float64()
	return v
}
