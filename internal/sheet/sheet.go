package sheet

import (
	"errors"
	"fmt"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

var (
	// ErrRowNotFound is returned for a row index outside the sheet.
	ErrRowNotFound = errors.New("row not found")
	// ErrReadOnlyColumn is returned when editing a computed column.
	ErrReadOnlyColumn = errors.New("column is not editable")
)

// Row is one line of the pricing table: nine input cells followed by seven
// computed cells, all as display text.
type Row struct {
	Cells [pricing.FieldCount]string
	// Error holds the last recompute failure. The computed cells keep their
	// previous values while it is set.
	Error string
}

// BlankRow returns the row a new line starts with.
func BlankRow() Row {
	var r Row
	r.Cells[pricing.FieldQuantity] = "0"
	for i := 1; i < pricing.InputCount; i++ {
		r.Cells[i] = "0.00"
	}
	return r
}

// RowFromCells builds a row from up to sixteen cells. Missing cells are empty.
func RowFromCells(cells []string) Row {
	var r Row
	copy(r.Cells[:], cells)
	return r
}

// Inputs returns the editable cells as raw pricing input.
func (r Row) Inputs() pricing.RawInput {
	return pricing.RawInputFromCells(r.Cells[:pricing.InputCount])
}

// Strings returns the sixteen cells as a slice.
func (r Row) Strings() []string {
	out := make([]string, pricing.FieldCount)
	copy(out, r.Cells[:])
	return out
}

// Sheet is an ordered set of pricing rows shown in one language.
type Sheet struct {
	Language labels.Language
	Rows     []Row

	cfg pricing.Config
}

// New returns an empty sheet. Call Start to get the initial blank row.
func New(cfg pricing.Config, lang labels.Language) *Sheet {
	if lang == "" {
		lang = labels.Default
	}
	return &Sheet{Language: lang, cfg: cfg.Normalized()}
}

// Config returns the pricing settings the sheet computes with.
func (s *Sheet) Config() pricing.Config { return s.cfg }

// Len returns the number of rows.
func (s *Sheet) Len() int { return len(s.Rows) }

func (s *Sheet) checkIndex(i int) error {
	if i < 0 || i >= len(s.Rows) {
		return fmt.Errorf("%w: %d", ErrRowNotFound, i)
	}
	return nil
}

// Recompute recalculates the outputs of row i from its inputs. On a parse
// failure the previous outputs stay in place, the error is recorded on the row
// and returned.
func (s *Sheet) Recompute(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	row := &s.Rows[i]

	out, err := pricing.ComputeRaw(s.cfg, row.Inputs())
	if err != nil {
		row.Error = err.Error()
		return err
	}

	row.Error = ""
	cells := out.Strings(s.cfg.Places)
	copy(row.Cells[pricing.InputCount:], cells[pricing.InputCount:])
	return nil
}

// add appends a row and recomputes it, returning its index.
func (s *Sheet) add(r Row) (int, error) {
	s.Rows = append(s.Rows, r)
	i := len(s.Rows) - 1
	return i, s.Recompute(i)
}

// Start discards every row and adds one blank row.
func (s *Sheet) Start() {
	s.Rows = nil
	_, _ = s.add(BlankRow())
}

// Expand appends a blank row and returns its index.
func (s *Sheet) Expand() int {
	i, _ := s.add(BlankRow())
	return i
}

// Copy appends a row holding the inputs of row i. A negative i copies the last
// row; copying from an empty sheet adds a blank row. The returned error is the
// new row's recompute failure, if any.
func (s *Sheet) Copy(i int) (int, error) {
	if i < 0 {
		if len(s.Rows) == 0 {
			return s.Expand(), nil
		}
		i = len(s.Rows) - 1
	}
	if err := s.checkIndex(i); err != nil {
		return -1, err
	}

	var r Row
	copy(r.Cells[:pricing.InputCount], s.Rows[i].Cells[:pricing.InputCount])
	return s.add(r)
}

// Delete removes row i.
func (s *Sheet) Delete(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.Rows = append(s.Rows[:i], s.Rows[i+1:]...)
	return nil
}

// DeleteAll removes every row.
func (s *Sheet) DeleteAll() {
	s.Rows = nil
}

// SetCell edits one input cell of row i and recomputes the row.
func (s *Sheet) SetCell(i int, f pricing.Field, text string) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !f.IsInput() {
		return fmt.Errorf("%w: %s", ErrReadOnlyColumn, f.Key())
	}
	s.Rows[i].Cells[f] = text
	return s.Recompute(i)
}

// SetInputs replaces all input cells of row i and recomputes the row.
func (s *Sheet) SetInputs(i int, raw pricing.RawInput) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	copy(s.Rows[i].Cells[:pricing.InputCount], raw.Cells())
	return s.Recompute(i)
}

// ToggleLanguage switches between the two label sets.
func (s *Sheet) ToggleLanguage() labels.Language {
	s.Language = s.Language.Other()
	return s.Language
}

// SetLanguage selects a label set. Unsupported tags fall back to the default.
func (s *Sheet) SetLanguage(raw string) labels.Language {
	s.Language = labels.Normalize(raw)
	return s.Language
}

// FailedRows returns the indexes of rows whose last recompute failed.
func (s *Sheet) FailedRows() []int {
	var out []int
	for i, r := range s.Rows {
		if r.Error != "" {
			out = append(out, i)
		}
	}
	return out
}

// Headers returns the plain column labels of the sheet's language.
func (s *Sheet) Headers() []string { return labels.Headers(s.Language) }

// WrappedHeaders returns the multi-line column labels of the sheet's language.
func (s *Sheet) WrappedHeaders() []string { return labels.WrappedHeaders(s.Language) }
