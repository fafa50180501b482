package sheet

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

// Document is the saved-file form of a sheet: the language tag and every row
// as sixteen strings.
type Document struct {
	Language string     `json:"language"`
	Rows     [][]string `json:"rows"`
}

// Document returns the sheet as a Document. Cells are saved as displayed.
func (s *Sheet) Document() Document {
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = r.Strings()
	}
	return Document{Language: string(s.Language), Rows: rows}
}

// Save writes the sheet as indented JSON.
func (s *Sheet) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.Document()); err != nil {
		return fmt.Errorf("encode sheet document: %w", err)
	}
	return nil
}

// FromDocument builds a sheet from a document and recomputes every row.
// Rows longer than sixteen cells are truncated and shorter ones padded. Rows
// whose inputs do not parse keep their saved outputs and carry an Error.
func FromDocument(cfg pricing.Config, doc Document) *Sheet {
	s := New(cfg, labels.Normalize(doc.Language))
	s.Rows = make([]Row, len(doc.Rows))
	for i, cells := range doc.Rows {
		s.Rows[i] = RowFromCells(cells)
	}
	_ = s.RecomputeAll()
	return s
}

// Load reads a sheet saved with Save. Only malformed JSON is an error.
func Load(cfg pricing.Config, r io.Reader) (*Sheet, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sheet document: %w", err)
	}
	return FromDocument(cfg, doc), nil
}
