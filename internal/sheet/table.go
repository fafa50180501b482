package sheet

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/gr24/internal/pricing"
)

// RowError reports a row that could not be computed.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index+1, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Table is a fully recomputed snapshot of a sheet, ready for export.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Table recomputes every row from its inputs, ignoring the cached outputs.
// A row that fails keeps its raw inputs and blank outputs; the failures are
// returned joined so the caller can warn while still using the good rows.
func (s *Sheet) Table() (Table, error) {
	rows := make([][]string, len(s.Rows))
	errs := make([]error, len(s.Rows))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range s.Rows {
		raw := s.Rows[i].Inputs()
		g.Go(func() error {
			out, err := pricing.ComputeRaw(s.cfg, raw)
			if err != nil {
				cells := make([]string, pricing.FieldCount)
				copy(cells, raw.Cells())
				rows[i] = cells
				errs[i] = &RowError{Index: i, Err: err}
				return nil
			}
			rows[i] = out.Strings(s.cfg.Places)
			return nil
		})
	}
	_ = g.Wait()

	headers := make([]string, pricing.FieldCount)
	copy(headers, s.Headers())
	return Table{Headers: headers, Rows: rows}, errors.Join(errs...)
}

// RecomputeAll recomputes every row in place. Rows are independent, so one
// failure never stops the others; the failures are returned joined.
func (s *Sheet) RecomputeAll() error {
	errs := make([]error, len(s.Rows))
	for i := range s.Rows {
		if err := s.Recompute(i); err != nil {
			errs[i] = &RowError{Index: i, Err: err}
		}
	}
	return errors.Join(errs...)
}

// RowErrors unpacks the errors returned by Table or RecomputeAll.
func RowErrors(err error) []*RowError {
	if err == nil {
		return nil
	}
	var out []*RowError
	var rowErr *RowError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if errors.As(e, &rowErr) {
				out = append(out, rowErr)
			}
		}
		return out
	}
	if errors.As(err, &rowErr) {
		out = append(out, rowErr)
	}
	return out
}
