package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/sheet"
)

// ErrSheetNotFound is returned when no sheet has the requested id.
var ErrSheetNotFound = errors.New("sheet not found")

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is a stored sheet with its metadata. Sheet is nil in List results.
type Record struct {
	ID        string
	Title     string
	Language  labels.Language
	RowCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Sheet     *sheet.Sheet
}

// Sheets persists pricing sheets in SQLite.
type Sheets struct {
	db  *sql.DB
	cfg pricing.Config
	now func() time.Time
}

// NewSheets returns a repository whose loaded sheets compute with cfg.
func NewSheets(db *sql.DB, cfg pricing.Config) *Sheets {
	return &Sheets{db: db, cfg: cfg.Normalized(), now: time.Now}
}

func (s *Sheets) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// Create stores a new sheet and returns its record.
func (s *Sheets) Create(ctx context.Context, title string, sh *sheet.Sheet) (Record, error) {
	if sh == nil {
		sh = sheet.New(s.cfg, labels.Default)
	}
	id := uuid.NewString()
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin create sheet transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := InsertTx(ctx, tx, id, title, sh, now); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit create sheet transaction: %w", err)
	}

	return s.Get(ctx, id)
}

// Get loads a sheet with all its rows. Rows are returned as stored, including
// any recorded error.
func (s *Sheets) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec                  Record
		lang                 string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, language, created_at, updated_at
		FROM sheets
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Title, &lang, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrSheetNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("query sheet: %w", err)
	}
	rec.Language = labels.Normalize(lang)
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Record{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cells_json, error
		FROM sheet_rows
		WHERE sheet_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return Record{}, fmt.Errorf("query sheet rows: %w", err)
	}
	defer rows.Close()

	sh := sheet.New(s.cfg, rec.Language)
	for rows.Next() {
		var cellsJSON, rowErr string
		if err := rows.Scan(&cellsJSON, &rowErr); err != nil {
			return Record{}, fmt.Errorf("scan sheet row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return Record{}, fmt.Errorf("decode sheet row cells: %w", err)
		}
		row := sheet.RowFromCells(cells)
		row.Error = rowErr
		sh.Rows = append(sh.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("iterate sheet rows: %w", err)
	}

	rec.Sheet = sh
	rec.RowCount = sh.Len()
	return rec, nil
}

// List returns sheet records whose title contains query, newest first. An
// empty query lists every sheet.
func (s *Sheets) List(ctx context.Context, query string) ([]Record, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.language, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM sheet_rows r WHERE r.sheet_id = s.id)
		FROM sheets s
		WHERE s.title LIKE ? ESCAPE '\'
		ORDER BY s.updated_at DESC, s.rowid DESC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("query sheets: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                  Record
			lang                 string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &lang, &createdAt, &updatedAt, &rec.RowCount); err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		rec.Language = labels.Normalize(lang)
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheets: %w", err)
	}
	return out, nil
}

// Save replaces the language and rows of an existing sheet.
func (s *Sheets) Save(ctx context.Context, id string, sh *sheet.Sheet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save sheet transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE sheets SET language = ?, updated_at = ? WHERE id = ?
	`, string(sh.Language), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	if err := expectOne(res, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_id = ?`, id); err != nil {
		return fmt.Errorf("delete sheet rows: %w", err)
	}
	if err := insertRows(ctx, tx, id, sh.Rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save sheet transaction: %w", err)
	}
	return nil
}

// Rename changes the title of a sheet.
func (s *Sheets) Rename(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sheets SET title = ?, updated_at = ? WHERE id = ?
	`, strings.TrimSpace(title), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	return expectOne(res, id)
}

// Delete removes a sheet and its rows.
func (s *Sheets) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete sheet transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_id = ?`, id); err != nil {
		return fmt.Errorf("delete sheet rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	if err := expectOne(res, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete sheet transaction: %w", err)
	}
	return nil
}

// InsertTx writes a new sheet and its rows inside an existing transaction.
func InsertTx(ctx context.Context, tx *sql.Tx, id, title string, sh *sheet.Sheet, now time.Time) error {
	stamp := now.UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sheets (id, title, language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, strings.TrimSpace(title), string(sh.Language), stamp, stamp); err != nil {
		return fmt.Errorf("insert sheet: %w", err)
	}
	return insertRows(ctx, tx, id, sh.Rows)
}

func insertRows(ctx context.Context, tx *sql.Tx, id string, rows []sheet.Row) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sheet_rows (sheet_id, position, cells_json, error)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare sheet row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		cells, err := json.Marshal(row.Strings())
		if err != nil {
			return fmt.Errorf("encode sheet row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, string(cells), row.Error); err != nil {
			return fmt.Errorf("insert sheet row %d: %w", i, err)
		}
	}
	return nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
	}
	return nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", raw, err)
	}
	return t, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
