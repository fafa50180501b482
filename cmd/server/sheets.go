package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/gr24/internal/export"
	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/observability"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/sheet"
	"github.com/Simplici0/gr24/internal/store"
)

const maxImportSize = 1 << 20

type sheetsViewData struct {
	baseViewData
	Query         string
	Sheets        []store.Record
	StartCaption  string
	DeleteCaption string
}

type cellView struct {
	Row      int
	Key      string
	Value    string
	Editable bool
}

type rowView struct {
	Index  int
	Number int
	Cells  []cellView
	Error  string
}

type sheetViewData struct {
	baseViewData
	ID       string
	Title    string
	Headers  []string
	Rows     []rowView
	Captions map[string]string
}

func sheetPath(id string) string {
	return "/sheets/" + url.PathEscape(id)
}

func captionsFor(lang labels.Language) map[string]string {
	out := make(map[string]string, len(labels.Actions()))
	for _, a := range labels.Actions() {
		out[string(a)] = labels.Caption(lang, a)
	}
	return out
}

func (s *server) handleSheetsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	records, err := s.sheets.List(r.Context(), query)
	if err != nil {
		observability.FromContext(r.Context()).Error("list sheets", zap.Error(err))
		http.Error(w, "failed to load sheets", http.StatusInternalServerError)
		return
	}

	lang := labels.Negotiate(r.Header.Get("Accept-Language"))
	s.renderTemplate(w, r, "sheets.html", sheetsViewData{
		baseViewData:  s.baseView(r, lang),
		Query:         query,
		Sheets:        records,
		StartCaption:  labels.Caption(lang, labels.ActionStart),
		DeleteCaption: labels.Caption(lang, labels.ActionDelete),
	})
}

func (s *server) handleSheetsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	lang := s.defaultLang
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		lang = labels.Negotiate(accept)
	}
	sh := sheet.New(s.pricing, lang)
	sh.Start()

	rec, err := s.sheets.Create(r.Context(), r.FormValue("title"), sh)
	if err != nil {
		observability.FromContext(r.Context()).Error("create sheet", zap.Error(err))
		http.Error(w, "failed to create sheet", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sheetPath(rec.ID), http.StatusSeeOther)
}

func (s *server) handleSheetsImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Redirect(w, r, "/sheets?error="+url.QueryEscape("invalid upload"), http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		http.Redirect(w, r, "/sheets?error="+url.QueryEscape("document is required"), http.StatusSeeOther)
		return
	}
	defer file.Close()

	sh, err := sheet.Load(s.pricing, file)
	if err != nil {
		http.Redirect(w, r, "/sheets?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	for _, row := range sh.Rows {
		var rowErr error
		if row.Error != "" {
			rowErr = errors.New(row.Error)
		}
		s.metrics.RowComputed(r.Context(), "import", rowErr)
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	rec, err := s.sheets.Create(r.Context(), title, sh)
	if err != nil {
		observability.FromContext(r.Context()).Error("import sheet", zap.Error(err))
		http.Error(w, "failed to import sheet", http.StatusInternalServerError)
		return
	}

	target := sheetPath(rec.ID)
	if failed := sh.FailedRows(); len(failed) > 0 {
		target += "?error=" + url.QueryEscape(fmt.Sprintf("%d row(s) could not be computed", len(failed)))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) loadSheet(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	rec, err := s.sheets.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSheetNotFound) {
		http.NotFound(w, r)
		return store.Record{}, false
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("load sheet", zap.Error(err))
		http.Error(w, "failed to load sheet", http.StatusInternalServerError)
		return store.Record{}, false
	}
	return rec, true
}

func (s *server) handleSheetShow(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadSheet(w, r)
	if !ok {
		return
	}

	sh := rec.Sheet
	rows := make([]rowView, len(sh.Rows))
	for i, row := range sh.Rows {
		cells := make([]cellView, pricing.FieldCount)
		for _, f := range pricing.Fields() {
			cells[f] = cellView{Row: i, Key: f.Key(), Value: row.Cells[f], Editable: f.IsInput()}
		}
		rows[i] = rowView{Index: i, Number: i + 1, Cells: cells, Error: row.Error}
	}

	s.renderTemplate(w, r, "sheet.html", sheetViewData{
		baseViewData: s.baseView(r, sh.Language),
		ID:           rec.ID,
		Title:        rec.Title,
		Headers:      sh.WrappedHeaders(),
		Rows:         rows,
		Captions:     captionsFor(sh.Language),
	})
}

func (s *server) handleSheetDelete(w http.ResponseWriter, r *http.Request) {
	err := s.sheets.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSheetNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("delete sheet", zap.Error(err))
		http.Error(w, "failed to delete sheet", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/sheets?success="+url.QueryEscape("sheet deleted"), http.StatusSeeOther)
}

func (s *server) handleSheetRename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	err := s.sheets.Rename(r.Context(), id, r.FormValue("title"))
	if errors.Is(err, store.ErrSheetNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("rename sheet", zap.Error(err))
		http.Error(w, "failed to rename sheet", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sheetPath(id), http.StatusSeeOther)
}

// sheetAction edits a loaded sheet. A returned *pricing.ParseError is not
// fatal: the sheet is saved with the failure recorded on the row.
type sheetAction func(r *http.Request, sh *sheet.Sheet) error

func (s *server) withSheet(action sheetAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		rec, ok := s.loadSheet(w, r)
		if !ok {
			return
		}

		err := action(r, rec.Sheet)
		var parseErr *pricing.ParseError
		switch {
		case errors.Is(err, sheet.ErrRowNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case errors.As(err, &parseErr):
			observability.FromContext(r.Context()).Warn("row not computed",
				zap.String("sheet_id", rec.ID),
				zap.String("row", chi.URLParam(r, "row")),
				zap.String("field", parseErr.Field.Key()),
				zap.String("value", parseErr.Value),
			)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.sheets.Save(r.Context(), rec.ID, rec.Sheet); err != nil {
			observability.FromContext(r.Context()).Error("save sheet", zap.Error(err))
			http.Error(w, "failed to save sheet", http.StatusInternalServerError)
			return
		}

		target := sheetPath(rec.ID)
		if parseErr != nil {
			target += "?error=" + url.QueryEscape(parseErr.Error())
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func rowParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "row")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return -1, fmt.Errorf("%w: %q", sheet.ErrRowNotFound, raw)
	}
	return i, nil
}

func startSheet(_ *http.Request, sh *sheet.Sheet) error {
	sh.Start()
	return nil
}

func expandSheet(_ *http.Request, sh *sheet.Sheet) error {
	sh.Expand()
	return nil
}

func clearSheet(_ *http.Request, sh *sheet.Sheet) error {
	sh.DeleteAll()
	return nil
}

// switchLanguage selects the posted lang, or toggles when none is given.
func switchLanguage(r *http.Request, sh *sheet.Sheet) error {
	if raw := r.PostFormValue("lang"); raw != "" {
		lang, err := labels.ParseLanguage(raw)
		if err != nil {
			return err
		}
		sh.Language = lang
		return nil
	}
	sh.ToggleLanguage()
	return nil
}

// updateRow applies the posted input cells. Fields absent from the form keep
// their current text.
func (s *server) updateRow(r *http.Request, sh *sheet.Sheet) error {
	i, err := rowParam(r)
	if err != nil {
		return err
	}
	if i < 0 || i >= sh.Len() {
		return fmt.Errorf("%w: %d", sheet.ErrRowNotFound, i)
	}

	cells := sh.Rows[i].Inputs().Cells()
	for _, f := range pricing.Fields() {
		if !f.IsInput() {
			continue
		}
		if values, ok := r.PostForm[f.Key()]; ok && len(values) > 0 {
			cells[f] = values[0]
		}
	}

	err = sh.SetInputs(i, pricing.RawInputFromCells(cells))
	s.metrics.RowComputed(r.Context(), "web", err)
	return err
}

func (s *server) copyRow(r *http.Request, sh *sheet.Sheet) error {
	i, err := rowParam(r)
	if err != nil {
		return err
	}
	_, err = sh.Copy(i)
	if !errors.Is(err, sheet.ErrRowNotFound) {
		s.metrics.RowComputed(r.Context(), "web", err)
	}
	return err
}

func deleteRow(r *http.Request, sh *sheet.Sheet) error {
	i, err := rowParam(r)
	if err != nil {
		return err
	}
	return sh.Delete(i)
}

func (s *server) handleSheetExport(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := s.loadSheet(w, r)
		if !ok {
			return
		}
		logger := observability.FromContext(r.Context())

		table, err := rec.Sheet.Table()
		for _, rowErr := range sheet.RowErrors(err) {
			logger.Warn("export row not computed", zap.Int("row", rowErr.Index+1), zap.Error(rowErr.Err))
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, format, table); err != nil {
			logger.Error("export sheet", zap.Error(err))
			http.Error(w, "failed to export sheet", http.StatusInternalServerError)
			return
		}
		s.metrics.Exported(r.Context(), string(format))

		w.Header().Set("Content-Type", export.ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(rec.Sheet.Language, format)))
		_, _ = buf.WriteTo(w)
	}
}

func (s *server) handleSheetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadSheet(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := rec.Sheet.Save(&buf); err != nil {
		observability.FromContext(r.Context()).Error("encode sheet document", zap.Error(err))
		http.Error(w, "failed to encode sheet", http.StatusInternalServerError)
		return
	}

	name := fileSafe(rec.Title)
	if name == "" {
		name = "pricing"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
	_, _ = buf.WriteTo(w)
}

// fileSafe keeps letters, digits, dash and underscore, mapping spaces to dashes.
func fileSafe(title string) string {
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, strings.TrimSpace(title)), "-")
}
