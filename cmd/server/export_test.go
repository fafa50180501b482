package main

import (
	"bytes"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/gr24/internal/pricing"
)

func TestSheetExportXLSX(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/sheets/"+env.sample+"/export.xlsx")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "pricing_DE.xlsx") {
		t.Fatalf("content disposition = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	if rows[0][0] != "Menge" {
		t.Fatalf("first header = %q, want Menge", rows[0][0])
	}
}

func TestSheetExportCSVKeepsFailedRowInputs(t *testing.T) {
	env := newTestEnv(t)
	base := "/sheets/" + env.sample

	env.postForm(t, base+"/language", nil)
	env.postForm(t, base+"/expand", nil)
	env.postForm(t, base+"/rows/1", map[string][]string{"margin_pct": {"ten"}})

	rr := env.get(t, base+"/export.csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "pricing_EN.csv") {
		t.Fatalf("content disposition = %q", got)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 csv records, got %d", len(records))
	}
	if records[0][0] != "Quantity" {
		t.Fatalf("first header = %q, want Quantity", records[0][0])
	}
	if records[1][pricing.FieldSellingPrice] != "44.26" {
		t.Fatalf("selling price = %q", records[1][pricing.FieldSellingPrice])
	}
	failed := records[2]
	if failed[pricing.FieldMarginPct] != "ten" || failed[pricing.FieldSellingPrice] != "" {
		t.Fatalf("failed row = %v", failed)
	}
}

func TestSheetDocumentImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/sheets/"+env.sample+"/document.json")
	if rr.Code != http.StatusOK {
		t.Fatalf("document status = %d", rr.Code)
	}
	doc := rr.Body.Bytes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", "copy-of-sample.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(doc); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/sheets/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr = env.do(t, req)
	location := assertRedirect(t, rr, "/sheets/")
	id := strings.TrimPrefix(location, "/sheets/")
	if id == env.sample {
		t.Fatalf("import reused the source id")
	}

	rec := env.record(t, id)
	if rec.Title != "copy-of-sample" {
		t.Fatalf("title = %q, want copy-of-sample", rec.Title)
	}
	if rec.Sheet.Len() != 1 || rec.Sheet.Rows[0].Cells[pricing.FieldSellingPrice] != "44.26" {
		t.Fatalf("imported sheet does not match the source")
	}
}

func TestSheetImportRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", "broken.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("{not json"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sheets/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assertRedirect(t, env.do(t, req), "/sheets?error=")
}

func TestFileSafe(t *testing.T) {
	cases := map[string]string{
		"Beispiel / Example": "Beispiel--Example",
		"  Q3 prices ":       "Q3-prices",
		"../..":              "",
	}
	for in, want := range cases {
		if got := fileSafe(in); got != want {
			t.Fatalf("fileSafe(%q) = %q, want %q", in, got, want)
		}
	}
}
