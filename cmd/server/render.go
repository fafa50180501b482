package main

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/observability"
	"github.com/Simplici0/gr24/web"
)

type baseViewData struct {
	Lang           string
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

// baseView reads the flash messages carried in the query string.
func (s *server) baseView(r *http.Request, lang labels.Language) baseViewData {
	q := r.URL.Query()
	return baseViewData{
		Lang:           string(lang),
		ErrorMessage:   q.Get("error"),
		SuccessMessage: q.Get("success"),
	}
}

func (s *server) renderTemplate(w http.ResponseWriter, r *http.Request, page string, data any) {
	s.renderStatus(w, r, http.StatusOK, page, data)
}

func (s *server) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	logger := observability.FromContext(r.Context())

	templates, err := template.ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
	if err != nil {
		logger.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
