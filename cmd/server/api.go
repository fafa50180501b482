package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

const maxAPIBody = 64 << 10

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type priceRequest struct {
	pricing.RawInput
	Language string `json:"language,omitempty"`
}

type priceResponse struct {
	Values map[string]string `json:"values"`
	Labels map[string]string `json:"labels"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleAPIPrice computes one row from inputs sent as strings and returns every
// field formatted for display, keyed by field name.
func (s *server) handleAPIPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}

	out, err := pricing.ComputeRaw(s.pricing, req.RawInput)
	s.metrics.RowComputed(r.Context(), "api", err)
	var parseErr *pricing.ParseError
	if errors.As(err, &parseErr) {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: parseErr.Error(), Field: parseErr.Field.Key()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	lang := s.defaultLang
	if req.Language != "" {
		lang = labels.Normalize(req.Language)
	} else if accept := r.Header.Get("Accept-Language"); accept != "" {
		lang = labels.Negotiate(accept)
	}

	cells := out.Strings(s.pricing.Places)
	resp := priceResponse{
		Values: make(map[string]string, pricing.FieldCount),
		Labels: make(map[string]string, pricing.FieldCount),
	}
	for _, f := range pricing.Fields() {
		resp.Values[f.Key()] = cells[f]
		resp.Labels[f.Key()] = labels.Label(lang, f)
	}
	writeJSON(w, http.StatusOK, resp)
}
