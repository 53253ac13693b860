package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/jang1563/worship-vocal-ai/internal/core/services"
)

// CreateAnalysis handles POST /analyses (multipart field "audio").
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}

	data, err := formFile(r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	style, ok := domain.ParseStyle(r.FormValue("style"))
	if !ok {
		writeError(w, http.StatusBadRequest, "style must be slow or fast")
		return
	}

	analysis, err := h.svc.AnalyzeUpload(r.Context(), services.Upload{
		Data:     data,
		SingerID: r.FormValue("singer_id"),
		Label:    r.FormValue("label"),
		Style:    style,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/analyses/"+analysis.ID)
	writeJSON(w, http.StatusCreated, analysis)
}

// GetAnalysis handles GET /analyses/{id}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.GetAnalysis(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GetGrowth handles GET /singers/{id}/growth
func (h *Handler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Growth(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseUpload bounds and parses a multipart body, writing the error
// response itself when it fails.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "expected multipart/form-data body")
		return false
	}
	return true
}

func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required", field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, nil
}

func zapRequest(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}
