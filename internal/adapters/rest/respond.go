package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

const (
	errCodeInsufficientSignal   = "INSUFFICIENT_SIGNAL"
	errCodeInvalidAudio         = "INVALID_AUDIO"
	errCodeNotFound             = "NOT_FOUND"
	errCodeNotEnoughHistory     = "NOT_ENOUGH_HISTORY"
	errCodeCalibrationViolation = "CALIBRATION_VIOLATION"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps core errors to statuses. A recording that could not
// be analyzed is a 422, never a low score.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientSignal):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeInsufficientSignal)
	case errors.Is(err, domain.ErrInvalidAudio):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidAudio)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, "not found", errCodeNotFound)
	case errors.Is(err, domain.ErrNotEnoughHistory):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeNotEnoughHistory)
	case errors.Is(err, domain.ErrCalibrationViolation):
		h.logger.Error("calibration violation", zapRequest(r, err)...)
		writeErrorWithCode(w, http.StatusInternalServerError, "internal scoring error", errCodeCalibrationViolation)
	default:
		h.logger.Error("request failed", zapRequest(r, err)...)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
