package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jang1563/worship-vocal-ai/internal/core/services"
	"github.com/jang1563/worship-vocal-ai/internal/worker"
)

type comparisonJobRequest struct {
	SingerID string `json:"singer_id"`
	SlowURL  string `json:"slow_url"`
	FastURL  string `json:"fast_url"`
}

type comparisonJobResponse struct {
	ID     string        `json:"id"`
	Status worker.Status `json:"status"`
}

// CreateComparison handles POST /comparisons (multipart fields "slow" and "fast").
// A side that cannot be analyzed still yields a partial comparison.
func (h *Handler) CreateComparison(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}

	slow, err := formFile(r, "slow")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fast, err := formFile(r, "fast")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	singerID := r.FormValue("singer_id")
	cmp, err := h.svc.CompareUploads(r.Context(),
		services.Upload{Data: slow, SingerID: singerID, Label: r.FormValue("slow_label")},
		services.Upload{Data: fast, SingerID: singerID, Label: r.FormValue("fast_label")},
	)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/comparisons/"+cmp.ID)
	writeJSON(w, http.StatusCreated, cmp)
}

// GetComparison handles GET /comparisons/{id}
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.svc.GetComparison(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// SubmitComparisonJob handles POST /comparisons/jobs
func (h *Handler) SubmitComparisonJob(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeError(w, http.StatusServiceUnavailable, "background jobs are not configured")
		return
	}
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req comparisonJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SlowURL == "" || req.FastURL == "" {
		writeError(w, http.StatusBadRequest, "slow_url and fast_url are required")
		return
	}

	job := worker.Job{ID: h.newID(), SingerID: req.SingerID, SlowURL: req.SlowURL, FastURL: req.FastURL}
	if err := h.pool.Submit(job); err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			w.Header().Set("Retry-After", "5")
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	w.Header().Set("Location", "/comparisons/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, comparisonJobResponse{ID: job.ID, Status: worker.StatusQueued})
}

// GetComparisonJob handles GET /comparisons/jobs/{id}
func (h *Handler) GetComparisonJob(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeError(w, http.StatusServiceUnavailable, "background jobs are not configured")
		return
	}
	state, ok := h.pool.Status(r.PathValue("id"))
	if !ok {
		writeErrorWithCode(w, http.StatusNotFound, "not found", errCodeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
