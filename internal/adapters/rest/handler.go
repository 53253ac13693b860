package rest

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jang1563/worship-vocal-ai/internal/core/services"
	"github.com/jang1563/worship-vocal-ai/internal/worker"
)

const defaultMaxUploadBytes = 50 << 20

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator // Dependency on the Core Service
	pool   *worker.Pool           // Optional; nil disables async jobs
	logger *zap.Logger
	router *http.ServeMux // Standard library router

	maxUploadBytes int64
	newID          func() string
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, pool *worker.Pool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:            svc,
		pool:           pool,
		logger:         logger,
		router:         http.NewServeMux(),
		maxUploadBytes: defaultMaxUploadBytes,
		newID:          uuid.NewString,
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("POST /analyses", h.CreateAnalysis)
	h.router.HandleFunc("GET /analyses/{id}", h.GetAnalysis)

	h.router.HandleFunc("POST /comparisons", h.CreateComparison)
	h.router.HandleFunc("GET /comparisons/{id}", h.GetComparison)
	h.router.HandleFunc("POST /comparisons/jobs", h.SubmitComparisonJob)
	h.router.HandleFunc("GET /comparisons/jobs/{id}", h.GetComparisonJob)

	h.router.HandleFunc("GET /singers/{id}/growth", h.GetGrowth)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":              "ok",
		"calibration_version": h.svc.Analyzer().Calibration().Version,
	})
}
