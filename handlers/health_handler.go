package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/semantic-retrieval/utils"
	"go.uber.org/zap"
)

// Version is reported by the status endpoint; overridden at build time with -ldflags.
var Version = "0.1.0"

// HealthChecker is implemented by the vector store
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StatusInfo is the static part of GET /api/v1/status
type StatusInfo struct {
	Environment        string `json:"environment"`
	EmbeddingMode      string `json:"embeddingMode"`
	EmbeddingModel     string `json:"embeddingModel"`
	EmbeddingDimension int    `json:"embeddingDimensions"`
	VectorStoreBackend string `json:"vectorStoreBackend"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store  HealthChecker
	info   StatusInfo
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil store is reported as
// not initialized by the readiness check.
func NewHealthHandler(store HealthChecker, info StatusInfo, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		info:   info,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Liveness only; always 200 while the process serves requests
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	switch {
	case h.store == nil:
		checks["vector_store"] = "not_initialized"
	default:
		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Warn("vector store health check failed", zap.Error(err))
			checks["vector_store"] = "unhealthy"
		} else {
			checks["vector_store"] = "healthy"
		}
	}

	if checks["vector_store"] != "healthy" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/v1/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Version string `json:"version"`
		StatusInfo
	}{
		Version:    Version,
		StatusInfo: h.info,
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write status response", zap.Error(err))
	}
}
