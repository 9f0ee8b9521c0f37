package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store  credential.Pinger // nil unless the credential store is external
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store credential.Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Readiness check - validates that the credential store is reachable
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.store == nil {
		checks["credential_store"] = "local"
	} else if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("credential store health check failed", zap.Error(err))
		checks["credential_store"] = "unhealthy"
		allHealthy = false
	} else {
		checks["credential_store"] = "healthy"
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if !allHealthy {
		details := map[string]interface{}{
			"status":    "unhealthy",
			"timestamp": response.Timestamp,
			"checks":    checks,
		}
		if err := utils.WriteServiceUnavailable(w, "Credential store unreachable", details); err != nil {
			h.logger.Error("failed to write readiness response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
