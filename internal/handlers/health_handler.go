package handlers

import (
	"net/http"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck returns the server health status
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}
