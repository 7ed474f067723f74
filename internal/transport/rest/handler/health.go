package handler

import (
	"net/http"

	"promptbattle/internal/game"
)

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	manager *game.Manager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(manager *game.Manager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "Prompt Battle Server is running",
		"endpoints": map[string]string{
			"health":   "/health",
			"evaluate": "/api/evaluate-prompt",
			"recaps":   "/v1/recaps/{code}",
			"ws":       "/ws",
		},
	})
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rooms":  h.manager.RoomCount(),
	})
}
