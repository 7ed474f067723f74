package handler

import (
	"encoding/json"
	"net/http"

	"promptbattle/internal/service"
)

// EvaluateHandler serves the standalone prompt-coaching endpoint used by the
// practice screen.
type EvaluateHandler struct {
	evaluator *service.EvaluatorService
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(evaluator *service.EvaluatorService) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator}
}

// EvaluateRequest is the request body for evaluating a prompt.
type EvaluateRequest struct {
	Prompt    string `json:"prompt"`
	Challenge string `json:"challenge"`
	LevelID   string `json:"levelId"`
}

// Evaluate handles POST /api/evaluate-prompt.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Prompt == "" || req.Challenge == "" {
		writeError(w, http.StatusBadRequest, "Missing prompt or challenge")
		return
	}

	evaluation := h.evaluator.EvaluatePrompt(r.Context(), req.Prompt, req.Challenge, req.LevelID)
	writeJSON(w, http.StatusOK, evaluation)
}
