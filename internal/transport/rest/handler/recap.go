package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"promptbattle/internal/repository"
)

// RecapHandler serves archived game recaps.
type RecapHandler struct {
	recaps repository.RecapRepo
}

// NewRecapHandler creates a new recap handler.
func NewRecapHandler(recaps repository.RecapRepo) *RecapHandler {
	return &RecapHandler{recaps: recaps}
}

// List handles GET /v1/recaps/{code}.
func (h *RecapHandler) List(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	recaps, err := h.recaps.ListByCode(r.Context(), code, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load recaps")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recaps": recaps,
	})
}
