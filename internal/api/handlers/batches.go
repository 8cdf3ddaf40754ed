package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vocalysis/backend/internal/batch"
)

// BatchHandler serves stored batch state and CSV exports.
type BatchHandler struct {
	batches *batch.Store
}

func NewBatchHandler(batches *batch.Store) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Get handles GET /api/v1/batches/{id}.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ExportCSV handles GET /api/v1/batches/{id}/export.
func (h *BatchHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	b, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if b.Status != batch.StatusReady || b.Table == nil {
		writeError(w, http.StatusConflict, "batch is not ready: "+string(b.Status))
		return
	}
	writeCSV(w, b.ID, b.Table)
}

func (h *BatchHandler) lookup(w http.ResponseWriter, r *http.Request) (*batch.Batch, bool) {
	if h.batches == nil {
		writeError(w, http.StatusServiceUnavailable, "batch storage unavailable")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch ID")
		return nil, false
	}

	b, err := h.batches.Get(r.Context(), id.String())
	if errors.Is(err, batch.ErrNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return b, true
}
