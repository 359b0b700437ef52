package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/export"
)

// exportTrip streams a ZIP bundle (CSV summary plus receipt photos) for one
// trip. The archive is assembled in memory so a mid-export failure never
// leaks a truncated download.
func (h *Handlers) exportTrip(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	tripID := chi.URLParam(r, "tripID")

	trips, err := h.trips.CollectForExport(r.Context(), userID, []string{tripID})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(trips) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var buf bytes.Buffer
	name, err := h.exporter.ExportTrip(r.Context(), &buf, trips[0])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveAttachment(w, name, "application/zip", buf.Bytes())
}

type exportSelectedRequest struct {
	TripIDs []string `json:"tripIds"`
}

// exportSelected bundles the chosen trips into a single archive. An empty or
// unknown selection is a 400.
func (h *Handlers) exportSelected(w http.ResponseWriter, r *http.Request) {
	var req exportSelectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// An empty selection must not fall into the nil-means-all branch of
	// CollectForExport and quietly bundle every trip.
	if len(req.TripIDs) == 0 {
		writeServiceError(w, common.ErrNothingToExport)
		return
	}

	trips, err := h.trips.CollectForExport(r.Context(), userIDFromContext(r.Context()), req.TripIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	name, err := h.exporter.ExportSelected(r.Context(), &buf, trips)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveAttachment(w, name, "application/zip", buf.Bytes())
}

// exportCSV returns the CSV summary of all trips, without photos.
func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	trips, err := h.trips.CollectForExport(r.Context(), userIDFromContext(r.Context()), nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	name, err := export.ExportCSV(&buf, trips)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveAttachment(w, name, "text/csv; charset=utf-8", buf.Bytes())
}

func serveAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	_, _ = w.Write(data)
}
