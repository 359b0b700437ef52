package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dverna/trasferte/internal/server/models"
)

func (h *Handlers) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.trips.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *Handlers) getTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.trips.Get(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "tripID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (h *Handlers) findTrip(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	date := r.URL.Query().Get("date")
	if location == "" || date == "" {
		writeError(w, http.StatusBadRequest, "location and date are required")
		return
	}
	trip, err := h.trips.Find(r.Context(), userIDFromContext(r.Context()), location, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (h *Handlers) deleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.trips.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "tripID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addExpenseRequest struct {
	Location  string  `json:"location"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Comment   string  `json:"comment"`
	PhotoPath string  `json:"photoPath"`
	Timestamp int64   `json:"ts"`
}

func (h *Handlers) addExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	expense := &models.Expense{
		Amount:    req.Amount,
		Comment:   req.Comment,
		PhotoPath: req.PhotoPath,
		Timestamp: req.Timestamp,
	}

	created, err := h.trips.AddExpense(r.Context(), userIDFromContext(r.Context()), req.Location, req.Date, expense)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) removeExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.trips.RemoveExpense(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "expenseID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (h *Handlers) photoUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := h.photos.GetPresignedPutURL(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}
