// Package httpapi exposes the server's REST surface: authentication, trips
// and expenses, receipt photo upload URLs, profile settings, and trip export
// downloads. Handlers translate service errors into HTTP statuses; every
// error response is a single JSON notification of the form {"error": "..."}.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dverna/trasferte/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized is reported as a 500 without leaking the underlying error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, common.ErrorInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, common.ErrorInvalidDate):
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
	case errors.Is(err, common.ErrNothingToExport):
		writeError(w, http.StatusBadRequest, "nothing to export")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
