package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/codearena.net/internal/static/errs"
)

// ErrorMessage is the body of every failed status API request.
type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

// StatusFor maps a sentinel error to the status code the API answers with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrNoSession):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
