package handlers

import (
	"encoding/json"
	"net/http"

	"gitlab.com/codearena.net/internal/handlers/response"
)

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func ResponseError(w http.ResponseWriter, message string, code int) {
	response.WriteError(w, response.ErrorMessage{Message: message, StatusCode: code})
}

// ResponseFailure answers with the status matching err and a fixed message, keeping
// internal error text out of the body.
func ResponseFailure(w http.ResponseWriter, message string, err error) {
	ResponseError(w, message, response.StatusFor(err))
}
