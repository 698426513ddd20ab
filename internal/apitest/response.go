package apitest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Envelope is the wrapper every successful API response uses.
type Envelope struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Data   any    `json:"data"`
}

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// WriteData writes data wrapped in the response envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{
		ID:     uuid.NewString(),
		Status: status,
		Data:   data,
	})
}

// WriteError writes an API error body.
func WriteError(w http.ResponseWriter, r *http.Request, status, code int, message string) {
	writeJSON(w, status, ErrorResponse{
		ID:      uuid.NewString(),
		Code:    code,
		Status:  status,
		Message: message,
		Path:    r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
