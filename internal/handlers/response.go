package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
)

// Envelope is the response body shape shared by all services
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteData writes {"success": true, "data": ...}
func WriteData(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	WriteJSON(w, status, Envelope{Success: true, Data: data}, logger)
}

// WriteError writes {"success": false, "message": ...}
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, Envelope{Success: false, Message: message}, logger)
}

// WriteAppError maps err onto its status code and writes the error envelope.
// Server-side failures are logged; client errors only at debug level.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	WriteError(w, status, apperrors.Message(err), logger)
}
