package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StandardResponse represents a standard API response structure
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSONResponse sends a JSON response with the given data and status code
func JSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// ErrorResponse sends an error JSON response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	JSONResponse(w, StandardResponse{
		Success: false,
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

// ForbiddenResponse sends a 403 forbidden response
func ForbiddenResponse(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	ErrorResponse(w, message, http.StatusForbidden)
}

// UnauthorizedResponse sends a 401 unauthorized response
func UnauthorizedResponse(w http.ResponseWriter) {
	ErrorResponse(w, "Authentication required", http.StatusUnauthorized)
}
