package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/errors"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/middleware"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
)

// writeJSON writes a JSON response with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode JSON response", err)
	}
}

// writeStatus writes a status response
func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, code int, status, message string, data interface{}) {
	h.writeJSON(w, &models.StatusResponse{
		Status:    status,
		Message:   message,
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Data:      data,
	}, code)
}

// writeAppError writes an application error response
func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	response := &models.ErrorResponse{
		Error:     appErr.Message,
		Code:      string(appErr.Code),
		Details:   appErr.Details,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}

	// Log the error for internal monitoring
	h.log.With("error_code", appErr.Code).
		With("status_code", appErr.StatusCode).
		With("request_id", response.RequestID).
		Error(appErr.Message, appErr.Err)

	h.writeJSON(w, response, appErr.StatusCode)
}
