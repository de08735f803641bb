package models

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string          `json:"status"`
	Ready       bool            `json:"ready"`
	Missing     string          `json:"missing,omitempty"`
	Destination string          `json:"destination,omitempty"` // only set for detailed checks
	Notifier    *NotifierStatus `json:"notifier,omitempty"`
	Timestamp   int64           `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusResponse represents a generic status response
type StatusResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
