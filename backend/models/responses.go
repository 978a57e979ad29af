package models

import (
	"time"
)

// APIResponse is the envelope every endpoint answers with. Exactly one of
// Data and Error is set.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries the stable error code clients switch on, e.g.
// INSUFFICIENT_BALANCE or GAME_PAUSED.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func NewSuccessResponse(data any, message string) *APIResponse {
	return &APIResponse{Success: true, Message: message, Data: data, Timestamp: time.Now()}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Error:     &APIError{Code: code, Message: message, Details: details},
		Timestamp: time.Now(),
	}
}

// HealthCheck is the /health payload. Healthy flips to false as soon as one
// dependency fails.
type HealthCheck struct {
	Healthy      bool              `json:"healthy"`
	Version      string            `json:"version"`
	Commit       string            `json:"commit"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	CheckedAt    time.Time         `json:"checked_at"`
}

func NewHealthCheck(version, commit string) *HealthCheck {
	return &HealthCheck{
		Healthy:      true,
		Version:      version,
		Commit:       commit,
		Dependencies: make(map[string]string),
		CheckedAt:    time.Now(),
	}
}

// Check records the outcome of probing one dependency.
func (h *HealthCheck) Check(name string, err error) {
	if err != nil {
		h.Dependencies[name] = err.Error()
		h.Healthy = false
		return
	}
	h.Dependencies[name] = "ok"
}
