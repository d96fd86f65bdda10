package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`   // Machine-readable error code
	Message string `json:"message,omitempty"` // Human-readable message
	Detail  string `json:"detail,omitempty"`  // Detail shown to operators verbatim
}

// Text returns the most specific human-readable text in the response.
func (r ErrorResponse) Text() string {
	switch {
	case r.Detail != "":
		return r.Detail
	case r.Message != "":
		return r.Message
	default:
		return r.Error
	}
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetail(w, statusCode, errorCode, message, "")
}

// WriteErrorWithDetail writes a JSON error response with an operator-facing detail
func WriteErrorWithDetail(w http.ResponseWriter, statusCode int, errorCode, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Detail:  detail,
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteErrorWithDetail(w, http.StatusBadRequest, "bad_request", "Bad request", detail)
}

func WriteNotFound(w http.ResponseWriter, detail string) {
	WriteErrorWithDetail(w, http.StatusNotFound, "not_found", "Not found", detail)
}

func WriteConflict(w http.ResponseWriter, detail string) {
	WriteErrorWithDetail(w, http.StatusConflict, "conflict", "Conflict", detail)
}

func WriteUnauthorized(w http.ResponseWriter, detail string) {
	WriteErrorWithDetail(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", detail)
}

func WriteTooManyRequests(w http.ResponseWriter, detail string) {
	WriteErrorWithDetail(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests", detail)
}
