package handlers

import (
	"encoding/json"
	"net/http"
)

// production controls error redaction: in production mode responses carry
// only a message and a code, never internal error detail.
var production = true

// SetProduction toggles error-detail redaction. Called once at startup.
func SetProduction(on bool) {
	production = on
}

// ErrorBody is the JSON error envelope returned by every endpoint.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-visible failure description.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"` // internal error text, non-production only
}

// Error codes shared with API consumers.
const (
	CodeValidation      = "validation_error"
	CodeUserExists      = "user_exists"
	CodeUnauthorized    = "unauthorized"
	CodeTooManyRequests = "too_many_requests"
	CodeInvalidHash     = "invalid_hash"
	CodeInvalidRequest  = "invalid_request"
	CodeInternal        = "internal_error"
)

func writeError(w http.ResponseWriter, status int, code, message string, internal error) {
	detail := ""
	if !production && internal != nil {
		detail = internal.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorBody{
		Error: ErrorDetail{Message: message, Code: code, Detail: detail},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
