package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the auth service, parsed from
// the uniform {success, message} envelope.
type APIError struct {
	// StatusCode is the HTTP status code of the failed request
	StatusCode int

	// Message is the human-readable message from the response envelope
	Message string

	// Requires2FA is set when the service demands a two-factor code
	// (login without a code) or two-factor enrollment (Pro token access)
	Requires2FA bool

	// SetupURL points at the enrollment endpoint when Requires2FA is set
	// because the account has no 2FA configured yet
	SetupURL string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Message)
}

// IsTwoFactorRequired reports whether err is an APIError demanding a
// two-factor code or enrollment.
func IsTwoFactorRequired(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Requires2FA
}

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
// Returns nil for 2xx status codes.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Message:     envelope.Message,
			Requires2FA: envelope.Requires2FA,
			SetupURL:    envelope.SetupURL,
		}
	}

	// Fallback: non-JSON or empty body
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
