package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation, passed
// through unchanged by PostgREST.
const uniqueViolation = "23505"

// APIError is a rejected PostgREST request.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "postgrest %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

// Unwrap maps well-known Postgres error codes onto port sentinels.
func (e *APIError) Unwrap() error {
	if e.Code == uniqueViolation {
		return driven.ErrDuplicateResident
	}
	return nil
}

// parseAPIError decodes a PostgREST error body. Bodies that are not the
// standard error object (gateway pages, plain text) become the message.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		apiErr.Code = ""
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
