package notion

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the integration token is invalid or revoked
var ErrUnauthorized = errors.New("invalid or revoked Notion integration token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("notion API rate limit exceeded")

// ErrInvalidID indicates an identifier could not be normalized to a UUID
var ErrInvalidID = errors.New("invalid Notion identifier")

// ServerError represents a 5xx error from the Notion API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Notion server error: HTTP %d", e.StatusCode)
}

// APIError represents a structured error response from the Notion API
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Notion API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}
