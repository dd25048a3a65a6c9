package common

import "errors"

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrInvalidAuthHeader    = errors.New("invalid authorization header format")
)
