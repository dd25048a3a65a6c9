// Package common contains wire-level constants shared by the carbuyer
// client and the development backend.
package common

const (
	// APIPrefix is the path under which every REST resource is mounted.
	APIPrefix = "/api/v1"

	// HealthPath is served at the root of the host, outside APIPrefix.
	HealthPath = "/health"

	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeJSON         = "application/json"

	// TokenMetadataKey is the fixed storage key of the persisted bearer token.
	TokenMetadataKey = "token"
)
