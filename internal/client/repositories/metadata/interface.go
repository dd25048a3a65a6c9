// Package metadata stores small key/value records of the local client
// database, such as the persisted session token.
package metadata

import (
	"context"
)

// Repository is a key/value view over the metadata table.
type Repository interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set inserts or overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
