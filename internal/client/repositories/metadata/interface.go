// Package metadata is the local key/value store behind every durable client
// value: the sealed bearer token, the profile snapshot, the unlock PIN
// verifier and the push installation token.
package metadata

import (
	"context"
)

// Repository stores opaque values by key.
type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany returns the present keys only.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
