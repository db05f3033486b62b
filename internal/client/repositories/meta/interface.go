// Package meta provides the client-side singleton-metadata repository:
// keyed JSON values for records like the lifetime aggregate and the streak.
package meta

import "context"

// Known metadata keys.
const (
	KeyLifetime = "lifetime"
	KeyStreak   = "streak"
	KeyMigrated = "remote_schema_migrated"
)

// Repository stores opaque JSON values by key. Get returns (nil, nil) for
// absent keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
