package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks processed operation keys so retried lifecycle
// requests (create/confirm/cancel/ship/refund) are not applied twice.
type IdempotencyStore interface {
	// MarkProcessed records a key with a TTL. Returns true if the key was
	// newly recorded, false if it had already been processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)
}
