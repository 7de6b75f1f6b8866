package interfaces

import (
	"context"
	"time"
)

// CacheProvider is a process-wide key/value cache used for session-scoped
// memoization, such as source image bytes in the derivative pipeline. A zero
// or negative TTL stores the value for the remainder of the session.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
