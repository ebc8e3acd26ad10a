package ratelimit

import (
	"context"
	"time"
)

// Store is a sliding-window request counter keyed by client identifier.
//
// Allow prunes entries older than the window, then admits the request iff the
// remaining count is below the limit. Admitted requests are recorded; rejected
// requests are not, so a blocked client does not extend its own window. The
// check-and-record sequence is atomic per key in every implementation.
type Store interface {
	Allow(ctx context.Context, key string, now time.Time) (allowed bool, count int, err error)
}
