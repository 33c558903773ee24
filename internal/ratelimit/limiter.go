// Package ratelimit counts requests per client key for the global throttle.
package ratelimit

import "context"

// Limiter decides whether key may make another request now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
