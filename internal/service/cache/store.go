package cache

import (
	"context"
	"time"
)

// Store is the key/value cache used for rendered QR images and share suggestions.
// Values are JSON encoded. Get reports found=false for a missing or expired key.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}
