package service

import (
	"context"
	"time"
)

// TransientStore holds per-session values with explicit expiry. Missing or
// expired entries are reported as appErrors.ErrCacheMiss.
type TransientStore interface {
	Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Peek(ctx context.Context, key string, dest interface{}) error
	Take(ctx context.Context, key string, dest interface{}) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func sessionKey(sessionID, slot string) string {
	return "session:" + sessionID + ":" + slot
}
