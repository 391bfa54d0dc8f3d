package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

// RedisTransientRepository keeps short lived per-session values in Redis.
type RedisTransientRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisTransientRepository constructs a Redis backed transient store.
func NewRedisTransientRepository(client *redis.Client) *RedisTransientRepository {
	return &RedisTransientRepository{client: client, prefix: "teachspace:transient:"}
}

// Put stores value under key for ttl.
func (r *RedisTransientRepository) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal transient value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Peek reads the value without consuming it.
func (r *RedisTransientRepository) Peek(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	return r.decode(key, raw, err, dest)
}

// Take reads and deletes the value in one round trip.
func (r *RedisTransientRepository) Take(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.GetDel(ctx, r.prefix+key).Bytes()
	return r.decode(key, raw, err, dest)
}

// Touch extends the expiry of an existing value.
func (r *RedisTransientRepository) Touch(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, r.prefix+key, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Delete drops the value if present.
func (r *RedisTransientRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (r *RedisTransientRepository) decode(key string, raw []byte, err error, dest interface{}) error {
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal transient value for %s: %w", key, err)
	}
	return nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryTransientRepository is the in-process store used when Redis is off.
// Values do not survive restarts and are not shared between replicas.
type MemoryTransientRepository struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryTransientRepository constructs an in-memory transient store.
func NewMemoryTransientRepository() *MemoryTransientRepository {
	return &MemoryTransientRepository{items: make(map[string]memoryEntry), now: time.Now}
}

// Put stores value under key for ttl.
func (r *MemoryTransientRepository) Put(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal transient value for %s: %w", key, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.items[key] = memoryEntry{payload: payload, expiresAt: r.now().Add(ttl)}
	return nil
}

// Peek reads the value without consuming it.
func (r *MemoryTransientRepository) Peek(_ context.Context, key string, dest interface{}) error {
	r.mu.RLock()
	entry, ok := r.items[key]
	r.mu.RUnlock()
	if !ok || !r.now().Before(entry.expiresAt) {
		return appErrors.ErrCacheMiss
	}
	return unmarshalTransient(key, entry.payload, dest)
}

// Take reads and deletes the value.
func (r *MemoryTransientRepository) Take(_ context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	entry, ok := r.items[key]
	delete(r.items, key)
	r.mu.Unlock()
	if !ok || !r.now().Before(entry.expiresAt) {
		return appErrors.ErrCacheMiss
	}
	return unmarshalTransient(key, entry.payload, dest)
}

// Touch extends the expiry of an existing value.
func (r *MemoryTransientRepository) Touch(_ context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[key]
	if !ok || !r.now().Before(entry.expiresAt) {
		delete(r.items, key)
		return appErrors.ErrCacheMiss
	}
	entry.expiresAt = r.now().Add(ttl)
	r.items[key] = entry
	return nil
}

// Delete drops the value if present.
func (r *MemoryTransientRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.items, key)
	r.mu.Unlock()
	return nil
}

// sweep drops expired entries; callers hold the write lock.
func (r *MemoryTransientRepository) sweep() {
	now := r.now()
	for key, entry := range r.items {
		if !now.Before(entry.expiresAt) {
			delete(r.items, key)
		}
	}
}

func unmarshalTransient(key string, payload []byte, dest interface{}) error {
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal transient value for %s: %w", key, err)
	}
	return nil
}
