package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Store persists carts per visitor session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
	// Update applies fn to the stored cart and saves the result atomically.
	// An error from fn aborts the update.
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
}

// maxUpdateAttempts bounds the retries of a contended cart update.
const maxUpdateAttempts = 100

// RedisStore keeps cart snapshots as JSON under "cart:session:<id>".
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore. Snapshots expire ttl after the last save.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Load returns the stored cart, or an empty cart when none exists.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, s.client, sessionID)
}

func (s *RedisStore) load(ctx context.Context, cmd redis.Cmdable, sessionID string) (*Cart, error) {
	data, err := cmd.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cart: decode: %w", err)
	}
	// The stored total is never trusted.
	c.Normalize()
	return &c, nil
}

// Save writes the snapshot. An empty cart deletes the key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c == nil || c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("cart: delete: %w", err)
	}
	return nil
}

// Update reads, changes and writes the cart under WATCH, retrying when
// another request wrote the same cart in between.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	key := s.key(sessionID)
	var result *Cart
	txf := func(tx *redis.Tx) error {
		c, err := s.load(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		var data []byte
		if !c.IsEmpty() {
			if data, err = json.Marshal(c); err != nil {
				return fmt.Errorf("cart: encode: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if data == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = c
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: cart %s is being modified concurrently", httpx.ErrConflict, sessionID)
}

var _ Store = (*RedisStore)(nil)
