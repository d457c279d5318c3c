package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockerConfig tunes RedisLocker
type RedisLockerConfig struct {
	KeyPrefix     string
	TTL           time.Duration
	RetryInterval time.Duration
	MaxWait       time.Duration
}

// DefaultRedisLockerConfig returns the settings used when none are configured
func DefaultRedisLockerConfig() RedisLockerConfig {
	return RedisLockerConfig{
		KeyPrefix:     "storefront:order-lock:",
		TTL:           10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
		MaxWait:       5 * time.Second,
	}
}

// RedisLocker is an order.Locker shared by every server instance. The lock is
// a key set with SET NX PX holding a random token; the TTL frees the lock if
// the holder dies.
type RedisLocker struct {
	client *redis.Client
	cfg    RedisLockerConfig
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker on an existing client
func NewRedisLocker(client *redis.Client, cfg RedisLockerConfig, logger *zap.Logger) *RedisLocker {
	def := DefaultRedisLockerConfig()
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = def.KeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	return &RedisLocker{client: client, cfg: cfg, logger: logger}
}

// Lock acquires the order's lock, retrying until MaxWait elapses. Giving up
// returns shared.ErrLockTimeout.
func (l *RedisLocker) Lock(ctx context.Context, orderID uuid.UUID) (func(), error) {
	key := l.key(orderID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.MaxWait)
	defer cancel()

	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() == nil {
				return nil, fmt.Errorf("failed to acquire order lock: %w", err)
			}
		} else if ok {
			return l.unlocker(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, shared.ErrLockTimeout
			}
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) unlocker(key, token string) func() {
	return func() {
		// Release must run even when the request context is already cancelled
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release order lock", zap.String("key", key), zap.Error(err))
		}
	}
}

func (l *RedisLocker) key(orderID uuid.UUID) string {
	return l.cfg.KeyPrefix + orderID.String()
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

var _ order.Locker = (*RedisLocker)(nil)
