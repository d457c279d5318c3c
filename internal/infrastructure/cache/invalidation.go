package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultInvalidationChannel = "storefront:resolver_cache"
	defaultCloseTimeout        = 5 * time.Second
)

// InvalidationAction says what a message invalidates
type InvalidationAction string

const (
	InvalidateProduct InvalidationAction = "product"
	InvalidateAll     InvalidationAction = "all"
)

// InvalidationMessage is broadcast when catalog data behind cached resolvers changes
type InvalidationMessage struct {
	Action    InvalidationAction `json:"action"`
	ProductID uuid.UUID          `json:"product_id,omitempty"`
	Origin    string             `json:"origin"`
	Timestamp int64              `json:"timestamp"`
}

// RedisInvalidator fans resolver cache invalidations out to every instance
// over Redis Pub/Sub. Messages an instance published itself are skipped on
// receipt since it already applied them locally.
type RedisInvalidator struct {
	client   *redis.Client
	channel  string
	origin   string
	logger   *zap.Logger
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// RedisInvalidatorOption is a functional option for configuring the invalidator
type RedisInvalidatorOption func(*RedisInvalidator)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		if channel != "" {
			i.channel = channel
		}
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator on a shared client.
// The caller keeps ownership of the client.
func NewRedisInvalidator(client *redis.Client, opts ...RedisInvalidatorOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// PublishProduct announces that the resolver of one product is stale
func (i *RedisInvalidator) PublishProduct(ctx context.Context, productID uuid.UUID) error {
	return i.publish(ctx, InvalidationMessage{Action: InvalidateProduct, ProductID: productID})
}

// PublishAll announces that every cached resolver is stale
func (i *RedisInvalidator) PublishAll(ctx context.Context) error {
	return i.publish(ctx, InvalidationMessage{Action: InvalidateAll})
}

func (i *RedisInvalidator) publish(ctx context.Context, msg InvalidationMessage) error {
	msg.Origin = i.origin
	msg.Timestamp = time.Now().UnixNano()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("failed to publish cache invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation message: %w", err)
	}

	i.logger.Debug("published cache invalidation",
		zap.String("action", string(msg.Action)),
		zap.String("product_id", msg.ProductID.String()))
	return nil
}

// Subscribe listens for invalidations from other instances and blocks until
// ctx is done or Close is called. Run it in its own goroutine.
func (i *RedisInvalidator) Subscribe(ctx context.Context, callback func(msg InvalidationMessage)) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("cache invalidation subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("cache invalidation channel closed")
				return nil
			}

			var update InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				i.logger.Error("failed to unmarshal cache invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			if update.Origin == i.origin {
				continue
			}
			i.deliver(callback, update)
		}
	}
}

func (i *RedisInvalidator) deliver(callback func(InvalidationMessage), msg InvalidationMessage) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("panic in cache invalidation callback", zap.Any("panic", r))
		}
	}()
	callback(msg)
}

// Close stops a running subscription
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("timeout waiting for invalidation subscription to stop")
	}
	return nil
}

// Apply executes an invalidation message against a local cache
func Apply(c *InMemoryResolverCache, msg InvalidationMessage) {
	switch msg.Action {
	case InvalidateProduct:
		c.Invalidate(msg.ProductID)
	case InvalidateAll:
		c.Purge()
	}
}
