package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

const (
	defaultMaxEntries      = 1024
	defaultTTL             = 10 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryResolverCache keeps built variation resolvers per product. An
// entry is only returned for the product version it was built from, expires
// after the TTL, and the least recently used entry is evicted once the cache
// is full.
type InMemoryResolverCache struct {
	mu         sync.Mutex
	entries    map[uuid.UUID]*list.Element
	lru        *list.List
	maxEntries int
	ttl        time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopOnce   sync.Once
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type resolverEntry struct {
	productID uuid.UUID
	version   int
	resolver  *catalog.VariationResolver
	expiresAt time.Time
}

// InMemoryResolverCacheOption is a functional option for configuring the cache
type InMemoryResolverCacheOption func(*InMemoryResolverCache)

// WithMaxEntries bounds the number of cached products
func WithMaxEntries(n int) InMemoryResolverCacheOption {
	return func(c *InMemoryResolverCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithTTL sets how long an entry stays valid
func WithTTL(ttl time.Duration) InMemoryResolverCacheOption {
	return func(c *InMemoryResolverCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) InMemoryResolverCacheOption {
	return func(c *InMemoryResolverCache) {
		c.logger = logger
	}
}

// NewInMemoryResolverCache creates the cache and starts its cleanup loop.
// Call Close to stop it.
func NewInMemoryResolverCache(opts ...InMemoryResolverCacheOption) *InMemoryResolverCache {
	c := &InMemoryResolverCache{
		entries:    make(map[uuid.UUID]*list.Element),
		lru:        list.New(),
		maxEntries: defaultMaxEntries,
		ttl:        defaultTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// Get returns the resolver cached for the given product version
func (c *InMemoryResolverCache) Get(productID uuid.UUID, version int) (*catalog.VariationResolver, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[productID]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry := el.Value.(*resolverEntry)
	if entry.version != version || c.now().After(entry.expiresAt) {
		c.removeElement(el)
		c.misses.Add(1)
		return nil, false
	}

	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return entry.resolver, true
}

// Set stores the resolver built for the given product version
func (c *InMemoryResolverCache) Set(productID uuid.UUID, version int, resolver *catalog.VariationResolver) {
	if resolver == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &resolverEntry{
		productID: productID,
		version:   version,
		resolver:  resolver,
		expiresAt: c.now().Add(c.ttl),
	}
	if el, ok := c.entries[productID]; ok {
		el.Value = entry
		c.lru.MoveToFront(el)
		return
	}

	c.entries[productID] = c.lru.PushFront(entry)
	for c.lru.Len() > c.maxEntries {
		oldest := c.lru.Back()
		c.removeElement(oldest)
		c.logger.Debug("evicted resolver", zap.String("product_id", oldest.Value.(*resolverEntry).productID.String()))
	}
}

// Invalidate drops the entry of one product
func (c *InMemoryResolverCache) Invalidate(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[productID]; ok {
		c.removeElement(el)
		c.logger.Debug("invalidated resolver", zap.String("product_id", productID.String()))
	}
}

// Purge drops every entry
func (c *InMemoryResolverCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uuid.UUID]*list.Element)
	c.lru.Init()
	c.logger.Debug("purged resolver cache")
}

// Len returns the number of cached products
func (c *InMemoryResolverCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the hit and miss counts since creation
func (c *InMemoryResolverCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cleanup loop
func (c *InMemoryResolverCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *InMemoryResolverCache) removeElement(el *list.Element) {
	c.lru.Remove(el)
	delete(c.entries, el.Value.(*resolverEntry).productID)
}

func (c *InMemoryResolverCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemoryResolverCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*resolverEntry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	if removed > 0 {
		c.logger.Debug("removed expired resolvers", zap.Int("count", removed))
	}
}
