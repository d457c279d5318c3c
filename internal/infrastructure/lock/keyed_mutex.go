// Package lock provides per-order locks that serialize cart modifications.
package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
)

// KeyedMutex is an in-process order.Locker. Each order id gets its own
// channel-based mutex, created on demand and dropped once nobody holds or
// waits for it.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*keyedEntry)}
}

// Lock blocks until the lock for orderID is held or ctx is done
func (m *KeyedMutex) Lock(ctx context.Context, orderID uuid.UUID) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[orderID]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		m.locks[orderID] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(orderID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(orderID, e)
		})
	}, nil
}

func (m *KeyedMutex) release(orderID uuid.UUID, e *keyedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, orderID)
	}
}

// size returns the number of tracked keys
func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

var _ order.Locker = (*KeyedMutex)(nil)
