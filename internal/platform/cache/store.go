package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

var errNilLoader = errors.New("cache: loader is required")

type slot[V any] struct {
	value   V
	expires time.Time
}

// Store is a typed in-process cache with a fixed ttl. Concurrent misses on
// one key share a single load. A ttl of zero or less never expires.
type Store[V any] struct {
	ttl   time.Duration
	clock clockwork.Clock
	group singleflight.Group

	mu    sync.RWMutex
	slots map[string]slot[V]
}

func NewStore[V any](ttl time.Duration, clock clockwork.Clock) *Store[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store[V]{ttl: ttl, clock: clock, slots: map[string]slot[V]{}}
}

func (s *Store[V]) fresh(sl slot[V]) bool {
	return s.ttl <= 0 || s.clock.Now().Before(sl.expires)
}

// Peek returns a live value without loading.
func (s *Store[V]) Peek(key string) (V, bool) {
	s.mu.RLock()
	sl, ok := s.slots[key]
	s.mu.RUnlock()
	if ok && s.fresh(sl) {
		return sl.value, true
	}
	var zero V
	return zero, false
}

func (s *Store[V]) Put(key string, value V) {
	sl := slot[V]{value: value}
	if s.ttl > 0 {
		sl.expires = s.clock.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.slots[key] = sl
	s.mu.Unlock()
}

// Forget drops keys, typically after the underlying rows were written.
func (s *Store[V]) Forget(keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.slots, key)
	}
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// Sweep removes expired slots and reports how many were dropped.
func (s *Store[V]) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, sl := range s.slots {
		if !s.fresh(sl) {
			delete(s.slots, key)
			dropped++
		}
	}
	return dropped
}

// Load returns the cached value for key or fills it from load. Failed loads
// are not cached.
func (s *Store[V]) Load(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	var zero V
	if load == nil {
		return zero, errNilLoader
	}
	if v, ok := s.Peek(key); ok {
		return v, nil
	}

	out, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.Peek(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.Put(key, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return out.(V), nil
}
