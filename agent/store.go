package agent

import (
	"context"
	"errors"
	"sync"
)

// ErrNoKey is returned when the context carries no routing key.
var ErrNoKey = errors.New("agent: no routing key in context")

// Cache is a keyed value store shared by the per-conversation stores.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
}

type MemoryCache[S any] struct {
	mu sync.RWMutex
	m  map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

// Store scopes a Cache to one namespace and resolves the key from the context.
type Store[S any] struct {
	core      Cache[S]
	namespace string
	keyFn     func(ctx context.Context) (string, bool)
}

func NewStore[S any](core Cache[S], namespace string, keyFn func(ctx context.Context) (string, bool)) Store[S] {
	return Store[S]{core: core, namespace: namespace, keyFn: keyFn}
}

func (s Store[S]) key(ctx context.Context) (string, error) {
	key, ok := s.keyFn(ctx)
	if !ok {
		return "", ErrNoKey
	}
	return s.namespace + ":" + key, nil
}

func (s Store[S]) Set(ctx context.Context, val S) error {
	key, err := s.key(ctx)
	if err != nil {
		return err
	}
	return s.core.Set(ctx, key, val)
}

func (s Store[S]) Get(ctx context.Context) (S, bool, error) {
	key, err := s.key(ctx)
	if err != nil {
		var zero S
		return zero, false, err
	}
	return s.core.Get(ctx, key)
}

func (s Store[S]) Del(ctx context.Context) error {
	key, err := s.key(ctx)
	if err != nil {
		return err
	}
	return s.core.Del(ctx, key)
}
