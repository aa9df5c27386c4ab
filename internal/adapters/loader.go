// Package adapters normalizes each remote classifier source into the shared
// model.Detection shape and owns the lazily loaded, shared model handles.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	loadedKey = "loaded"
	failedKey = "failed"
)

// Loader lazily builds a model handle on first use and shares it with every
// caller afterwards. A failed load is remembered for retryAfter, then retried.
type Loader[T any] struct {
	name       string
	load       func(ctx context.Context) (T, error)
	retryAfter time.Duration

	mu    sync.Mutex
	cache *gocache.Cache
	loads int
}

// NewLoader creates a loader. retryAfter <= 0 retries failed loads on the next call.
func NewLoader[T any](name string, retryAfter time.Duration, load func(ctx context.Context) (T, error)) *Loader[T] {
	return &Loader[T]{
		name:       name,
		load:       load,
		retryAfter: retryAfter,
		cache:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Preloaded returns a loader that always yields v
func Preloaded[T any](name string, v T) *Loader[T] {
	l := NewLoader(name, 0, func(context.Context) (T, error) { return v, nil })
	l.cache.Set(loadedKey, v, gocache.NoExpiration)
	return l
}

// Get returns the shared handle, loading it if needed. Concurrent first calls
// wait for a single load.
func (l *Loader[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.cached(); ok {
		return v, nil
	}
	if err := l.recentFailure(); err != nil {
		var zero T
		return zero, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.cached(); ok {
		return v, nil
	}
	if err := l.recentFailure(); err != nil {
		var zero T
		return zero, err
	}

	l.loads++
	v, err := l.load(ctx)
	if err != nil {
		err = fmt.Errorf("load %s: %w", l.name, err)
		// a caller giving up says nothing about the backend
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && l.retryAfter > 0 {
			l.cache.Set(failedKey, err, l.retryAfter)
		}
		var zero T
		return zero, err
	}

	l.cache.Set(loadedKey, v, gocache.NoExpiration)
	return v, nil
}

// Reset forgets the loaded handle and any remembered failure
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Flush()
}

// Loads reports how many times the load function has run
func (l *Loader[T]) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

// Name returns the loader name
func (l *Loader[T]) Name() string {
	return l.name
}

func (l *Loader[T]) cached() (T, bool) {
	if v, ok := l.cache.Get(loadedKey); ok {
		return v.(T), true
	}
	var zero T
	return zero, false
}

func (l *Loader[T]) recentFailure() error {
	if v, ok := l.cache.Get(failedKey); ok {
		return v.(error)
	}
	return nil
}
