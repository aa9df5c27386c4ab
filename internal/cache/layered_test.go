package cache

import (
	"errors"
	"testing"
	"time"
)

// failingCache returns err from every operation
type failingCache struct {
	err  error
	sets int
}

func (f *failingCache) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f *failingCache) Set(string, []byte, time.Duration) error {
	f.sets++
	return f.err
}
func (f *failingCache) Delete(string) error { return f.err }
func (f *failingCache) Clear() error { return f.err }

func TestLayeredCache_PromotesFromDurable(t *testing.T) {
	durable := NewMemoryCache(time.Minute, time.Minute)
	_ = durable.Set("k", []byte("v"), 0)

	c := NewLayeredCache(time.Minute, durable)
	got, found, err := c.Get("k")
	if err != nil || !found || string(got) != "v" {
		t.Fatalf("expected hit from durable layer, got %q found=%v err=%v", got, found, err)
	}

	_ = durable.Delete("k")
	if _, found, _ := c.Get("k"); !found {
		t.Error("expected value promoted into memory layer")
	}
}

func TestLayeredCache_DurableWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	durable := &failingCache{err: boom}
	c := NewLayeredCache(time.Minute, durable)

	if err := c.Set("k", []byte("v"), 0); !errors.Is(err, boom) {
		t.Fatalf("expected durable error, got %v", err)
	}
	if durable.sets != 1 {
		t.Errorf("expected 1 durable write, got %d", durable.sets)
	}

	// memory must not be ahead of storage
	if _, found, _ := c.memory.Get("k"); found {
		t.Error("memory layer should not hold a value the durable layer rejected")
	}
}

func TestLayeredCache_ReadFailurePropagates(t *testing.T) {
	boom := errors.New("unreachable")
	c := NewLayeredCache(time.Minute, &failingCache{err: boom})

	_, found, err := c.Get("k")
	if !errors.Is(err, boom) {
		t.Errorf("expected read error, got %v", err)
	}
	if found {
		t.Error("failed read must not be found")
	}
}
