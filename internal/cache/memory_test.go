package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found, err := c.Get("missing"); found || err != nil {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	value := []byte("hello")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// caller mutations must not leak into the stored copy
	value[0] = 'j'

	got, found, err := c.Get("k")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("got %q, want hello", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("short", []byte("x"), 10*time.Millisecond)
	_ = c.Set("forever", []byte("y"), NoExpiration)

	time.Sleep(30 * time.Millisecond)

	if _, found, _ := c.Get("short"); found {
		t.Error("expected short-lived entry to expire")
	}
	if _, found, _ := c.Get("forever"); !found {
		t.Error("expected NoExpiration entry to survive")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	_ = c.Delete("a")
	if _, found, _ := c.Get("a"); found {
		t.Error("expected a to be deleted")
	}

	_ = c.Clear()
	if _, found, _ := c.Get("b"); found {
		t.Error("expected b to be cleared")
	}
}

func TestKey(t *testing.T) {
	if got := Key("ledger", "history"); got != "wastewise:v1:ledger:history" {
		t.Errorf("Key = %q", got)
	}
	a := HashKey("verdict", []byte("abc"))
	b := HashKey("verdict", []byte("abc"))
	c := HashKey("verdict", []byte("abd"))
	if a != b {
		t.Error("HashKey should be deterministic")
	}
	if a == c {
		t.Error("HashKey should differ for different content")
	}
}
