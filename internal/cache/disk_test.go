package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_SetGet(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "ledger"), NoExpiration)

	if _, found, err := c.Get("k"); found || err != nil {
		t.Fatalf("expected miss on empty dir, got found=%v err=%v", found, err)
	}

	if err := c.Set("k", []byte(`[{"id":"1"}]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found, err := c.Get("k")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("got %q", got)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(c.dir)
	if len(entries) != 1 {
		t.Errorf("expected 1 file in cache dir, got %d", len(entries))
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("k", []byte("v"), 0)

	now = now.Add(59 * time.Minute)
	if _, found, _ := c.Get("k"); !found {
		t.Fatal("expected entry before TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := c.Get("k"); found {
		t.Error("expected entry to expire after TTL")
	}
}

func TestDiskCache_CorruptFileIsAnError(t *testing.T) {
	c := NewDiskCache(t.TempDir(), NoExpiration)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, found, err := c.Get("k")
	if err == nil {
		t.Fatal("expected decode error for corrupt file")
	}
	if found {
		t.Error("corrupt file must not be reported as found")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), NoExpiration)
	if err := c.Delete("nope"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := NewDiskCache(dir, NoExpiration)
	_ = c.Set("a", []byte("1"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected cache dir to be removed")
	}
}
