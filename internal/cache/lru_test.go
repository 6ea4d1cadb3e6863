package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("report", "v1")

	if got, ok := c.Get("report"); !ok || got != "v1" {
		t.Fatalf("Get() = %q, %v; want v1, true", got, ok)
	}

	clock.t = clock.t.Add(time.Minute)
	if _, ok := c.Get("report"); ok {
		t.Fatal("entry should expire after ttl")
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %q to survive", k)
		}
	}
}

func TestLRUCache_CleanExpiredAndPurge(t *testing.T) {
	c, clock := newTestCache(8, time.Minute)
	c.Set("old", "x")
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("new", "y")
	clock.t = clock.t.Add(45 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll() = %d, want 1", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatal("live entry removed")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Size() after Purge = %d", c.Size())
	}
	c.Set("again", "z")
	if _, ok := c.Get("again"); !ok {
		t.Fatal("cache unusable after Purge")
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
