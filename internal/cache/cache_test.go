package cache

import (
	"testing"
	"time"
)

func TestTTLGetSet(t *testing.T) {
	c := NewTTL(10 * time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("got %v %v, want 42 true", v, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL(10 * time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", "v")

	c.now = func() time.Time { return base.Add(9 * time.Minute) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}

	c.now = func() time.Time { return base.Add(11 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestTTLInvalidate(t *testing.T) {
	c := NewTTL(time.Minute)
	c.Set("k", 1)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should be gone after invalidate")
	}
}

func TestTTLPurge(t *testing.T) {
	c := NewTTL(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("a", 1)
	c.Set("b", 2)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Set("c", 3)
	if n := c.Purge(); n != 2 {
		t.Fatalf("purged %d entries, want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("fresh entry must survive purge")
	}
}
