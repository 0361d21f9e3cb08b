package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheAddGet(t *testing.T) {
	c := New[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Add("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit with %q, got %q (ok=%v)", "v", got, ok)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := New[int](2, time.Minute)
	for i := 0; i < 3; i++ {
		c.Add(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() != 2 {
		t.Fatalf("expected size bound of 2, got %d", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
}

func TestKeyIsStable(t *testing.T) {
	a := Key("seo", "handmade mug", "en")
	b := Key("seo", "handmade mug", "en")
	if a != b {
		t.Fatalf("expected identical inputs to produce the same key: %q vs %q", a, b)
	}
	if a == Key("seo", "handmade", "mug en") {
		t.Fatal("expected differently-split inputs to produce different keys")
	}
}
