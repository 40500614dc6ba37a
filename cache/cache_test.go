package cache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestLRUGetAdd(t *testing.T) {
	c := New[string, int](3)
	c.Add("a", 1)
	c.Add("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("z"); ok {
		t.Error("Get(z) should miss")
	}

	c.Add("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after update = %d; want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d; want 2", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a")
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Size != 2 || s.Capacity != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLRUMemo(t *testing.T) {
	c := New[Key, any](0)
	var calls int
	parse := func() any { calls++; return 42 }

	key := Key{Field: "age", Text: "42"}
	for range 3 {
		if v := c.Memo(key, parse); v != 42 {
			t.Fatalf("Memo() = %v", v)
		}
	}
	if calls != 1 {
		t.Errorf("parse called %d times; want 1", calls)
	}
	if c.Memo(Key{Field: "height", Text: "42"}, parse); calls != 2 {
		t.Errorf("a different field should not share the cached value")
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 2 {
		t.Errorf("Stats() = %+v", s)
	}
	if got := s.HitRate(); got != 0.5 {
		t.Errorf("HitRate() = %v; want 0.5", got)
	}
}

func TestLRURemovePurge(t *testing.T) {
	c := New[string, int](4)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be removed")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
}

func TestLRUConcurrent(t *testing.T) {
	c := New[int, int](64)
	var computed atomic.Int64
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				c.Memo(i%16, func() int { computed.Add(1); return i % 16 })
				c.Add(g*1000+i, i)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
	if computed.Load() < 16 {
		t.Errorf("computed = %d; want at least 16", computed.Load())
	}
}
