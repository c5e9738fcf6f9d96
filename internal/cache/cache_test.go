package cache

import (
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](10)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get = %d, %v", v, ok)
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 1 || st.Limit != 10 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() string { calls++; return "x" }
	for range 3 {
		if got := c.GetOrCreate(7, create); got != "x" {
			t.Fatalf("GetOrCreate = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("create ran %d times", calls)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	tests := []struct {
		limit    int
		inserts  int
		wantLen  int
		survivor int
	}{
		{limit: 4, inserts: 5, wantLen: 3, survivor: 0},
		{limit: 8, inserts: 9, wantLen: 6, survivor: 0},
		{limit: 1, inserts: 2, wantLen: 1, survivor: 1},
	}
	for _, tt := range tests {
		c := New[int, int](tt.limit)
		for i := 0; i < tt.inserts; i++ {
			c.Set(i, i)
			// Keep key 0 hot so it outlives everything but the newest key.
			if tt.survivor == 0 {
				c.Get(0)
			}
		}
		if c.Len() != tt.wantLen {
			t.Errorf("limit %d: Len = %d, want %d", tt.limit, c.Len(), tt.wantLen)
		}
		if _, ok := c.Get(tt.survivor); !ok {
			t.Errorf("limit %d: key %d evicted", tt.limit, tt.survivor)
		}
	}
}

func TestClear(t *testing.T) {
	c := New[int, int](0)
	c.Set(1, 1)
	c.Get(1)
	c.Clear()
	if c.Len() != 0 || c.Stats().Hits != 0 {
		t.Errorf("after Clear: %+v", c.Stats())
	}
}

func TestConcurrent(t *testing.T) {
	c := New[int, int](32)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.GetOrCreate((g*200+i)%50, func() int { return i })
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 32 {
		t.Errorf("Len = %d exceeds limit", c.Len())
	}
}
