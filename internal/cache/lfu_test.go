// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLFU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLFU(10, time.Minute)
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) should miss")
	}
	if c.Frequency("a") != 2 {
		t.Errorf("Frequency(a) = %d, want 2", c.Frequency("a"))
	}
	if c.Frequency("b") != 0 {
		t.Error("Frequency of absent key should be 0")
	}
}

func TestLFU_EvictsLeastFrequent(t *testing.T) {
	t.Parallel()

	c := NewLFU(3, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a")
	c.Get("a")
	c.Get("c")

	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b was least frequently used and should be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should survive", k)
		}
	}
}

func TestLFU_TieBreaksByRecency(t *testing.T) {
	t.Parallel()

	c := NewLFU(2, time.Minute)
	c.Set("old", 1)
	c.Set("new", 2)
	c.Set("third", 3)

	if _, ok := c.Get("old"); ok {
		t.Error("older entry at equal frequency should be evicted")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("newer entry should survive")
	}
}

func TestLFU_UpdateKeepsSize(t *testing.T) {
	t.Parallel()

	c := NewLFU(2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %v, want 2", v)
	}
}

func TestLFU_TTL(t *testing.T) {
	t.Parallel()

	c := NewLFU(10, time.Hour)
	c.SetWithTTL("a", 1, 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLFU_DeleteThenEvict(t *testing.T) {
	t.Parallel()

	c := NewLFU(2, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Set("b", 2)
	c.Delete("b")
	c.Set("c", 3)
	c.Set("d", 4)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a has the highest frequency and should survive")
	}
}

func TestLFU_ClearAndStats(t *testing.T) {
	t.Parallel()

	c := NewLFU(5, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("z")
	c.Clear()

	stats := c.GetStats()
	if stats.Size != 0 || stats.Hits != 1 || stats.Misses != 1 || stats.Evictions != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v", c.HitRate())
	}

	c.Set("b", 2)
	if _, ok := c.Get("b"); !ok {
		t.Error("cache should work after Clear")
	}
}

func TestLFU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLFU(50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g+i)%80)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
