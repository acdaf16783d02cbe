// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package cache

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheGetAdd(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	c.Add("index.html", []byte("<html>"))
	got, ok := c.Get("index.html")
	if !ok {
		t.Fatal("Get after Add missed")
	}
	if !bytes.Equal(got, []byte("<html>")) {
		t.Errorf("Get = %q, want %q", got, "<html>")
	}

	// Replacing a key must not grow the cache.
	c.Add("index.html", []byte("<html v2>"))
	if c.Len() != 1 {
		t.Errorf("Len after replace = %d, want 1", c.Len())
	}
	got, _ = c.Get("index.html")
	if !bytes.Equal(got, []byte("<html v2>")) {
		t.Errorf("Get after replace = %q, want %q", got, "<html v2>")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Add(fmt.Sprintf("k%d", i), []byte{byte(i)})
	}

	// Touch k0 so k1 becomes the eviction candidate.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 missing before eviction")
	}

	c.Add("k3", []byte{3})
	if _, ok := c.Get("k1"); ok {
		t.Error("k1 survived eviction, want least recently used dropped")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s evicted, want kept", key)
		}
	}
}

func TestLRUCacheTTL(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(4, 10*time.Millisecond)
	c.Add("short", []byte("lived"))

	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry expired immediately")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len after lazy expiry = %d, want 0", c.Len())
	}
}

func TestLRUCacheZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(4, 0)
	c.Add("pinned", []byte("stays"))
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("pinned"); !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestLRUCacheRemoveAndPurge(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(4, time.Minute)
	c.Add("a", []byte("1"))
	c.Add("b", []byte("2"))

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b survived Purge")
	}
}

func TestLRUCacheStats(t *testing.T) {
	t.Parallel()

	c := NewLRUCache(4, time.Minute)
	c.Add("hit", []byte("x"))

	c.Get("hit")
	c.Get("hit")
	c.Get("miss")

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats = (%d, %d), want (2, 1)", hits, misses)
	}
}
