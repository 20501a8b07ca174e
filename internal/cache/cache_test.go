package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fingerprint struct {
	Hash    string
	Version int64
}

func TestFingerprintCache_GetSet(t *testing.T) {
	c := New[fingerprint](time.Minute, 10)

	_, ok := c.Get("tenant-a")
	assert.False(t, ok)

	c.Set("tenant-a", fingerprint{Hash: "abc", Version: 1})

	got, ok := c.Get("tenant-a")
	assert.True(t, ok)
	assert.Equal(t, fingerprint{Hash: "abc", Version: 1}, got)
}

func TestFingerprintCache_ZeroTTLDisables(t *testing.T) {
	c := New[fingerprint](0, 10)

	assert.False(t, c.Enabled())

	c.Set("tenant-a", fingerprint{Hash: "abc", Version: 1})
	_, ok := c.Get("tenant-a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestFingerprintCache_Expiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	c := New(30*time.Second, 10, WithClock[fingerprint](func() time.Time { return clock() }))
	c.Set("tenant-a", fingerprint{Hash: "abc", Version: 1})

	_, ok := c.Get("tenant-a")
	assert.True(t, ok)

	// Advance past the TTL.
	now = now.Add(31 * time.Second)
	_, ok = c.Get("tenant-a")
	assert.False(t, ok)
}

func TestFingerprintCache_Invalidate(t *testing.T) {
	c := New[fingerprint](time.Minute, 10)
	c.Set("tenant-a", fingerprint{Hash: "abc", Version: 1})

	c.Invalidate("tenant-a")

	_, ok := c.Get("tenant-a")
	assert.False(t, ok)
}

func TestFingerprintCache_SizeBound(t *testing.T) {
	c := New[fingerprint](time.Minute, 2)

	c.Set("a", fingerprint{Hash: "a"})
	c.Set("b", fingerprint{Hash: "b"})
	assert.Equal(t, 2, c.Len())

	// Hitting the bound resets the map before inserting.
	c.Set("c", fingerprint{Hash: "c"})
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("c")
	assert.True(t, ok)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestFingerprintCache_UpdateExistingAtBound(t *testing.T) {
	c := New[fingerprint](time.Minute, 2)

	c.Set("a", fingerprint{Hash: "a", Version: 1})
	c.Set("b", fingerprint{Hash: "b", Version: 1})

	// Overwriting an existing key must not trigger eviction.
	c.Set("a", fingerprint{Hash: "a2", Version: 2})
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(2), got.Version)
}
