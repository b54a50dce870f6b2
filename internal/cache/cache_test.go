package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New[string](2, time.Hour)

	c.Set("matrix+1999", "tt0133093")
	got, ok := c.Get("matrix+1999")
	assert.True(t, ok)
	assert.Equal(t, "tt0133093", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestExpiration(t *testing.T) {
	c := New[string](10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("old", "x")
	c.Set("fresh", "y")

	now = now.Add(2 * time.Minute)
	c.Set("fresh", "y")

	_, ok := c.Get("old")
	assert.False(t, ok)

	c.Set("old", "x")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 0, c.Len())
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string](10, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
