package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulescan/pkg/filesystem"
)

func TestGetSet(t *testing.T) {
	c := New[string]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	c.Set("k", "v2")
	got, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
	assert.Equal(t, 1, c.Len())
}

func TestStructValues(t *testing.T) {
	type decision struct {
		Matched bool
		Reason  string
	}

	c := New[decision]()
	c.Set("file.ts|react-rule", decision{Matched: true, Reason: "path"})

	got, ok := c.Get("file.ts|react-rule")
	require.True(t, ok)
	assert.True(t, got.Matched)
	assert.Equal(t, "path", got.Reason)
}

func TestEntryCountEviction(t *testing.T) {
	// Insert A, B, then C into a two-entry cache: A is the least
	// recently used and must go.
	c := New[string](WithMaxEntries(2))

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)

	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestLRUProtectsRecentlyAccessed(t *testing.T) {
	c := New[string](WithMaxEntries(2))

	c.Set("a", "1")
	c.Set("b", "2")

	// Touching a makes b the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", "3")

	_, ok = c.Get("a")
	assert.True(t, ok, "recently accessed entry must survive")
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestSizeEviction(t *testing.T) {
	// "0123456789" serializes to 12 bytes, so each one-byte-keyed entry
	// is estimated at 25. A 60-byte ceiling holds two entries.
	c := New[string](WithMaxSize(60))

	c.Set("a", "0123456789")
	c.Set("b", "0123456789")
	c.Set("c", "0123456789")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.EqualValues(t, 50, c.Stats().SizeEstimate)
}

func TestOversizeValueAdmittedAlone(t *testing.T) {
	c := New[string](WithMaxSize(10))

	c.Set("a", "small")
	c.Set("big", "a value larger than the whole ceiling")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("big")
	assert.True(t, ok, "an oversize value still lands after draining the cache")
}

func TestTTLExpiry(t *testing.T) {
	c := New[string](WithTTL(30 * time.Millisecond))

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must miss")
	assert.Equal(t, 0, c.Len(), "expired entry is removed lazily on access")
}

func TestTTLDisabled(t *testing.T) {
	c := New[string](WithTTL(0))

	c.Set("k", "v")
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestInvalidateExpired(t *testing.T) {
	c := New[string](WithTTL(20 * time.Millisecond))

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	time.Sleep(50 * time.Millisecond)
	c.Set("fresh", "4")

	removed := c.InvalidateExpired()
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, c.Len())
}

func TestMtimeInvalidation(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, "/src/file.ts", []byte("v1"), 0o644))
	c := New[string](WithFS(filesystem.NewAferoFS(memfs)))

	c.SetFile("k", "cached", "/src/file.ts")
	_, ok := c.Get("k")
	require.True(t, ok)

	// Bump the file's mtime; the entry becomes logically absent.
	later := time.Now().Add(time.Second)
	require.NoError(t, memfs.Chtimes("/src/file.ts", later, later))

	_, ok = c.Get("k")
	assert.False(t, ok, "mtime change must force a miss")
	assert.Equal(t, 0, c.Len())
}

func TestMtimeInvalidationOnDelete(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, "/f.txt", []byte("v1"), 0o644))
	c := New[string](WithFS(filesystem.NewAferoFS(memfs)))

	c.SetFile("k", "cached", "/f.txt")
	require.NoError(t, memfs.Remove("/f.txt"))

	_, ok := c.Get("k")
	assert.False(t, ok, "entry bound to a deleted file must miss")
}

func TestSetFileMissingFile(t *testing.T) {
	c := New[string](WithFS(filesystem.NewMemory()))

	c.SetFile("k", "cached", "/never-existed")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInvalidateFile(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, "/a.ts", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(memfs, "/b.ts", []byte("b"), 0o644))
	c := New[string](WithFS(filesystem.NewAferoFS(memfs)))

	c.SetFile("a|rule1", "1", "/a.ts")
	c.SetFile("a|rule2", "2", "/a.ts")
	c.SetFile("b|rule1", "3", "/b.ts")

	assert.Equal(t, 2, c.InvalidateFile("/a.ts"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.InvalidateFile("/a.ts"))

	_, ok := c.Get("b|rule1")
	assert.True(t, ok)
}

func TestHasDoesNotTouchCounters(t *testing.T) {
	c := New[string]()
	c.Set("k", "v")

	assert.True(t, c.Has("k"))
	assert.False(t, c.Has("missing"))

	stats := c.Stats()
	assert.EqualValues(t, 0, stats.Hits)
	assert.EqualValues(t, 0, stats.Misses)
}

func TestDelete(t *testing.T) {
	c := New[string]()
	c.Set("k", "v")

	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	assert.Equal(t, 0, c.Len())
}

func TestClearKeepsCounters(t *testing.T) {
	c := New[string]()
	c.Set("k", "v")
	c.Get("k")
	c.Get("missing")

	c.Clear()

	assert.Equal(t, 0, c.Len())
	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 0, stats.SizeEstimate)
	assert.True(t, stats.OldestEntry.IsZero())
}

func TestStats(t *testing.T) {
	c := New[string]()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Get("also-missing")

	stats := c.Stats()
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 2, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.SizeEstimate, int64(0))
	assert.False(t, stats.OldestEntry.IsZero())
	assert.False(t, stats.NewestEntry.Before(stats.OldestEntry))
}

func TestHotEntries(t *testing.T) {
	c := New[string]()
	for _, key := range []string{"cold", "warm", "hot"} {
		c.Set(key, key)
	}
	for i := 0; i < 3; i++ {
		c.Get("hot")
	}
	c.Get("warm")

	hot := c.HotEntries(2)
	require.Len(t, hot, 2)
	assert.Equal(t, "hot", hot[0].Key)
	assert.EqualValues(t, 3, hot[0].AccessCount)
	assert.Equal(t, "warm", hot[1].Key)

	all := c.HotEntries(0)
	assert.Len(t, all, 3)
}

func TestEvictionUnderSustainedPressure(t *testing.T) {
	c := New[string](WithMaxEntries(10))

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "value")
	}

	assert.Equal(t, 10, c.Len())
	assert.EqualValues(t, 90, c.Stats().Evictions)
}
