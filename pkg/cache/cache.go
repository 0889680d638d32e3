package cache

import (
	"container/list"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/types"
)

const (
	// DefaultMaxEntries bounds how many entries a cache holds.
	DefaultMaxEntries = 1000

	// DefaultMaxSize bounds the aggregate size estimate in bytes.
	DefaultMaxSize = 50 << 20

	// DefaultTTL is how long an entry stays valid after creation.
	DefaultTTL = 30 * time.Minute

	// sizeEstimateMultiplier scales the serialized length into a size
	// estimate. In-memory values cost more than their JSON form.
	sizeEstimateMultiplier = 2

	// fallbackSizeEstimate is charged for values that do not serialize.
	fallbackSizeEstimate = 256
)

type config struct {
	maxEntries int
	maxSize    int64
	ttl        time.Duration
	fs         types.FS
}

// Option configures a Cache.
type Option func(*config)

// WithMaxEntries sets the entry-count ceiling.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMaxSize sets the aggregate size-estimate ceiling in bytes.
func WithMaxSize(bytes int64) Option {
	return func(c *config) {
		if bytes > 0 {
			c.maxSize = bytes
		}
	}
}

// WithTTL sets the entry lifetime. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithFS substitutes the filesystem used for modification-time checks.
func WithFS(fsys types.FS) Option {
	return func(c *config) { c.fs = fsys }
}

type entry[V any] struct {
	key          string
	value        V
	filePath     string
	modTime      time.Time
	sizeEstimate int64
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int64
}

// Cache is a thread-safe LRU store. The zero value is not usable; use
// New. Each owner constructs its own Cache so instances never share
// state.
type Cache[V any] struct {
	cfg    config
	logger zerolog.Logger

	mu        sync.Mutex
	ll        *list.List
	elements  map[string]*list.Element
	size      int64
	hits      int64
	misses    int64
	evictions int64
}

// New creates a Cache with the default ceilings on the OS filesystem.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{
		maxEntries: DefaultMaxEntries,
		maxSize:    DefaultMaxSize,
		ttl:        DefaultTTL,
		fs:         filesystem.NewOS(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[V]{
		cfg:      cfg,
		logger:   logging.GetLogger("cache"),
		ll:       list.New(),
		elements: make(map[string]*list.Element),
	}
}

// Get returns the value stored under key. Expired entries and entries
// whose bound file changed on disk are removed and reported as misses.
// A hit refreshes the entry's access metadata and LRU position.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.elements[key]
	if !ok {
		c.misses++
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if c.staleLocked(ent) {
		c.removeLocked(el)
		c.misses++
		return zero, false
	}

	ent.lastAccessed = time.Now()
	ent.accessCount++
	c.ll.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Set stores a value with no file binding.
func (c *Cache[V]) Set(key string, value V) {
	c.SetFile(key, value, "")
}

// SetFile stores a value bound to filePath: the file's current
// modification time is captured, and any later change invalidates the
// entry. An empty filePath stores without a binding.
func (c *Cache[V]) SetFile(key string, value V, filePath string) {
	var modTime time.Time
	if filePath != "" {
		info, err := c.cfg.fs.Stat(filePath)
		if err != nil {
			// Keep the binding with a zero mtime so the next Get
			// re-checks the file and misses.
			c.logger.Debug().
				Err(err).
				Str("file", filePath).
				Msg("Cannot stat file for cache binding")
		} else {
			modTime = info.ModTime()
		}
	}

	size := estimateSize(value) + int64(len(key))
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.elements[key]; ok {
		c.removeLocked(el)
	}
	c.ensureCapacityLocked(size)

	ent := &entry[V]{
		key:          key,
		value:        value,
		filePath:     filePath,
		modTime:      modTime,
		sizeEstimate: size,
		createdAt:    now,
		lastAccessed: now,
	}
	c.elements[key] = c.ll.PushFront(ent)
	c.size += size
}

// Has reports whether key holds a valid entry without refreshing its
// access metadata. Stale entries are removed.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.elements[key]
	if !ok {
		return false
	}
	if c.staleLocked(el.Value.(*entry[V])) {
		c.removeLocked(el)
		return false
	}
	return true
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.elements[key]
	if !ok {
		return false
	}
	c.removeLocked(el)
	return true
}

// Clear removes all entries. Cumulative counters are kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.elements = make(map[string]*list.Element)
	c.size = 0
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// InvalidateFile removes every entry bound to path and returns how many
// were removed.
func (c *Cache[V]) InvalidateFile(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry[V]).filePath == path {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	if removed > 0 {
		c.logger.Debug().
			Str("file", path).
			Int("removed", removed).
			Msg("Invalidated cache entries for file")
	}
	return removed
}

// InvalidateExpired removes every entry past its lifetime and returns
// how many were removed. Expired entries are otherwise removed lazily
// on access.
func (c *Cache[V]) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		if c.expiredLocked(el.Value.(*entry[V])) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// Stats is a snapshot of the cache's counters and occupancy.
type Stats struct {
	Hits         int64
	Misses       int64
	Evictions    int64
	HitRate      float64
	Entries      int
	SizeEstimate int64
	OldestEntry  time.Time
	NewestEntry  time.Time
}

// Stats returns current counters. Oldest and Newest are zero when the
// cache is empty.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
		Entries:      c.ll.Len(),
		SizeEstimate: c.size,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	for el := c.ll.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry[V])
		if stats.OldestEntry.IsZero() || ent.createdAt.Before(stats.OldestEntry) {
			stats.OldestEntry = ent.createdAt
		}
		if ent.createdAt.After(stats.NewestEntry) {
			stats.NewestEntry = ent.createdAt
		}
	}
	return stats
}

// HotEntry describes one entry in the access-frequency ranking.
type HotEntry struct {
	Key          string
	AccessCount  int64
	LastAccessed time.Time
}

// HotEntries returns up to limit entries ranked by access count, most
// accessed first. Ties rank the more recently accessed entry higher.
func (c *Cache[V]) HotEntries(limit int) []HotEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	hot := make([]HotEntry, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry[V])
		hot = append(hot, HotEntry{
			Key:          ent.key,
			AccessCount:  ent.accessCount,
			LastAccessed: ent.lastAccessed,
		})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].AccessCount != hot[j].AccessCount {
			return hot[i].AccessCount > hot[j].AccessCount
		}
		return hot[i].LastAccessed.After(hot[j].LastAccessed)
	})
	if limit > 0 && len(hot) > limit {
		hot = hot[:limit]
	}
	return hot
}

// ensureCapacityLocked evicts least-recently-used entries until an
// insertion of incoming bytes satisfies both ceilings, or the cache is
// empty. A value larger than the size ceiling is still admitted once
// the cache has been drained.
func (c *Cache[V]) ensureCapacityLocked(incoming int64) {
	for c.ll.Len() > 0 &&
		(c.ll.Len()+1 > c.cfg.maxEntries || c.size+incoming > c.cfg.maxSize) {
		el := c.ll.Back()
		c.removeLocked(el)
		c.evictions++
	}
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	ent := el.Value.(*entry[V])
	c.ll.Remove(el)
	delete(c.elements, ent.key)
	c.size -= ent.sizeEstimate
}

// staleLocked reports whether the entry is expired or its bound file
// changed since the entry was stored.
func (c *Cache[V]) staleLocked(ent *entry[V]) bool {
	if c.expiredLocked(ent) {
		return true
	}
	if ent.filePath == "" {
		return false
	}
	info, err := c.cfg.fs.Stat(ent.filePath)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(ent.modTime)
}

func (c *Cache[V]) expiredLocked(ent *entry[V]) bool {
	return c.cfg.ttl > 0 && time.Since(ent.createdAt) > c.cfg.ttl
}

// estimateSize prices a value by its serialized length. This is a
// heuristic, not byte accounting; it only needs to grow with the value
// so that sustained pressure triggers eviction.
func estimateSize[V any](value V) int64 {
	data, err := json.Marshal(value)
	if err != nil {
		return fallbackSizeEstimate
	}
	return int64(len(data)) * sizeEstimateMultiplier
}
