package hashing

import (
	"container/list"
	"os"
	"path/filepath"
)

// cacheEntry pairs a fingerprint with the stat fields that guard it.
type cacheEntry struct {
	key   string
	hash  string
	mtime int64 // UnixNano
	size  int64
}

// Cache is a bounded, strictly least-recently-used cache of file
// fingerprints keyed by absolute path.
//
// A hit requires the file's current mtime AND size to match what was
// recorded at insertion; any mismatch evicts the entry and forces
// recomputation, so callers never observe a stale fingerprint. The cache is
// purely a performance layer — each engine owns its own instance rather
// than sharing process-global state.
type Cache struct {
	maxSize int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

// NewCache creates a cache bounded to maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the cached fingerprint for path if the file is unchanged.
// The second return is false on a miss.
func (c *Cache) Get(path string) (string, bool) {
	key := absKey(path)
	el, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry := el.Value.(*cacheEntry)
	info, err := os.Stat(path)
	if err != nil {
		// File no longer exists.
		c.remove(el)
		return "", false
	}
	if info.ModTime().UnixNano() != entry.mtime || info.Size() != entry.size {
		// File was modified, the cached fingerprint is unusable.
		c.remove(el)
		return "", false
	}

	c.order.MoveToFront(el)
	return entry.hash, true
}

// Put records the fingerprint along with the file's current mtime and size.
func (c *Cache) Put(path, hash string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	key := absKey(path)
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.hash = hash
		entry.mtime = info.ModTime().UnixNano()
		entry.size = info.Size()
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{
		key:   key,
		hash:  hash,
		mtime: info.ModTime().UnixNano(),
		size:  info.Size(),
	})
	c.entries[key] = el

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest)
	}
}

// HashFile returns the cached fingerprint or computes and caches it.
func (c *Cache) HashFile(path string) string {
	if hash, ok := c.Get(path); ok {
		return hash
	}
	hash := HashFile(path)
	if hash != "" {
		c.Put(path, hash)
	}
	return hash
}

// Invalidate drops the entry for path, if cached.
func (c *Cache) Invalidate(path string) {
	if el, ok := c.entries[absKey(path)]; ok {
		c.remove(el)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.order.Len()
}

func (c *Cache) remove(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	c.order.Remove(el)
	delete(c.entries, entry.key)
}

func absKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
