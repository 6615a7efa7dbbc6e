package objects

import (
	"sync"

	"github.com/KostasZigo/vx/utils"
)

// encodedCache holds recently read encoded objects, evicting oldest first
// once the byte budget is exceeded.
type encodedCache struct {
	mu         sync.Mutex
	maxBytes   int
	totalBytes int
	order      []utils.Hash
	entries    map[utils.Hash][]byte
}

func newEncodedCache(maxBytes int) *encodedCache {
	return &encodedCache{
		maxBytes: maxBytes,
		entries:  make(map[utils.Hash][]byte),
	}
}

func (c *encodedCache) get(hash utils.Hash) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[hash]
	return data, ok
}

func (c *encodedCache) put(hash utils.Hash, data []byte) {
	if len(data) > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[hash]; ok {
		return
	}
	c.entries[hash] = data
	c.order = append(c.order, hash)
	c.totalBytes += len(data)

	for c.totalBytes > c.maxBytes && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.totalBytes -= len(c.entries[oldest])
		delete(c.entries, oldest)
	}
}

func (c *encodedCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
