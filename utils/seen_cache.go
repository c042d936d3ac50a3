package utils

// A simple FIFO-bounded set for transaction signatures we already journaled.
type SeenCache struct {
	set      map[string]struct{}
	order    []string
	capacity int
}

const DefaultSeenCacheCapacity = 100000

func NewSeenCache() *SeenCache {
	return &SeenCache{
		set:      make(map[string]struct{}),
		capacity: DefaultSeenCacheCapacity,
		order:    make([]string, 0, 1024),
	}
}

func (c *SeenCache) Has(key string) bool {
	_, exists := c.set[key]
	return exists
}

func (c *SeenCache) Add(key string) {
	if c.Has(key) {
		return
	}
	if len(c.order) >= c.capacity {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.set, old)
	}
	c.set[key] = struct{}{}
	c.order = append(c.order, key)
}

func (c *SeenCache) Len() int {
	return len(c.set)
}
