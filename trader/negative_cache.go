package trader

import (
	"sync"
	"time"

	"arbo/config"
)

// FailureType classifies why a route went into the negative cache. Each type
// carries its own TTL.
type FailureType string

const (
	FailureSizeOverflow FailureType = "size_overflow"
	FailureRuntimeVenue FailureType = "runtime_venue"
)

type negativeEntry struct {
	failureType FailureType
	firstSeen   time.Time
}

// NegativeCache remembers route signatures that recently failed so the scan
// loop stops paying for doomed builds. TTL counts from first detection and is
// never extended by repeated failures of a live entry.
type NegativeCache struct {
	mu         sync.Mutex
	entries    map[string]negativeEntry
	ttls       map[FailureType]time.Duration
	defaultTTL time.Duration

	// injectable for tests
	now func() time.Time
}

func NewNegativeCache() *NegativeCache {
	return &NegativeCache{
		entries: make(map[string]negativeEntry),
		ttls: map[FailureType]time.Duration{
			FailureSizeOverflow: config.NEGATIVE_CACHE_TTL_SIZE_OVERFLOW,
			FailureRuntimeVenue: config.NEGATIVE_CACHE_TTL_RUNTIME_6024,
		},
		defaultTTL: config.NEGATIVE_CACHE_TTL_DEFAULT,
		now:        time.Now,
	}
}

func (c *NegativeCache) ttlFor(ft FailureType) time.Duration {
	if ttl, ok := c.ttls[ft]; ok {
		return ttl
	}
	return c.defaultTTL
}

// IsCached reports whether sig has a live entry. A live entry of a different
// type than the one probed for still reports a hit; the caller branches on
// matchedType. Expired entries are evicted on read.
func (c *NegativeCache) IsCached(sig string, probe FailureType) (hit bool, matchedType FailureType, ttlRemaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sig]
	if !ok {
		return false, "", 0
	}

	remaining := c.ttlFor(entry.failureType) - c.now().Sub(entry.firstSeen)
	if remaining <= 0 {
		delete(c.entries, sig)
		return false, "", 0
	}
	return true, entry.failureType, remaining
}

// Cache inserts sig with the given failure type. Re-caching a live signature
// is a no-op so bursty failure storms cannot push the expiry forward.
func (c *NegativeCache) Cache(sig string, ft FailureType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[sig]; ok {
		if c.now().Sub(entry.firstSeen) < c.ttlFor(entry.failureType) {
			return
		}
	}
	c.entries[sig] = negativeEntry{failureType: ft, firstSeen: c.now()}
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *NegativeCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for sig, entry := range c.entries {
		if now.Sub(entry.firstSeen) >= c.ttlFor(entry.failureType) {
			delete(c.entries, sig)
			removed++
		}
	}
	return removed
}

func (c *NegativeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
