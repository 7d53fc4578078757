package usecase

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DedupCache suppresses duplicate message identifiers within a time
// window. Membership expires lazily on access; no background timer.
type DedupCache struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

// NewDedupCache creates a cache with the given window
func NewDedupCache(window time.Duration) *DedupCache {
	return &DedupCache{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// Seen reports whether msgID was already recorded within the window,
// recording it if not. Expired entries are swept on the way.
func (c *DedupCache) Seen(msgID string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := now.Add(-c.window)
	for id, at := range c.seen {
		if at.Before(cutoff) {
			delete(c.seen, id)
		}
	}

	if at, ok := c.seen[msgID]; ok && !at.Before(cutoff) {
		return true
	}
	c.seen[msgID] = now
	return false
}

// Len returns the number of live entries (for tests)
func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// CooldownTable bounds per-sender message acceptance rate. One limiter
// per sender, created lazily: one message per interval, burst 1.
type CooldownTable struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewCooldownTable creates a table with the given minimum inter-message interval
func NewCooldownTable(interval time.Duration) *CooldownTable {
	return &CooldownTable{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// AllowAt reports whether a message from sender is accepted at now
func (t *CooldownTable) AllowAt(senderID string, now time.Time) bool {
	t.mu.Lock()
	lim, ok := t.limiters[senderID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[senderID] = lim
	}
	t.mu.Unlock()
	return lim.AllowN(now, 1)
}
