package cache

import (
	"sync"
	"time"

	"ltlcleaner/infrastructure/ltl"
)

// Run is a finished pipeline run kept so its files can be downloaded after
// the preview page is rendered.
type Run struct {
	ID        string
	Files     []string
	Result    ltl.Result
	Workbook  []byte
	CreatedAt time.Time
}

// RunCache stores runs by id for a limited time. When full, the oldest run
// is evicted.
type RunCache struct {
	mu       sync.RWMutex
	runs     map[string]Run
	order    []string
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func NewRunCache(ttl time.Duration, capacity int) *RunCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &RunCache{
		runs:     make(map[string]Run),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

func (c *RunCache) AddRun(r Run) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = c.now()
	}
	c.purgeExpiredLocked()
	if _, exists := c.runs[r.ID]; !exists {
		c.order = append(c.order, r.ID)
	}
	c.runs[r.ID] = r
	for len(c.order) > c.capacity {
		delete(c.runs, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *RunCache) FindRunByID(id string) (Run, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.runs[id]
	if !ok || c.expired(r) {
		return Run{}, false
	}
	return r, true
}

func (c *RunCache) DeleteRunByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.runs, id)
	c.removeFromOrderLocked(id)
}

// Len counts runs that have not expired.
func (c *RunCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, r := range c.runs {
		if !c.expired(r) {
			n++
		}
	}
	return n
}

func (c *RunCache) expired(r Run) bool {
	return c.ttl > 0 && c.now().Sub(r.CreatedAt) > c.ttl
}

func (c *RunCache) purgeExpiredLocked() {
	kept := c.order[:0]
	for _, id := range c.order {
		if r, ok := c.runs[id]; ok && !c.expired(r) {
			kept = append(kept, id)
			continue
		}
		delete(c.runs, id)
	}
	c.order = kept
}

func (c *RunCache) removeFromOrderLocked(id string) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
