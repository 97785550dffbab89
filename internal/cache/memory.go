package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/splitgroup/pkg/api"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache implements Cache in process memory. It is used when no redis
// address is configured.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) GetBalances(_ context.Context, groupID string) (*api.GetBalancesResponse, bool, error) {
	key := balancesKey(groupID)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !c.now().Before(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return nil, false, nil
	}
	report, err := decode(entry.data)
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

// SetBalances stores a copy of the report; later changes to report are not seen.
func (c *MemoryCache) SetBalances(_ context.Context, groupID string, report *api.GetBalancesResponse) error {
	data, err := encode(report)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[balancesKey(groupID)] = memoryEntry{data: data, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, balancesKey(groupID))
	return nil
}
