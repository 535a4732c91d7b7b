package gateway

import (
	"sync"

	"nets-gateway/internal/netaxept"
)

// QueryCache is a short-lived cache of query results keyed by remote
// transaction id, meant to live no longer than one inbound request so a
// single return-handling cycle does not look the same transaction up
// twice. It is injected explicitly; there is no hidden process-wide
// state.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]netaxept.RemoteTransactionResult
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]netaxept.RemoteTransactionResult)}
}

func (c *QueryCache) Get(remoteID string) (netaxept.RemoteTransactionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[remoteID]
	return result, ok
}

func (c *QueryCache) Put(remoteID string, result netaxept.RemoteTransactionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[remoteID] = result
}

func (c *QueryCache) Delete(remoteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, remoteID)
}
