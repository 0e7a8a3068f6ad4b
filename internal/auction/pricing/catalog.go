package pricing

import (
	"fmt"
	"sync"
)

// Catalog is the operator-facing index of manual feeds by symbol. Auction
// creation resolves its feed here; the price admin endpoint posts readings
// through it. Distinct from the FeedRegistry, which binds feeds per auction
// and is immutable once written.
type Catalog struct {
	mu    sync.RWMutex
	feeds map[string]*ManualFeed
}

func NewCatalog() *Catalog {
	return &Catalog{feeds: make(map[string]*ManualFeed)}
}

// Create registers a new feed under a symbol. Symbols are unique.
func (c *Catalog) Create(symbol string, decimals uint32) (*ManualFeed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.feeds[symbol]; exists {
		return nil, fmt.Errorf("feed catalog: symbol %q already exists", symbol)
	}
	feed := NewManualFeed(decimals)
	c.feeds[symbol] = feed
	return feed, nil
}

// Get resolves a feed by symbol.
func (c *Catalog) Get(symbol string) (*ManualFeed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	feed, ok := c.feeds[symbol]
	return feed, ok
}
