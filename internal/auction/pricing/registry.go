package pricing

import (
	"fmt"
	"sync"

	"github.com/rom1247/ntf-market/internal/auction/domain"
)

type feedKey struct {
	auctionID uint64
	currency  domain.Currency
}

// FeedRegistry maps (auctionID, currency) to the price feed used to
// normalize bids in that currency. Entries are write-once, set during
// auction creation; no update or removal exists.
type FeedRegistry struct {
	mu    sync.RWMutex
	feeds map[feedKey]domain.PriceFeed
}

func NewFeedRegistry() *FeedRegistry {
	return &FeedRegistry{feeds: make(map[feedKey]domain.PriceFeed)}
}

// Register associates every listed currency, for this auction only, with
// the one supplied feed. Registering a pair twice or a nil feed fails.
func (r *FeedRegistry) Register(auctionID uint64, currencies []domain.Currency, feed domain.PriceFeed) error {
	if feed == nil {
		return fmt.Errorf("feed registry: nil feed for auction %d", auctionID)
	}
	if len(currencies) == 0 {
		return fmt.Errorf("feed registry: no currencies for auction %d", auctionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range currencies {
		key := feedKey{auctionID: auctionID, currency: c}
		if _, exists := r.feeds[key]; exists {
			return fmt.Errorf("feed registry: feed already registered for auction %d currency %s", auctionID, c)
		}
	}
	for _, c := range currencies {
		r.feeds[feedKey{auctionID: auctionID, currency: c}] = feed
	}
	return nil
}

// Lookup returns the feed registered for the pair, if any.
func (r *FeedRegistry) Lookup(auctionID uint64, currency domain.Currency) (domain.PriceFeed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	feed, ok := r.feeds[feedKey{auctionID: auctionID, currency: currency}]
	return feed, ok
}
