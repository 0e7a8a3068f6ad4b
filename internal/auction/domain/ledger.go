package domain

import (
	"sort"
	"sync"
)

// Ledger maps auction ids to their records and owns id allocation. Ids are
// sequential starting at 1, strictly increasing and never reused; records
// are never removed.
type Ledger struct {
	mu       sync.RWMutex
	nextID   uint64
	auctions map[uint64]*Auction
}

func NewLedger() *Ledger {
	return &Ledger{
		nextID:   1,
		auctions: make(map[uint64]*Auction),
	}
}

// Allocate reserves the next sequential id. A reserved id stays burned even
// if the creating operation later fails; ids are never handed out twice.
func (l *Ledger) Allocate() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	return id
}

// Insert stores a record under its previously allocated id.
func (l *Ledger) Insert(a *Auction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.auctions[a.ID] = a
}

// Get returns the live record for an id.
func (l *Ledger) Get(id uint64) (*Auction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	return a, nil
}

// List returns snapshots of every auction ordered by id.
func (l *Ledger) List() []*Auction {
	l.mu.RLock()
	ids := make([]uint64, 0, len(l.auctions))
	for id := range l.auctions {
		ids = append(ids, id)
	}
	l.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Auction, 0, len(ids))
	for _, id := range ids {
		if a, err := l.Get(id); err == nil {
			out = append(out, a.Snapshot())
		}
	}
	return out
}

// Len reports how many auctions have been inserted.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.auctions)
}
