package domain

import (
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
)

// Status is the derived lifecycle state of an auction.
type Status string

const (
	StatusScheduled Status = "scheduled" // created, bidding not yet open
	StatusOpen      Status = "open"      // inside [startTime, endTime], not ended
	StatusClosed    Status = "closed"    // finalized, terminal
)

// Auction is the ledger record for one sealed-ascending auction. It is
// created once, mutated only by bid and end, and never deleted: after
// finalization it remains as an immutable historical record.
type Auction struct {
	ID     uint64
	Name   string
	Asset  AssetRef
	Seller uuid.UUID

	StartingPrice    sdkmath.Int
	StartingCurrency Currency
	StartTime        time.Time
	EndTime          time.Time

	// AcceptedCurrencies is fixed at creation, one feed registration per
	// entry, immutable for the life of the auction.
	AcceptedCurrencies []Currency

	HighestBidder   *uuid.UUID
	CurrentCurrency Currency
	CurrentBid      sdkmath.Int // zero until the first bid lands

	Ended bool

	// settlement record, populated by end when a high bid exists
	Winner         *uuid.UUID
	SettlementFee  sdkmath.Int
	SellerProceeds sdkmath.Int
	SettledAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// protects record fields against concurrent readers while the engine
	// mutates under its per-auction guard
	mu sync.Mutex
}

// NewAuction builds a fresh record. The ledger assigns the ID on insert.
func NewAuction(name string, asset AssetRef, seller uuid.UUID, startingPrice sdkmath.Int,
	startingCurrency Currency, startTime, endTime time.Time, accepted []Currency) *Auction {
	now := time.Now()
	return &Auction{
		Name:               name,
		Asset:              asset,
		Seller:             seller,
		StartingPrice:      startingPrice,
		StartingCurrency:   startingCurrency,
		StartTime:          startTime,
		EndTime:            endTime,
		AcceptedCurrencies: accepted,
		CurrentCurrency:    startingCurrency,
		CurrentBid:         sdkmath.ZeroInt(),
		SettlementFee:      sdkmath.ZeroInt(),
		SellerProceeds:     sdkmath.ZeroInt(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// StatusAt derives the lifecycle state at the given instant.
func (a *Auction) StatusAt(now time.Time) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Ended {
		return StatusClosed
	}
	if now.Before(a.StartTime) {
		return StatusScheduled
	}
	return StatusOpen
}

// HasBid reports whether a high bid has been admitted. CurrentBid > 0 and
// HighestBidder being set are equivalent by invariant.
func (a *Auction) HasBid() bool {
	return a.HighestBidder != nil
}

// RecordBid advances the high bid. Caller holds the engine's per-auction
// guard; the record mutex only fences concurrent snapshot readers.
func (a *Auction) RecordBid(bidder uuid.UUID, currency Currency, amount sdkmath.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := bidder
	a.HighestBidder = &b
	a.CurrentCurrency = currency
	a.CurrentBid = amount
	a.UpdatedAt = time.Now()
}

// MarkEnded flips the terminal flag. Returns false when already set.
func (a *Auction) MarkEnded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Ended {
		return false
	}
	a.Ended = true
	a.UpdatedAt = time.Now()
	return true
}

// UnmarkEnded restores the flag after a failed settlement so that
// finalization can be retried.
func (a *Auction) UnmarkEnded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Ended = false
	a.UpdatedAt = time.Now()
}

// RecordSettlement stores the terminal payout figures.
func (a *Auction) RecordSettlement(winner *uuid.UUID, fee, proceeds sdkmath.Int, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Winner = winner
	a.SettlementFee = fee
	a.SellerProceeds = proceeds
	a.SettledAt = &at
	a.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the record safe to read outside the engine.
// Pointer fields are copied so the caller cannot alias live state.
func (a *Auction) Snapshot() *Auction {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := &Auction{
		ID:                 a.ID,
		Name:               a.Name,
		Asset:              a.Asset,
		Seller:             a.Seller,
		StartingPrice:      a.StartingPrice,
		StartingCurrency:   a.StartingCurrency,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		AcceptedCurrencies: append([]Currency(nil), a.AcceptedCurrencies...),
		CurrentCurrency:    a.CurrentCurrency,
		CurrentBid:         a.CurrentBid,
		Ended:              a.Ended,
		SettlementFee:      a.SettlementFee,
		SellerProceeds:     a.SellerProceeds,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if a.HighestBidder != nil {
		b := *a.HighestBidder
		cp.HighestBidder = &b
	}
	if a.Winner != nil {
		w := *a.Winner
		cp.Winner = &w
	}
	if a.SettledAt != nil {
		t := *a.SettledAt
		cp.SettledAt = &t
	}
	return cp
}
