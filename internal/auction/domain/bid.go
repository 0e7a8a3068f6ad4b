package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
)

// Bid is the historical record of one accepted bid. The live high bid lives
// on the Auction record; Bid rows exist for the audit trail only.
type Bid struct {
	ID        uuid.UUID
	AuctionID uint64
	Bidder    uuid.UUID
	Currency  Currency
	Amount    sdkmath.Int
	USDValue  sdkmath.Int
	Timestamp time.Time
}

func NewBid(auctionID uint64, bidder uuid.UUID, currency Currency, amount, usdValue sdkmath.Int) *Bid {
	return &Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		Bidder:    bidder,
		Currency:  currency,
		Amount:    amount,
		USDValue:  usdValue,
		Timestamp: time.Now(),
	}
}
