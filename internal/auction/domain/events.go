package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
)

// Event is a lifecycle notification emitted by the engine. Each event
// carries every field its operation mutated, so a notification log alone is
// enough to reconstruct ledger state.
type Event interface {
	EventType() string
	AuctionID() uint64
}

const (
	EventTypeAuctionCreated = "auction_created"
	EventTypeBidAccepted    = "bid_accepted"
	EventTypeAuctionEnded   = "auction_ended"
)

type AuctionCreated struct {
	ID                 uint64      `json:"id"`
	Name               string      `json:"name"`
	Asset              AssetRef    `json:"asset"`
	Seller             uuid.UUID   `json:"seller"`
	StartingPrice      sdkmath.Int `json:"starting_price"`
	StartingCurrency   Currency    `json:"starting_currency"`
	StartTime          time.Time   `json:"start_time"`
	EndTime            time.Time   `json:"end_time"`
	AcceptedCurrencies []Currency  `json:"accepted_currencies"`
}

func (e AuctionCreated) EventType() string { return EventTypeAuctionCreated }
func (e AuctionCreated) AuctionID() uint64 { return e.ID }

type BidAccepted struct {
	Auction        uint64      `json:"auction_id"`
	Bidder         uuid.UUID   `json:"bidder"`
	Currency       Currency    `json:"currency"`
	Amount         sdkmath.Int `json:"amount"`
	USDValue       sdkmath.Int `json:"usd_value"`
	RefundedBidder *uuid.UUID  `json:"refunded_bidder,omitempty"`
	RefundedAmount sdkmath.Int `json:"refunded_amount"`
	RefundCurrency Currency    `json:"refund_currency"`
	At             time.Time   `json:"at"`
}

func (e BidAccepted) EventType() string { return EventTypeBidAccepted }
func (e BidAccepted) AuctionID() uint64 { return e.Auction }

type AuctionEnded struct {
	Auction        uint64      `json:"auction_id"`
	Asset          AssetRef    `json:"asset"`
	Seller         uuid.UUID   `json:"seller"`
	Winner         *uuid.UUID  `json:"winner,omitempty"`
	Currency       Currency    `json:"currency"`
	FinalBid       sdkmath.Int `json:"final_bid"`
	Fee            sdkmath.Int `json:"fee"`
	SellerProceeds sdkmath.Int `json:"seller_proceeds"`
	At             time.Time   `json:"at"`
}

func (e AuctionEnded) EventType() string { return EventTypeAuctionEnded }
func (e AuctionEnded) AuctionID() uint64 { return e.Auction }
