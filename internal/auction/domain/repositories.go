package domain

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// AuctionRepository persists auction record snapshots. The in-memory ledger
// is authoritative; rows are the durable historical record.
type AuctionRepository interface {
	Save(ctx context.Context, tx pgx.Tx, a *Auction) error
	GetByID(ctx context.Context, id uint64) (*Auction, error)
	ListOpen(ctx context.Context) ([]*Auction, error)
}

// BidRepository persists the accepted-bid audit trail.
type BidRepository interface {
	Save(ctx context.Context, tx pgx.Tx, bid *Bid) error
	GetBidsByAuctionID(ctx context.Context, auctionID uint64) ([]*Bid, error)
}
