package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rom1247/ntf-market/internal/auction/domain"
)

// BidRepository implements domain.BidRepository.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Save(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, bidder, currency, amount, usd_value, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		int64(bid.AuctionID),
		bid.Bidder,
		string(bid.Currency),
		bid.Amount.String(),
		bid.USDValue.String(),
		bid.Timestamp,
	)
	return err
}

func (r *BidRepository) GetBidsByAuctionID(ctx context.Context, auctionID uint64) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder, currency, amount::text, usd_value::text, created_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY created_at
    `
	rows, err := r.pool.Query(ctx, query, int64(auctionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var (
			b        domain.Bid
			id       int64
			currency string
			amount   string
			usdValue string
		)
		if err := rows.Scan(&b.ID, &id, &b.Bidder, &currency, &amount, &usdValue, &b.Timestamp); err != nil {
			return nil, err
		}
		b.AuctionID = uint64(id)
		b.Currency = domain.Currency(currency)
		if b.Amount, err = parseInt(amount); err != nil {
			return nil, err
		}
		if b.USDValue, err = parseInt(usdValue); err != nil {
			return nil, err
		}
		bids = append(bids, &b)
	}
	return bids, rows.Err()
}
