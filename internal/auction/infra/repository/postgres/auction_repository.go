package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rom1247/ntf-market/internal/auction/domain"
)

// AuctionRepository implements domain.AuctionRepository. Monetary columns
// are NUMERIC(78,0) and travel as decimal strings so 256-bit magnitudes
// survive the round trip.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

// Save inserts or updates the auction row from a snapshot.
func (r *AuctionRepository) Save(ctx context.Context, tx pgx.Tx, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, name, collection, token_id, seller, starting_price,
            starting_currency, start_time, end_time, accepted_currencies, highest_bidder,
            current_currency, current_bid, ended, winner, settlement_fee, seller_proceeds, settled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        ON CONFLICT (id) DO UPDATE
        SET
            highest_bidder   = EXCLUDED.highest_bidder,
            current_currency = EXCLUDED.current_currency,
            current_bid      = EXCLUDED.current_bid,
            ended            = EXCLUDED.ended,
            winner           = EXCLUDED.winner,
            settlement_fee   = EXCLUDED.settlement_fee,
            seller_proceeds  = EXCLUDED.seller_proceeds,
            settled_at       = EXCLUDED.settled_at,
            updated_at       = NOW();
    `

	accepted := make([]string, len(a.AcceptedCurrencies))
	for i, c := range a.AcceptedCurrencies {
		accepted[i] = string(c)
	}

	var fee, proceeds *string
	if a.SettledAt != nil {
		f := a.SettlementFee.String()
		p := a.SellerProceeds.String()
		fee, proceeds = &f, &p
	}

	_, err := tx.Exec(ctx, query,
		int64(a.ID),
		a.Name,
		a.Asset.Collection,
		a.Asset.TokenID,
		a.Seller,
		a.StartingPrice.String(),
		string(a.StartingCurrency),
		a.StartTime,
		a.EndTime,
		accepted,
		a.HighestBidder,
		string(a.CurrentCurrency),
		a.CurrentBid.String(),
		a.Ended,
		a.Winner,
		fee,
		proceeds,
		a.SettledAt,
	)
	return err
}

// GetByID loads one auction row.
func (r *AuctionRepository) GetByID(ctx context.Context, id uint64) (*domain.Auction, error) {
	query := selectColumns + ` FROM auctions WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, int64(id))
	a, err := scanAuction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListOpen returns every auction not yet finalized.
func (r *AuctionRepository) ListOpen(ctx context.Context) ([]*domain.Auction, error) {
	query := selectColumns + ` FROM auctions WHERE ended = FALSE ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const selectColumns = `
        SELECT id, name, collection, token_id, seller, starting_price::text,
            starting_currency, start_time, end_time, accepted_currencies, highest_bidder,
            current_currency, current_bid::text, ended, winner,
            settlement_fee::text, seller_proceeds::text, settled_at, created_at, updated_at`

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	var (
		a              domain.Auction
		id             int64
		collection     string
		tokenID        string
		startingPrice  string
		startingCur    string
		accepted       []string
		currentCur     string
		currentBid     string
		highestBidder  *uuid.UUID
		winner         *uuid.UUID
		settlementFee  *string
		sellerProceeds *string
		settledAt      *time.Time
	)

	err := row.Scan(
		&id, &a.Name, &collection, &tokenID, &a.Seller, &startingPrice,
		&startingCur, &a.StartTime, &a.EndTime, &accepted, &highestBidder,
		&currentCur, &currentBid, &a.Ended, &winner,
		&settlementFee, &sellerProceeds, &settledAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ID = uint64(id)
	a.Asset = domain.AssetRef{Collection: collection, TokenID: tokenID}
	a.StartingCurrency = domain.Currency(startingCur)
	a.CurrentCurrency = domain.Currency(currentCur)
	a.HighestBidder = highestBidder
	a.Winner = winner
	a.SettledAt = settledAt
	a.AcceptedCurrencies = make([]domain.Currency, len(accepted))
	for i, c := range accepted {
		a.AcceptedCurrencies[i] = domain.Currency(c)
	}

	if a.StartingPrice, err = parseInt(startingPrice); err != nil {
		return nil, err
	}
	if a.CurrentBid, err = parseInt(currentBid); err != nil {
		return nil, err
	}
	a.SettlementFee = sdkmath.ZeroInt()
	a.SellerProceeds = sdkmath.ZeroInt()
	if settlementFee != nil {
		if a.SettlementFee, err = parseInt(*settlementFee); err != nil {
			return nil, err
		}
	}
	if sellerProceeds != nil {
		if a.SellerProceeds, err = parseInt(*sellerProceeds); err != nil {
			return nil, err
		}
	}

	return &a, nil
}

func parseInt(s string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer column value %q", s)
	}
	return v, nil
}
