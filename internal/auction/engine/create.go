package engine

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"go.uber.org/zap"
)

// CreateParams carries everything needed to open an auction. The seller
// must already hold the asset and have approved the engine to pull it.
type CreateParams struct {
	Name               string
	Asset              domain.AssetRef
	Seller             uuid.UUID
	StartingPrice      sdkmath.Int
	StartingCurrency   domain.Currency
	StartTime          time.Time
	EndTime            time.Time
	AcceptedCurrencies []domain.Currency
	Feed               domain.PriceFeed
}

// Create locks the asset in engine custody, registers the accepted-currency
// feeds and inserts a new auction record under the next sequential id.
// All-or-nothing: a failure at any step leaves no record and returns the
// asset to the seller.
func (e *Engine) Create(ctx context.Context, p CreateParams) (uint64, error) {
	now := e.now()

	if err := validateCreate(p, now); err != nil {
		return 0, err
	}

	// custody first: if the seller never approved the pull, nothing else
	// should have happened
	if err := e.custody.TransferCustody(ctx, p.Asset, p.Seller, e.account); err != nil {
		return 0, err
	}

	id := e.ledger.Allocate()

	if err := e.feeds.Register(id, p.AcceptedCurrencies, p.Feed); err != nil {
		// return the asset; the burned id is never reused
		if cErr := e.custody.TransferCustody(ctx, p.Asset, e.account, p.Seller); cErr != nil {
			log.DPanic("failed to return asset after aborted create",
				zap.Uint64("auctionID", id),
				zap.String("asset", p.Asset.String()),
				zap.Error(cErr),
			)
		}
		return 0, err
	}

	a := domain.NewAuction(p.Name, p.Asset, p.Seller, p.StartingPrice,
		p.StartingCurrency, p.StartTime, p.EndTime, p.AcceptedCurrencies)
	a.ID = id
	e.ledger.Insert(a)

	log.Info("auction created",
		zap.Uint64("auctionID", id),
		zap.String("name", p.Name),
		zap.String("asset", p.Asset.String()),
		zap.String("seller", p.Seller.String()),
		zap.String("startingPrice", p.StartingPrice.String()),
		zap.Stringer("startingCurrency", p.StartingCurrency),
		zap.Time("startTime", p.StartTime),
		zap.Time("endTime", p.EndTime),
	)

	e.emit(domain.AuctionCreated{
		ID:                 id,
		Name:               p.Name,
		Asset:              p.Asset,
		Seller:             p.Seller,
		StartingPrice:      p.StartingPrice,
		StartingCurrency:   p.StartingCurrency,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		AcceptedCurrencies: p.AcceptedCurrencies,
	})

	return id, nil
}

func validateCreate(p CreateParams, now time.Time) error {
	if !p.StartTime.After(now) || !p.EndTime.After(p.StartTime) {
		return domain.ErrInvalidWindow
	}
	if p.StartingPrice.IsNil() || !p.StartingPrice.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if p.Feed == nil {
		return fmt.Errorf("%w: no feed supplied", domain.ErrUnsupportedCurrency)
	}
	if len(p.AcceptedCurrencies) == 0 {
		return fmt.Errorf("%w: empty accepted-currency set", domain.ErrUnsupportedCurrency)
	}
	for _, c := range p.AcceptedCurrencies {
		if c == p.StartingCurrency {
			return nil
		}
	}
	return fmt.Errorf("%w: starting currency %s is not in the accepted set",
		domain.ErrUnsupportedCurrency, p.StartingCurrency)
}
