package application

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/engine"
	"go.uber.org/zap"
)

// PlaceBidDTO is the input for the PlaceBid use case.
type PlaceBidDTO struct {
	AuctionID   uint64
	Bidder      uuid.UUID
	Currency    domain.Currency
	Amount      sdkmath.Int
	NativeValue sdkmath.Int
}

// PlaceBidUseCase runs the engine's bid operation and records the accepted
// bid plus the updated auction snapshot in one DB transaction.
type PlaceBidUseCase struct {
	eng         *engine.Engine
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	dbPool      *pgxpool.Pool
}

func NewPlaceBidUseCase(eng *engine.Engine, auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository, dbPool *pgxpool.Pool) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		eng:         eng,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		dbPool:      dbPool,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	if cmd.Amount.IsNil() || !cmd.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	res, err := uc.eng.Bid(ctx, engine.BidParams{
		AuctionID:   cmd.AuctionID,
		Bidder:      cmd.Bidder,
		Currency:    cmd.Currency,
		Amount:      cmd.Amount,
		NativeValue: cmd.NativeValue,
	})
	if err != nil {
		return nil, fmt.Errorf("place bid use case: bid failed for auction %d: %w", cmd.AuctionID, err)
	}

	if err := uc.persist(ctx, cmd.AuctionID, res.Bid); err != nil {
		log.Error("PlaceBidUseCase: failed to persist bid record",
			zap.Uint64("auctionID", cmd.AuctionID),
			zap.String("bidID", res.Bid.ID.String()),
			zap.Error(err),
		)
		return res.Bid, fmt.Errorf("place bid use case: bid accepted but not persisted: %w", err)
	}

	return res.Bid, nil
}

func (uc *PlaceBidUseCase) persist(ctx context.Context, auctionID uint64, bid *domain.Bid) (err error) {
	a, err := uc.eng.Ledger().Get(auctionID)
	if err != nil {
		return err
	}

	tx, err := uc.dbPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	if err = uc.bidRepo.Save(ctx, tx, bid); err != nil {
		return fmt.Errorf("failed to save bid: %w", err)
	}
	if err = uc.auctionRepo.Save(ctx, tx, a.Snapshot()); err != nil {
		return fmt.Errorf("failed to save auction snapshot: %w", err)
	}
	return nil
}
