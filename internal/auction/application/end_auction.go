package application

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/engine"
	"go.uber.org/zap"
)

// EndAuctionUseCase runs the engine's settlement operation and records the
// final auction state. Finalization is permissionless, so there is no
// caller field to validate.
type EndAuctionUseCase struct {
	eng         *engine.Engine
	auctionRepo domain.AuctionRepository
	dbPool      *pgxpool.Pool
}

func NewEndAuctionUseCase(eng *engine.Engine, auctionRepo domain.AuctionRepository, dbPool *pgxpool.Pool) *EndAuctionUseCase {
	return &EndAuctionUseCase{
		eng:         eng,
		auctionRepo: auctionRepo,
		dbPool:      dbPool,
	}
}

func (uc *EndAuctionUseCase) Execute(ctx context.Context, auctionID uint64) error {
	if err := uc.eng.End(ctx, auctionID); err != nil {
		return fmt.Errorf("end auction use case: auction %d: %w", auctionID, err)
	}

	if err := uc.persist(ctx, auctionID); err != nil {
		log.Error("EndAuctionUseCase: failed to persist settlement record",
			zap.Uint64("auctionID", auctionID),
			zap.Error(err),
		)
		return fmt.Errorf("end auction use case: auction %d settled but not persisted: %w", auctionID, err)
	}
	return nil
}

func (uc *EndAuctionUseCase) persist(ctx context.Context, auctionID uint64) (err error) {
	a, err := uc.eng.Ledger().Get(auctionID)
	if err != nil {
		return err
	}

	tx, err := uc.dbPool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	return uc.auctionRepo.Save(ctx, tx, a.Snapshot())
}
