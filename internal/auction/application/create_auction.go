package application

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/engine"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// CreateAuctionDTO is the input for the CreateAuction use case.
type CreateAuctionDTO struct {
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

// CreateAuctionUseCase runs the engine's create operation and writes the
// resulting record to the durable store. The engine is authoritative; the
// row is the historical record, so a persistence failure is surfaced but
// does not undo the created auction.
type CreateAuctionUseCase struct {
	eng         *engine.Engine
	auctionRepo domain.AuctionRepository
	dbPool      *pgxpool.Pool
}

func NewCreateAuctionUseCase(eng *engine.Engine, auctionRepo domain.AuctionRepository, dbPool *pgxpool.Pool) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{
		eng:         eng,
		auctionRepo: auctionRepo,
		dbPool:      dbPool,
	}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (uint64, error) {
	id, err := uc.eng.Create(ctx, engine.CreateParams{
		Name:               cmd.Name,
		Asset:              cmd.Asset,
		Seller:             cmd.Seller,
		StartingPrice:      cmd.StartingPrice,
		StartingCurrency:   cmd.StartingCurrency,
		StartTime:          cmd.StartTime,
		EndTime:            cmd.EndTime,
		AcceptedCurrencies: cmd.AcceptedCurrencies,
		Feed:               cmd.Feed,
	})
	if err != nil {
		return 0, fmt.Errorf("create auction use case: %w", err)
	}

	if err := uc.persist(ctx, id); err != nil {
		log.Error("CreateAuctionUseCase: failed to persist auction record",
			zap.Uint64("auctionID", id),
			zap.Error(err),
		)
		return id, fmt.Errorf("create auction use case: auction %d created but not persisted: %w", id, err)
	}

	return id, nil
}

func (uc *CreateAuctionUseCase) persist(ctx context.Context, id uint64) (err error) {
	a, err := uc.eng.Ledger().Get(id)
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
