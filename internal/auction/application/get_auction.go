package application

import (
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/engine"
)

// GetAuctionUseCase reads live auction state off the engine's ledger.
type GetAuctionUseCase struct {
	eng *engine.Engine
}

func NewGetAuctionUseCase(eng *engine.Engine) *GetAuctionUseCase {
	return &GetAuctionUseCase{eng: eng}
}

func (uc *GetAuctionUseCase) Execute(auctionID uint64) (*domain.Auction, error) {
	a, err := uc.eng.Ledger().Get(auctionID)
	if err != nil {
		return nil, err
	}
	return a.Snapshot(), nil
}

func (uc *GetAuctionUseCase) List() []*domain.Auction {
	return uc.eng.Ledger().List()
}
