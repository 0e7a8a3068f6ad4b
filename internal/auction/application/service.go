package application

import (
	"context"

	"github.com/rom1247/ntf-market/internal/auction/domain"
)

// AuctionService is the application interface of the auction module,
// exposing the use cases to the transport layer.
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (uint64, error)
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	EndAuction(ctx context.Context, auctionID uint64) error
	GetAuction(auctionID uint64) (*domain.Auction, error)
	ListAuctions() []*domain.Auction
}

type auctionService struct {
	createUC *CreateAuctionUseCase
	bidUC    *PlaceBidUseCase
	endUC    *EndAuctionUseCase
	getUC    *GetAuctionUseCase
}

func NewAuctionService(createUC *CreateAuctionUseCase, bidUC *PlaceBidUseCase,
	endUC *EndAuctionUseCase, getUC *GetAuctionUseCase) AuctionService {
	return &auctionService{
		createUC: createUC,
		bidUC:    bidUC,
		endUC:    endUC,
		getUC:    getUC,
	}
}

func (s *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (uint64, error) {
	return s.createUC.Execute(ctx, cmd)
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return s.bidUC.Execute(ctx, cmd)
}

func (s *auctionService) EndAuction(ctx context.Context, auctionID uint64) error {
	return s.endUC.Execute(ctx, auctionID)
}

func (s *auctionService) GetAuction(auctionID uint64) (*domain.Auction, error) {
	return s.getUC.Execute(auctionID)
}

func (s *auctionService) ListAuctions() []*domain.Auction {
	return s.getUC.List()
}
