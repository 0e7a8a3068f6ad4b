package http

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
)

type createAuctionRequest struct {
	Name               string    `json:"name"`
	Collection         string    `json:"collection"`
	TokenID            string    `json:"token_id"`
	Seller             uuid.UUID `json:"seller"`
	StartingPrice      string    `json:"starting_price"`
	StartingCurrency   string    `json:"starting_currency"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	AcceptedCurrencies []string  `json:"accepted_currencies"`
	FeedSymbol         string    `json:"feed_symbol"`
}

type createAuctionResponse struct {
	AuctionID uint64 `json:"auction_id"`
}

type placeBidRequest struct {
	Bidder      uuid.UUID `json:"bidder"`
	Currency    string    `json:"currency"`
	Amount      string    `json:"amount"`
	NativeValue string    `json:"native_value,omitempty"`
}

type placeBidResponse struct {
	BidID    uuid.UUID `json:"bid_id"`
	USDValue string    `json:"usd_value"`
}

type auctionResponse struct {
	ID                 uint64     `json:"id"`
	Name               string     `json:"name"`
	Collection         string     `json:"collection"`
	TokenID            string     `json:"token_id"`
	Seller             uuid.UUID  `json:"seller"`
	StartingPrice      string     `json:"starting_price"`
	StartingCurrency   string     `json:"starting_currency"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	AcceptedCurrencies []string   `json:"accepted_currencies"`
	Status             string     `json:"status"`
	HighestBidder      *uuid.UUID `json:"highest_bidder,omitempty"`
	CurrentCurrency    string     `json:"current_currency"`
	CurrentBid         string     `json:"current_bid"`
	Ended              bool       `json:"ended"`
	Winner             *uuid.UUID `json:"winner,omitempty"`
	SettlementFee      string     `json:"settlement_fee,omitempty"`
	SellerProceeds     string     `json:"seller_proceeds,omitempty"`
	SettledAt          *time.Time `json:"settled_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAuctionResponse(a *domain.Auction) auctionResponse {
	accepted := make([]string, len(a.AcceptedCurrencies))
	for i, c := range a.AcceptedCurrencies {
		accepted[i] = c.String()
	}
	resp := auctionResponse{
		ID:                 a.ID,
		Name:               a.Name,
		Collection:         a.Asset.Collection,
		TokenID:            a.Asset.TokenID,
		Seller:             a.Seller,
		StartingPrice:      a.StartingPrice.String(),
		StartingCurrency:   a.StartingCurrency.String(),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		AcceptedCurrencies: accepted,
		Status:             string(a.StatusAt(time.Now())),
		HighestBidder:      a.HighestBidder,
		CurrentCurrency:    a.CurrentCurrency.String(),
		CurrentBid:         a.CurrentBid.String(),
		Ended:              a.Ended,
		Winner:             a.Winner,
		SettledAt:          a.SettledAt,
	}
	if a.SettledAt != nil {
		resp.SettlementFee = a.SettlementFee.String()
		resp.SellerProceeds = a.SellerProceeds.String()
	}
	return resp
}

// parseCurrency maps the wire symbol to the domain type. "native" (or an
// empty string) selects the native sentinel.
func parseCurrency(s string) domain.Currency {
	if s == "" || s == "native" {
		return domain.Native
	}
	return domain.Currency(s)
}

func parseAmount(s string) (sdkmath.Int, bool) {
	if s == "" {
		return sdkmath.ZeroInt(), true
	}
	return sdkmath.NewIntFromString(s)
}
