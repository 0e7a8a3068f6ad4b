package engine

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"go.uber.org/zap"
)

// BidParams carries one bid submission. NativeValue is the value attached
// to the call; it must equal Amount for native-currency bids and be zero
// otherwise.
type BidParams struct {
	AuctionID   uint64
	Bidder      uuid.UUID
	Currency    domain.Currency
	Amount      sdkmath.Int
	NativeValue sdkmath.Int
}

// BidResult reports the admitted bid and the refund issued for the bid it
// displaced, if any.
type BidResult struct {
	Bid            *domain.Bid
	RefundedBidder *uuid.UUID
	RefundedAmount sdkmath.Int
	RefundCurrency domain.Currency
}

// Bid admits a bid when its USD-normalized value strictly exceeds the
// current high (ties never advance the auction). Funds sequencing: the new
// bid is collected first, then the displaced bid is refunded in full in its
// original currency, then the ledger advances. A refund failure pushes the
// collected funds back and aborts, so no partial movement is ever
// observable.
func (e *Engine) Bid(ctx context.Context, p BidParams) (*BidResult, error) {
	g, err := e.enter(p.AuctionID)
	if err != nil {
		return nil, err
	}
	defer g.Unlock()

	a, err := e.ledger.Get(p.AuctionID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	switch {
	case a.Ended:
		return nil, domain.ErrAuctionEnded
	case now.Before(a.StartTime):
		return nil, domain.ErrAuctionNotStarted
	case now.After(a.EndTime):
		return nil, domain.ErrAuctionExpired
	}

	if p.Amount.IsNil() || !p.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := checkNativeValue(p); err != nil {
		return nil, err
	}

	newUSD, err := e.norm.Normalize(ctx, p.AuctionID, p.Currency, p.Amount)
	if err != nil {
		return nil, err
	}

	var currentUSD sdkmath.Int
	if a.HasBid() {
		currentUSD, err = e.norm.Normalize(ctx, p.AuctionID, a.CurrentCurrency, a.CurrentBid)
	} else {
		currentUSD, err = e.norm.Normalize(ctx, p.AuctionID, a.StartingCurrency, a.StartingPrice)
	}
	if err != nil {
		return nil, err
	}

	if !newUSD.GT(currentUSD) {
		log.Info("bid rejected: value does not exceed current high",
			zap.Uint64("auctionID", p.AuctionID),
			zap.String("bidder", p.Bidder.String()),
			zap.String("bidUSD", newUSD.String()),
			zap.String("currentUSD", currentUSD.String()),
		)
		return nil, domain.ErrBidTooLow
	}

	// collect the new bid before refunding the displaced one, so a refund
	// failure can never leave the auction bid-less
	if err := e.bank.Pull(ctx, p.Currency, p.Bidder, e.account, p.Amount); err != nil {
		if errors.Is(err, domain.ErrInsufficientAllowance) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: collecting bid: %v", domain.ErrTransferFailed, err)
	}

	result := &BidResult{RefundedAmount: sdkmath.ZeroInt()}
	if a.HasBid() {
		prevBidder := *a.HighestBidder
		if err := e.bank.Push(ctx, a.CurrentCurrency, e.account, prevBidder, a.CurrentBid); err != nil {
			// unwind the collected funds so the operation stays all-or-nothing
			if pErr := e.bank.Push(ctx, p.Currency, e.account, p.Bidder, p.Amount); pErr != nil {
				log.DPanic("failed to unwind collected bid after refund failure",
					zap.Uint64("auctionID", p.AuctionID),
					zap.String("bidder", p.Bidder.String()),
					zap.Error(pErr),
				)
			}
			return nil, fmt.Errorf("%w: refunding previous bid: %v", domain.ErrTransferFailed, err)
		}
		result.RefundedBidder = &prevBidder
		result.RefundedAmount = a.CurrentBid
		result.RefundCurrency = a.CurrentCurrency
	}

	a.RecordBid(p.Bidder, p.Currency, p.Amount)
	result.Bid = domain.NewBid(p.AuctionID, p.Bidder, p.Currency, p.Amount, newUSD)

	log.Info("bid accepted",
		zap.Uint64("auctionID", p.AuctionID),
		zap.String("bidder", p.Bidder.String()),
		zap.Stringer("currency", p.Currency),
		zap.String("amount", p.Amount.String()),
		zap.String("usdValue", newUSD.String()),
	)

	e.emit(domain.BidAccepted{
		Auction:        p.AuctionID,
		Bidder:         p.Bidder,
		Currency:       p.Currency,
		Amount:         p.Amount,
		USDValue:       newUSD,
		RefundedBidder: result.RefundedBidder,
		RefundedAmount: result.RefundedAmount,
		RefundCurrency: result.RefundCurrency,
		At:             now,
	})

	return result, nil
}

// checkNativeValue enforces the payable contract: a native bid must carry
// exactly its amount as attached value, a token bid must carry none.
func checkNativeValue(p BidParams) error {
	attached := p.NativeValue
	if attached.IsNil() {
		attached = sdkmath.ZeroInt()
	}
	if p.Currency.IsNative() {
		if !attached.Equal(p.Amount) {
			return domain.ErrValueMismatch
		}
		return nil
	}
	if !attached.IsZero() {
		return domain.ErrValueMismatch
	}
	return nil
}
