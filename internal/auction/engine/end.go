package engine

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"go.uber.org/zap"
)

// End finalizes an auction once its end time has passed. Permissionless and
// exactly-once: the terminal flag is set before any transfer (no reentry
// into the finalize path) and restored if a transfer fails, so a failed
// finalization can be retried.
//
// When a high bid exists the proceeds split as seller payout first, then
// fee custody; the payout is unwound if the fee leg fails. Asset custody is
// released last: at that point the engine provably holds the asset, so a
// failure there is an invariant violation rather than an expected outcome.
func (e *Engine) End(ctx context.Context, auctionID uint64) error {
	g, err := e.enter(auctionID)
	if err != nil {
		return err
	}
	defer g.Unlock()

	a, err := e.ledger.Get(auctionID)
	if err != nil {
		return err
	}

	now := e.now()
	if now.Before(a.EndTime) {
		return domain.ErrAuctionStillOpen
	}
	if !a.MarkEnded() {
		return domain.ErrAlreadyEnded
	}

	winner := a.HighestBidder
	finalBid := a.CurrentBid
	currency := a.CurrentCurrency
	fee := sdkmath.ZeroInt()
	proceeds := sdkmath.ZeroInt()

	if a.HasBid() {
		fee = e.fees.CalcFee(finalBid)
		if !fee.LT(finalBid) {
			a.UnmarkEnded()
			return domain.ErrFeeExceedsBid
		}
		proceeds = finalBid.Sub(fee)

		if err := e.bank.Push(ctx, currency, e.account, a.Seller, proceeds); err != nil {
			a.UnmarkEnded()
			return fmt.Errorf("%w: paying seller: %v", domain.ErrTransferFailed, err)
		}

		if err := e.fees.DeductFee(ctx, auctionID, currency, finalBid, fee); err != nil {
			if pErr := e.bank.Push(ctx, currency, a.Seller, e.account, proceeds); pErr != nil {
				log.DPanic("failed to unwind seller payout after fee failure",
					zap.Uint64("auctionID", auctionID),
					zap.Error(pErr),
				)
			}
			a.UnmarkEnded()
			return fmt.Errorf("%w: collecting fee: %v", domain.ErrTransferFailed, err)
		}
	}

	recipient := a.Seller
	if winner != nil {
		recipient = *winner
	}
	if err := e.custody.TransferCustody(ctx, a.Asset, e.account, recipient); err != nil {
		// the engine held the asset since create; reaching here means
		// custody state was corrupted outside the engine
		log.DPanic("asset release failed at settlement",
			zap.Uint64("auctionID", auctionID),
			zap.String("asset", a.Asset.String()),
			zap.Error(err),
		)
		a.UnmarkEnded()
		return fmt.Errorf("%w: releasing asset: %v", domain.ErrTransferFailed, err)
	}

	a.RecordSettlement(winner, fee, proceeds, now)

	log.Info("auction ended",
		zap.Uint64("auctionID", auctionID),
		zap.String("asset", a.Asset.String()),
		zap.Bool("hadBid", winner != nil),
		zap.Stringer("currency", currency),
		zap.String("finalBid", finalBid.String()),
		zap.String("fee", fee.String()),
		zap.String("sellerProceeds", proceeds.String()),
	)

	e.emit(domain.AuctionEnded{
		Auction:        auctionID,
		Asset:          a.Asset,
		Seller:         a.Seller,
		Winner:         winner,
		Currency:       currency,
		FinalBid:       finalBid,
		Fee:            fee,
		SellerProceeds: proceeds,
		At:             now,
	})

	return nil
}
