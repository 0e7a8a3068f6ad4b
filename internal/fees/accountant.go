package fees

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var ErrUnauthorized = errors.New("caller is not the fee admin")

// Accountant collects the marketplace fee at settlement and accrues it per
// currency until the admin withdraws. Fee custody lives in the sink account;
// the accumulator mirrors what is withdrawable.
type Accountant struct {
	rateBps uint32
	admin   uuid.UUID
	sink    uuid.UUID // account holding collected fees
	engine  uuid.UUID // account fees are deducted from
	bank    domain.CurrencyBank

	mu      sync.Mutex
	accrued map[domain.Currency]sdkmath.Int
}

// NewAccountant builds a fee accountant. rateBps must be below 10000 so a
// fee can never consume an entire bid.
func NewAccountant(rateBps uint32, admin, engine uuid.UUID, bank domain.CurrencyBank) *Accountant {
	return &Accountant{
		rateBps: rateBps,
		admin:   admin,
		sink:    uuid.New(),
		engine:  engine,
		bank:    bank,
		accrued: make(map[domain.Currency]sdkmath.Int),
	}
}

// CalcFee returns floor(gross * rate / 10000).
func (a *Accountant) CalcFee(gross sdkmath.Int) sdkmath.Int {
	return gross.MulRaw(int64(a.rateBps)).QuoRaw(10000)
}

// DeductFee implements domain.FeeSettlement: takes custody of fee out of
// the engine account and records the accrual for later withdrawal.
func (a *Accountant) DeductFee(ctx context.Context, auctionID uint64, currency domain.Currency, gross, fee sdkmath.Int) error {
	if fee.IsNil() || fee.IsNegative() {
		return fmt.Errorf("invalid fee %s for auction %d", fee, auctionID)
	}
	if fee.IsZero() {
		return nil
	}
	if err := a.bank.Push(ctx, currency, a.engine, a.sink, fee); err != nil {
		return fmt.Errorf("collecting fee for auction %d: %w", auctionID, err)
	}

	a.mu.Lock()
	a.accrued[currency] = a.accruedLocked(currency).Add(fee)
	a.mu.Unlock()

	log.Info("fee collected",
		zap.Uint64("auctionID", auctionID),
		zap.Stringer("currency", currency),
		zap.String("gross", gross.String()),
		zap.String("fee", fee.String()),
	)
	return nil
}

// Accrued reports the withdrawable balance in a currency.
func (a *Accountant) Accrued(currency domain.Currency) sdkmath.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accruedLocked(currency)
}

// Withdraw transfers every accrued unit of a currency to the destination
// account. Admin-gated.
func (a *Accountant) Withdraw(ctx context.Context, caller uuid.UUID, currency domain.Currency, to uuid.UUID) (sdkmath.Int, error) {
	if caller != a.admin {
		return sdkmath.Int{}, ErrUnauthorized
	}

	a.mu.Lock()
	amount := a.accruedLocked(currency)
	if amount.IsZero() {
		a.mu.Unlock()
		return sdkmath.ZeroInt(), nil
	}
	a.accrued[currency] = sdkmath.ZeroInt()
	a.mu.Unlock()

	if err := a.bank.Push(ctx, currency, a.sink, to, amount); err != nil {
		// restore the accumulator, the funds never left the sink
		a.mu.Lock()
		a.accrued[currency] = a.accruedLocked(currency).Add(amount)
		a.mu.Unlock()
		return sdkmath.Int{}, fmt.Errorf("withdrawing %s %s: %w", amount, currency, err)
	}

	log.Info("fees withdrawn",
		zap.Stringer("currency", currency),
		zap.String("amount", amount.String()),
		zap.String("to", to.String()),
	)
	return amount, nil
}

func (a *Accountant) accruedLocked(currency domain.Currency) sdkmath.Int {
	if v, ok := a.accrued[currency]; ok {
		return v
	}
	return sdkmath.ZeroInt()
}
