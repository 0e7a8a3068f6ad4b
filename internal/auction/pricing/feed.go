package pricing

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// ManualFeed is a price source whose reading is posted by an operator. The
// reading is a scaled integer mantissa with a fixed decimal count, the same
// shape oracle feeds report. A feed with no posted price reads as zero and
// is rejected by the normalizer.
type ManualFeed struct {
	mu       sync.RWMutex
	price    sdkmath.Int
	decimals uint32
}

func NewManualFeed(decimals uint32) *ManualFeed {
	return &ManualFeed{
		price:    sdkmath.ZeroInt(),
		decimals: decimals,
	}
}

// LatestPrice returns the most recently posted reading.
func (f *ManualFeed) LatestPrice(_ context.Context) (sdkmath.Int, uint32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.price, f.decimals, nil
}

// SetPrice posts a human-form price, e.g. "1.2345" USD per unit. The value
// is shifted into the feed's mantissa scale; excess fractional digits are
// truncated.
func (f *ManualFeed) SetPrice(price decimal.Decimal) {
	scaled := price.Shift(int32(f.decimals))
	f.mu.Lock()
	f.price = sdkmath.NewIntFromBigInt(scaled.BigInt())
	f.mu.Unlock()
}

// SetRawPrice posts an already scaled mantissa. Used by tests and by feeds
// relayed from upstream oracles.
func (f *ManualFeed) SetRawPrice(price sdkmath.Int) {
	f.mu.Lock()
	f.price = price
	f.mu.Unlock()
}

// Decimals reports the feed's mantissa scale.
func (f *ManualFeed) Decimals() uint32 {
	return f.decimals
}
