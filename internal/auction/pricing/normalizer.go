package pricing

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rom1247/ntf-market/internal/auction/domain"
)

// TargetDecimals is the precision of the canonical USD magnitude every bid
// is normalized to before comparison.
const TargetDecimals = 6

// Normalizer converts currency amounts into USD magnitudes using the feed
// registered for the auction and the currency's declared precision.
type Normalizer struct {
	feeds *FeedRegistry
	meta  domain.CurrencyMetadata
}

func NewNormalizer(feeds *FeedRegistry, meta domain.CurrencyMetadata) *Normalizer {
	return &Normalizer{feeds: feeds, meta: meta}
}

// Normalize resolves the auction's feed for the currency and returns the
// USD magnitude of amount at the feed's latest reading.
func (n *Normalizer) Normalize(ctx context.Context, auctionID uint64, currency domain.Currency, amount sdkmath.Int) (sdkmath.Int, error) {
	feed, ok := n.feeds.Lookup(auctionID, currency)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	}

	price, feedDecimals, err := feed.LatestPrice(ctx)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("reading feed for %s: %w", currency, err)
	}

	currencyDecimals, err := n.meta.Decimals(ctx, currency)
	if err != nil {
		return sdkmath.Int{}, err
	}

	return NormalizeValue(amount, price, feedDecimals, currencyDecimals)
}

// NormalizeValue computes amount * price / 10^(currencyDecimals +
// feedDecimals - TargetDecimals) in the integer domain, truncating toward
// zero. A negative exponent scales up instead. The product is carried in
// 256-bit-checked arbitrary-precision integers, so amounts near token supply
// caps do not overflow.
func NormalizeValue(amount, price sdkmath.Int, feedDecimals, currencyDecimals uint32) (sdkmath.Int, error) {
	if price.IsNil() || !price.IsPositive() {
		return sdkmath.Int{}, domain.ErrInvalidPriceFeed
	}

	product := amount.Mul(price)

	exp := int(currencyDecimals) + int(feedDecimals) - TargetDecimals
	if exp >= 0 {
		return product.Quo(pow10(exp)), nil
	}
	return product.Mul(pow10(-exp)), nil
}

func pow10(exp int) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, exp)
}
