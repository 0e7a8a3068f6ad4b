package domain

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
)

// AssetCustody moves exclusive holding of an asset between principals. The
// engine is the only caller: it pulls the asset from the seller at creation
// (which the seller must have pre-approved) and releases it at settlement.
type AssetCustody interface {
	// TransferCustody fails when from is not the current holder or the
	// transfer was not authorized.
	TransferCustody(ctx context.Context, asset AssetRef, from, to uuid.UUID) error
}

// CurrencyBank moves currency balances between principals.
type CurrencyBank interface {
	// Pull draws amount from the payer toward the payee. Token currencies
	// require a pre-authorized allowance from the payer; the native currency
	// is exempt because its value accompanies the call itself.
	Pull(ctx context.Context, currency Currency, from, to uuid.UUID, amount sdkmath.Int) error
	// Push is a direct balance transfer, limited only by the payer's balance.
	Push(ctx context.Context, currency Currency, from, to uuid.UUID, amount sdkmath.Int) error
}

// CurrencyMetadata reports the declared decimal precision of a currency.
// Implementations return NativeDecimals for the native sentinel.
type CurrencyMetadata interface {
	Decimals(ctx context.Context, currency Currency) (uint32, error)
}

// PriceFeed is a single external price source quoting one currency against
// USD. Readings are point-in-time; non-positive values must be rejected by
// the consumer.
type PriceFeed interface {
	LatestPrice(ctx context.Context) (value sdkmath.Int, decimals uint32, err error)
}

// FeeSettlement computes and collects the marketplace fee at settlement.
type FeeSettlement interface {
	// CalcFee returns the fee for a gross amount, a pure function of the
	// configured basis-points rate.
	CalcFee(gross sdkmath.Int) sdkmath.Int
	// DeductFee takes custody of fee out of the engine's account and records
	// it for later withdrawal.
	DeductFee(ctx context.Context, auctionID uint64, currency Currency, gross, fee sdkmath.Int) error
}

// Notifier receives the engine's lifecycle events for downstream indexing.
// The engine never consumes its own notifications.
type Notifier interface {
	Notify(event Event)
}
