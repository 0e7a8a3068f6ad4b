package pricing

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestManualFeedSetPrice(t *testing.T) {
	feed := NewManualFeed(8)

	feed.SetPrice(decimal.RequireFromString("1.25"))
	price, decimals, err := feed.LatestPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(8), decimals)
	require.Equal(t, "125000000", price.String())

	// excess fractional digits truncate at the mantissa scale
	feed.SetPrice(decimal.RequireFromString("0.123456789123"))
	price, _, err = feed.LatestPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, "12345678", price.String())
}

func TestManualFeedUnsetReadsZero(t *testing.T) {
	feed := NewManualFeed(8)
	price, _, err := feed.LatestPrice(context.Background())
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog()

	feed, err := cat.Create("XTK", 8)
	require.NoError(t, err)
	feed.SetRawPrice(sdkmath.NewInt(42))

	got, ok := cat.Get("XTK")
	require.True(t, ok)
	require.Same(t, feed, got)

	_, err = cat.Create("XTK", 6)
	require.Error(t, err)

	_, ok = cat.Get("YTK")
	require.False(t, ok)
}
