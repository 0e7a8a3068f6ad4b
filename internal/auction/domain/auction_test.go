package domain

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuctionStatusDerivation(t *testing.T) {
	a := testAuction(t)

	require.Equal(t, StatusScheduled, a.StatusAt(a.StartTime.Add(-time.Minute)))
	require.Equal(t, StatusOpen, a.StatusAt(a.StartTime))
	require.Equal(t, StatusOpen, a.StatusAt(a.EndTime))

	require.True(t, a.MarkEnded())
	require.Equal(t, StatusClosed, a.StatusAt(a.StartTime))
}

func TestMarkEndedIsMonotonic(t *testing.T) {
	a := testAuction(t)
	require.True(t, a.MarkEnded())
	require.False(t, a.MarkEnded(), "second mark must report already ended")

	a.UnmarkEnded()
	require.True(t, a.MarkEnded(), "restore makes finalization retryable")
}

func TestRecordBidInvariant(t *testing.T) {
	a := testAuction(t)
	require.False(t, a.HasBid())
	require.True(t, a.CurrentBid.IsZero())

	bidder := uuid.New()
	a.RecordBid(bidder, Native, sdkmath.NewInt(500))

	require.True(t, a.HasBid())
	require.Equal(t, bidder, *a.HighestBidder)
	require.Equal(t, Native, a.CurrentCurrency)
	require.Equal(t, "500", a.CurrentBid.String())
}

func TestSnapshotDoesNotAliasLiveState(t *testing.T) {
	a := testAuction(t)
	bidder := uuid.New()
	a.RecordBid(bidder, Native, sdkmath.NewInt(500))

	snap := a.Snapshot()
	require.NotSame(t, a, snap)
	require.NotSame(t, a.HighestBidder, snap.HighestBidder)
	require.Equal(t, *a.HighestBidder, *snap.HighestBidder)

	// mutating the live record never shows through the snapshot
	a.RecordBid(uuid.New(), Native, sdkmath.NewInt(900))
	require.Equal(t, "500", snap.CurrentBid.String())
	require.Equal(t, bidder, *snap.HighestBidder)
}
