package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/pricing"
	"github.com/rom1247/ntf-market/internal/custody"
	"github.com/rom1247/ntf-market/internal/fees"
	"github.com/stretchr/testify/require"
)

var (
	xtk = domain.Currency("XTK") // 6 decimals in the fixtures
	ytk = domain.Currency("YTK") // 18 decimals in the fixtures
)

// recordingNotifier captures emitted events and can run a callback inside
// the engine's guarded window.
type recordingNotifier struct {
	events   []domain.Event
	callback func(e domain.Event)
}

func (n *recordingNotifier) Notify(e domain.Event) {
	n.events = append(n.events, e)
	if n.callback != nil {
		n.callback(e)
	}
}

// flakyBank wraps the real bank and fails selected operations.
type flakyBank struct {
	*custody.Bank
	failPush     int // fail this many Push calls
	failOnPushTo *uuid.UUID
}

func (b *flakyBank) Push(ctx context.Context, c domain.Currency, from, to uuid.UUID, amount sdkmath.Int) error {
	if b.failOnPushTo != nil && to == *b.failOnPushTo {
		return errors.New("simulated push failure")
	}
	if b.failPush > 0 {
		b.failPush--
		return errors.New("simulated push failure")
	}
	return b.Bank.Push(ctx, c, from, to, amount)
}

type fixture struct {
	t        *testing.T
	eng      *Engine
	bank     *custody.Bank
	flaky    *flakyBank
	vault    *custody.AssetVault
	acct     *fees.Accountant
	ledger   *domain.Ledger
	feeds    *pricing.FeedRegistry
	feed     *pricing.ManualFeed
	notifier *recordingNotifier

	engineAcct uuid.UUID
	seller     uuid.UUID
	asset      domain.AssetRef

	now time.Time
}

// newFixture wires a full engine with real collaborators: in-memory bank
// and vault, a 2.5% fee accountant and an 8-decimal feed at 1.00 USD.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:          t,
		engineAcct: uuid.New(),
		seller:     uuid.New(),
		asset:      domain.AssetRef{Collection: "punks", TokenID: "42"},
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	f.bank = custody.NewBank()
	f.flaky = &flakyBank{Bank: f.bank}
	require.NoError(t, f.bank.RegisterCurrency(xtk, 6))
	require.NoError(t, f.bank.RegisterCurrency(ytk, 18))

	f.vault = custody.NewAssetVault(f.engineAcct)
	require.NoError(t, f.vault.Register(f.asset, f.seller))
	require.NoError(t, f.vault.Approve(f.asset, f.seller, f.engineAcct))

	f.acct = fees.NewAccountant(250, uuid.New(), f.engineAcct, f.bank)
	f.ledger = domain.NewLedger()
	f.feeds = pricing.NewFeedRegistry()
	f.feed = pricing.NewManualFeed(8)
	f.feed.SetRawPrice(sdkmath.NewInt(100_000_000)) // 1.00 USD
	f.notifier = &recordingNotifier{}

	f.eng = New(Options{
		Ledger:   f.ledger,
		Feeds:    f.feeds,
		Norm:     pricing.NewNormalizer(f.feeds, f.bank),
		Custody:  f.vault,
		Bank:     f.flaky,
		Fees:     f.acct,
		Notifier: f.notifier,
		Account:  f.engineAcct,
	})
	f.eng.now = func() time.Time { return f.now }

	return f
}

func (f *fixture) createParams() CreateParams {
	return CreateParams{
		Name:               "punk #42",
		Asset:              f.asset,
		Seller:             f.seller,
		StartingPrice:      sdkmath.NewInt(1000),
		StartingCurrency:   xtk,
		StartTime:          f.now.Add(time.Hour),
		EndTime:            f.now.Add(2 * time.Hour),
		AcceptedCurrencies: []domain.Currency{xtk, ytk, domain.Native},
		Feed:               f.feed,
	}
}

// create opens the default auction and moves the clock into the bidding
// window.
func (f *fixture) create() uint64 {
	f.t.Helper()
	id, err := f.eng.Create(context.Background(), f.createParams())
	require.NoError(f.t, err)
	f.now = f.now.Add(time.Hour) // startTime reached
	return id
}

func (f *fixture) fund(account uuid.UUID, c domain.Currency, amount int64) {
	f.bank.Credit(account, c, sdkmath.NewInt(amount))
	if !c.IsNative() {
		f.bank.Approve(account, f.engineAcct, c, sdkmath.NewInt(amount))
	}
}

func (f *fixture) bid(id uint64, bidder uuid.UUID, c domain.Currency, amount int64) error {
	params := BidParams{
		AuctionID: id,
		Bidder:    bidder,
		Currency:  c,
		Amount:    sdkmath.NewInt(amount),
	}
	if c.IsNative() {
		params.NativeValue = sdkmath.NewInt(amount)
	}
	_, err := f.eng.Bid(context.Background(), params)
	return err
}

func TestCreateLocksAssetAndAllocatesID(t *testing.T) {
	f := newFixture(t)

	id, err := f.eng.Create(context.Background(), f.createParams())
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	holder, _ := f.vault.HolderOf(f.asset)
	require.Equal(t, f.engineAcct, holder, "asset must be in engine custody")

	a, err := f.ledger.Get(id)
	require.NoError(t, err)
	require.Equal(t, f.seller, a.Seller)
	require.False(t, a.HasBid())
	require.Equal(t, domain.StatusScheduled, a.StatusAt(f.now))

	// every accepted currency resolves to the supplied feed
	for _, c := range []domain.Currency{xtk, ytk, domain.Native} {
		_, ok := f.feeds.Lookup(id, c)
		require.True(t, ok, "currency %s", c)
	}

	require.Len(t, f.notifier.events, 1)
	created, ok := f.notifier.events[0].(domain.AuctionCreated)
	require.True(t, ok)
	require.Equal(t, id, created.ID)
	require.Equal(t, "1000", created.StartingPrice.String())
}

func TestCreatePreconditions(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(p *CreateParams)
		want   error
	}{
		{"start not in future", func(p *CreateParams) { p.StartTime = f.now }, domain.ErrInvalidWindow},
		{"end before start", func(p *CreateParams) { p.EndTime = p.StartTime.Add(-time.Minute) }, domain.ErrInvalidWindow},
		{"zero starting price", func(p *CreateParams) { p.StartingPrice = sdkmath.ZeroInt() }, domain.ErrInvalidAmount},
		{"negative starting price", func(p *CreateParams) { p.StartingPrice = sdkmath.NewInt(-5) }, domain.ErrInvalidAmount},
		{"starting currency not accepted", func(p *CreateParams) { p.AcceptedCurrencies = []domain.Currency{ytk} }, domain.ErrUnsupportedCurrency},
		{"empty currency set", func(p *CreateParams) { p.AcceptedCurrencies = nil }, domain.ErrUnsupportedCurrency},
		{"nil feed", func(p *CreateParams) { p.Feed = nil }, domain.ErrUnsupportedCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := f.createParams()
			tt.mutate(&p)
			_, err := f.eng.Create(context.Background(), p)
			require.ErrorIs(t, err, tt.want)

			// zero side effects: asset stays with the seller, no record
			holder, _ := f.vault.HolderOf(f.asset)
			require.Equal(t, f.seller, holder)
			require.Equal(t, 0, f.ledger.Len())
		})
	}
}

func TestCreateFailsWithoutCustodyApproval(t *testing.T) {
	f := newFixture(t)
	p := f.createParams()
	p.Asset = domain.AssetRef{Collection: "punks", TokenID: "99"}
	require.NoError(t, f.vault.Register(p.Asset, f.seller))
	// no approval granted

	_, err := f.eng.Create(context.Background(), p)
	require.ErrorIs(t, err, domain.ErrTransferFailed)
	require.Equal(t, 0, f.ledger.Len())
}

func TestBidBelowStartingPriceRejected(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	bidder := uuid.New()
	f.fund(bidder, xtk, 10_000)

	// starting price 1000 XTK at 1.00 USD normalizes to 1000
	require.ErrorIs(t, f.bid(id, bidder, xtk, 900), domain.ErrBidTooLow)
	require.ErrorIs(t, f.bid(id, bidder, xtk, 1000), domain.ErrBidTooLow, "tie with floor rejected")
	require.NoError(t, f.bid(id, bidder, xtk, 1100))

	a, _ := f.ledger.Get(id)
	require.Equal(t, bidder, *a.HighestBidder)
	require.Equal(t, "1100", a.CurrentBid.String())
	require.Equal(t, xtk, a.CurrentCurrency)
}

func TestBidTimingGates(t *testing.T) {
	f := newFixture(t)
	id, err := f.eng.Create(context.Background(), f.createParams())
	require.NoError(t, err)
	bidder := uuid.New()
	f.fund(bidder, xtk, 10_000)

	require.ErrorIs(t, f.bid(id, bidder, xtk, 1100), domain.ErrAuctionNotStarted)

	f.now = f.now.Add(time.Hour) // window opens
	require.NoError(t, f.bid(id, bidder, xtk, 1100))

	f.now = f.now.Add(time.Hour) // exactly endTime, still admissible
	require.NoError(t, f.bid(id, bidder, xtk, 1200))

	f.now = f.now.Add(time.Second)
	require.ErrorIs(t, f.bid(id, bidder, xtk, 1300), domain.ErrAuctionExpired)
}

func TestBidUnknownAuction(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.bid(404, uuid.New(), xtk, 100), domain.ErrAuctionNotFound)
}

func TestBidRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	require.ErrorIs(t, f.bid(id, uuid.New(), xtk, 0), domain.ErrInvalidAmount)
	require.ErrorIs(t, f.bid(id, uuid.New(), xtk, -10), domain.ErrInvalidAmount)
}

func TestBidNativeValueContract(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	bidder := uuid.New()
	f.fund(bidder, domain.Native, 4_000_000_000_000_000)
	f.fund(bidder, xtk, 10_000)
	ctx := context.Background()

	// native bid must attach exactly its amount
	_, err := f.eng.Bid(ctx, BidParams{
		AuctionID: id, Bidder: bidder, Currency: domain.Native,
		Amount: sdkmath.NewInt(2_000_000_000_000_000), NativeValue: sdkmath.NewInt(1),
	})
	require.ErrorIs(t, err, domain.ErrValueMismatch)

	_, err = f.eng.Bid(ctx, BidParams{
		AuctionID: id, Bidder: bidder, Currency: domain.Native,
		Amount: sdkmath.NewInt(2_000_000_000_000_000),
	})
	require.ErrorIs(t, err, domain.ErrValueMismatch, "missing attached value")

	// token bid must attach none
	_, err = f.eng.Bid(ctx, BidParams{
		AuctionID: id, Bidder: bidder, Currency: xtk,
		Amount: sdkmath.NewInt(1100), NativeValue: sdkmath.NewInt(1),
	})
	require.ErrorIs(t, err, domain.ErrValueMismatch)
}

func TestBidRequiresAllowance(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	bidder := uuid.New()
	f.bank.Credit(bidder, xtk, sdkmath.NewInt(10_000)) // funded, not approved

	require.ErrorIs(t, f.bid(id, bidder, xtk, 1100), domain.ErrInsufficientAllowance)
}

func TestOutbidRefundsInFull(t *testing.T) {
	f := newFixture(t)
	f.feed.SetRawPrice(sdkmath.NewInt(10_000_000)) // 0.10 USD
	id := f.create()

	bidderA := uuid.New()
	bidderC := uuid.New()
	f.fund(bidderA, ytk, 2_000_000_000_000_000) // 2e15 → 200 USD units
	f.fund(bidderC, ytk, 3_000_000_000_000_000) // 3e15 → 300 USD units

	require.NoError(t, f.bid(id, bidderA, ytk, 2_000_000_000_000_000))
	require.True(t, f.bank.Balance(bidderA, ytk).IsZero())

	require.NoError(t, f.bid(id, bidderC, ytk, 3_000_000_000_000_000))

	// A got back exactly what it submitted, in the currency it submitted
	require.Equal(t, "2000000000000000", f.bank.Balance(bidderA, ytk).String())

	a, _ := f.ledger.Get(id)
	require.Equal(t, bidderC, *a.HighestBidder)

	// custody conservation: engine holds exactly the current high bid
	require.Equal(t, "3000000000000000", f.bank.Balance(f.engineAcct, ytk).String())

	// the bid-accepted event carries the refund
	last := f.notifier.events[len(f.notifier.events)-1].(domain.BidAccepted)
	require.Equal(t, bidderA, *last.RefundedBidder)
	require.Equal(t, "2000000000000000", last.RefundedAmount.String())
	require.Equal(t, ytk, last.RefundCurrency)
}

func TestCrossCurrencyMonotonicBids(t *testing.T) {
	f := newFixture(t)
	id := f.create()

	bidderA := uuid.New()
	bidderB := uuid.New()
	f.fund(bidderA, xtk, 10_000)
	f.fund(bidderB, domain.Native, 3_000_000_000_000_000)

	// 1100 XTK (6 dec) at 1.00 → 1100 USD units
	require.NoError(t, f.bid(id, bidderA, xtk, 1100))

	// 1.1e15 native (18 dec) at 1.00 → 1100 USD units: a tie, rejected
	require.ErrorIs(t, f.bid(id, bidderB, domain.Native, 1_100_000_000_000_000), domain.ErrBidTooLow)

	// 1.2e15 native → 1200 USD units: accepted, and A is refunded in XTK
	require.NoError(t, f.bid(id, bidderB, domain.Native, 1_200_000_000_000_000))
	require.Equal(t, "10000", f.bank.Balance(bidderA, xtk).String())

	a, _ := f.ledger.Get(id)
	require.Equal(t, domain.Native, a.CurrentCurrency)
	require.Equal(t, "1200000000000000", a.CurrentBid.String())
}

func TestBidRejectedWhileFeedIsBroken(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	bidder := uuid.New()
	f.fund(bidder, xtk, 10_000)

	f.feed.SetRawPrice(sdkmath.ZeroInt())
	require.ErrorIs(t, f.bid(id, bidder, xtk, 1100), domain.ErrInvalidPriceFeed)

	// the auction stays open; once the feed recovers the bid lands
	f.feed.SetRawPrice(sdkmath.NewInt(100_000_000))
	require.NoError(t, f.bid(id, bidder, xtk, 1100))
}

func TestBidAbortsAtomicallyWhenRefundFails(t *testing.T) {
	f := newFixture(t)
	id := f.create()

	bidderA := uuid.New()
	bidderB := uuid.New()
	f.fund(bidderA, xtk, 10_000)
	f.fund(bidderB, xtk, 10_000)

	require.NoError(t, f.bid(id, bidderA, xtk, 1100))

	// the refund push to A fails; B's collected funds must be unwound
	f.flaky.failOnPushTo = &bidderA
	require.ErrorIs(t, f.bid(id, bidderB, xtk, 1200), domain.ErrTransferFailed)
	f.flaky.failOnPushTo = nil

	require.Equal(t, "10000", f.bank.Balance(bidderB, xtk).String(), "collected bid unwound")
	a, _ := f.ledger.Get(id)
	require.Equal(t, bidderA, *a.HighestBidder, "previous high bid intact")
	require.Equal(t, "1100", a.CurrentBid.String())
	require.Equal(t, "1100", f.bank.Balance(f.engineAcct, xtk).String())
}

func TestEndWithoutBidsReturnsAsset(t *testing.T) {
	f := newFixture(t)
	id := f.create()

	f.now = f.now.Add(2 * time.Hour)
	require.NoError(t, f.eng.End(context.Background(), id))

	holder, _ := f.vault.HolderOf(f.asset)
	require.Equal(t, f.seller, holder)

	// no funds moved anywhere
	require.True(t, f.bank.Balance(f.seller, xtk).IsZero())
	require.True(t, f.acct.Accrued(xtk).IsZero())

	a, _ := f.ledger.Get(id)
	require.True(t, a.Ended)
	require.Nil(t, a.Winner)
}

func TestEndSplitsProceeds(t *testing.T) {
	f := newFixture(t)
	id := f.create()

	winner := uuid.New()
	f.fund(winner, domain.Native, 2_000_000_000_000_000)
	require.NoError(t, f.bid(id, winner, domain.Native, 2_000_000_000_000_000))

	f.now = f.now.Add(2 * time.Hour)
	require.NoError(t, f.eng.End(context.Background(), id))

	// fee = floor(2e15 * 250 / 10000) = 5e13, seller gets the rest
	fee := sdkmath.NewInt(50_000_000_000_000)
	proceeds := sdkmath.NewInt(1_950_000_000_000_000)

	require.Equal(t, proceeds.String(), f.bank.Balance(f.seller, domain.Native).String())
	require.Equal(t, fee.String(), f.acct.Accrued(domain.Native).String())

	// engine residual attributable to this auction is zero
	require.True(t, f.bank.Balance(f.engineAcct, domain.Native).IsZero())

	holder, _ := f.vault.HolderOf(f.asset)
	require.Equal(t, winner, holder)

	a, _ := f.ledger.Get(id)
	require.Equal(t, winner, *a.Winner)
	require.Equal(t, fee.String(), a.SettlementFee.String())
	require.Equal(t, proceeds.String(), a.SellerProceeds.String())

	ended := f.notifier.events[len(f.notifier.events)-1].(domain.AuctionEnded)
	require.Equal(t, fee.String(), ended.Fee.String())
	require.Equal(t, proceeds.String(), ended.SellerProceeds.String())
}

func TestEndIsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	ctx := context.Background()

	require.ErrorIs(t, f.eng.End(ctx, id), domain.ErrAuctionStillOpen)

	f.now = f.now.Add(2 * time.Hour)
	require.NoError(t, f.eng.End(ctx, id))
	require.ErrorIs(t, f.eng.End(ctx, id), domain.ErrAlreadyEnded)

	require.ErrorIs(t, f.eng.End(ctx, 404), domain.ErrAuctionNotFound)
}

func TestEndIsRetryableAfterTransferFailure(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	ctx := context.Background()

	winner := uuid.New()
	f.fund(winner, xtk, 10_000)
	require.NoError(t, f.bid(id, winner, xtk, 2000))

	f.now = f.now.Add(2 * time.Hour)

	f.flaky.failPush = 1 // seller payout fails
	require.ErrorIs(t, f.eng.End(ctx, id), domain.ErrTransferFailed)

	a, _ := f.ledger.Get(id)
	require.False(t, a.Ended, "terminal flag restored so end can be retried")
	require.Equal(t, "2000", f.bank.Balance(f.engineAcct, xtk).String(), "escrow untouched")

	require.NoError(t, f.eng.End(ctx, id))
	require.True(t, a.Ended)
	require.Equal(t, "1950", f.bank.Balance(f.seller, xtk).String())
	require.Equal(t, "50", f.acct.Accrued(xtk).String())
}

func TestReentrantCallsAreRejected(t *testing.T) {
	f := newFixture(t)
	id := f.create()
	bidder := uuid.New()
	f.fund(bidder, xtk, 10_000)

	var nestedErr error
	f.notifier.callback = func(e domain.Event) {
		if e.EventType() == domain.EventTypeBidAccepted {
			nestedErr = f.eng.End(context.Background(), e.AuctionID())
		}
	}

	require.NoError(t, f.bid(id, bidder, xtk, 1100))
	require.ErrorIs(t, nestedErr, domain.ErrReentrantCall)
}

func TestOperationsOnDistinctAuctionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	id1 := f.create()

	// second auction over a second asset
	asset2 := domain.AssetRef{Collection: "punks", TokenID: "43"}
	require.NoError(t, f.vault.Register(asset2, f.seller))
	require.NoError(t, f.vault.Approve(asset2, f.seller, f.engineAcct))
	p := f.createParams()
	p.Asset = asset2
	id2, err := f.eng.Create(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, id1+1, id2)

	f.now = f.now.Add(time.Hour)

	bidder := uuid.New()
	f.fund(bidder, xtk, 20_000)
	require.NoError(t, f.bid(id1, bidder, xtk, 1100))
	require.NoError(t, f.bid(id2, bidder, xtk, 1500))

	a1, _ := f.ledger.Get(id1)
	a2, _ := f.ledger.Get(id2)
	require.Equal(t, "1100", a1.CurrentBid.String())
	require.Equal(t, "1500", a2.CurrentBid.String())
}
