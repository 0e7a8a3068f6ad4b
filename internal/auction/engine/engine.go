package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/pricing"
	"github.com/rom1247/ntf-market/internal/shared/logger"
)

var log = logger.GetLogger()

// Engine is the auction state machine. It owns the ledger and the feed
// registry, holds asset and currency custody through its account, and
// enforces the timing, monotonic-bid and settlement rules.
//
// Every mutating operation runs under a per-auction reentrancy guard.
// Callers are serialized upstream, so a guard found held can only mean a
// collaborator callback re-entered the engine; such calls are rejected,
// never queued.
type Engine struct {
	ledger  *domain.Ledger
	feeds   *pricing.FeedRegistry
	norm    *pricing.Normalizer
	custody domain.AssetCustody
	bank    domain.CurrencyBank
	fees    domain.FeeSettlement
	notify  domain.Notifier

	// account is the engine's own principal, holder of escrowed assets and
	// funds between create and end.
	account uuid.UUID

	guardMu sync.Mutex
	guards  map[uint64]*sync.Mutex

	// now is swappable so tests can steer the timing gates
	now func() time.Time
}

type Options struct {
	Ledger   *domain.Ledger
	Feeds    *pricing.FeedRegistry
	Norm     *pricing.Normalizer
	Custody  domain.AssetCustody
	Bank     domain.CurrencyBank
	Fees     domain.FeeSettlement
	Notifier domain.Notifier
	Account  uuid.UUID
}

func New(opts Options) *Engine {
	return &Engine{
		ledger:  opts.Ledger,
		feeds:   opts.Feeds,
		norm:    opts.Norm,
		custody: opts.Custody,
		bank:    opts.Bank,
		fees:    opts.Fees,
		notify:  opts.Notifier,
		account: opts.Account,
		guards:  make(map[uint64]*sync.Mutex),
		now:     time.Now,
	}
}

// Account returns the engine's custody principal.
func (e *Engine) Account() uuid.UUID {
	return e.account
}

// Ledger exposes the auction table for read paths.
func (e *Engine) Ledger() *domain.Ledger {
	return e.ledger
}

// guard returns the reentrancy mutex for an auction id, creating it on
// first use. Guards are per auction: operations on distinct auctions stay
// independent and commutative.
func (e *Engine) guard(auctionID uint64) *sync.Mutex {
	e.guardMu.Lock()
	defer e.guardMu.Unlock()
	g, ok := e.guards[auctionID]
	if !ok {
		g = &sync.Mutex{}
		e.guards[auctionID] = g
	}
	return g
}

// enter acquires the guard without blocking. A held guard is a nested call.
func (e *Engine) enter(auctionID uint64) (*sync.Mutex, error) {
	g := e.guard(auctionID)
	if !g.TryLock() {
		return nil, domain.ErrReentrantCall
	}
	return g, nil
}

func (e *Engine) emit(event domain.Event) {
	if e.notify != nil {
		e.notify.Notify(event)
	}
}
