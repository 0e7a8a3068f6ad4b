package custody

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
)

type balanceKey struct {
	account  uuid.UUID
	currency domain.Currency
}

type allowanceKey struct {
	owner    uuid.UUID
	spender  uuid.UUID
	currency domain.Currency
}

// Bank holds per-(account, currency) balances and pull allowances. It is
// the in-process stand-in for the currency-transfer collaborator: Pull is
// allowance-gated for token currencies, Push is a direct balance move.
// The bank also serves as the currency-metadata collaborator, reporting
// each registered currency's declared precision.
type Bank struct {
	mu         sync.Mutex
	balances   map[balanceKey]sdkmath.Int
	allowances map[allowanceKey]sdkmath.Int
	decimals   map[domain.Currency]uint32
}

func NewBank() *Bank {
	return &Bank{
		balances:   make(map[balanceKey]sdkmath.Int),
		allowances: make(map[allowanceKey]sdkmath.Int),
		decimals:   make(map[domain.Currency]uint32),
	}
}

// RegisterCurrency declares a token currency and its decimal precision.
// The native currency needs no registration.
func (b *Bank) RegisterCurrency(currency domain.Currency, decimals uint32) error {
	if currency.IsNative() {
		return fmt.Errorf("native currency precision is fixed at %d", domain.NativeDecimals)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.decimals[currency]; exists {
		return fmt.Errorf("currency %s is already registered", currency)
	}
	b.decimals[currency] = decimals
	return nil
}

// Decimals implements domain.CurrencyMetadata.
func (b *Bank) Decimals(_ context.Context, currency domain.Currency) (uint32, error) {
	if currency.IsNative() {
		return domain.NativeDecimals, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.decimals[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	}
	return d, nil
}

// Credit mints balance into an account. Wiring and test surface.
func (b *Bank) Credit(account uuid.UUID, currency domain.Currency, amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := balanceKey{account: account, currency: currency}
	b.balances[key] = b.balanceLocked(key).Add(amount)
}

// Balance reads an account's balance in a currency.
func (b *Bank) Balance(account uuid.UUID, currency domain.Currency) sdkmath.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balanceLocked(balanceKey{account: account, currency: currency})
}

// Approve grants spender the right to pull up to amount of owner's balance.
func (b *Bank) Approve(owner, spender uuid.UUID, currency domain.Currency, amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allowances[allowanceKey{owner: owner, spender: spender, currency: currency}] = amount
}

// Allowance reads the remaining pull authorization.
func (b *Bank) Allowance(owner, spender uuid.UUID, currency domain.Currency) sdkmath.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.allowances[allowanceKey{owner: owner, spender: spender, currency: currency}]; ok {
		return a
	}
	return sdkmath.ZeroInt()
}

// Pull implements domain.CurrencyBank. Token pulls consume allowance the
// payer granted to the payee; native pulls are exempt because the value
// accompanies the call.
func (b *Bank) Pull(_ context.Context, currency domain.Currency, from, to uuid.UUID, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !currency.IsNative() {
		key := allowanceKey{owner: from, spender: to, currency: currency}
		allowance, ok := b.allowances[key]
		if !ok || allowance.LT(amount) {
			return fmt.Errorf("%w: %s from %s", domain.ErrInsufficientAllowance, currency, from)
		}
		b.allowances[key] = allowance.Sub(amount)
	}

	return b.moveLocked(currency, from, to, amount)
}

// Push implements domain.CurrencyBank.
func (b *Bank) Push(_ context.Context, currency domain.Currency, from, to uuid.UUID, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moveLocked(currency, from, to, amount)
}

func (b *Bank) moveLocked(currency domain.Currency, from, to uuid.UUID, amount sdkmath.Int) error {
	fromKey := balanceKey{account: from, currency: currency}
	balance := b.balanceLocked(fromKey)
	if balance.LT(amount) {
		return fmt.Errorf("%w: %s has %s %s, needs %s", domain.ErrInsufficientFunds,
			from, balance, currency, amount)
	}
	toKey := balanceKey{account: to, currency: currency}
	b.balances[fromKey] = balance.Sub(amount)
	b.balances[toKey] = b.balanceLocked(toKey).Add(amount)
	return nil
}

func (b *Bank) balanceLocked(key balanceKey) sdkmath.Int {
	if bal, ok := b.balances[key]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}
