package domain

// Currency identifies a payment currency accepted by the engine. The zero
// value is the native currency sentinel: it needs no token contract, its
// transfers are settled by attached value and its precision is fixed.
type Currency string

// Native is the zero-identity native currency.
const Native Currency = ""

// NativeDecimals is the fixed decimal precision of the native currency.
// Every other currency declares its own precision via CurrencyMetadata.
const NativeDecimals uint32 = 18

func (c Currency) IsNative() bool {
	return c == Native
}

func (c Currency) String() string {
	if c.IsNative() {
		return "native"
	}
	return string(c)
}

// AssetRef identifies a unique digital asset: a collection plus the item
// identifier inside it.
type AssetRef struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
}

func (a AssetRef) String() string {
	return a.Collection + "/" + a.TokenID
}
