package asset

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Errors returned by price operations.
var (
	ErrSameSymbolPrice = errors.New("price base and quote symbols must differ")
	ErrZeroPriceSide   = errors.New("price amounts must be positive")
	ErrPriceOverflow   = errors.New("asset * price overflows 64 bits")
)

// Price is the ratio base/quote between two different assets.
type Price struct {
	Base  Asset
	Quote Asset
}

// NewPrice builds a base/quote price, requiring distinct symbols.
func NewPrice(base, quote Asset) (Price, error) {
	if base.Symbol == quote.Symbol {
		return Price{}, ErrSameSymbolPrice
	}
	return Price{Base: base, Quote: quote}, nil
}

// MaxPrice returns the maximum representable price between two symbols.
func MaxPrice(base, quote Symbol) Price {
	return Price{Base: New(MaxSatoshis, base), Quote: New(1, quote)}
}

// MinPrice returns the minimum representable price between two symbols.
func MinPrice(base, quote Symbol) Price {
	return Price{Base: New(1, base), Quote: New(MaxSatoshis, quote)}
}

// Validate checks both sides are positive and the symbols differ.
func (p Price) Validate() error {
	if p.Base.Amount <= 0 || p.Quote.Amount <= 0 {
		return ErrZeroPriceSide
	}
	if p.Base.Symbol == p.Quote.Symbol {
		return ErrSameSymbolPrice
	}
	return nil
}

// IsNull reports whether the price is the zero value.
func (p Price) IsNull() bool {
	return p == Price{}
}

// crossMul computes a*b in 128-bit space so price comparison never loses
// precision on 64-bit amounts.
func crossMul(a, b int64) *uint256.Int {
	x := uint256.NewInt(uint64(a))
	y := uint256.NewInt(uint64(b))
	return x.Mul(x, y)
}

// cmpSymbols orders (base, quote) symbol pairs lexicographically.
func cmpSymbols(aBase, aQuote, bBase, bQuote Symbol) int {
	if aBase.AssetNum != bBase.AssetNum {
		if aBase.AssetNum < bBase.AssetNum {
			return -1
		}
		return 1
	}
	if aQuote.AssetNum != bQuote.AssetNum {
		if aQuote.AssetNum < bQuote.AssetNum {
			return -1
		}
		return 1
	}
	return 0
}

// Cmp compares two prices, returning -1, 0 or 1. Prices quoting different
// symbol pairs order by the (base, quote) symbol tuple; within one market
// the ratio is compared via cross-multiplication so 64-bit amounts never
// lose precision.
func (p Price) Cmp(other Price) int {
	if c := cmpSymbols(p.Base.Symbol, p.Quote.Symbol, other.Base.Symbol, other.Quote.Symbol); c != 0 {
		return c
	}
	amult := crossMul(other.Quote.Amount, p.Base.Amount)
	bmult := crossMul(p.Quote.Amount, other.Base.Amount)
	return amult.Cmp(bmult)
}

// Equals reports price equality via cross-multiplication.
func (p Price) Equals(other Price) bool {
	return p.Cmp(other) == 0
}

// Mul converts the asset through the price: the amount is scaled by the
// opposite side's amount and divided by the same side's amount. It fails if
// the result does not fit 64 bits or the asset matches neither side.
func (p Price) Mul(a Asset) (Asset, error) {
	var same, other Asset
	switch a.Symbol {
	case p.Base.Symbol:
		same, other = p.Base, p.Quote
	case p.Quote.Symbol:
		same, other = p.Quote, p.Base
	default:
		return Asset{}, fmt.Errorf("%w: invalid asset * price", ErrSymbolMismatch)
	}
	if same.Amount <= 0 {
		return Asset{}, ErrZeroPriceSide
	}
	result := crossMul(a.Amount, other.Amount)
	result.Div(result, uint256.NewInt(uint64(same.Amount)))
	if !result.IsUint64() || result.Uint64() > uint64(MaxSatoshis) {
		return Asset{}, ErrPriceOverflow
	}
	return New(int64(result.Uint64()), other.Symbol), nil
}
