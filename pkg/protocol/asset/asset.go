package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

// MaxSatoshis bounds any asset amount.
const MaxSatoshis = 4611686018427387903

// Errors returned by asset arithmetic and parsing.
var (
	ErrNegativeAmount = errors.New("asset amount cannot be negative")
	ErrAmountTooBig   = errors.New("asset amount exceeds the maximum")
	ErrSymbolMismatch = errors.New("asset symbols do not match")
)

// Asset is an amount of a concrete symbol. Amounts are integer "satoshis",
// the symbol's decimal places say where the point goes.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// New creates an Asset with the given amount and symbol.
func New(amount int64, symbol Symbol) Asset {
	return Asset{Amount: amount, Symbol: symbol}
}

// Validate checks the symbol and the amount bounds.
func (a Asset) Validate() error {
	if err := a.Symbol.Validate(); err != nil {
		return err
	}
	if a.Amount < 0 {
		return ErrNegativeAmount
	}
	if a.Amount > MaxSatoshis {
		return ErrAmountTooBig
	}
	return nil
}

// Add returns a+b, which must share a symbol.
func (a Asset) Add(b Asset) Asset {
	if a.Symbol != b.Symbol {
		panic("attempt to add assets with different symbols")
	}
	return Asset{Amount: a.Amount + b.Amount, Symbol: a.Symbol}
}

// Sub returns a-b, which must share a symbol.
func (a Asset) Sub(b Asset) Asset {
	if a.Symbol != b.Symbol {
		panic("attempt to subtract assets with different symbols")
	}
	return Asset{Amount: a.Amount - b.Amount, Symbol: a.Symbol}
}

// Neg returns the asset with a negated amount.
func (a Asset) Neg() Asset {
	return Asset{Amount: -a.Amount, Symbol: a.Symbol}
}

// GTE is a >= b for assets sharing a symbol.
func (a Asset) GTE(b Asset) bool {
	if a.Symbol != b.Symbol {
		panic("attempt to compare assets with different symbols")
	}
	return a.Amount >= b.Amount
}

// String implements the Stringer interface giving the decimal form together
// with the NAI.
func (a Asset) String() string {
	return fmt.Sprintf("%d %s", a.Amount, a.Symbol.ToNAIString())
}

// assetJSON is the wire form of an Asset.
type assetJSON struct {
	Amount    string `json:"amount"`
	Precision uint8  `json:"precision"`
	NAI       string `json:"nai"`
}

// MarshalJSON implements the json.Marshaler interface.
func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(assetJSON{
		Amount:    strconv.FormatInt(a.Amount, 10),
		Precision: a.Symbol.Decimals(),
		NAI:       a.Symbol.ToNAIString(),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var aux assetJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	amount, err := strconv.ParseInt(aux.Amount, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid asset amount: %w", err)
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	sym, err := FromNAIString(aux.NAI, aux.Precision)
	if err != nil {
		return err
	}
	a.Amount = amount
	a.Symbol = sym
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (a *Asset) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(a.Amount))
	a.Symbol.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (a *Asset) DecodeBinary(r *io.BinReader) {
	a.Amount = int64(r.ReadU64LE())
	a.Symbol.DecodeBinary(r)
}
