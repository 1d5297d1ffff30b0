package state

import (
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

// Account is a named chain account. Accounts are created once and never
// destroyed.
type Account struct {
	ID      AccountID
	Name    string
	Created Timestamp

	// Balance is the liquid YANG holding, Qi the native resource asset.
	Balance asset.Asset
	Qi      asset.Asset

	Mana ManaBar
}

// MaxMana derives the mana ceiling from the account's qi holding.
func (a *Account) MaxMana() int64 {
	return a.Qi.Amount
}

// EncodeBinary implements the io.Serializable interface.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(a.ID))
	w.WriteString(a.Name)
	w.WriteU32LE(uint32(a.Created))
	a.Balance.EncodeBinary(w)
	a.Qi.EncodeBinary(w)
	a.Mana.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (a *Account) DecodeBinary(r *io.BinReader) {
	a.ID = AccountID(r.ReadU64LE())
	a.Name = r.ReadString()
	a.Created = Timestamp(r.ReadU32LE())
	a.Balance.DecodeBinary(r)
	a.Qi.DecodeBinary(r)
	a.Mana.DecodeBinary(r)
}
