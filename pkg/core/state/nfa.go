package state

import (
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// NFASymbol is the registry entry a family of NFAs is minted from.
type NFASymbol struct {
	ID      NFASymbolID
	Creator string
	Symbol  string
	// Describe is the human-readable description of the family.
	Describe        string
	DefaultContract ContractID
	// Count of instances minted so far.
	Count uint64
}

// EncodeBinary implements the io.Serializable interface.
func (s *NFASymbol) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(s.ID))
	w.WriteString(s.Creator)
	w.WriteString(s.Symbol)
	w.WriteString(s.Describe)
	w.WriteU64LE(uint64(s.DefaultContract))
	w.WriteU64LE(s.Count)
}

// DecodeBinary implements the io.Serializable interface.
func (s *NFASymbol) DecodeBinary(r *io.BinReader) {
	s.ID = NFASymbolID(r.ReadU64LE())
	s.Creator = r.ReadString()
	s.Symbol = r.ReadString()
	s.Describe = r.ReadString()
	s.DefaultContract = ContractID(r.ReadU64LE())
	s.Count = r.ReadU64LE()
}

// NFA is a live scriptable entity with ownership, balances and a scheduled
// heart-beat.
type NFA struct {
	ID             NFAID
	CreatorAccount AccountID
	OwnerAccount   AccountID
	SymbolID       NFASymbolID
	MainContract   ContractID
	CreatedTime    Timestamp

	// NextTickTime schedules the heart-beat; TimestampMax parks the NFA.
	NextTickTime Timestamp

	Mana ManaBar
	Qi   asset.Asset

	// Data is the opaque table the main contract's init populated.
	Data vm.Table
}

// MaxMana derives the mana ceiling from the NFA's qi holding.
func (n *NFA) MaxMana() int64 {
	return n.Qi.Amount
}

// PackSize is the serialized entity size used for state-growth mana charges.
func (n *NFA) PackSize() int {
	return io.GetVarSize(n)
}

// EncodeBinary implements the io.Serializable interface.
func (n *NFA) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(n.ID))
	w.WriteU64LE(uint64(n.CreatorAccount))
	w.WriteU64LE(uint64(n.OwnerAccount))
	w.WriteU64LE(uint64(n.SymbolID))
	w.WriteU64LE(uint64(n.MainContract))
	w.WriteU32LE(uint32(n.CreatedTime))
	w.WriteU32LE(uint32(n.NextTickTime))
	n.Mana.EncodeBinary(w)
	n.Qi.EncodeBinary(w)
	n.Data.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (n *NFA) DecodeBinary(r *io.BinReader) {
	n.ID = NFAID(r.ReadU64LE())
	n.CreatorAccount = AccountID(r.ReadU64LE())
	n.OwnerAccount = AccountID(r.ReadU64LE())
	n.SymbolID = NFASymbolID(r.ReadU64LE())
	n.MainContract = ContractID(r.ReadU64LE())
	n.CreatedTime = Timestamp(r.ReadU32LE())
	n.NextTickTime = Timestamp(r.ReadU32LE())
	n.Mana.DecodeBinary(r)
	n.Qi.DecodeBinary(r)
	n.Data = vm.DecodeTable(r)
}

// NFARegularBalance holds an NFA's balance of any non-qi asset. Zero-amount
// records are never stored.
type NFARegularBalance struct {
	ID     NFABalanceID
	NFA    NFAID
	Liquid asset.Asset
}

// EncodeBinary implements the io.Serializable interface.
func (b *NFARegularBalance) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(b.ID))
	w.WriteU64LE(uint64(b.NFA))
	b.Liquid.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (b *NFARegularBalance) DecodeBinary(r *io.BinReader) {
	b.ID = NFABalanceID(r.ReadU64LE())
	b.NFA = NFAID(r.ReadU64LE())
	b.Liquid.DecodeBinary(r)
}
