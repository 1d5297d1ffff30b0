package transaction

import (
	"errors"
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

// OpType tags the concrete operation kind on the wire.
type OpType uint8

// Operation kinds.
const (
	OpTransfer OpType = iota
	OpCreateNFASymbol
	OpCreateNFA
	OpTransferNFA
	OpCreateZone
	OpConnectToZone
)

// ErrUnknownOperation is returned when decoding meets an unknown OpType.
var ErrUnknownOperation = errors.New("unknown operation type")

// Operation is a single state transition request inside a transaction.
type Operation interface {
	io.Serializable
	// Type returns the wire tag of the operation.
	Type() OpType
	// Validate performs stateless sanity checks.
	Validate() error
}

// Transfer moves a liquid asset between two accounts.
type Transfer struct {
	From   string
	To     string
	Amount asset.Asset
	Memo   string
}

// Type implements the Operation interface.
func (o *Transfer) Type() OpType { return OpTransfer }

// Validate implements the Operation interface.
func (o *Transfer) Validate() error {
	if o.From == "" || o.To == "" {
		return errors.New("transfer requires both accounts")
	}
	if o.Amount.Amount <= 0 {
		return errors.New("transfer amount must be positive")
	}
	return o.Amount.Validate()
}

// EncodeBinary implements the io.Serializable interface.
func (o *Transfer) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.From)
	w.WriteString(o.To)
	o.Amount.EncodeBinary(w)
	w.WriteString(o.Memo)
}

// DecodeBinary implements the io.Serializable interface.
func (o *Transfer) DecodeBinary(r *io.BinReader) {
	o.From = r.ReadString()
	o.To = r.ReadString()
	o.Amount.DecodeBinary(r)
	o.Memo = r.ReadString()
}

// CreateNFASymbol registers a new NFA family.
type CreateNFASymbol struct {
	Creator         string
	Symbol          string
	Describe        string
	DefaultContract string
}

// Type implements the Operation interface.
func (o *CreateNFASymbol) Type() OpType { return OpCreateNFASymbol }

// Validate implements the Operation interface.
func (o *CreateNFASymbol) Validate() error {
	if o.Creator == "" || o.Symbol == "" || o.DefaultContract == "" {
		return errors.New("create_nfa_symbol requires creator, symbol and default contract")
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (o *CreateNFASymbol) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.Creator)
	w.WriteString(o.Symbol)
	w.WriteString(o.Describe)
	w.WriteString(o.DefaultContract)
}

// DecodeBinary implements the io.Serializable interface.
func (o *CreateNFASymbol) DecodeBinary(r *io.BinReader) {
	o.Creator = r.ReadString()
	o.Symbol = r.ReadString()
	o.Describe = r.ReadString()
	o.DefaultContract = r.ReadString()
}

// CreateNFA mints an NFA from a registered symbol.
type CreateNFA struct {
	Creator string
	Symbol  string
}

// Type implements the Operation interface.
func (o *CreateNFA) Type() OpType { return OpCreateNFA }

// Validate implements the Operation interface.
func (o *CreateNFA) Validate() error {
	if o.Creator == "" || o.Symbol == "" {
		return errors.New("create_nfa requires creator and symbol")
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (o *CreateNFA) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.Creator)
	w.WriteString(o.Symbol)
}

// DecodeBinary implements the io.Serializable interface.
func (o *CreateNFA) DecodeBinary(r *io.BinReader) {
	o.Creator = r.ReadString()
	o.Symbol = r.ReadString()
}

// TransferNFA moves NFA ownership between accounts.
type TransferNFA struct {
	From string
	To   string
	ID   state.NFAID
}

// Type implements the Operation interface.
func (o *TransferNFA) Type() OpType { return OpTransferNFA }

// Validate implements the Operation interface.
func (o *TransferNFA) Validate() error {
	if o.From == "" || o.To == "" {
		return errors.New("transfer_nfa requires both accounts")
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (o *TransferNFA) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.From)
	w.WriteString(o.To)
	w.WriteU64LE(uint64(o.ID))
}

// DecodeBinary implements the io.Serializable interface.
func (o *TransferNFA) DecodeBinary(r *io.BinReader) {
	o.From = r.ReadString()
	o.To = r.ReadString()
	o.ID = state.NFAID(r.ReadU64LE())
}

// CreateZone creates a named zone of the given type.
type CreateZone struct {
	Creator string
	Name    string
	// ZoneType is the type token, e.g. "YUANYE".
	ZoneType string
}

// Type implements the Operation interface.
func (o *CreateZone) Type() OpType { return OpCreateZone }

// Validate implements the Operation interface.
func (o *CreateZone) Validate() error {
	if o.Creator == "" || o.Name == "" || o.ZoneType == "" {
		return errors.New("create_zone requires creator, name and type")
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (o *CreateZone) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.Creator)
	w.WriteString(o.Name)
	w.WriteString(o.ZoneType)
}

// DecodeBinary implements the io.Serializable interface.
func (o *CreateZone) DecodeBinary(r *io.BinReader) {
	o.Creator = r.ReadString()
	o.Name = r.ReadString()
	o.ZoneType = r.ReadString()
}

// ConnectToZone adds a directed edge between two zones.
type ConnectToZone struct {
	Account string
	From    string
	To      string
}

// Type implements the Operation interface.
func (o *ConnectToZone) Type() OpType { return OpConnectToZone }

// Validate implements the Operation interface.
func (o *ConnectToZone) Validate() error {
	if o.Account == "" || o.From == "" || o.To == "" {
		return errors.New("connect_to_zone requires account and both zones")
	}
	if o.From == o.To {
		return errors.New("cannot connect a zone to itself")
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (o *ConnectToZone) EncodeBinary(w *io.BinWriter) {
	w.WriteString(o.Account)
	w.WriteString(o.From)
	w.WriteString(o.To)
}

// DecodeBinary implements the io.Serializable interface.
func (o *ConnectToZone) DecodeBinary(r *io.BinReader) {
	o.Account = r.ReadString()
	o.From = r.ReadString()
	o.To = r.ReadString()
}

// newOperation makes the zero operation for the given wire tag.
func newOperation(t OpType) (Operation, error) {
	switch t {
	case OpTransfer:
		return new(Transfer), nil
	case OpCreateNFASymbol:
		return new(CreateNFASymbol), nil
	case OpCreateNFA:
		return new(CreateNFA), nil
	case OpTransferNFA:
		return new(TransferNFA), nil
	case OpCreateZone:
		return new(CreateZone), nil
	case OpConnectToZone:
		return new(ConnectToZone), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, t)
	}
}
