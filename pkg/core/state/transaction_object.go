package state

import (
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// TransactionObject enables the detection of duplicate transactions. When a
// transaction is included in a block one of these is added; at the end of
// block processing all expired entries are removed from the index.
type TransactionObject struct {
	ID         TransactionID
	PackedTrx  []byte
	TrxID      util.Uint256
	Expiration Timestamp
}

// EncodeBinary implements the io.Serializable interface.
func (t *TransactionObject) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(t.ID))
	w.WriteVarBytes(t.PackedTrx)
	w.WriteBytes(t.TrxID[:])
	w.WriteU32LE(uint32(t.Expiration))
}

// DecodeBinary implements the io.Serializable interface.
func (t *TransactionObject) DecodeBinary(r *io.BinReader) {
	t.ID = TransactionID(r.ReadU64LE())
	t.PackedTrx = r.ReadVarBytes()
	r.ReadBytes(t.TrxID[:])
	t.Expiration = Timestamp(r.ReadU32LE())
}
