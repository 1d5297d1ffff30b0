package transaction

import (
	"crypto/sha256"
	"errors"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// MaxOperationsPerTransaction bounds the operation list.
const MaxOperationsPerTransaction = 1024

// Errors returned by transaction validation.
var (
	ErrNoOperations      = errors.New("transaction has no operations")
	ErrTooManyOperations = errors.New("transaction has too many operations")
)

// Transaction is a signed ordered list of operations.
type Transaction struct {
	// Expiration is the time after which the transaction may no longer be
	// included in a block; it also bounds the duplicate-detection window.
	Expiration state.Timestamp

	Operations []Operation

	// Signatures are compact recoverable signatures over the unsigned body.
	Signatures [][]byte

	hash       util.Uint256
	hashCached bool
}

// Hash returns the transaction id, caching it after the first call.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashCached {
		t.hash = t.computeHash()
		t.hashCached = true
	}
	return t.hash
}

func (t *Transaction) computeHash() util.Uint256 {
	w := io.NewBufBinWriter()
	t.encodeUnsigned(w.BinWriter)
	return sha256.Sum256(w.Bytes())
}

// Sign appends a signature of the given key to the transaction.
func (t *Transaction) Sign(priv *keys.PrivateKey) {
	h := t.Hash()
	t.Signatures = append(t.Signatures, priv.Sign(h[:]))
}

// GetSignatureKeys recovers the public keys of all signers.
func (t *Transaction) GetSignatureKeys() ([]*keys.PublicKey, error) {
	h := t.Hash()
	sigkeys := make([]*keys.PublicKey, 0, len(t.Signatures))
	for _, sig := range t.Signatures {
		pub, err := keys.RecoverCompact(sig, h[:])
		if err != nil {
			return nil, err
		}
		sigkeys = append(sigkeys, pub)
	}
	return sigkeys, nil
}

// Validate performs stateless checks on the transaction and all of its
// operations.
func (t *Transaction) Validate() error {
	if len(t.Operations) == 0 {
		return ErrNoOperations
	}
	if len(t.Operations) > MaxOperationsPerTransaction {
		return ErrTooManyOperations
	}
	for _, op := range t.Operations {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// encodeUnsigned writes everything the signatures cover.
func (t *Transaction) encodeUnsigned(w *io.BinWriter) {
	w.WriteU32LE(uint32(t.Expiration))
	w.WriteVarUint(uint64(len(t.Operations)))
	for _, op := range t.Operations {
		w.WriteB(byte(op.Type()))
		op.EncodeBinary(w)
	}
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.encodeUnsigned(w)
	w.WriteVarUint(uint64(len(t.Signatures)))
	for _, sig := range t.Signatures {
		w.WriteVarBytes(sig)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.Expiration = state.Timestamp(r.ReadU32LE())
	n := r.ReadVarUint()
	if n > MaxOperationsPerTransaction {
		r.Err = ErrTooManyOperations
		return
	}
	if r.Err != nil {
		return
	}
	t.Operations = make([]Operation, 0, n)
	for i := uint64(0); i < n; i++ {
		op, err := newOperation(OpType(r.ReadB()))
		if err != nil {
			r.Err = err
			return
		}
		op.DecodeBinary(r)
		t.Operations = append(t.Operations, op)
	}
	ns := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	t.Signatures = make([][]byte, 0, ns)
	for i := uint64(0); i < ns; i++ {
		t.Signatures = append(t.Signatures, r.ReadVarBytes())
	}
	t.hashCached = false
}

// Bytes returns the serialized transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	return io.ToByteArray(t)
}
