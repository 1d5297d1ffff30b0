package block

import (
	"crypto/sha256"
	"errors"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// MaxTransactionsPerBlock is the maximum number of transactions per block.
const MaxTransactionsPerBlock = 0xffff

// ErrMaxContentsPerBlock is returned when the number of contents exceeds the
// maximum number of contents per block.
var ErrMaxContentsPerBlock = errors.New("the number of contents exceeds the maximum number of contents per block")

// Header holds the base info of a block.
type Header struct {
	// PrevID is the id of the previous block.
	PrevID util.Uint256

	// MerkleRoot is the root hash of the transaction list.
	MerkleRoot util.Uint256

	// Number is the height of the block, genesis being 1.
	Number uint32

	// Timestamp is a second-precision block time.
	Timestamp state.Timestamp

	// Siming is the producer identity of the block.
	Siming string

	// Signature of the producer over the hashable fields.
	Signature []byte

	hash       util.Uint256
	hashCached bool
}

// Block is a signed batch of transactions extending the chain.
type Block struct {
	Header

	Transactions []*transaction.Transaction
}

// ID returns the block id, caching it after the first call.
func (h *Header) ID() util.Uint256 {
	if !h.hashCached {
		w := io.NewBufBinWriter()
		h.encodeHashableFields(w.BinWriter)
		h.hash = sha256.Sum256(w.Bytes())
		h.hashCached = true
	}
	return h.hash
}

func (h *Header) encodeHashableFields(w *io.BinWriter) {
	h.PrevID.EncodeBinary(w)
	h.MerkleRoot.EncodeBinary(w)
	w.WriteU32LE(h.Number)
	w.WriteU32LE(uint32(h.Timestamp))
	w.WriteString(h.Siming)
}

// EncodeBinary implements the io.Serializable interface.
func (h *Header) EncodeBinary(w *io.BinWriter) {
	h.encodeHashableFields(w)
	w.WriteVarBytes(h.Signature)
}

// DecodeBinary implements the io.Serializable interface.
func (h *Header) DecodeBinary(r *io.BinReader) {
	h.PrevID.DecodeBinary(r)
	h.MerkleRoot.DecodeBinary(r)
	h.Number = r.ReadU32LE()
	h.Timestamp = state.Timestamp(r.ReadU32LE())
	h.Siming = r.ReadString()
	h.Signature = r.ReadVarBytes()
	h.hashCached = false
}

// ComputeMerkleRoot computes the transaction list root based on the actual
// block data. With no transactions it is the zero hash.
func (b *Block) ComputeMerkleRoot() util.Uint256 {
	if len(b.Transactions) == 0 {
		return util.Uint256{}
	}
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	for len(hashes) > 1 {
		if len(hashes)%2 != 0 {
			hashes = append(hashes, hashes[len(hashes)-1])
		}
		next := make([]util.Uint256, len(hashes)/2)
		for i := range next {
			next[i] = sha256.Sum256(append(hashes[2*i].BytesLE(), hashes[2*i+1].BytesLE()...))
		}
		hashes = next
	}
	return hashes[0]
}

// RebuildMerkleRoot rebuilds the merkle root of the block.
func (b *Block) RebuildMerkleRoot() {
	b.MerkleRoot = b.ComputeMerkleRoot()
	b.hashCached = false
}

// Sign signs the block with the producer's key.
func (b *Block) Sign(priv *keys.PrivateKey) {
	id := b.ID()
	b.Signature = priv.Sign(id[:])
}

// VerifySignature checks the producer signature against the given key.
func (b *Block) VerifySignature(pub *keys.PublicKey) bool {
	id := b.ID()
	return pub.Verify(b.Signature, id[:])
}

// EncodeBinary implements the io.Serializable interface.
func (b *Block) EncodeBinary(w *io.BinWriter) {
	b.Header.EncodeBinary(w)
	w.WriteVarUint(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (b *Block) DecodeBinary(r *io.BinReader) {
	b.Header.DecodeBinary(r)
	n := r.ReadVarUint()
	if n > MaxTransactionsPerBlock {
		r.Err = ErrMaxContentsPerBlock
		return
	}
	if r.Err != nil {
		return
	}
	b.Transactions = make([]*transaction.Transaction, 0, n)
	for i := uint64(0); i < n; i++ {
		tx := new(transaction.Transaction)
		tx.DecodeBinary(r)
		b.Transactions = append(b.Transactions, tx)
	}
}

// Bytes returns the serialized block.
func (b *Block) Bytes() ([]byte, error) {
	return io.ToByteArray(b)
}
