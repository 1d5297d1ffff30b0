package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

// AddressPrefix is prepended to the base58 form of a public key.
const AddressPrefix = "TAI"

// Errors returned by key parsing.
var (
	ErrBadPrefix   = errors.New("public key string has a wrong prefix")
	ErrBadChecksum = errors.New("public key string checksum mismatch")
)

// PublicKey is a compressed secp256k1 public key.
type PublicKey struct {
	k *secp256k1.PublicKey
}

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	k *secp256k1.PrivateKey
}

// NewPrivateKey creates a fresh random private key.
func NewPrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{k: k}, nil
}

// NewPrivateKeyFromBytes restores a private key from its 32-byte form.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid private key length %d", len(b))
	}
	return &PrivateKey{k: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PublicKey derives the public half of the key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{k: p.k.PubKey()}
}

// Sign signs a SHA256 digest of the given data.
func (p *PrivateKey) Sign(data []byte) []byte {
	digest := sha256.Sum256(data)
	return ecdsa.SignCompact(p.k, digest[:], true)
}

// Bytes returns the 32-byte form of the private key.
func (p *PrivateKey) Bytes() []byte {
	return p.k.Serialize()
}

// NewPublicKeyFromBytes restores a public key from its compressed form.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{k: k}, nil
}

// NewPublicKeyFromString parses the TAI-prefixed base58 form.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	if len(s) < len(AddressPrefix) || s[:len(AddressPrefix)] != AddressPrefix {
		return nil, ErrBadPrefix
	}
	raw, err := base58.Decode(s[len(AddressPrefix):])
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, ErrBadChecksum
	}
	data, check := raw[:len(raw)-4], raw[len(raw)-4:]
	digest := sha256.Sum256(data)
	for i := range check {
		if check[i] != digest[i] {
			return nil, ErrBadChecksum
		}
	}
	return NewPublicKeyFromBytes(data)
}

// Bytes returns the compressed serialized form of the key.
func (p *PublicKey) Bytes() []byte {
	if p == nil || p.k == nil {
		return nil
	}
	return p.k.SerializeCompressed()
}

// String gives the TAI-prefixed base58 form with a 4-byte SHA256 checksum.
func (p *PublicKey) String() string {
	data := p.Bytes()
	digest := sha256.Sum256(data)
	return AddressPrefix + base58.Encode(append(data, digest[:4]...))
}

// Equal reports whether both keys are the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.k.IsEqual(other.k)
}

// Verify checks a compact signature made by the matching private key over
// the SHA256 digest of data.
func (p *PublicKey) Verify(signature, data []byte) bool {
	digest := sha256.Sum256(data)
	recovered, _, err := ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return false
	}
	return p.k.IsEqual(recovered)
}

// RecoverCompact restores the signer's public key from a compact signature
// over the SHA256 digest of data.
func RecoverCompact(signature, data []byte) (*PublicKey, error) {
	digest := sha256.Sum256(data)
	recovered, _, err := ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return nil, err
	}
	return &PublicKey{k: recovered}, nil
}

// EncodeBinary implements the io.Serializable interface.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(p.Bytes())
}

// DecodeBinary implements the io.Serializable interface.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	b := r.ReadVarBytes(65)
	if r.Err != nil {
		return
	}
	if len(b) == 0 {
		p.k = nil
		return
	}
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		r.Err = err
		return
	}
	p.k = k
}
