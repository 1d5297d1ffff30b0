package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

// Uint256Size is the size of a Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer, mostly used as a hash.
type Uint256 [Uint256Size]uint8

// Uint256DecodeStringLE attempts to decode the given string (in LE
// representation) into a Uint256.
func Uint256DecodeStringLE(s string) (u Uint256, err error) {
	if len(s) != Uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint256Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytesLE(b)
}

// Uint256DecodeBytesLE attempts to decode the given bytes (in LE
// representation) into a Uint256.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint256) BytesLE() []byte {
	return u[:]
}

// Equals returns true if both equal.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// StringLE returns a little-endian string representation of u.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// String implements the stringer interface.
func (u Uint256) String() string {
	return u.StringLE()
}

// CompareTo compares two Uint256 with each other. Possible output: 1, -1, 0
//
//	1 implies u > other.
//	-1 implies u < other.
//	0 implies  u = other.
func (u Uint256) CompareTo(other Uint256) int {
	for i := range u {
		if u[i] != other[i] {
			if u[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// EncodeBinary implements the io.Serializable interface.
func (u *Uint256) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(u[:])
}

// DecodeBinary implements the io.Serializable interface.
func (u *Uint256) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(u[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.StringLE())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint256DecodeStringLE(js)
	return err
}
