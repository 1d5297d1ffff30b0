package random

import (
	"math/rand"

	"github.com/enpitsuLin/taiyi/pkg/util"
)

// String returns a random string with the n as its length.
func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(randomInt(65, 90))
	}
	return string(b)
}

// Bytes returns a random byte slice with the n as its length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// Int returns a random integer in [min,max).
func Int(min, max int) int {
	return randomInt(min, max)
}

// Uint256 returns a random Uint256.
func Uint256() util.Uint256 {
	str := Bytes(util.Uint256Size)
	u, _ := util.Uint256DecodeBytesLE(str)
	return u
}

func randomInt(min, max int) int {
	return min + rand.Intn(max-min)
}
