package asset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDammChecksumKnownValues(t *testing.T) {
	// Checked against the reference quasigroup walk.
	assert.EqualValues(t, 4, DammChecksum8Digit(572))
	assert.EqualValues(t, 0, DammChecksum8Digit(0))
}

func TestFromNAIRoundTrip(t *testing.T) {
	// Sample the NAI range instead of walking all 10^8 values. The reserved
	// NAIs (1..8) accept only their fixed precision and are covered by
	// TestReservedNAIMapping.
	for _, nai := range []uint32{NAIHerb + 1, 10, 99, 1234, 76662223, 99999998, MaxNAI} {
		nai := nai
		t.Run(fmt.Sprintf("%d", nai), func(t *testing.T) {
			for _, decimals := range []uint8{0, 3, 6, MaxDecimals} {
				full := nai*10 + uint32(DammChecksum8Digit(nai))
				sym, err := FromNAI(full, decimals)
				require.NoError(t, err)
				require.NoError(t, sym.Validate())

				back, err := FromNAIString(sym.ToNAIString(), sym.Decimals())
				require.NoError(t, err)
				assert.Equal(t, sym, back)
				assert.Equal(t, full, sym.ToNAI())
			}
		})
	}
}

func TestFromNAIStringMutation(t *testing.T) {
	sym, err := FromNAI(766622233, 3)
	require.NoError(t, err)
	valid := sym.ToNAIString()

	// Flipping any single digit must fail the Damm check or the range check.
	for i := 2; i < len(valid); i++ {
		for d := byte('0'); d <= '9'; d++ {
			if valid[i] == d {
				continue
			}
			mutated := []byte(valid)
			mutated[i] = d
			_, err := FromNAIString(string(mutated), 3)
			assert.Error(t, err, "mutated NAI %q must not parse", string(mutated))
		}
	}
}

func TestFromNAIStringFormat(t *testing.T) {
	_, err := FromNAIString("@@76662223", 3)
	assert.ErrorIs(t, err, ErrBadNAIStringShort)

	_, err = FromNAIString("!!766622233", 3)
	assert.ErrorIs(t, err, ErrBadNAIString)

	_, err = FromNAIString("@@76662223x", 3)
	assert.ErrorIs(t, err, ErrBadNAIString)
}

func TestNAISpaceEncoding(t *testing.T) {
	// The S2 scenario: 76662223 encodes into NAI space with the control bit
	// and the decimals packed in.
	sym, err := FromNAI(766622233, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(76662223)<<NAIShift|ControlMask|3, sym.AssetNum)
	assert.Equal(t, NAISpace, sym.Space())
	assert.EqualValues(t, 3, sym.Decimals())
	assert.Equal(t, "@@766622233", sym.ToNAIString())

	// Corrupting the check digit must be rejected.
	_, err = FromNAIString("@@766622234", 3)
	assert.ErrorIs(t, err, ErrBadCheckDigit)
}

func TestReservedNAIMapping(t *testing.T) {
	for _, tc := range []struct {
		nai       uint32
		precision uint8
		expected  Symbol
	}{
		{NAIYang, PrecisionYang, YangSymbol},
		{NAIYin, PrecisionYin, YinSymbol},
		{NAIQi, PrecisionQi, QiSymbol},
		{NAIGold, PrecisionGold, GoldSymbol},
		{NAIFood, PrecisionFood, FoodSymbol},
		{NAIWood, PrecisionWood, WoodSymbol},
		{NAIFabric, PrecisionFabric, FabricSymbol},
		{NAIHerb, PrecisionHerb, HerbSymbol},
	} {
		full := tc.nai*10 + uint32(DammChecksum8Digit(tc.nai))
		sym, err := FromNAI(full, tc.precision)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, sym)
		assert.Equal(t, LegacySpace, sym.Space())

		// A precision mismatch on a reserved NAI must fail.
		_, err = FromNAI(full, tc.precision+1)
		assert.ErrorIs(t, err, ErrDecimalsMismatch)
	}
}

func TestIsQi(t *testing.T) {
	assert.True(t, QiSymbol.IsQi())
	assert.False(t, YangSymbol.IsQi())
	assert.False(t, YinSymbol.IsQi())
	assert.False(t, GoldSymbol.IsQi())

	// The qi bit is the lowest data-digit bit, so the odd 76662223 is the qi
	// variant and its pair is not.
	sym, err := FromNAI(766622233, 3)
	require.NoError(t, err)
	assert.True(t, sym.IsQi())
	assert.False(t, sym.PairedSymbol().IsQi())
}

func TestPairedSymbolSymmetry(t *testing.T) {
	symbols := []Symbol{
		YangSymbol, YinSymbol, QiSymbol, GoldSymbol,
		FoodSymbol, WoodSymbol, FabricSymbol, HerbSymbol,
	}
	for _, nai := range []uint32{MinNAI + 10, 1234, 76662223, MaxNAI} {
		sym, err := FromNAI(nai*10+uint32(DammChecksum8Digit(nai)), 5)
		require.NoError(t, err)
		symbols = append(symbols, sym)
	}
	for _, sym := range symbols {
		assert.Equal(t, sym, sym.PairedSymbol().PairedSymbol(), "paired(paired(%d))", sym.AssetNum)
	}

	assert.Equal(t, QiSymbol, YangSymbol.PairedSymbol())
	assert.Equal(t, YangSymbol, QiSymbol.PairedSymbol())
	assert.Equal(t, YinSymbol, YinSymbol.PairedSymbol())
	assert.Equal(t, HerbSymbol, HerbSymbol.PairedSymbol())
}

func TestSymbolValidate(t *testing.T) {
	require.NoError(t, YangSymbol.Validate())
	require.NoError(t, QiSymbol.Validate())

	// No control bit set.
	bad := Symbol{AssetNum: 1234 << NAIShift}
	assert.Error(t, bad.Validate())

	// Decimals out of range.
	bad = Symbol{AssetNum: 1234<<NAIShift | ControlMask | (MaxDecimals + 1)}
	assert.Error(t, bad.Validate())

	// Data digits out of range.
	bad = Symbol{AssetNum: ControlMask}
	assert.Error(t, bad.Validate())
}
