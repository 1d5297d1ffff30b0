package asset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetValidate(t *testing.T) {
	require.NoError(t, New(0, QiSymbol).Validate())
	require.NoError(t, New(MaxSatoshis, YangSymbol).Validate())
	assert.ErrorIs(t, New(-1, QiSymbol).Validate(), ErrNegativeAmount)
	assert.ErrorIs(t, New(MaxSatoshis+1, QiSymbol).Validate(), ErrAmountTooBig)
}

func TestAssetArithmetic(t *testing.T) {
	a := New(100, QiSymbol)
	b := New(40, QiSymbol)
	assert.Equal(t, New(140, QiSymbol), a.Add(b))
	assert.Equal(t, New(60, QiSymbol), a.Sub(b))
	assert.Equal(t, New(-100, QiSymbol), a.Neg())
	assert.True(t, a.GTE(b))
	assert.False(t, b.GTE(a))

	assert.Panics(t, func() { a.Add(New(1, YangSymbol)) })
}

func TestAssetJSON(t *testing.T) {
	a := New(123456, QiSymbol)
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"123456","precision":6,"nai":"`+QiSymbol.ToNAIString()+`"}`, string(data))

	var back Asset
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)

	// Negative amounts are rejected at the wire boundary.
	err = json.Unmarshal([]byte(`{"amount":"-5","precision":6,"nai":"`+QiSymbol.ToNAIString()+`"}`), &back)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPriceValidate(t *testing.T) {
	p, err := NewPrice(New(2, YangSymbol), New(3, QiSymbol))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	_, err = NewPrice(New(2, YangSymbol), New(3, YangSymbol))
	assert.ErrorIs(t, err, ErrSameSymbolPrice)

	bad := Price{Base: New(0, YangSymbol), Quote: New(3, QiSymbol)}
	assert.ErrorIs(t, bad.Validate(), ErrZeroPriceSide)

	assert.True(t, Price{}.IsNull())
	assert.False(t, p.IsNull())
}

func TestPriceCmpCrossMultiplication(t *testing.T) {
	// 2/3 < 3/4 in the same market.
	a := Price{Base: New(2, YangSymbol), Quote: New(3, QiSymbol)}
	b := Price{Base: New(3, YangSymbol), Quote: New(4, QiSymbol)}
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.True(t, a.Equals(Price{Base: New(4, YangSymbol), Quote: New(6, QiSymbol)}))

	// Amounts near the satoshi bound must not lose precision.
	big1 := Price{Base: New(MaxSatoshis, YangSymbol), Quote: New(MaxSatoshis-1, QiSymbol)}
	big2 := Price{Base: New(MaxSatoshis-1, YangSymbol), Quote: New(MaxSatoshis-2, QiSymbol)}
	// M/(M-1) < (M-1)/(M-2): the cross products differ by exactly one.
	assert.Equal(t, -1, big1.Cmp(big2))
}

func TestPriceCmpDifferentMarkets(t *testing.T) {
	// Prices over different symbol pairs order by the (base, quote) tuple,
	// the amounts do not matter.
	yangQi := Price{Base: New(1000, YangSymbol), Quote: New(1, QiSymbol)}
	yangGold := Price{Base: New(1, YangSymbol), Quote: New(1000, GoldSymbol)}
	require.Less(t, QiSymbol.AssetNum, GoldSymbol.AssetNum)
	assert.Equal(t, -1, yangQi.Cmp(yangGold))
	assert.Equal(t, 1, yangGold.Cmp(yangQi))
	assert.False(t, yangQi.Equals(yangGold))

	goldQi := Price{Base: New(5, GoldSymbol), Quote: New(7, QiSymbol)}
	assert.Equal(t, -goldQi.Cmp(yangQi), yangQi.Cmp(goldQi))
}

func TestPriceMul(t *testing.T) {
	p := Price{Base: New(2, YangSymbol), Quote: New(6, QiSymbol)}

	out, err := p.Mul(New(10, YangSymbol))
	require.NoError(t, err)
	assert.Equal(t, New(30, QiSymbol), out)

	out, err = p.Mul(New(30, QiSymbol))
	require.NoError(t, err)
	assert.Equal(t, New(10, YangSymbol), out)

	_, err = p.Mul(New(10, GoldSymbol))
	assert.ErrorIs(t, err, ErrSymbolMismatch)

	// Overflow of the 64-bit result must fail.
	huge := Price{Base: New(1, YangSymbol), Quote: New(MaxSatoshis, QiSymbol)}
	_, err = huge.Mul(New(MaxSatoshis, YangSymbol))
	assert.ErrorIs(t, err, ErrPriceOverflow)
}
