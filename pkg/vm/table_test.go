package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

func TestTableClone(t *testing.T) {
	orig := Table{"hp": "100", "name": "caiyun"}
	clone := orig.Clone()
	clone["hp"] = "50"
	assert.Equal(t, "100", orig["hp"])

	assert.Nil(t, Table(nil).Clone())
}

func TestTableEncodeDecode(t *testing.T) {
	orig := Table{"b": "2", "a": "1", "c": "3"}
	w := io.NewBufBinWriter()
	orig.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)

	r := io.NewBinReaderFromBuf(w.Bytes())
	back := DecodeTable(r)
	require.NoError(t, r.Err)
	assert.Equal(t, orig, back)
}

func TestTableDeterministicEncoding(t *testing.T) {
	a := Table{"x": "1", "y": "2"}
	b := Table{"y": "2", "x": "1"}

	wa := io.NewBufBinWriter()
	a.EncodeBinary(wa.BinWriter)
	wb := io.NewBufBinWriter()
	b.EncodeBinary(wb.BinWriter)
	assert.Equal(t, wa.Bytes(), wb.Bytes())
}

func TestTablePackSize(t *testing.T) {
	empty := Table{}
	assert.Equal(t, 1, empty.PackSize())

	one := Table{"k": "v"}
	assert.Equal(t, 1+2+2, one.PackSize())
}

func TestContext(t *testing.T) {
	ctx := NewContext()
	assert.False(t, ctx.BaseLoaded())
	InitializeBaseEnv(ctx)
	assert.True(t, ctx.BaseLoaded())

	ctx.ResetMemUsed()
	assert.Zero(t, ctx.MemUsed())
}
