package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

func newTestTransaction(t *testing.T) *Transaction {
	return &Transaction{
		Expiration: 10000,
		Operations: []Operation{
			&Transfer{From: "alice", To: "bob", Amount: asset.New(100, asset.YangSymbol)},
			&CreateZone{Creator: "sifu", Name: "taoyuan-east", ZoneType: "TAOYUAN"},
		},
	}
}

func TestTransactionEncodeDecode(t *testing.T) {
	tx := newTestTransaction(t)

	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx.Sign(priv)

	data, err := tx.Bytes()
	require.NoError(t, err)

	var back Transaction
	require.NoError(t, io.FromByteArray(&back, data))
	assert.Equal(t, tx.Expiration, back.Expiration)
	require.Len(t, back.Operations, 2)
	assert.Equal(t, tx.Operations[0], back.Operations[0])
	assert.Equal(t, tx.Operations[1], back.Operations[1])
	assert.Equal(t, tx.Hash(), back.Hash())
}

func TestTransactionHashExcludesSignatures(t *testing.T) {
	tx := newTestTransaction(t)
	unsigned := tx.Hash()

	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	signed := newTestTransaction(t)
	signed.Sign(priv)

	assert.Equal(t, unsigned, signed.Hash())
}

func TestGetSignatureKeys(t *testing.T) {
	tx := newTestTransaction(t)

	priv1, err := keys.NewPrivateKey()
	require.NoError(t, err)
	priv2, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx.Sign(priv1)
	tx.Sign(priv2)

	sigkeys, err := tx.GetSignatureKeys()
	require.NoError(t, err)
	require.Len(t, sigkeys, 2)
	assert.True(t, sigkeys[0].Equal(priv1.PublicKey()))
	assert.True(t, sigkeys[1].Equal(priv2.PublicKey()))
}

func TestTransactionValidate(t *testing.T) {
	tx := &Transaction{Expiration: 1}
	assert.ErrorIs(t, tx.Validate(), ErrNoOperations)

	tx = newTestTransaction(t)
	require.NoError(t, tx.Validate())

	tx.Operations = append(tx.Operations, &Transfer{From: "a", To: "b", Amount: asset.New(0, asset.YangSymbol)})
	assert.Error(t, tx.Validate())
}

func TestOperationValidate(t *testing.T) {
	assert.Error(t, (&Transfer{To: "b", Amount: asset.New(1, asset.YangSymbol)}).Validate())
	assert.Error(t, (&CreateNFASymbol{Creator: "a"}).Validate())
	assert.Error(t, (&CreateNFA{Symbol: "nfa.actor.default"}).Validate())
	assert.Error(t, (&TransferNFA{From: "a"}).Validate())
	assert.Error(t, (&CreateZone{Creator: "a", Name: "z"}).Validate())
	assert.Error(t, (&ConnectToZone{Account: "a", From: "z", To: "z"}).Validate())

	require.NoError(t, (&ConnectToZone{Account: "a", From: "x", To: "y"}).Validate())
}
