package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

func TestTransferEvaluator(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)
	db := bc.WorkingDB()

	_, err := db.ApplyOperation(&transaction.Transfer{
		From: CommitteeAccount, To: "alice", Amount: asset.New(100, asset.YangSymbol),
	}, nil)
	require.NoError(t, err)

	alice, err := db.GetAccount("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 100, alice.Balance.Amount)

	// Overdrafts are rejected.
	_, err = db.ApplyOperation(&transaction.Transfer{
		From: "alice", To: CommitteeAccount, Amount: asset.New(200, asset.YangSymbol),
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	// Unknown accounts are rejected.
	_, err = db.ApplyOperation(&transaction.Transfer{
		From: "ghost", To: "alice", Amount: asset.New(1, asset.YangSymbol),
	}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateNFAEvaluatorAffectedRecords(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 1000000)
	db := bc.WorkingDB()

	result, err := db.ApplyOperation(&transaction.CreateNFA{
		Creator: "alice", Symbol: ActorSymbolName,
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.ContractAffecteds, 2)
	assert.Equal(t, NFACreateFor, result.ContractAffecteds[0].Action)
	assert.Equal(t, NFACreateBy, result.ContractAffecteds[1].Action)
	assert.Equal(t, "alice", result.ContractAffecteds[0].Account)

	// The symbol instance counter advanced.
	sym := db.DAO().FindNFASymbol(ActorSymbolName)
	require.NotNil(t, sym)
	assert.EqualValues(t, 1, sym.Count)
}

func TestCreateNFAEvaluatorUnknownSymbol(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 1000000)

	_, err := bc.WorkingDB().ApplyOperation(&transaction.CreateNFA{
		Creator: "alice", Symbol: "nfa.ghost",
	}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatelessValidationRejected(t *testing.T) {
	bc := newTestChain(t)

	_, err := bc.WorkingDB().ApplyOperation(&transaction.Transfer{
		From: CommitteeAccount, To: "alice", Amount: asset.New(0, asset.YangSymbol),
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNFAAffectedTypeStrings(t *testing.T) {
	assert.Equal(t, "transfer_from", NFATransferFrom.String())
	assert.Equal(t, "transfer_to", NFATransferTo.String())
	assert.Equal(t, "create_for", NFACreateFor.String())
	assert.Equal(t, "create_by", NFACreateBy.String())
}
