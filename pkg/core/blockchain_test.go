package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/enpitsuLin/taiyi/pkg/core/block"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// newTestBlock builds the next block over the current head.
func newTestBlock(bc *Blockchain, txs ...*transaction.Transaction) *block.Block {
	props := bc.WorkingDB().DAO().GlobalProperties()
	b := &block.Block{
		Header: block.Header{
			PrevID:    props.HeadBlockID,
			Number:    props.HeadBlockNumber + 1,
			Timestamp: props.Time + BlockIntervalSeconds,
			Siming:    InitSiming,
		},
		Transactions: txs,
	}
	b.RebuildMerkleRoot()
	return b
}

func newTransferTx(bc *Blockchain, from, to string, amount int64) *transaction.Transaction {
	return &transaction.Transaction{
		Expiration: bc.WorkingDB().HeadBlockTime() + 60,
		Operations: []transaction.Operation{
			&transaction.Transfer{From: from, To: to, Amount: asset.New(amount, asset.YangSymbol)},
		},
	}
}

func TestPushBlockAdvancesHead(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)

	tx := newTransferTx(bc, CommitteeAccount, "alice", 100)
	b := newTestBlock(bc, tx)
	require.NoError(t, bc.PushBlock(b, SkipNothing))

	assert.EqualValues(t, 1, bc.HeadBlockNum())
	assert.Equal(t, b.Timestamp, bc.HeadBlockTime())

	alice, err := bc.WorkingDB().GetAccount("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 100, alice.Balance.Amount)

	// The block landed in the block log.
	stored, err := bc.GetBlock(1)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), stored.ID())
	assert.True(t, bc.IsKnownBlock(1, b.ID()))
}

func TestPushBlockRejectsUnlinkable(t *testing.T) {
	bc := newTestChain(t)

	b := newTestBlock(bc)
	b.Number = 5
	b.RebuildMerkleRoot()
	assert.ErrorIs(t, bc.PushBlock(b, SkipNothing), ErrIngress)

	// A block linking to a wrong previous id is rejected once past genesis.
	require.NoError(t, bc.PushBlock(newTestBlock(bc), SkipNothing))
	bad := newTestBlock(bc)
	bad.PrevID = util.Uint256{0xde, 0xad}
	assert.ErrorIs(t, bc.PushBlock(bad, SkipNothing), ErrIngress)
}

func TestPushBlockFailedTransactionRollsBack(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)

	good := newTransferTx(bc, CommitteeAccount, "alice", 100)
	bad := newTransferTx(bc, "alice", CommitteeAccount, 999999) // insufficient funds
	b := newTestBlock(bc, good, bad)

	err := bc.PushBlock(b, SkipNothing)
	require.Error(t, err)

	// The good transfer did not stick either.
	assert.EqualValues(t, 0, bc.HeadBlockNum())
	alice, err := bc.WorkingDB().GetAccount("alice")
	require.NoError(t, err)
	assert.Zero(t, alice.Balance.Amount)
}

func TestDuplicateTransactionRejected(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)

	tx := newTransferTx(bc, CommitteeAccount, "alice", 100)
	require.NoError(t, bc.PushTransaction(tx))

	err := bc.PushTransaction(tx)
	assert.ErrorIs(t, err, ErrIngress)
	assert.ErrorContains(t, err, "duplicate")

	// Once the duplicate window expired the id may be reused.
	b := newTestBlock(bc)
	b.Timestamp = tx.Expiration + 1
	require.NoError(t, bc.PushBlock(b, SkipNothing))
	assert.Nil(t, bc.WorkingDB().DAO().FindTransactionObject(tx.Hash()))
}

func TestExpiredTransactionRejected(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)

	tx := newTransferTx(bc, CommitteeAccount, "alice", 100)
	tx.Expiration = bc.WorkingDB().HeadBlockTime()
	assert.ErrorIs(t, bc.PushTransaction(tx), ErrValidation)

	tx = newTransferTx(bc, CommitteeAccount, "alice", 100)
	tx.Expiration = bc.WorkingDB().HeadBlockTime() + MaxTransactionExpirationSeconds + 10
	assert.ErrorIs(t, bc.PushTransaction(tx), ErrValidation)
}

func TestCheckpointEnforced(t *testing.T) {
	store := storage.NewMemoryStore()
	bc, err := NewBlockchain(OpenArgs{
		Store:         store,
		VM:            &NullExecutor{},
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
		Checkpoints:   map[uint32]util.Uint256{1: {0xbe, 0xef}},
	})
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)

	b := newTestBlock(bc)
	assert.ErrorIs(t, bc.PushBlock(b, SkipNothing), ErrCheckpointMismatch)

	// A checkpoint matching the actual id passes.
	bc.checkpoints = map[uint32]util.Uint256{1: b.ID()}
	require.NoError(t, bc.PushBlock(b, SkipNothing))
}

func TestInvariantValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	bc, err := NewBlockchain(OpenArgs{
		Store:                store,
		VM:                   &NullExecutor{},
		InitialSupply:        YangInitSupply,
		GenesisTime:          testGenesisTime,
		DoValidateInvariants: true,
	})
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)

	require.NoError(t, bc.PushBlock(newTestBlock(bc), SkipNothing))

	// Supply mismatch is detected.
	bc.WorkingDB().DAO().ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.TotalQi = p.TotalQi.Add(asset.New(1, asset.QiSymbol))
	})
	assert.ErrorIs(t, bc.PushBlock(newTestBlock(bc), SkipNothing), ErrValidation)
}

func TestReopenRestoresState(t *testing.T) {
	store := storage.NewMemoryStore()
	args := OpenArgs{
		Store:         store,
		VM:            &NullExecutor{},
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
	}
	bc, err := NewBlockchain(args)
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)

	require.NoError(t, bc.PushBlock(newTestBlock(bc), SkipNothing))
	require.NoError(t, bc.Close())

	reopened, err := NewBlockchain(args)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reopened.HeadBlockNum())
	assert.NotNil(t, reopened.WorkingDB().DAO().FindAccountByName(CommitteeAccount))
}

func TestEnvCheck(t *testing.T) {
	store := storage.NewMemoryStore()
	args := OpenArgs{
		Store:         store,
		VM:            &NullExecutor{},
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
	}
	_, err := NewBlockchain(args)
	require.NoError(t, err)

	// Corrupt the version record: open must fail with replay advice.
	require.NoError(t, store.Put([]byte{byte(storage.SYSStateVersion)}, []byte("other-version")))
	_, err = NewBlockchain(args)
	assert.ErrorIs(t, err, ErrEnvCheck)

	// Force open skips the check.
	args.SkipEnvCheck = true
	_, err = NewBlockchain(args)
	require.NoError(t, err)
}

func TestReindexReplaysBlockLog(t *testing.T) {
	store := storage.NewMemoryStore()
	args := OpenArgs{
		Store:         store,
		VM:            &NullExecutor{},
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
		Logger:        zaptest.NewLogger(t),
	}
	bc, err := NewBlockchain(args)
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)

	for i := 0; i < 5; i++ {
		require.NoError(t, bc.PushBlock(newTestBlock(bc), SkipNothing))
	}
	require.NoError(t, bc.Close())

	last, replayed, err := Reindex(args)
	require.NoError(t, err)
	assert.EqualValues(t, 5, last)
	assert.EqualValues(t, 5, replayed.HeadBlockNum())

	// A bounded replay stops early and reports the stop block.
	argsStop := args
	argsStop.StopReplayAt = 3
	last, replayed, err = Reindex(argsStop)
	require.NoError(t, err)
	assert.EqualValues(t, 3, last)
	assert.EqualValues(t, 3, replayed.HeadBlockNum())
}

func TestWipe(t *testing.T) {
	store := storage.NewMemoryStore()
	args := OpenArgs{
		Store:         store,
		VM:            &NullExecutor{},
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
	}
	bc, err := NewBlockchain(args)
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)
	require.NoError(t, bc.PushBlock(newTestBlock(bc), SkipNothing))
	require.NoError(t, bc.Close())

	// A resync wipe drops the block log too.
	require.NoError(t, Wipe(store, true))
	fresh, err := NewBlockchain(args)
	require.NoError(t, err)
	assert.Zero(t, fresh.HeadBlockNum())
	_, err = fresh.GetBlock(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFutureBlockRejected(t *testing.T) {
	bc := newTestChain(t)

	b := newTestBlock(bc)
	b.Timestamp = state.Timestamp(bc.nowFunc().Unix() + 3600)
	b.RebuildMerkleRoot()
	assert.ErrorIs(t, bc.CheckTimeInBlock(b), ErrIngress)

	b.Timestamp = state.Timestamp(bc.nowFunc().Unix())
	require.NoError(t, bc.CheckTimeInBlock(b))
}
