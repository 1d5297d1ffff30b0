package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
)

func newTestWriter(t *testing.T, bc *Blockchain) *Writer {
	w := NewWriter(bc, zaptest.NewLogger(t))
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func TestWriterAcceptBlock(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)
	w := newTestWriter(t, bc)

	tx := newTransferTx(bc, CommitteeAccount, "alice", 50)
	ok, err := w.AcceptBlock(newTestBlock(bc, tx), false, SkipNothing)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, bc.HeadBlockNum())
}

func TestWriterAcceptBlockFutureTime(t *testing.T) {
	bc := newTestChain(t)
	w := newTestWriter(t, bc)

	b := newTestBlock(bc)
	b.Timestamp = state.Timestamp(time.Now().Unix() + 3600)
	_, err := w.AcceptBlock(b, false, SkipNothing)
	assert.ErrorIs(t, err, ErrIngress)
}

func TestWriterAcceptTransaction(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)
	w := newTestWriter(t, bc)

	require.NoError(t, w.AcceptTransaction(newTransferTx(bc, CommitteeAccount, "alice", 10)))

	bc.View(func(db *Database) {
		alice, err := db.GetAccount("alice")
		require.NoError(t, err)
		assert.EqualValues(t, 10, alice.Balance.Amount)
	})
}

func TestWriterFailuresDoNotAbortOthers(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)
	w := newTestWriter(t, bc)

	// A bad transaction fails its own request only.
	err := w.AcceptTransaction(newTransferTx(bc, "ghost", "alice", 10))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.AcceptTransaction(newTransferTx(bc, CommitteeAccount, "alice", 10)))
}

func TestWriterFIFOOrdering(t *testing.T) {
	bc := newTestChain(t)
	newTestAccount(t, bc, "alice", 0)
	w := newTestWriter(t, bc)

	// Alice starts empty: a spend enqueued after the matching deposit must
	// observe it.
	var wg sync.WaitGroup
	deposit := newTransferTx(bc, CommitteeAccount, "alice", 10)
	spend := newTransferTx(bc, "alice", CommitteeAccount, 10)

	depositCxt := newWriteContext()
	depositCxt.Trx = deposit
	spendCxt := newWriteContext()
	spendCxt.Trx = spend
	w.Enqueue(depositCxt)
	w.Enqueue(spendCxt)

	wg.Add(2)
	go func() { defer wg.Done(); _ = depositCxt.Wait() }()
	go func() { defer wg.Done(); _ = spendCxt.Wait() }()
	wg.Wait()

	assert.True(t, depositCxt.Success)
	assert.True(t, spendCxt.Success)
}

func TestGenerateBlockWithoutProducer(t *testing.T) {
	bc := newTestChain(t)
	w := newTestWriter(t, bc)

	_, err := w.GenerateBlock(bc.HeadBlockTime()+BlockIntervalSeconds, InitSiming, nil, SkipNothing)
	assert.ErrorIs(t, err, ErrIngress)
	assert.ErrorContains(t, err, "no block generator")
}

func TestGenerateBlockWithProducer(t *testing.T) {
	bc := newTestChain(t)
	bc.RegisterBlockGenerator("test", SimpleProducer{})
	w := newTestWriter(t, bc)

	key := mustNewKey(t)
	b, err := w.GenerateBlock(bc.HeadBlockTime()+BlockIntervalSeconds, InitSiming, key, SkipNothing)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.EqualValues(t, 1, b.Number)
	assert.True(t, b.VerifySignature(key.PublicKey()))
	assert.EqualValues(t, 1, bc.HeadBlockNum())
}

func TestWriterStop(t *testing.T) {
	bc := newTestChain(t)
	w := NewWriter(bc, zaptest.NewLogger(t))
	w.Start()

	require.NoError(t, w.AcceptTransaction(newTransferTx(bc, CommitteeAccount, CommitteeAccount, 1)))
	w.Stop()

	// Stopping twice is fine.
	w.Stop()

	// A request enqueued after shutdown is never fulfilled.
	cxt := newWriteContext()
	cxt.Trx = newTransferTx(bc, CommitteeAccount, CommitteeAccount, 1)
	w.Enqueue(cxt)
	select {
	case <-cxt.done:
		t.Fatal("request fulfilled after shutdown")
	case <-time.After(50 * time.Millisecond):
	}
}
