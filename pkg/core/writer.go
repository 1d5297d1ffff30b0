package core

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/core/block"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
)

// Write pipeline defaults.
const (
	writeQueueSize = 1024
	// defaultWriteLockHoldTime bounds one live-mode batch.
	defaultWriteLockHoldTime = 500 * time.Millisecond
	// liveModeSleep is the inter-batch yield in live mode.
	liveModeSleep = 10 * time.Millisecond
	// syncExitThreshold: sync mode ends when the head block is this close to
	// the wall clock.
	syncExitThreshold = time.Minute
)

var (
	writerBlocksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taiyi",
		Name:      "writer_blocks_total",
		Help:      "Number of blocks processed by the write pipeline.",
	})
	writerTrxProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taiyi",
		Name:      "writer_transactions_total",
		Help:      "Number of transactions processed by the write pipeline.",
	})
	writerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taiyi",
		Name:      "writer_failures_total",
		Help:      "Number of write requests that failed.",
	})
	writerQueueLen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taiyi",
		Name:      "writer_queue_length",
		Help:      "Number of write requests waiting in the queue.",
	})
)

// GenerateBlockRequest asks the registered producer for a new block.
type GenerateBlockRequest struct {
	When       state.Timestamp
	Siming     string
	SigningKey *keys.PrivateKey
	Skip       ValidationSteps

	// Block receives the produced block.
	Block *block.Block
}

// WriteContext is one queued write request: exactly one of Block, Trx and
// Generate is set. The caller owns the context and must keep it alive until
// Wait returns; the writer stores the outcome into Success/Err and closes
// the done channel.
type WriteContext struct {
	ID uuid.UUID

	Block *block.Block
	Skip  ValidationSteps

	Trx *transaction.Transaction

	Generate *GenerateBlockRequest

	Success bool
	Err     error

	done chan struct{}
}

// newWriteContext preps an empty request.
func newWriteContext() *WriteContext {
	return &WriteContext{
		ID:   uuid.New(),
		done: make(chan struct{}),
	}
}

// Wait blocks until the writer has fulfilled the request. It never returns
// if the writer shut down before picking the request up; observe shutdown
// externally.
func (c *WriteContext) Wait() error {
	<-c.done
	if c.Err != nil {
		return c.Err
	}
	if !c.Success {
		return fmt.Errorf("%w: write request failed", ErrIngress)
	}
	return nil
}

// Writer is the single writer thread: it drains the write queue in batches
// under the exclusive write lock. In sync mode (head far behind the wall
// clock) it busy-waits and drains greedily; in live mode it holds the lock
// for at most the configured window, then yields to readers.
type Writer struct {
	bc  *Blockchain
	log *zap.Logger

	queue    chan *WriteContext
	holdTime time.Duration

	running atomic.Bool
	done    chan struct{}
}

// NewWriter makes a Writer over the given chain.
func NewWriter(bc *Blockchain, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		bc:       bc,
		log:      log,
		queue:    make(chan *WriteContext, writeQueueSize),
		holdTime: defaultWriteLockHoldTime,
		done:     make(chan struct{}),
	}
}

// SetWriteLockHoldTime adjusts the live-mode batch window. A negative value
// disables the limit. Call before Start.
func (w *Writer) SetWriteLockHoldTime(d time.Duration) {
	w.holdTime = d
}

// Start launches the write processing loop.
func (w *Writer) Start() {
	w.running.Store(true)
	go w.run()
}

// Stop signals the writer to finish its current batch and exit, then waits
// for it. Requests still in the queue are never fulfilled.
func (w *Writer) Stop() {
	if w.running.CompareAndSwap(true, false) {
		<-w.done
	}
}

// Enqueue pushes a request into the write queue.
func (w *Writer) Enqueue(cxt *WriteContext) {
	w.queue <- cxt
	writerQueueLen.Set(float64(len(w.queue)))
}

// pop takes the next request without blocking.
func (w *Writer) pop() (*WriteContext, bool) {
	select {
	case cxt := <-w.queue:
		writerQueueLen.Set(float64(len(w.queue)))
		return cxt, true
	default:
		return nil, false
	}
}

// run is the write processing loop. The two modes follow the head block age:
// while syncing the loop busy-waits the queue and drains it as fast as it
// can; once the head is close to the wall clock it batches writes under the
// lock for at most holdTime and then sleeps to let readers in.
func (w *Writer) run() {
	defer close(w.done)

	isSyncing := true
	for w.running.Load() {
		cxt, ok := w.pop()
		if !ok {
			if isSyncing {
				runtime.Gosched()
			} else {
				time.Sleep(liveModeSleep)
			}
			continue
		}

		w.bc.lock.Lock()
		w.bc.onWriter.Store(true)
		start := time.Now()
		for {
			w.process(cxt)

			if isSyncing && time.Since(time.Unix(int64(w.bc.db.HeadBlockTime()), 0)) < syncExitThreshold {
				start = time.Now()
				isSyncing = false
			}
			if !isSyncing && w.holdTime >= 0 && time.Since(start) > w.holdTime {
				break
			}
			if cxt, ok = w.pop(); !ok {
				break
			}
		}
		w.bc.onWriter.Store(false)
		w.bc.lock.Unlock()

		if !isSyncing {
			time.Sleep(liveModeSleep)
		}
	}
}

// process applies one request and fulfills its promise. Failures are stored
// in the context, they never stop the loop.
func (w *Writer) process(cxt *WriteContext) {
	defer close(cxt.done)

	switch {
	case cxt.Block != nil:
		cxt.Err = w.bc.PushBlock(cxt.Block, cxt.Skip)
		cxt.Success = cxt.Err == nil
		if cxt.Success {
			writerBlocksProcessed.Inc()
		}
	case cxt.Trx != nil:
		cxt.Err = w.bc.PushTransaction(cxt.Trx)
		cxt.Success = cxt.Err == nil
		if cxt.Success {
			writerTrxProcessed.Inc()
		}
	case cxt.Generate != nil:
		cxt.Err = w.generateBlock(cxt.Generate)
		cxt.Success = cxt.Err == nil
	default:
		cxt.Err = fmt.Errorf("%w: empty write request", ErrIngress)
	}
	if cxt.Err != nil {
		writerFailures.Inc()
		w.log.Debug("write request failed",
			zap.String("id", cxt.ID.String()),
			zap.Error(cxt.Err))
	}
}

// generateBlock runs the registered producer under the already-held write
// lock.
func (w *Writer) generateBlock(req *GenerateBlockRequest) error {
	producer := w.bc.blockGenerator()
	if producer == nil {
		return fmt.Errorf("%w: %s", ErrIngress, ErrNoGenerator)
	}
	b, err := producer.GenerateBlock(w.bc, req.When, req.Siming, req.SigningKey, req.Skip)
	if err != nil {
		return err
	}
	req.Block = b
	return nil
}

// AcceptBlock enqueues a block and waits for the writer's verdict.
func (w *Writer) AcceptBlock(b *block.Block, currentlySyncing bool, skip ValidationSteps) (bool, error) {
	if currentlySyncing && b.Number%10000 == 0 {
		w.log.Info("syncing blockchain",
			zap.Uint32("block", b.Number),
			zap.Uint32("time", uint32(b.Timestamp)),
			zap.String("producer", b.Siming))
	}
	if err := w.bc.CheckTimeInBlock(b); err != nil {
		return false, err
	}

	cxt := newWriteContext()
	cxt.Block = b
	cxt.Skip = skip
	w.Enqueue(cxt)

	err := cxt.Wait()
	return cxt.Success, err
}

// AcceptTransaction enqueues a transaction and waits for the writer's
// verdict.
func (w *Writer) AcceptTransaction(tx *transaction.Transaction) error {
	cxt := newWriteContext()
	cxt.Trx = tx
	w.Enqueue(cxt)
	return cxt.Wait()
}

// GenerateBlock enqueues a block production request and waits for the block.
func (w *Writer) GenerateBlock(when state.Timestamp, siming string, signingKey *keys.PrivateKey, skip ValidationSteps) (*block.Block, error) {
	cxt := newWriteContext()
	cxt.Generate = &GenerateBlockRequest{
		When:       when,
		Siming:     siming,
		SigningKey: signingKey,
		Skip:       skip,
	}
	w.Enqueue(cxt)
	if err := cxt.Wait(); err != nil {
		return nil, err
	}
	return cxt.Generate.Block, nil
}
