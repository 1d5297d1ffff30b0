package core

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/core/block"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// stateVersion is bumped whenever the persisted state layout changes; a
// mismatch on open demands a replay.
const stateVersion = "taiyi-state-1"

// headerCacheSize is the number of recent block ids kept in memory.
const headerCacheSize = 1024

// Errors returned by block and transaction admission.
var (
	ErrFutureBlock        = errors.New("block timestamp too far in the future")
	ErrNoGenerator        = errors.New("received a generate block request, but no block generator has been registered")
	ErrDuplicateTrx       = errors.New("duplicate transaction")
	ErrEnvCheck           = errors.New("state storage was written by another version")
	ErrCheckpointMismatch = errors.New("block does not match checkpoint")
)

// BlockProducer generates blocks on request. Only one implementation may be
// registered at a time.
type BlockProducer interface {
	GenerateBlock(bc *Blockchain, when state.Timestamp, siming string,
		signingKey *keys.PrivateKey, skip ValidationSteps) (*block.Block, error)
}

// OpenArgs collects the boot options of the chain state.
type OpenArgs struct {
	// Store is the backing KV store for snapshots and the block log.
	Store storage.Store
	// VM is the script executor oracle.
	VM VMExecutor
	// ChainID identifies the network.
	ChainID util.Uint256
	// InitialSupply is the YANG issued at genesis.
	InitialSupply int64
	// GenesisTime stamps the genesis state.
	GenesisTime state.Timestamp

	// SkipEnvCheck opens the state even if it was written by another
	// version (--force-open).
	SkipEnvCheck bool
	// CheckLocks enables runtime assertions that mutations happen on the
	// writer thread only.
	CheckLocks bool
	// DumpMemoryDetails includes per-index item counts in benchmark
	// measurements.
	DumpMemoryDetails bool
	// ReplayInMemory suppresses intermediate state flushes during replay;
	// ReplayMemoryIndices is only logged by Reindex; it narrows nothing, as the
	// dao keeps every index in memory.
	ReplayInMemory      bool
	ReplayMemoryIndices []string
	// DoValidateInvariants runs the supply invariants after every block.
	DoValidateInvariants bool
	// StopReplayAt bounds a replay, zero meaning no bound.
	StopReplayAt uint32
	// FlushInterval snapshots state every N blocks.
	FlushInterval uint32
	// AllowFutureTimeSeconds is the admission window for block timestamps.
	AllowFutureTimeSeconds int64
	// Checkpoints maps block numbers to required block ids.
	Checkpoints map[uint32]util.Uint256
	// Benchmark, if non-nil, is invoked every BenchmarkInterval blocks.
	Benchmark         BenchmarkCallback
	BenchmarkInterval uint32

	Logger *zap.Logger
}

// BenchmarkCallback receives performance measurements during block
// processing.
type BenchmarkCallback func(blockNum uint32, m Measurement)

// Blockchain is the chain state machine: it owns the entity container, the
// block log and the single write lock, and applies blocks and transactions
// deterministically.
type Blockchain struct {
	lock sync.RWMutex

	store storage.Store
	db    *Database
	log   *zap.Logger

	flushInterval        uint32
	allowFutureTime      int64
	doValidateInvariants bool
	checkLocks           bool
	dumpMemoryDetails    bool
	checkpoints          map[uint32]util.Uint256

	// onWriter is raised by the writer thread around its batches; the
	// --check-locks assertions test it.
	onWriter atomic.Bool

	benchmark         BenchmarkCallback
	benchmarkInterval uint32
	benchClock        *benchClock

	idCache *lru.Cache

	generatorMtx sync.Mutex
	generator    BlockProducer
	registrant   string

	nowFunc func() time.Time
}

// NewBlockchain opens (or initializes) the chain state over the given store.
func NewBlockchain(args OpenArgs) (*Blockchain, error) {
	log := args.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if args.FlushInterval == 0 {
		args.FlushInterval = 10000
	}
	if args.AllowFutureTimeSeconds == 0 {
		args.AllowFutureTimeSeconds = 5
	}

	idCache, err := lru.New(headerCacheSize)
	if err != nil {
		return nil, err
	}
	bc := &Blockchain{
		store:                args.Store,
		db:                   NewDatabase(args.VM, args.ChainID, log),
		log:                  log,
		flushInterval:        args.FlushInterval,
		allowFutureTime:      args.AllowFutureTimeSeconds,
		doValidateInvariants: args.DoValidateInvariants,
		checkLocks:           args.CheckLocks,
		dumpMemoryDetails:    args.DumpMemoryDetails,
		checkpoints:          args.Checkpoints,
		benchmark:            args.Benchmark,
		benchmarkInterval:    args.BenchmarkInterval,
		benchClock:           newBenchClock(),
		idCache:              idCache,
		nowFunc:              time.Now,
	}

	versionKey := []byte{byte(storage.SYSStateVersion)}
	stored, err := args.Store.Get(versionKey)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		// Fresh or wiped state: initialize genesis.
		if err := bc.db.InitGenesisState(args.InitialSupply, args.GenesisTime); err != nil {
			return nil, err
		}
		if err := args.Store.Put(versionKey, []byte(stateVersion)); err != nil {
			return nil, err
		}
		if err := bc.db.DAO().Persist(args.Store); err != nil {
			return nil, err
		}
		log.Info("initialized fresh chain state")
	case err != nil:
		return nil, err
	default:
		if string(stored) != stateVersion && !args.SkipEnvCheck {
			return nil, fmt.Errorf("%w (%q): replay the blockchain explicitly using `--replay-blockchain` "+
				"or force open at your own risk using `--force-open`", ErrEnvCheck, string(stored))
		}
		if err := bc.db.DAO().Restore(args.Store); err != nil {
			return nil, err
		}
		log.Info("opened chain state",
			zap.Uint32("head", bc.db.HeadBlockNum()))
	}
	return bc, nil
}

// HeadBlockNum returns the current chain height.
func (bc *Blockchain) HeadBlockNum() uint32 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.db.HeadBlockNum()
}

// HeadBlockTime returns the current head block timestamp.
func (bc *Blockchain) HeadBlockTime() state.Timestamp {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.db.HeadBlockTime()
}

// View runs f under the shared read lock.
func (bc *Blockchain) View(f func(db *Database)) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	f(bc.db)
}

// SetSkipFlags adjusts the validation skip flags of the state machine.
func (bc *Blockchain) SetSkipFlags(flags ValidationSteps) {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	bc.db.SetSkipFlags(flags)
}

// RegisterBlockGenerator installs the block producer. A second registration
// overrides the first with a warning.
func (bc *Blockchain) RegisterBlockGenerator(registrant string, producer BlockProducer) {
	bc.generatorMtx.Lock()
	defer bc.generatorMtx.Unlock()
	if bc.generator != nil {
		bc.log.Warn("overriding a previously registered block generator",
			zap.String("registrant", bc.registrant))
	}
	bc.registrant = registrant
	bc.generator = producer
}

// blockGenerator returns the registered producer, if any.
func (bc *Blockchain) blockGenerator() BlockProducer {
	bc.generatorMtx.Lock()
	defer bc.generatorMtx.Unlock()
	return bc.generator
}

// CheckTimeInBlock enforces the admission window on block timestamps.
func (bc *Blockchain) CheckTimeInBlock(b *block.Block) error {
	maxAccept := bc.nowFunc().Unix() + bc.allowFutureTime
	if int64(b.Timestamp) > maxAccept {
		return fmt.Errorf("%w: %d > %d: %s", ErrIngress, b.Timestamp, maxAccept, ErrFutureBlock)
	}
	return nil
}

// blockKey builds the block log key for the given number.
func blockKey(num uint32) []byte {
	key := make([]byte, 5)
	key[0] = byte(storage.SYSBlock)
	binary.BigEndian.PutUint32(key[1:], num)
	return key
}

// storeBlock appends the block to the block log.
func (bc *Blockchain) storeBlock(b *block.Block) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := bc.store.Put(blockKey(b.Number), data); err != nil {
		return err
	}
	head := make([]byte, 4)
	binary.BigEndian.PutUint32(head, b.Number)
	return bc.store.Put([]byte{byte(storage.SYSCurrentBlock)}, head)
}

// GetBlock reads a block from the block log.
func (bc *Blockchain) GetBlock(num uint32) (*block.Block, error) {
	data, err := bc.store.Get(blockKey(num))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: block %d", ErrNotFound, num)
		}
		return nil, err
	}
	b := new(block.Block)
	if err := io.FromByteArray(b, data); err != nil {
		return nil, err
	}
	return b, nil
}

// blockLogHeight returns the highest block number in the block log.
func (bc *Blockchain) blockLogHeight() (uint32, error) {
	data, err := bc.store.Get([]byte{byte(storage.SYSCurrentBlock)})
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

// assertWriteLocking enforces --check-locks: every mutation must originate
// on the writer thread.
func (bc *Blockchain) assertWriteLocking() error {
	if bc.checkLocks && !bc.onWriter.Load() {
		return fmt.Errorf("%w: state mutation outside of the writer thread", ErrIngress)
	}
	return nil
}

// PushBlock validates and applies a block under the write lock. Held by the
// writer thread only.
func (bc *Blockchain) PushBlock(b *block.Block, skip ValidationSteps) error {
	if err := bc.assertWriteLocking(); err != nil {
		return err
	}
	props := bc.db.DAO().GlobalProperties()
	expectedNum := props.HeadBlockNumber + 1
	if b.Number != expectedNum {
		return fmt.Errorf("%w: unlinkable block %d, expected %d", ErrIngress, b.Number, expectedNum)
	}
	if props.HeadBlockNumber > 0 && !b.PrevID.Equals(props.HeadBlockID) {
		return fmt.Errorf("%w: block %d does not link to the head block", ErrIngress, b.Number)
	}
	if b.Timestamp < props.Time {
		return fmt.Errorf("%w: block %d is older than the head block", ErrIngress, b.Number)
	}
	if id, ok := bc.checkpoints[b.Number]; ok && !b.ID().Equals(id) {
		return fmt.Errorf("%w: block %d has id %s, checkpoint demands %s",
			ErrCheckpointMismatch, b.Number, b.ID().StringLE(), id.StringLE())
	}
	if skip&SkipValidation == 0 {
		if want := b.ComputeMerkleRoot(); !want.Equals(b.MerkleRoot) {
			return fmt.Errorf("%w: block %d merkle root mismatch", ErrIngress, b.Number)
		}
	}

	work := bc.db.Clone()
	work.SetSkipFlags(bc.db.SkipFlags() | skip)
	work.DAO().ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.HeadBlockNumber = b.Number
		p.HeadBlockID = b.ID()
		p.Time = b.Timestamp
	})

	for _, tx := range b.Transactions {
		if err := work.applyTransaction(tx); err != nil {
			return fmt.Errorf("block %d: %w", b.Number, err)
		}
	}

	work.ProcessNFATick()
	work.DAO().PurgeExpiredTransactions(b.Timestamp)

	if bc.doValidateInvariants {
		if err := work.ValidateInvariants(); err != nil {
			return err
		}
	}

	if err := bc.storeBlock(b); err != nil {
		return err
	}
	bc.db.Replace(work)
	bc.idCache.Add(b.Number, b.ID())

	if bc.flushInterval > 0 && b.Number%bc.flushInterval == 0 {
		if err := bc.Flush(); err != nil {
			return err
		}
	}
	if bc.benchmark != nil && bc.benchmarkInterval > 0 && b.Number%bc.benchmarkInterval == 0 {
		bc.benchmark(b.Number, bc.benchClock.measure(bc.db, bc.dumpMemoryDetails))
	}
	return nil
}

// applyTransaction applies a transaction against the working view, recording
// it for duplicate detection.
func (db *Database) applyTransaction(tx *transaction.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	now := db.dao.HeadBlockTime()
	if tx.Expiration <= now {
		return fmt.Errorf("%w: transaction %s is expired", ErrValidation, tx.Hash().StringLE())
	}
	if tx.Expiration > now+MaxTransactionExpirationSeconds {
		return fmt.Errorf("%w: transaction %s expiration is too far in the future", ErrValidation, tx.Hash().StringLE())
	}
	if db.skipFlags&SkipTransactionDupeCheck == 0 {
		if dup := db.dao.FindTransactionObject(tx.Hash()); dup != nil {
			return fmt.Errorf("%w: %s: %s", ErrIngress, ErrDuplicateTrx, tx.Hash().StringLE())
		}
	}

	var (
		sigkeys []*keys.PublicKey
		err     error
	)
	if db.skipFlags&SkipTransactionSignatures == 0 {
		sigkeys, err = tx.GetSignatureKeys()
		if err != nil {
			return fmt.Errorf("%w: cannot recover signature keys: %s", ErrValidation, err)
		}
	}

	for _, op := range tx.Operations {
		if _, err := db.ApplyOperation(op, sigkeys); err != nil {
			return err
		}
	}

	packed, err := tx.Bytes()
	if err != nil {
		return err
	}
	db.dao.CreateTransactionObject(func(obj *state.TransactionObject) {
		obj.PackedTrx = packed
		obj.TrxID = tx.Hash()
		obj.Expiration = tx.Expiration
	})
	return nil
}

// PushTransaction applies a transaction to the head state under the write
// lock. Held by the writer thread only.
func (bc *Blockchain) PushTransaction(tx *transaction.Transaction) error {
	if err := bc.assertWriteLocking(); err != nil {
		return err
	}
	work := bc.db.Clone()
	if err := work.applyTransaction(tx); err != nil {
		return err
	}
	bc.db.Replace(work)
	return nil
}

// Flush snapshots the state container to the backing store.
func (bc *Blockchain) Flush() error {
	return bc.db.DAO().Persist(bc.store)
}

// Close flushes and releases the chain state. The store itself is owned by
// the caller.
func (bc *Blockchain) Close() error {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	return bc.Flush()
}

// Wipe removes all state and optionally the block log (resync).
func Wipe(store storage.Store, includeBlockLog bool) error {
	var keys [][]byte
	err := store.Seek(nil, func(k, _ []byte) bool {
		if !includeBlockLog {
			switch storage.KeyPrefix(k[0]) {
			case storage.SYSBlock, storage.SYSCurrentBlock:
				return true
			}
		}
		key := make([]byte, len(k))
		copy(key, k)
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return err
	}
	return store.PutBatch(storage.Batch{Delete: keys})
}

// Reindex wipes the state (keeping the block log) and re-applies every block
// from the log. It returns the number of the last applied block. When
// args.StopReplayAt is non-zero the replay ends there.
func Reindex(args OpenArgs) (uint32, *Blockchain, error) {
	log := args.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := Wipe(args.Store, false); err != nil {
		return 0, nil, err
	}
	bc, err := NewBlockchain(args)
	if err != nil {
		return 0, nil, err
	}

	if args.ReplayInMemory {
		// State stays in RAM for the whole replay, one snapshot at the end.
		bc.flushInterval = 0
		if len(args.ReplayMemoryIndices) > 0 {
			log.Info("replaying with in-memory indices",
				zap.Strings("indices", args.ReplayMemoryIndices))
		}
	}

	height, err := bc.blockLogHeight()
	if err != nil {
		return 0, nil, err
	}
	target := height
	if args.StopReplayAt > 0 && args.StopReplayAt < target {
		target = args.StopReplayAt
	}
	log.Info("replaying blockchain", zap.Uint32("blocks", target))

	// Replay runs before the writer starts, mark the thread as the writer.
	bc.onWriter.Store(true)
	defer bc.onWriter.Store(false)

	var last uint32
	for num := uint32(1); num <= target; num++ {
		b, err := bc.GetBlock(num)
		if err != nil {
			return last, bc, err
		}
		err = bc.PushBlock(b, SkipTransactionSignatures|SkipSimingSignature)
		if err != nil {
			return last, bc, fmt.Errorf("replay stopped at block %d: %w", num, err)
		}
		last = num
	}
	if err := bc.Flush(); err != nil {
		return last, bc, err
	}
	log.Info("replay finished", zap.Uint32("head", last))
	return last, bc, nil
}

// IsKnownBlock reports whether the block id is the recorded id for its
// number.
func (bc *Blockchain) IsKnownBlock(num uint32, id util.Uint256) bool {
	if cached, ok := bc.idCache.Get(num); ok {
		return bytes.Equal(cached.(util.Uint256).BytesLE(), id.BytesLE())
	}
	b, err := bc.GetBlock(num)
	if err != nil {
		return false
	}
	return b.ID().Equals(id)
}
