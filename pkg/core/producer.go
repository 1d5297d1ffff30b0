package core

import (
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/block"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
)

// WorkingDB returns the database view for use on the writer thread while it
// holds the write lock. Not safe for any other use.
func (bc *Blockchain) WorkingDB() *Database {
	return bc.db
}

// SimpleProducer builds, signs and applies empty blocks on request. Real
// producers schedule pending transactions; this one keeps the chain moving
// and backs the tests.
type SimpleProducer struct{}

// GenerateBlock implements the BlockProducer interface. It runs on the
// writer thread under the write lock.
func (SimpleProducer) GenerateBlock(bc *Blockchain, when state.Timestamp, siming string,
	signingKey *keys.PrivateKey, skip ValidationSteps) (*block.Block, error) {
	db := bc.WorkingDB()
	props := db.DAO().GlobalProperties()
	if when <= props.Time && props.HeadBlockNumber > 0 {
		return nil, fmt.Errorf("%w: generation time is not after the head block", ErrIngress)
	}

	b := &block.Block{
		Header: block.Header{
			PrevID:    props.HeadBlockID,
			Number:    props.HeadBlockNumber + 1,
			Timestamp: when,
			Siming:    siming,
		},
	}
	b.RebuildMerkleRoot()
	if signingKey != nil {
		b.Sign(signingKey)
	}

	if err := bc.PushBlock(b, skip); err != nil {
		return nil, err
	}
	return b, nil
}
