package dao

import (
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// CreateTransactionObject records an applied transaction for duplicate
// detection.
func (d *Simple) CreateTransactionObject(init func(*state.TransactionObject)) *state.TransactionObject {
	d.seq.txobj++
	tx := &state.TransactionObject{ID: state.TransactionID(d.seq.txobj)}
	init(tx)
	d.txsByTrxID.ReplaceOrInsert(tx)
	d.txsByExpiration.ReplaceOrInsert(tx)
	return tx
}

// FindTransactionObject returns the recorded transaction with the given id
// or nil.
func (d *Simple) FindTransactionObject(trxID util.Uint256) *state.TransactionObject {
	tx, ok := d.txsByTrxID.Get(&state.TransactionObject{TrxID: trxID})
	if !ok {
		return nil
	}
	return tx
}

// RemoveTransactionObject evicts the record from all indexes.
func (d *Simple) RemoveTransactionObject(tx *state.TransactionObject) {
	d.txsByTrxID.Delete(tx)
	d.txsByExpiration.Delete(tx)
}

// PurgeExpiredTransactions removes all records whose expiration is not after
// now and returns the number removed.
func (d *Simple) PurgeExpiredTransactions(now state.Timestamp) int {
	var expired []*state.TransactionObject
	d.txsByExpiration.Ascend(func(tx *state.TransactionObject) bool {
		if tx.Expiration > now {
			return false
		}
		expired = append(expired, tx)
		return true
	})
	for _, tx := range expired {
		d.RemoveTransactionObject(tx)
	}
	return len(expired)
}

// TransactionObjectCount returns the number of recorded transactions.
func (d *Simple) TransactionObjectCount() int {
	return d.txsByTrxID.Len()
}

// AscendTransactionObjects walks the records in trx-id order until f returns
// false.
func (d *Simple) AscendTransactionObjects(f func(*state.TransactionObject) bool) {
	d.txsByTrxID.Ascend(f)
}
