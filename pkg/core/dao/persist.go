package dao

import (
	"encoding/binary"
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/io"
)

// entityKey builds the storage key of an entity: prefix byte plus the 8-byte
// big-endian id so that keys sort in id order.
func entityKey(p storage.KeyPrefix, id uint64) []byte {
	key := make([]byte, 9)
	key[0] = byte(p)
	binary.BigEndian.PutUint64(key[1:], id)
	return key
}

func appendEntity(batch *storage.Batch, p storage.KeyPrefix, id uint64, s io.Serializable) error {
	data, err := io.ToByteArray(s)
	if err != nil {
		return err
	}
	batch.Put = append(batch.Put, storage.KeyValue{Key: entityKey(p, id), Value: data})
	return nil
}

// Persist snapshots the whole container to the backing store. Stale entity
// keys are dropped in the same batch so the snapshot is exact.
func (d *Simple) Persist(store storage.Store) error {
	batch := new(storage.Batch)

	prefixes := []storage.KeyPrefix{
		storage.STAccount, storage.STContract, storage.STAccountContractData,
		storage.STNFASymbol, storage.STNFA, storage.STNFABalance,
		storage.STZone, storage.STZoneConnect, storage.STTransaction,
	}
	for _, p := range prefixes {
		err := store.Seek([]byte{byte(p)}, func(k, _ []byte) bool {
			key := make([]byte, len(k))
			copy(key, k)
			batch.Delete = append(batch.Delete, key)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to enumerate stale state: %w", err)
		}
	}

	var err error
	collect := func(p storage.KeyPrefix, id uint64, s io.Serializable) bool {
		err = appendEntity(batch, p, id, s)
		return err == nil
	}
	d.accountsByID.Ascend(func(a *state.Account) bool {
		return collect(storage.STAccount, uint64(a.ID), a)
	})
	if err != nil {
		return err
	}
	d.contractsByID.Ascend(func(c *state.Contract) bool {
		return collect(storage.STContract, uint64(c.ID), c)
	})
	if err != nil {
		return err
	}
	d.acdByKey.Ascend(func(acd *state.AccountContractData) bool {
		return collect(storage.STAccountContractData, uint64(acd.ID), acd)
	})
	if err != nil {
		return err
	}
	d.symbolsBySymbol.Ascend(func(s *state.NFASymbol) bool {
		return collect(storage.STNFASymbol, uint64(s.ID), s)
	})
	if err != nil {
		return err
	}
	d.nfasByID.Ascend(func(n *state.NFA) bool {
		return collect(storage.STNFA, uint64(n.ID), n)
	})
	if err != nil {
		return err
	}
	d.balancesByKey.Ascend(func(b *state.NFARegularBalance) bool {
		return collect(storage.STNFABalance, uint64(b.ID), b)
	})
	if err != nil {
		return err
	}
	d.zonesByID.Ascend(func(z *state.Zone) bool {
		return collect(storage.STZone, uint64(z.ID), z)
	})
	if err != nil {
		return err
	}
	d.connectsByFromTo.Ascend(func(c *state.ZoneConnect) bool {
		return collect(storage.STZoneConnect, uint64(c.ID), c)
	})
	if err != nil {
		return err
	}
	d.txsByTrxID.Ascend(func(tx *state.TransactionObject) bool {
		return collect(storage.STTransaction, uint64(tx.ID), tx)
	})
	if err != nil {
		return err
	}

	props, err := io.ToByteArray(d.props)
	if err != nil {
		return err
	}
	batch.Put = append(batch.Put, storage.KeyValue{
		Key: []byte{byte(storage.SYSGlobalProperties)}, Value: props,
	})
	tiandao, err := io.ToByteArray(d.tiandao)
	if err != nil {
		return err
	}
	batch.Put = append(batch.Put, storage.KeyValue{
		Key: []byte{byte(storage.SYSTiandaoProperties)}, Value: tiandao,
	})
	batch.Put = append(batch.Put, storage.KeyValue{
		Key: []byte{byte(storage.SYSSequences)}, Value: d.seq.bytes(),
	})

	return store.PutBatch(*batch)
}

// Restore rebuilds the container from a snapshot taken with Persist.
func (d *Simple) Restore(store storage.Store) error {
	fresh := NewSimple()

	restore := func(p storage.KeyPrefix, insert func(data []byte) error) error {
		var err error
		seekErr := store.Seek([]byte{byte(p)}, func(_, v []byte) bool {
			err = insert(v)
			return err == nil
		})
		if seekErr != nil {
			return seekErr
		}
		return err
	}

	if err := restore(storage.STAccount, func(data []byte) error {
		a := new(state.Account)
		if err := io.FromByteArray(a, data); err != nil {
			return err
		}
		fresh.accountsByID.ReplaceOrInsert(a)
		fresh.accountsByName.ReplaceOrInsert(a)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STContract, func(data []byte) error {
		c := new(state.Contract)
		if err := io.FromByteArray(c, data); err != nil {
			return err
		}
		fresh.contractsByID.ReplaceOrInsert(c)
		fresh.contractsByName.ReplaceOrInsert(c)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STAccountContractData, func(data []byte) error {
		acd := new(state.AccountContractData)
		if err := io.FromByteArray(acd, data); err != nil {
			return err
		}
		fresh.acdByKey.ReplaceOrInsert(acd)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STNFASymbol, func(data []byte) error {
		s := new(state.NFASymbol)
		if err := io.FromByteArray(s, data); err != nil {
			return err
		}
		fresh.symbolsBySymbol.ReplaceOrInsert(s)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STNFA, func(data []byte) error {
		n := new(state.NFA)
		if err := io.FromByteArray(n, data); err != nil {
			return err
		}
		fresh.nfasByID.ReplaceOrInsert(n)
		fresh.nfasByTick.ReplaceOrInsert(n)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STNFABalance, func(data []byte) error {
		b := new(state.NFARegularBalance)
		if err := io.FromByteArray(b, data); err != nil {
			return err
		}
		fresh.balancesByKey.ReplaceOrInsert(b)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STZone, func(data []byte) error {
		z := new(state.Zone)
		if err := io.FromByteArray(z, data); err != nil {
			return err
		}
		fresh.zonesByID.ReplaceOrInsert(z)
		fresh.zonesByName.ReplaceOrInsert(z)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STZoneConnect, func(data []byte) error {
		c := new(state.ZoneConnect)
		if err := io.FromByteArray(c, data); err != nil {
			return err
		}
		fresh.connectsByFromTo.ReplaceOrInsert(c)
		fresh.connectsByToFrom.ReplaceOrInsert(c)
		return nil
	}); err != nil {
		return err
	}
	if err := restore(storage.STTransaction, func(data []byte) error {
		tx := new(state.TransactionObject)
		if err := io.FromByteArray(tx, data); err != nil {
			return err
		}
		fresh.txsByTrxID.ReplaceOrInsert(tx)
		fresh.txsByExpiration.ReplaceOrInsert(tx)
		return nil
	}); err != nil {
		return err
	}

	if data, err := store.Get([]byte{byte(storage.SYSGlobalProperties)}); err == nil {
		if err := io.FromByteArray(fresh.props, data); err != nil {
			return err
		}
	} else if err != storage.ErrKeyNotFound {
		return err
	}
	if data, err := store.Get([]byte{byte(storage.SYSTiandaoProperties)}); err == nil {
		if err := io.FromByteArray(fresh.tiandao, data); err != nil {
			return err
		}
	} else if err != storage.ErrKeyNotFound {
		return err
	}
	if data, err := store.Get([]byte{byte(storage.SYSSequences)}); err == nil {
		if err := fresh.seq.fromBytes(data); err != nil {
			return err
		}
	} else if err != storage.ErrKeyNotFound {
		return err
	}

	d.Replace(fresh)
	return nil
}

func (s *sequences) bytes() []byte {
	buf := make([]byte, 9*8)
	for i, v := range []uint64{
		s.account, s.contract, s.acd, s.symbol, s.nfa,
		s.balance, s.zone, s.connect, s.txobj,
	} {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func (s *sequences) fromBytes(b []byte) error {
	if len(b) != 9*8 {
		return fmt.Errorf("invalid sequence record length %d", len(b))
	}
	dst := []*uint64{
		&s.account, &s.contract, &s.acd, &s.symbol, &s.nfa,
		&s.balance, &s.zone, &s.connect, &s.txobj,
	}
	for i, p := range dst {
		*p = binary.LittleEndian.Uint64(b[i*8:])
	}
	return nil
}
