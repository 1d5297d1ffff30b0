package dao

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/btree"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
)

// btreeDegree is the branching factor of all index trees.
const btreeDegree = 16

// ErrNotFound is returned by all Get* methods when the requested entity does
// not exist.
var ErrNotFound = errors.New("entity not found")

// Simple is the in-memory multi-index entity container. Every collection has
// a primary index ordered by id plus the secondary indexes the entity type
// declares. Indexes hold shared pointers: entities must never be mutated in
// place, all changes go through the Modify* methods which copy, update and
// reinsert so that clones taken earlier stay intact.
//
// Clone is a cheap copy-on-write snapshot; a per-request transaction is a
// Clone that either replaces the parent's trees on commit or is dropped on
// error.
type Simple struct {
	accountsByID   *btree.BTreeG[*state.Account]
	accountsByName *btree.BTreeG[*state.Account]

	contractsByID   *btree.BTreeG[*state.Contract]
	contractsByName *btree.BTreeG[*state.Contract]

	acdByKey *btree.BTreeG[*state.AccountContractData]

	symbolsBySymbol *btree.BTreeG[*state.NFASymbol]

	nfasByID   *btree.BTreeG[*state.NFA]
	nfasByTick *btree.BTreeG[*state.NFA]

	balancesByKey *btree.BTreeG[*state.NFARegularBalance]

	zonesByID   *btree.BTreeG[*state.Zone]
	zonesByName *btree.BTreeG[*state.Zone]

	connectsByFromTo *btree.BTreeG[*state.ZoneConnect]
	connectsByToFrom *btree.BTreeG[*state.ZoneConnect]

	txsByTrxID      *btree.BTreeG[*state.TransactionObject]
	txsByExpiration *btree.BTreeG[*state.TransactionObject]

	props   *state.GlobalProperties
	tiandao *state.TiandaoProperties

	seq sequences
}

// sequences holds the next-id counters, one per collection. Ids are never
// reused.
type sequences struct {
	account  uint64
	contract uint64
	acd      uint64
	symbol   uint64
	nfa      uint64
	balance  uint64
	zone     uint64
	connect  uint64
	txobj    uint64
}

// NewSimple creates an empty container.
func NewSimple() *Simple {
	return &Simple{
		accountsByID: btree.NewG(btreeDegree, func(a, b *state.Account) bool {
			return a.ID < b.ID
		}),
		accountsByName: btree.NewG(btreeDegree, func(a, b *state.Account) bool {
			return a.Name < b.Name
		}),
		contractsByID: btree.NewG(btreeDegree, func(a, b *state.Contract) bool {
			return a.ID < b.ID
		}),
		contractsByName: btree.NewG(btreeDegree, func(a, b *state.Contract) bool {
			return a.Name < b.Name
		}),
		acdByKey: btree.NewG(btreeDegree, func(a, b *state.AccountContractData) bool {
			if a.Owner != b.Owner {
				return a.Owner < b.Owner
			}
			return a.Contract < b.Contract
		}),
		symbolsBySymbol: btree.NewG(btreeDegree, func(a, b *state.NFASymbol) bool {
			return a.Symbol < b.Symbol
		}),
		nfasByID: btree.NewG(btreeDegree, func(a, b *state.NFA) bool {
			return a.ID < b.ID
		}),
		nfasByTick: btree.NewG(btreeDegree, func(a, b *state.NFA) bool {
			if a.NextTickTime != b.NextTickTime {
				return a.NextTickTime < b.NextTickTime
			}
			return a.ID < b.ID
		}),
		balancesByKey: btree.NewG(btreeDegree, func(a, b *state.NFARegularBalance) bool {
			if a.NFA != b.NFA {
				return a.NFA < b.NFA
			}
			return a.Liquid.Symbol.AssetNum < b.Liquid.Symbol.AssetNum
		}),
		zonesByID: btree.NewG(btreeDegree, func(a, b *state.Zone) bool {
			return a.ID < b.ID
		}),
		zonesByName: btree.NewG(btreeDegree, func(a, b *state.Zone) bool {
			return a.Name < b.Name
		}),
		connectsByFromTo: btree.NewG(btreeDegree, func(a, b *state.ZoneConnect) bool {
			if a.From != b.From {
				return a.From < b.From
			}
			return a.To < b.To
		}),
		connectsByToFrom: btree.NewG(btreeDegree, func(a, b *state.ZoneConnect) bool {
			if a.To != b.To {
				return a.To < b.To
			}
			return a.From < b.From
		}),
		txsByTrxID: btree.NewG(btreeDegree, func(a, b *state.TransactionObject) bool {
			return bytes.Compare(a.TrxID[:], b.TrxID[:]) < 0
		}),
		txsByExpiration: btree.NewG(btreeDegree, func(a, b *state.TransactionObject) bool {
			if a.Expiration != b.Expiration {
				return a.Expiration < b.Expiration
			}
			return a.ID < b.ID
		}),
		props:   new(state.GlobalProperties),
		tiandao: &state.TiandaoProperties{ZoneTypeConnectionMaxNum: make(map[state.ZoneType]uint32)},
	}
}

// Clone takes a copy-on-write snapshot of the whole container. The snapshot
// shares entity pointers with the parent which is safe as long as all
// mutation goes through the Modify* methods.
func (d *Simple) Clone() *Simple {
	return &Simple{
		accountsByID:     d.accountsByID.Clone(),
		accountsByName:   d.accountsByName.Clone(),
		contractsByID:    d.contractsByID.Clone(),
		contractsByName:  d.contractsByName.Clone(),
		acdByKey:         d.acdByKey.Clone(),
		symbolsBySymbol:  d.symbolsBySymbol.Clone(),
		nfasByID:         d.nfasByID.Clone(),
		nfasByTick:       d.nfasByTick.Clone(),
		balancesByKey:    d.balancesByKey.Clone(),
		zonesByID:        d.zonesByID.Clone(),
		zonesByName:      d.zonesByName.Clone(),
		connectsByFromTo: d.connectsByFromTo.Clone(),
		connectsByToFrom: d.connectsByToFrom.Clone(),
		txsByTrxID:       d.txsByTrxID.Clone(),
		txsByExpiration:  d.txsByExpiration.Clone(),
		props:            d.props,
		tiandao:          d.tiandao,
		seq:              d.seq,
	}
}

// Replace adopts the state of another container, typically a committed
// Clone.
func (d *Simple) Replace(other *Simple) {
	*d = *other
}

// GlobalProperties returns the dynamic chain head state. The returned value
// must not be mutated, use ModifyGlobalProperties.
func (d *Simple) GlobalProperties() *state.GlobalProperties {
	return d.props
}

// ModifyGlobalProperties applies f to a copy of the global properties and
// swaps it in.
func (d *Simple) ModifyGlobalProperties(f func(*state.GlobalProperties)) {
	cp := *d.props
	f(&cp)
	d.props = &cp
}

// TiandaoProperties returns the world rule set. The returned value must not
// be mutated, use ModifyTiandaoProperties.
func (d *Simple) TiandaoProperties() *state.TiandaoProperties {
	return d.tiandao
}

// ModifyTiandaoProperties applies f to a copy of the tiandao properties and
// swaps it in.
func (d *Simple) ModifyTiandaoProperties(f func(*state.TiandaoProperties)) {
	cp := state.TiandaoProperties{
		ZoneTypeConnectionMaxNum: make(map[state.ZoneType]uint32, len(d.tiandao.ZoneTypeConnectionMaxNum)),
	}
	for k, v := range d.tiandao.ZoneTypeConnectionMaxNum {
		cp.ZoneTypeConnectionMaxNum[k] = v
	}
	f(&cp)
	d.tiandao = &cp
}

// HeadBlockTime is a shorthand for the head block timestamp.
func (d *Simple) HeadBlockTime() state.Timestamp {
	return d.props.Time
}

// notFound formats a typed ErrNotFound.
func notFound(kind string, key any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, kind, key)
}
