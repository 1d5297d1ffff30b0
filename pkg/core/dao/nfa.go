package dao

import (
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

// CreateNFASymbol inserts a new symbol registry entry.
func (d *Simple) CreateNFASymbol(init func(*state.NFASymbol)) *state.NFASymbol {
	d.seq.symbol++
	s := &state.NFASymbol{ID: state.NFASymbolID(d.seq.symbol)}
	init(s)
	d.symbolsBySymbol.ReplaceOrInsert(s)
	return s
}

// FindNFASymbol returns the registry entry for the symbol string or nil.
func (d *Simple) FindNFASymbol(symbol string) *state.NFASymbol {
	s, ok := d.symbolsBySymbol.Get(&state.NFASymbol{Symbol: symbol})
	if !ok {
		return nil
	}
	return s
}

// GetNFASymbol returns the registry entry for the symbol string or
// ErrNotFound.
func (d *Simple) GetNFASymbol(symbol string) (*state.NFASymbol, error) {
	if s := d.FindNFASymbol(symbol); s != nil {
		return s, nil
	}
	return nil, notFound("nfa symbol", symbol)
}

// ModifyNFASymbol applies f to a copy of the entry and reindexes it.
func (d *Simple) ModifyNFASymbol(s *state.NFASymbol, f func(*state.NFASymbol)) *state.NFASymbol {
	d.symbolsBySymbol.Delete(s)
	cp := *s
	f(&cp)
	d.symbolsBySymbol.ReplaceOrInsert(&cp)
	return &cp
}

// AscendNFASymbols walks all symbol entries until f returns false.
func (d *Simple) AscendNFASymbols(f func(*state.NFASymbol) bool) {
	d.symbolsBySymbol.Ascend(f)
}

// CreateNFA inserts a new NFA, assigning it a fresh id.
func (d *Simple) CreateNFA(init func(*state.NFA)) *state.NFA {
	d.seq.nfa++
	n := &state.NFA{ID: state.NFAID(d.seq.nfa)}
	init(n)
	d.nfasByID.ReplaceOrInsert(n)
	d.nfasByTick.ReplaceOrInsert(n)
	return n
}

// FindNFA returns the NFA with the given id or nil.
func (d *Simple) FindNFA(id state.NFAID) *state.NFA {
	n, ok := d.nfasByID.Get(&state.NFA{ID: id})
	if !ok {
		return nil
	}
	return n
}

// GetNFA returns the NFA with the given id or ErrNotFound.
func (d *Simple) GetNFA(id state.NFAID) (*state.NFA, error) {
	if n := d.FindNFA(id); n != nil {
		return n, nil
	}
	return nil, notFound("nfa id", id)
}

// ModifyNFA applies f to a copy of the NFA, reindexes it (including the tick
// index whose key may have changed) and returns the new pointer.
func (d *Simple) ModifyNFA(n *state.NFA, f func(*state.NFA)) *state.NFA {
	d.nfasByID.Delete(n)
	d.nfasByTick.Delete(n)
	cp := *n
	f(&cp)
	d.nfasByID.ReplaceOrInsert(&cp)
	d.nfasByTick.ReplaceOrInsert(&cp)
	return &cp
}

// NFACount returns the number of NFAs.
func (d *Simple) NFACount() int {
	return d.nfasByID.Len()
}

// AscendNFAByTickTime walks NFAs in (next_tick_time, id) order until f
// returns false.
func (d *Simple) AscendNFAByTickTime(f func(*state.NFA) bool) {
	d.nfasByTick.Ascend(f)
}

// AscendNFAs walks all NFAs in id order until f returns false.
func (d *Simple) AscendNFAs(f func(*state.NFA) bool) {
	d.nfasByID.Ascend(f)
}

// CreateNFABalance inserts a new regular balance record.
func (d *Simple) CreateNFABalance(init func(*state.NFARegularBalance)) *state.NFARegularBalance {
	d.seq.balance++
	b := &state.NFARegularBalance{ID: state.NFABalanceID(d.seq.balance)}
	init(b)
	d.balancesByKey.ReplaceOrInsert(b)
	return b
}

// FindNFABalance returns the (nfa, symbol) balance record or nil.
func (d *Simple) FindNFABalance(nfa state.NFAID, symbol asset.Symbol) *state.NFARegularBalance {
	b, ok := d.balancesByKey.Get(&state.NFARegularBalance{
		NFA:    nfa,
		Liquid: asset.Asset{Symbol: symbol},
	})
	if !ok {
		return nil
	}
	return b
}

// ModifyNFABalance applies f to a copy of the balance record and reindexes
// it.
func (d *Simple) ModifyNFABalance(b *state.NFARegularBalance, f func(*state.NFARegularBalance)) *state.NFARegularBalance {
	d.balancesByKey.Delete(b)
	cp := *b
	f(&cp)
	d.balancesByKey.ReplaceOrInsert(&cp)
	return &cp
}

// RemoveNFABalance evicts a balance record from all indexes.
func (d *Simple) RemoveNFABalance(b *state.NFARegularBalance) {
	d.balancesByKey.Delete(b)
}

// AscendNFABalances walks all balance records until f returns false.
func (d *Simple) AscendNFABalances(f func(*state.NFARegularBalance) bool) {
	d.balancesByKey.Ascend(f)
}
