package dao

import (
	"github.com/enpitsuLin/taiyi/pkg/core/state"
)

// CreateAccount inserts a new account, assigning it a fresh id.
func (d *Simple) CreateAccount(init func(*state.Account)) *state.Account {
	d.seq.account++
	a := &state.Account{ID: state.AccountID(d.seq.account)}
	init(a)
	d.accountsByID.ReplaceOrInsert(a)
	d.accountsByName.ReplaceOrInsert(a)
	return a
}

// FindAccountByName returns the named account or nil.
func (d *Simple) FindAccountByName(name string) *state.Account {
	a, ok := d.accountsByName.Get(&state.Account{Name: name})
	if !ok {
		return nil
	}
	return a
}

// GetAccountByName returns the named account or ErrNotFound.
func (d *Simple) GetAccountByName(name string) (*state.Account, error) {
	if a := d.FindAccountByName(name); a != nil {
		return a, nil
	}
	return nil, notFound("account", name)
}

// GetAccount returns the account with the given id or ErrNotFound.
func (d *Simple) GetAccount(id state.AccountID) (*state.Account, error) {
	a, ok := d.accountsByID.Get(&state.Account{ID: id})
	if !ok {
		return nil, notFound("account id", id)
	}
	return a, nil
}

// ModifyAccount applies f to a copy of the account, reindexes it and returns
// the new pointer. The old pointer becomes stale.
func (d *Simple) ModifyAccount(a *state.Account, f func(*state.Account)) *state.Account {
	d.accountsByID.Delete(a)
	d.accountsByName.Delete(a)
	cp := *a
	f(&cp)
	d.accountsByID.ReplaceOrInsert(&cp)
	d.accountsByName.ReplaceOrInsert(&cp)
	return &cp
}

// AccountCount returns the number of accounts.
func (d *Simple) AccountCount() int {
	return d.accountsByID.Len()
}

// AscendAccounts walks all accounts in id order until f returns false.
func (d *Simple) AscendAccounts(f func(*state.Account) bool) {
	d.accountsByID.Ascend(f)
}

// CreateContract inserts a new contract, assigning it a fresh id.
func (d *Simple) CreateContract(init func(*state.Contract)) *state.Contract {
	d.seq.contract++
	c := &state.Contract{ID: state.ContractID(d.seq.contract)}
	init(c)
	d.contractsByID.ReplaceOrInsert(c)
	d.contractsByName.ReplaceOrInsert(c)
	return c
}

// FindContractByName returns the named contract or nil.
func (d *Simple) FindContractByName(name string) *state.Contract {
	c, ok := d.contractsByName.Get(&state.Contract{Name: name})
	if !ok {
		return nil
	}
	return c
}

// GetContractByName returns the named contract or ErrNotFound.
func (d *Simple) GetContractByName(name string) (*state.Contract, error) {
	if c := d.FindContractByName(name); c != nil {
		return c, nil
	}
	return nil, notFound("contract", name)
}

// FindContract returns the contract with the given id or nil.
func (d *Simple) FindContract(id state.ContractID) *state.Contract {
	c, ok := d.contractsByID.Get(&state.Contract{ID: id})
	if !ok {
		return nil
	}
	return c
}

// GetContract returns the contract with the given id or ErrNotFound.
func (d *Simple) GetContract(id state.ContractID) (*state.Contract, error) {
	if c := d.FindContract(id); c != nil {
		return c, nil
	}
	return nil, notFound("contract id", id)
}

// ModifyContract applies f to a copy of the contract, reindexes it and
// returns the new pointer.
func (d *Simple) ModifyContract(c *state.Contract, f func(*state.Contract)) *state.Contract {
	d.contractsByID.Delete(c)
	d.contractsByName.Delete(c)
	cp := *c
	f(&cp)
	d.contractsByID.ReplaceOrInsert(&cp)
	d.contractsByName.ReplaceOrInsert(&cp)
	return &cp
}

// ContractCount returns the number of contracts.
func (d *Simple) ContractCount() int {
	return d.contractsByID.Len()
}

// CreateAccountContractData inserts a new per-caller contract data record.
func (d *Simple) CreateAccountContractData(init func(*state.AccountContractData)) *state.AccountContractData {
	d.seq.acd++
	acd := &state.AccountContractData{ID: state.AccountContractDataID(d.seq.acd)}
	init(acd)
	d.acdByKey.ReplaceOrInsert(acd)
	return acd
}

// FindAccountContractData returns the (account, contract) data record or nil.
func (d *Simple) FindAccountContractData(owner state.AccountID, contract state.ContractID) *state.AccountContractData {
	acd, ok := d.acdByKey.Get(&state.AccountContractData{Owner: owner, Contract: contract})
	if !ok {
		return nil
	}
	return acd
}

// ModifyAccountContractData applies f to a copy of the record and reindexes
// it.
func (d *Simple) ModifyAccountContractData(acd *state.AccountContractData, f func(*state.AccountContractData)) *state.AccountContractData {
	d.acdByKey.Delete(acd)
	cp := *acd
	f(&cp)
	d.acdByKey.ReplaceOrInsert(&cp)
	return &cp
}

// AscendAccountContractData walks all records until f returns false.
func (d *Simple) AscendAccountContractData(f func(*state.AccountContractData) bool) {
	d.acdByKey.Ascend(f)
}
