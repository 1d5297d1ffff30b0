package core

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/core/dao"
	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// Database is a view over the multi-index entity container together with the
// collaborators the state transitions need. The Blockchain owns the
// committed view; per-request work happens on a Clone that is either
// committed back with Replace or dropped.
type Database struct {
	dao     *dao.Simple
	vmExec  VMExecutor
	log     *zap.Logger
	chainID util.Uint256

	skipFlags ValidationSteps
}

// NewDatabase creates a Database over an empty container.
func NewDatabase(vmExec VMExecutor, chainID util.Uint256, log *zap.Logger) *Database {
	if log == nil {
		log = zap.NewNop()
	}
	return &Database{
		dao:     dao.NewSimple(),
		vmExec:  vmExec,
		log:     log,
		chainID: chainID,
	}
}

// DAO exposes the underlying container for queries.
func (db *Database) DAO() *dao.Simple {
	return db.dao
}

// ChainID returns the chain identity.
func (db *Database) ChainID() util.Uint256 {
	return db.chainID
}

// SetSkipFlags replaces the validation skip flags.
func (db *Database) SetSkipFlags(flags ValidationSteps) {
	db.skipFlags = flags
}

// SkipFlags returns the current validation skip flags.
func (db *Database) SkipFlags() ValidationSteps {
	return db.skipFlags
}

// Clone takes a copy-on-write snapshot sharing everything but the container.
func (db *Database) Clone() *Database {
	cp := *db
	cp.dao = db.dao.Clone()
	return &cp
}

// Replace adopts the container state of a committed Clone.
func (db *Database) Replace(other *Database) {
	db.dao.Replace(other.dao)
}

// HeadBlockTime returns the committed head block timestamp.
func (db *Database) HeadBlockTime() state.Timestamp {
	return db.dao.HeadBlockTime()
}

// HeadBlockNum returns the committed head block number.
func (db *Database) HeadBlockNum() uint32 {
	return db.dao.GlobalProperties().HeadBlockNumber
}

// GetAccount resolves an account by name, wrapping misses into ErrNotFound.
func (db *Database) GetAccount(name string) (*state.Account, error) {
	a := db.dao.FindAccountByName(name)
	if a == nil {
		return nil, fmt.Errorf("%w: account %q", ErrNotFound, name)
	}
	return a, nil
}

// UpdateAccountMana regenerates the account's mana bar against the head
// time and returns the updated entity.
func (db *Database) UpdateAccountMana(a *state.Account) *state.Account {
	now := db.dao.HeadBlockTime()
	return db.dao.ModifyAccount(a, func(a *state.Account) {
		a.Mana.Update(a.MaxMana(), now, ManaRegenSeconds)
	})
}

// RewardContractOwner pays the owner account the fee equivalent in qi. Every
// mana charge is mirrored by exactly one such payment.
func (db *Database) RewardContractOwner(ownerName string, amount asset.Asset) error {
	owner, err := db.GetAccount(ownerName)
	if err != nil {
		return err
	}
	db.dao.ModifyAccount(owner, func(a *state.Account) {
		a.Qi = a.Qi.Add(amount)
	})
	db.dao.ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.TotalQi = p.TotalQi.Add(amount)
	})
	return nil
}

// AdjustAccountBalance moves liquid YANG on an account, rejecting overdrafts.
func (db *Database) AdjustAccountBalance(a *state.Account, delta asset.Asset) (*state.Account, error) {
	if delta.Amount < 0 && a.Balance.Amount < -delta.Amount {
		return nil, fmt.Errorf("%w: account %s has insufficient funds", ErrValidation, a.Name)
	}
	return db.dao.ModifyAccount(a, func(a *state.Account) {
		a.Balance = a.Balance.Add(delta)
	}), nil
}

// ValidateInvariants checks global supply accounting: total qi recorded in
// the global properties equals the sum over all holders.
func (db *Database) ValidateInvariants() error {
	var total int64
	db.dao.AscendAccounts(func(a *state.Account) bool {
		total += a.Qi.Amount
		return true
	})
	db.dao.AscendNFAs(func(n *state.NFA) bool {
		total += n.Qi.Amount
		return true
	})
	recorded := db.dao.GlobalProperties().TotalQi.Amount
	if total != recorded {
		return fmt.Errorf("%w: qi supply mismatch, recorded %d actual %d", ErrValidation, recorded, total)
	}
	return nil
}
