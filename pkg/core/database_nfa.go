package core

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// CreateBasicNFASymbols registers the default actor and zone symbols. Called
// once at genesis.
func (db *Database) CreateBasicNFASymbols() error {
	creator, err := db.GetAccount(YemingAccount)
	if err != nil {
		return err
	}
	if _, err := db.CreateNFASymbol(creator, ActorSymbolName, "默认的角色", ActorContractName); err != nil {
		return err
	}
	if _, err := db.CreateNFASymbol(creator, ZoneSymbolName, "默认的区域", ZoneContractName); err != nil {
		return err
	}
	return nil
}

// CreateNFASymbol registers a new NFA family referencing a default contract
// which must export the init function.
func (db *Database) CreateNFASymbol(creator *state.Account, symbol, describe, defaultContract string) (*state.NFASymbol, error) {
	if existing := db.dao.FindNFASymbol(symbol); existing != nil {
		return nil, fmt.Errorf("%w: NFA symbol named %q is already exist", ErrValidation, symbol)
	}
	contract := db.dao.FindContractByName(defaultContract)
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %q", ErrNotFound, defaultContract)
	}
	if !contract.HasFunction(NFAInitFuncName) {
		return nil, fmt.Errorf("%w: contract %s has not init function named %s", ErrValidation, contract.Name, NFAInitFuncName)
	}
	symbolObj := db.dao.CreateNFASymbol(func(s *state.NFASymbol) {
		s.Creator = creator.Name
		s.Symbol = symbol
		s.Describe = describe
		s.DefaultContract = contract.ID
		s.Count = 0
	})
	return symbolObj, nil
}

// CreateNFAEntity mints a new NFA from a symbol: it runs the init function of
// the default contract under the creator's mana budget and charges execution,
// state growth and the fixed creation overhead. The contract owner is paid
// the charge in qi.
func (db *Database) CreateNFAEntity(creator *state.Account, symbolObj *state.NFASymbol,
	sigkeys []*keys.PublicKey, resetVMMemused bool, ctx *vm.Context) (*state.NFA, error) {
	caller := db.UpdateAccountMana(creator)

	now := db.dao.HeadBlockTime()
	nfa := db.dao.CreateNFA(func(n *state.NFA) {
		n.CreatorAccount = caller.ID
		n.OwnerAccount = caller.ID
		n.SymbolID = symbolObj.ID
		n.MainContract = symbolObj.DefaultContract
		n.CreatedTime = now
		n.NextTickTime = now
		n.Qi = asset.New(0, asset.QiSymbol)
		n.Mana = state.ManaBar{LastUpdateTime: now}
	})

	contract, err := db.dao.GetContract(nfa.MainContract)
	if err != nil {
		return nil, err
	}

	if contract.CheckContractAuthority {
		skip := db.skipFlags
		if skip&(SkipTransactionSignatures|SkipAuthorityCheck) == 0 {
			var found bool
			for _, key := range sigkeys {
				if key.Equal(contract.ContractAuthority) {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: no contract related permissions were found in the signature, contract_authority: %s",
					ErrAuthority, contract.ContractAuthority.String())
			}
		}
	}

	acd := db.dao.FindAccountContractData(caller.ID, contract.ID)
	if acd == nil {
		acd = db.dao.CreateAccountContractData(func(a *state.AccountContractData) {
			a.Owner = caller.ID
			a.Contract = contract.ID
		})
	}
	accountData := acd.Data.Clone()
	if accountData == nil {
		accountData = vm.Table{}
	}

	// Mana may be consumed by the contract itself, record the budget up
	// front to compute the VM execution cost.
	oldDrops := caller.Mana.CurrentMana / UseManaExecutionScale
	vmDrops := oldDrops
	resultTable, err := db.vmExec.RunContractFunction(caller.Name, NFAInitFuncName, nil,
		accountData, sigkeys, &vmDrops, resetVMMemused, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed: %s", ErrVM, NFAInitFuncName, err)
	}
	usedDrops := oldDrops - vmDrops

	newStateSize := nfa.PackSize()
	usedMana := usedDrops*UseManaExecutionScale +
		int64(newStateSize)*UseManaStateBytesScale +
		NFACreateOverheadDrops*UseManaExecutionScale
	if !caller.Mana.HasMana(usedMana) {
		return nil, fmt.Errorf("%w: creator account does not have enough mana to create nfa", ErrResource)
	}
	caller = db.dao.ModifyAccount(caller, func(a *state.Account) {
		a.Mana.UseMana(usedMana)
	})

	contractOwner, err := db.dao.GetAccount(contract.Owner)
	if err != nil {
		return nil, err
	}
	if err := db.RewardContractOwner(contractOwner.Name, asset.New(usedMana, asset.QiSymbol)); err != nil {
		return nil, err
	}

	if accountData.PackSize() > ContractPrivateDataSizeLimit {
		return nil, fmt.Errorf("%w: the contract private data size is too large", ErrResource)
	}
	if contract.Data.PackSize() > ContractTotalDataSizeLimit {
		return nil, fmt.Errorf("%w: the contract total data size is too large", ErrResource)
	}

	db.dao.ModifyAccountContractData(acd, func(a *state.AccountContractData) {
		a.Data = accountData
	})
	nfa = db.dao.ModifyNFA(nfa, func(n *state.NFA) {
		n.Data = resultTable
	})
	db.dao.ModifyNFASymbol(symbolObj, func(s *state.NFASymbol) {
		s.Count++
	})

	return nfa, nil
}

// TransferNFA moves ownership, emitting transfer_from/transfer_to affected
// records. Transferring to the current owner is a no-op that still reports.
func (db *Database) TransferNFA(from, to *state.Account, id state.NFAID, result *OperationResult) error {
	nfa, err := db.dao.GetNFA(id)
	if err != nil {
		return err
	}
	if nfa.OwnerAccount != from.ID {
		return fmt.Errorf("%w: account %s is not the owner of nfa %d", ErrAuthority, from.Name, id)
	}

	db.dao.ModifyNFA(nfa, func(n *state.NFA) {
		n.OwnerAccount = to.ID
	})

	result.ContractAffecteds = append(result.ContractAffecteds,
		NFAAffected{Account: from.Name, Item: id, Action: NFATransferFrom},
		NFAAffected{Account: to.Name, Item: id, Action: NFATransferTo},
	)
	return nil
}

// ProcessNFATick wakes due NFAs in (next_tick_time, id) order and runs their
// heart-beat under a clamped mana budget. At most total/period+1 NFAs run per
// block so the load stays spread out.
func (db *Database) ProcessNFATick() {
	now := db.dao.HeadBlockTime()

	runNum := db.dao.NFACount()/NFATickPeriodMaxBlocks + 1
	tickNFAs := make([]*state.NFA, 0, runNum)
	db.dao.AscendNFAByTickTime(func(n *state.NFA) bool {
		if n.NextTickTime > now || len(tickNFAs) >= runNum {
			return false
		}
		tickNFAs = append(tickNFAs, n)
		return true
	})

	for _, nfa := range tickNFAs {
		contract := db.dao.FindContract(nfa.MainContract)
		if contract == nil {
			// The main contract is gone, leave the NFA as is.
			continue
		}
		if !contract.HasFunction(NFAHeartBeatFuncName) {
			db.dao.ModifyNFA(nfa, func(n *state.NFA) {
				n.NextTickTime = state.TimestampMax // disable tick
			})
			continue
		}

		nfa = db.dao.ModifyNFA(nfa, func(n *state.NFA) {
			n.NextTickTime = now + NextTickDelay
			n.Mana.Update(n.MaxMana(), now, ManaRegenSeconds)
		})

		ctx := vm.NewContext()
		vm.InitializeBaseEnv(ctx)

		// Mana may be consumed by the contract itself, record the budget up
		// front to compute the VM execution cost.
		oldDrops := nfa.Mana.CurrentMana / UseManaExecutionScale
		vmDrops := oldDrops
		beatFail := false
		caller := fmt.Sprintf("nfa.%d", nfa.ID)
		_, err := db.vmExec.RunContractFunction(caller, NFAHeartBeatFuncName, nil,
			vm.Table{}, nil, &vmDrops, true, ctx)
		if err != nil {
			// No failure may take down the core loop.
			beatFail = true
			db.log.Warn("NFA process heart beat fail",
				zap.Uint64("nfa", uint64(nfa.ID)),
				zap.Error(err))
		}
		usedDrops := oldDrops - vmDrops

		usedMana := usedDrops*UseManaExecutionScale + NFAHeartBeatOverheadDrops*UseManaExecutionScale
		db.dao.ModifyNFA(nfa, func(n *state.NFA) {
			n.Mana.UseManaClamped(usedMana)
			// A failed beat is charged and additionally parks the NFA.
			if beatFail {
				n.NextTickTime = state.TimestampMax
			}
		})

		contractOwner, err := db.dao.GetAccount(contract.Owner)
		if err != nil {
			db.log.Warn("NFA tick reward skipped, contract owner is gone",
				zap.Uint64("nfa", uint64(nfa.ID)),
				zap.Error(err))
			continue
		}
		if err := db.RewardContractOwner(contractOwner.Name, asset.New(usedMana, asset.QiSymbol)); err != nil {
			db.log.Warn("NFA tick reward failed", zap.Error(err))
		}
	}
}

// GetNFABalance returns the NFA's holding of the symbol: the embedded qi for
// QI, the regular balance record (or zero) for everything else.
func (db *Database) GetNFABalance(nfa *state.NFA, symbol asset.Symbol) asset.Asset {
	if symbol.AssetNum == asset.AssetNumQi {
		return nfa.Qi
	}
	if bo := db.dao.FindNFABalance(nfa.ID, symbol); bo != nil {
		return bo.Liquid
	}
	return asset.New(0, symbol)
}

// AdjustNFABalance applies a delta to an NFA holding. Qi moves through the
// embedded balance; all other assets live in regular balance records which
// are created on first deposit and deleted when they reach zero.
func (db *Database) AdjustNFABalance(nfa *state.NFA, delta asset.Asset) (*state.NFA, error) {
	if delta.Amount < 0 {
		available := db.GetNFABalance(nfa, delta.Symbol)
		if !available.GTE(delta.Neg()) {
			return nil, fmt.Errorf("%w: NFA %d does not have sufficient assets for balance adjustment, required: %s, available: %s",
				ErrValidation, nfa.ID, delta.String(), available.String())
		}
	}

	if delta.Symbol.AssetNum == asset.AssetNumQi {
		updated := db.dao.ModifyNFA(nfa, func(n *state.NFA) {
			n.Qi = n.Qi.Add(delta)
		})
		return updated, nil
	}
	if err := db.adjustNFARegularBalance(nfa.ID, delta); err != nil {
		return nil, err
	}
	return nfa, nil
}

// adjustNFARegularBalance is the non-qi path of AdjustNFABalance.
func (db *Database) adjustNFARegularBalance(id state.NFAID, delta asset.Asset) error {
	if delta.Symbol.IsQi() {
		return fmt.Errorf("%w: qi is not go there", ErrValidation)
	}

	bo := db.dao.FindNFABalance(id, delta.Symbol)
	if bo == nil {
		// No balance record means zero balance; reject negative deltas and
		// skip creating zero-amount records.
		if delta.Amount < 0 {
			return fmt.Errorf("%w: insufficient %s funds", ErrValidation, delta.Symbol.ToNAIString())
		}
		if delta.Amount == 0 {
			return nil
		}
		db.dao.CreateNFABalance(func(b *state.NFARegularBalance) {
			b.NFA = id
			b.Liquid = delta
		})
		return nil
	}

	combined := bo.Liquid.Add(delta)
	if combined.Amount < 0 {
		return fmt.Errorf("%w: insufficient %s funds", ErrValidation, delta.Symbol.ToNAIString())
	}
	if combined.Amount == 0 {
		// Zero balance is the same as no record at all.
		db.dao.RemoveNFABalance(bo)
		return nil
	}
	db.dao.ModifyNFABalance(bo, func(b *state.NFARegularBalance) {
		b.Liquid = combined
	})
	return nil
}
