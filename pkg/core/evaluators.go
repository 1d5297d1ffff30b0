package core

import (
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/transaction"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// evaluator applies one operation kind against the database.
type evaluator interface {
	doApply(db *Database, sigkeys []*keys.PublicKey) (OperationResult, error)
}

// dispatchOperation wraps a wire operation into its evaluator.
func dispatchOperation(op transaction.Operation) (evaluator, error) {
	switch o := op.(type) {
	case *transaction.Transfer:
		return &transferEvaluator{op: o}, nil
	case *transaction.CreateNFASymbol:
		return &createNFASymbolEvaluator{op: o}, nil
	case *transaction.CreateNFA:
		return &createNFAEvaluator{op: o}, nil
	case *transaction.TransferNFA:
		return &transferNFAEvaluator{op: o}, nil
	case *transaction.CreateZone:
		return &createZoneEvaluator{op: o}, nil
	case *transaction.ConnectToZone:
		return &connectToZoneEvaluator{op: o}, nil
	default:
		return nil, fmt.Errorf("%w: no evaluator for operation type %d", ErrValidation, op.Type())
	}
}

// ApplyOperation validates and applies a single operation. A returned error
// means the enclosing transaction must be rolled back as a whole.
func (db *Database) ApplyOperation(op transaction.Operation, sigkeys []*keys.PublicKey) (OperationResult, error) {
	if err := op.Validate(); err != nil {
		return OperationResult{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	ev, err := dispatchOperation(op)
	if err != nil {
		return OperationResult{}, err
	}
	return ev.doApply(db, sigkeys)
}

type transferEvaluator struct {
	op *transaction.Transfer
}

func (e *transferEvaluator) doApply(db *Database, _ []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	from, err := db.GetAccount(e.op.From)
	if err != nil {
		return result, err
	}
	to, err := db.GetAccount(e.op.To)
	if err != nil {
		return result, err
	}

	if _, err := db.AdjustAccountBalance(from, e.op.Amount.Neg()); err != nil {
		return result, err
	}
	// The from modification may have replaced the to pointer if both name
	// the same account; resolve again.
	to, err = db.GetAccount(to.Name)
	if err != nil {
		return result, err
	}
	if _, err := db.AdjustAccountBalance(to, e.op.Amount); err != nil {
		return result, err
	}
	return result, nil
}

type createNFASymbolEvaluator struct {
	op *transaction.CreateNFASymbol
}

func (e *createNFASymbolEvaluator) doApply(db *Database, _ []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	creator, err := db.GetAccount(e.op.Creator)
	if err != nil {
		return result, err
	}
	_, err = db.CreateNFASymbol(creator, e.op.Symbol, e.op.Describe, e.op.DefaultContract)
	return result, err
}

type createNFAEvaluator struct {
	op *transaction.CreateNFA
}

func (e *createNFAEvaluator) doApply(db *Database, sigkeys []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	creator, err := db.GetAccount(e.op.Creator)
	if err != nil {
		return result, err
	}
	symbolObj := db.dao.FindNFASymbol(e.op.Symbol)
	if symbolObj == nil {
		return result, fmt.Errorf("%w: NFA symbol named %q is not exist", ErrNotFound, e.op.Symbol)
	}

	ctx := vm.NewContext()
	vm.InitializeBaseEnv(ctx)

	nfa, err := db.CreateNFAEntity(creator, symbolObj, sigkeys, true, ctx)
	if err != nil {
		return result, err
	}

	result.ContractAffecteds = append(result.ContractAffecteds,
		NFAAffected{Account: creator.Name, Item: nfa.ID, Action: NFACreateFor},
		NFAAffected{Account: creator.Name, Item: nfa.ID, Action: NFACreateBy},
	)
	return result, nil
}

type transferNFAEvaluator struct {
	op *transaction.TransferNFA
}

func (e *transferNFAEvaluator) doApply(db *Database, _ []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	from, err := db.GetAccount(e.op.From)
	if err != nil {
		return result, err
	}
	to, err := db.GetAccount(e.op.To)
	if err != nil {
		return result, err
	}
	err = db.TransferNFA(from, to, e.op.ID, &result)
	return result, err
}

type createZoneEvaluator struct {
	op *transaction.CreateZone
}

func (e *createZoneEvaluator) doApply(db *Database, sigkeys []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	creator, err := db.GetAccount(e.op.Creator)
	if err != nil {
		return result, err
	}

	if check := db.dao.FindZoneByName(e.op.Name); check != nil {
		return result, fmt.Errorf("%w: there is already exist zone named %q", ErrValidation, e.op.Name)
	}
	zoneType := state.ZoneTypeFromString(e.op.ZoneType)
	if zoneType == state.ZoneInvalid {
		return result, fmt.Errorf("%w: zone type %q is not valid", ErrValidation, e.op.ZoneType)
	}

	// Zone creation by ordinary accounts goes through a proposal vote that
	// is not specified yet, reject it for now.
	if creator.Name != CommitteeAccount {
		return result, fmt.Errorf("%w: only the committee account may create zones", ErrAuthority)
	}

	_, err = db.CreateZoneForCommittee(creator, e.op.Name, zoneType, sigkeys, &result)
	return result, err
}

type connectToZoneEvaluator struct {
	op *transaction.ConnectToZone
}

func (e *connectToZoneEvaluator) doApply(db *Database, _ []*keys.PublicKey) (OperationResult, error) {
	var result OperationResult

	account, err := db.GetAccount(e.op.Account)
	if err != nil {
		return result, err
	}
	err = db.ConnectZones(account, e.op.From, e.op.To)
	return result, err
}
