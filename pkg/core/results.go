package core

import "github.com/enpitsuLin/taiyi/pkg/core/state"

// NFAAffectedType enumerates the side-effect actions an operation reports.
type NFAAffectedType uint8

// Affected actions.
const (
	NFACreateFor NFAAffectedType = iota
	NFACreateBy
	NFATransferFrom
	NFATransferTo
	NFADeposit
	NFAWithdraw
	NFAModified
)

var nfaAffectedStrings = map[NFAAffectedType]string{
	NFACreateFor:    "create_for",
	NFACreateBy:     "create_by",
	NFATransferFrom: "transfer_from",
	NFATransferTo:   "transfer_to",
	NFADeposit:      "deposit",
	NFAWithdraw:     "withdraw",
	NFAModified:     "modified",
}

// String implements the Stringer interface.
func (t NFAAffectedType) String() string {
	return nfaAffectedStrings[t]
}

// NFAAffected is a single side-effect record emitted by an evaluator.
type NFAAffected struct {
	Account string
	Item    state.NFAID
	Action  NFAAffectedType
}

// OperationResult collects the side effects of one applied operation.
type OperationResult struct {
	ContractAffecteds []NFAAffected
}
