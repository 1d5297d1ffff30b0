package core

import (
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// VMExecutor is the script VM seen as an oracle: it runs a contract function
// and reports the consumed budget through the drops pointer. The core only
// depends on the drop semantics; implementations plug in at Blockchain
// construction time.
type VMExecutor interface {
	// RunContractFunction runs fn of the contract identified by its ABI
	// source with accountData as the caller's private table (mutated in
	// place). drops carries the remaining budget in and out. The returned
	// table is the function result.
	RunContractFunction(caller string, fn string, args []string,
		accountData vm.Table, sigkeys []*keys.PublicKey,
		drops *int64, resetMemUsed bool, ctx *vm.Context) (vm.Table, error)
}

// NullExecutor is a VMExecutor that runs every function as a no-op consuming
// a fixed drop cost. It backs tests and nodes running without a script
// engine.
type NullExecutor struct {
	// CostDrops is charged per invocation.
	CostDrops int64
	// Result is returned from every call, nil gives an empty table.
	Result vm.Table
	// Err, if set, makes every call fail after charging.
	Err error
}

// RunContractFunction implements the VMExecutor interface.
func (e *NullExecutor) RunContractFunction(_ string, _ string, _ []string,
	_ vm.Table, _ []*keys.PublicKey, drops *int64, resetMemUsed bool, ctx *vm.Context) (vm.Table, error) {
	if resetMemUsed && ctx != nil {
		ctx.ResetMemUsed()
	}
	if *drops < e.CostDrops {
		*drops = 0
		return nil, vm.ErrOutOfDrops
	}
	*drops -= e.CostDrops
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Result == nil {
		return vm.Table{}, nil
	}
	return e.Result.Clone(), nil
}
