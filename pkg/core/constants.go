package core

import "github.com/enpitsuLin/taiyi/pkg/core/state"

// Chain parameters. These mirror the global chain configuration and are not
// tunable at runtime.
const (
	// BlockIntervalSeconds is the target spacing between blocks.
	BlockIntervalSeconds = 3

	// ManaRegenSeconds is the full-bar regeneration period.
	ManaRegenSeconds = 60 * 60 * 24 * 5

	// UseManaExecutionScale converts VM drops to mana: 1 drop = 10 mana.
	UseManaExecutionScale = 10
	// UseManaStateBytesScale converts state growth bytes to mana.
	UseManaStateBytesScale = 1

	// NFACreateOverheadDrops and NFAHeartBeatOverheadDrops are the fixed
	// per-operation drop charges.
	NFACreateOverheadDrops    = 100
	NFAHeartBeatOverheadDrops = 50

	// NFATickPeriodMaxBlocks spreads the tick load: each block wakes at most
	// total/NFATickPeriodMaxBlocks+1 NFAs and a ticked NFA sleeps for
	// NFATickPeriodMaxBlocks blocks.
	NFATickPeriodMaxBlocks = 100

	// ContractPrivateDataSizeLimit caps the per-caller contract data.
	ContractPrivateDataSizeLimit = 3 * 1024
	// ContractTotalDataSizeLimit caps the shared contract data.
	ContractTotalDataSizeLimit = 10 * 1024 * 1024

	// NFAInitFuncName is the ABI entry a default contract must export to
	// mint NFAs; NFAHeartBeatFuncName drives the periodic tick.
	NFAInitFuncName      = "nfa_init"
	NFAHeartBeatFuncName = "heart_beat"

	// CommitteeAccount is the distinguished account whose actions skip the
	// proposal path; YemingAccount owns the genesis world objects.
	CommitteeAccount = "sifu"
	YemingAccount    = "yeming"

	// InitSiming is the genesis block producer identity.
	InitSiming = "initsiming"

	// ActorSymbolName/ZoneSymbolName are the basic NFA symbols created at
	// genesis together with their default contracts.
	ActorSymbolName      = "nfa.actor.default"
	ZoneSymbolName       = "nfa.zone.default"
	ActorContractName    = "contract.actor.default"
	ZoneContractName     = "contract.zone.default"

	// YangInitSupply is the initial YANG issued to the committee at genesis.
	YangInitSupply = 1000000000

	// MaxTransactionExpirationSeconds bounds how far in the future a
	// transaction may expire.
	MaxTransactionExpirationSeconds = 3600
)

// NextTickDelay is the schedule offset a ticked NFA gets.
const NextTickDelay = state.Timestamp(NFATickPeriodMaxBlocks * BlockIntervalSeconds)

// Validation step skip flags.
type ValidationSteps uint32

// Skip flags, combined with bitwise or.
const (
	SkipNothing               ValidationSteps = 0
	SkipTransactionSignatures ValidationSteps = 1 << iota
	SkipAuthorityCheck
	SkipSimingSignature
	SkipTransactionDupeCheck
	SkipValidation
)
