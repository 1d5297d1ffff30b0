package state

import "math"

// Entity ids. They are dense, store-assigned and never reused. Secondary
// indexes refer to entities by id only, never by pointer.
type (
	AccountID             uint64
	ContractID            uint64
	AccountContractDataID uint64
	NFASymbolID           uint64
	NFAID                 uint64
	NFABalanceID          uint64
	ZoneID                uint64
	ZoneConnectID         uint64
	TransactionID         uint64
)

// Timestamp is a second-precision chain time.
type Timestamp uint32

// TimestampMax is the "infinite" time sentinel used to park NFA ticks.
const TimestampMax Timestamp = math.MaxUint32
