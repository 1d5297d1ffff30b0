package storage

import (
	"errors"
	"fmt"
)

// KeyPrefix constants. Every entity collection persists its objects under a
// distinct prefix byte.
type KeyPrefix uint8

// Entity collection prefixes plus system keys.
const (
	STAccount             KeyPrefix = 0x01
	STContract            KeyPrefix = 0x02
	STAccountContractData KeyPrefix = 0x03
	STNFASymbol           KeyPrefix = 0x04
	STNFA                 KeyPrefix = 0x05
	STNFABalance          KeyPrefix = 0x06
	STZone                KeyPrefix = 0x07
	STZoneConnect         KeyPrefix = 0x08
	STTransaction         KeyPrefix = 0x09
	SYSGlobalProperties   KeyPrefix = 0xf0
	SYSTiandaoProperties  KeyPrefix = 0xf1
	SYSSequences          KeyPrefix = 0xf2
	SYSCurrentBlock       KeyPrefix = 0xf3
	SYSBlock              KeyPrefix = 0xf4
	SYSStateVersion       KeyPrefix = 0xf5
)

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

// Store is the underlying KV backend for the state container. It is used for
// snapshots and restarts only, the hot state lives in memory.
type Store interface {
	Get([]byte) ([]byte, error)
	Put(k, v []byte) error
	Delete(k []byte) error
	// PutBatch applies a set of changes atomically.
	PutBatch(Batch) error
	// Seek calls f for all pairs with the given key prefix in unspecified
	// order until f returns false.
	Seek(prefix []byte, f func(k, v []byte) bool) error
	Close() error
}

// Batch is a set of changes to be applied in one go. Deletes are applied
// before puts.
type Batch struct {
	Put    []KeyValue
	Delete [][]byte
}

// KeyValue is a pair of a key and a value.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// AppendPrefix prefixes the given byte slice with the prefix byte.
func AppendPrefix(p KeyPrefix, b []byte) []byte {
	dest := make([]byte, 0, len(b)+1)
	dest = append(dest, byte(p))
	return append(dest, b...)
}

// DBConfiguration describes the storage backend. Type is one of "inmemory",
// "leveldb" or "boltdb".
type DBConfiguration struct {
	Type           string         `yaml:"Type" json:"type"`
	LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions" json:"leveldb_options"`
	BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions" json:"boltdb_options"`
}

// NewStore creates a storage backend based on the configuration.
func NewStore(cfg DBConfiguration) (Store, error) {
	switch cfg.Type {
	case "inmemory", "":
		return NewMemoryStore(), nil
	case "leveldb":
		return NewLevelDBStore(cfg.LevelDBOptions)
	case "boltdb":
		return NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
