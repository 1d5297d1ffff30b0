package config

import (
	"errors"
)

// ProtocolConfiguration is the network-wide rule set.
type ProtocolConfiguration struct {
	// ChainID is the hex-encoded 32-byte chain identity.
	ChainID string `yaml:"ChainID"`
	// InitialSupply is the YANG issued at genesis.
	InitialSupply int64 `yaml:"InitialSupply"`
	// GenesisTime is the unix timestamp of the genesis state.
	GenesisTime uint32 `yaml:"GenesisTime"`
	// AllowChainIDOverride permits the --chain-id flag (test networks only).
	AllowChainIDOverride bool `yaml:"AllowChainIDOverride"`
	// AllowFutureBlockSeconds is the block timestamp admission window.
	AllowFutureBlockSeconds int64 `yaml:"AllowFutureBlockSeconds"`
}

func defaultProtocolConfiguration() ProtocolConfiguration {
	return ProtocolConfiguration{
		InitialSupply:           1000000000,
		GenesisTime:             1600000000,
		AllowFutureBlockSeconds: 5,
	}
}

// Validate returns an error if the configuration is not usable.
func (p ProtocolConfiguration) Validate() error {
	if p.InitialSupply < 0 {
		return errors.New("InitialSupply cannot be negative")
	}
	return nil
}
