package config

import (
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
)

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	Logger `yaml:",inline"`

	// DataDir is the base data directory of the node.
	DataDir string `yaml:"DataDir"`
	// StateStorageDir holds the chain state, absolute or relative to
	// DataDir.
	StateStorageDir string `yaml:"StateStorageDir"`

	DBConfiguration storage.DBConfiguration `yaml:"DBConfiguration"`

	// FlushStateInterval snapshots the state every N blocks.
	FlushStateInterval uint32 `yaml:"FlushStateInterval"`

	RPC        RPC          `yaml:"RPC"`
	Prometheus BasicService `yaml:"Prometheus"`
	Pprof      BasicService `yaml:"Pprof"`
}

// RPC is the chain API server configuration.
type RPC struct {
	BasicService `yaml:",inline"`

	// MaxRequestBodyBytes caps the request size.
	MaxRequestBodyBytes int `yaml:"MaxRequestBodyBytes"`
}

func defaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		DataDir:            "taiyi-data",
		StateStorageDir:    "blockchain",
		FlushStateInterval: 10000,
		RPC: RPC{
			MaxRequestBodyBytes: 5 * 1024 * 1024,
		},
	}
}

// Validate returns an error if the configuration is not usable.
func (a ApplicationConfiguration) Validate() error {
	return a.Logger.Validate()
}
