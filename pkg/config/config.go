package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the version of the node, set at the build time.
var Version string

// Config is the top level node configuration.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// LoadFile loads the config from the provided path.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Config{
		ApplicationConfiguration: defaultApplicationConfiguration(),
	}
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	if err = decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err = config.ProtocolConfiguration.Validate(); err != nil {
		return Config{}, err
	}
	if err = config.ApplicationConfiguration.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Default returns the built-in configuration used when no config file is
// given.
func Default() Config {
	return Config{
		ProtocolConfiguration:    defaultProtocolConfiguration(),
		ApplicationConfiguration: defaultApplicationConfiguration(),
	}
}
