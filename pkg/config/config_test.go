package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
ProtocolConfiguration:
  ChainID: "0000000000000000000000000000000000000000000000000000000000000042"
  InitialSupply: 12345
  GenesisTime: 1700000000
ApplicationConfiguration:
  LogLevel: debug
  DataDir: /tmp/taiyi
  StateStorageDir: chainstate
  FlushStateInterval: 500
  DBConfiguration:
    Type: leveldb
    LevelDBOptions:
      DataDirectoryPath: /tmp/taiyi/db
  RPC:
    Enabled: true
    Addresses:
      - ":10332"
`), 0o600))

	cfg, err := LoadFile(cfgPath)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, cfg.ProtocolConfiguration.InitialSupply)
	assert.EqualValues(t, 1700000000, cfg.ProtocolConfiguration.GenesisTime)
	assert.Equal(t, "leveldb", cfg.ApplicationConfiguration.DBConfiguration.Type)
	assert.True(t, cfg.ApplicationConfiguration.RPC.Enabled)
	assert.EqualValues(t, 500, cfg.ApplicationConfiguration.FlushStateInterval)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	cfgPath := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ApplicationConfiguration:\n  LogEncoding: xml\n"), 0o600))
	_, err = LoadFile(cfgPath)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(cfgPath, []byte("NoSuchSection: {}\n"), 0o600))
	_, err = LoadFile(cfgPath)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ProtocolConfiguration.Validate())
	require.NoError(t, cfg.ApplicationConfiguration.Validate())
	assert.EqualValues(t, 10000, cfg.ApplicationConfiguration.FlushStateInterval)
}

func TestLoggerBuild(t *testing.T) {
	log, level, err := Logger{LogLevel: "warn"}.NewLogger()
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, "warn", level.String())

	_, _, err = Logger{LogLevel: "noisy"}.NewLogger()
	assert.Error(t, err)
}
