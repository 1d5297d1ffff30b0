package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/enpitsuLin/taiyi/pkg/config"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

func TestParseCheckpoints(t *testing.T) {
	id := util.Uint256{0xab, 0xcd}
	cps, err := parseCheckpoints([]string{`[100,"` + id.StringLE() + `"]`})
	require.NoError(t, err)
	require.Len(t, cps, 1)
	assert.Equal(t, id, cps[100])

	cps, err = parseCheckpoints(nil)
	require.NoError(t, err)
	assert.Nil(t, cps)

	_, err = parseCheckpoints([]string{`not json`})
	assert.Error(t, err)

	_, err = parseCheckpoints([]string{`["x","y"]`})
	assert.Error(t, err)

	_, err = parseCheckpoints([]string{`[1,"tooshort"]`})
	assert.Error(t, err)
}

func TestStateStorageDir(t *testing.T) {
	cfg := config.Default()
	cfg.ApplicationConfiguration.DataDir = "/data"
	cfg.ApplicationConfiguration.StateStorageDir = "blockchain"
	assert.Equal(t, "/data/blockchain", stateStorageDir(cfg))

	cfg.ApplicationConfiguration.StateStorageDir = "/abs/state"
	assert.Equal(t, "/abs/state", stateStorageDir(cfg))
}

// newBoltTestStore seeds a bolt store under dir and returns the database-cfg
// path selecting it.
func newBoltTestStore(t *testing.T, dir string) string {
	dbPath := filepath.Join(dir, "chain.db")
	dbCfg := filepath.Join(dir, "database.cfg")
	require.NoError(t, os.WriteFile(dbCfg, []byte(
		`{"type":"boltdb","boltdb_options":{"file_path":"`+dbPath+`"}}`), 0o600))

	store, err := storage.NewBoltDBStore(storage.BoltDBOptions{FilePath: dbPath})
	require.NoError(t, err)
	require.NoError(t, store.Put([]byte{byte(storage.SYSStateVersion)}, []byte("v")))
	require.NoError(t, store.Put([]byte{byte(storage.SYSBlock), 0, 0, 0, 1}, []byte("block")))
	require.NoError(t, store.Close())
	return dbCfg
}

func TestDBWipeCommand(t *testing.T) {
	dir := t.TempDir()
	dbCfg := newBoltTestStore(t, dir)

	app := &cli.App{Commands: NewCommands()}
	require.NoError(t, app.Run([]string{"taiyiserver", "db", "wipe",
		"--data-dir", dir, "--database-cfg", dbCfg}))

	store, err := storage.NewBoltDBStore(storage.BoltDBOptions{FilePath: filepath.Join(dir, "chain.db")})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	_, err = store.Get([]byte{byte(storage.SYSStateVersion)})
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	_, err = store.Get([]byte{byte(storage.SYSBlock), 0, 0, 0, 1})
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestDBWipeKeepsBlockLog(t *testing.T) {
	dir := t.TempDir()
	dbCfg := newBoltTestStore(t, dir)

	app := &cli.App{Commands: NewCommands()}
	require.NoError(t, app.Run([]string{"taiyiserver", "db", "wipe",
		"--data-dir", dir, "--database-cfg", dbCfg, "--keep-block-log"}))

	store, err := storage.NewBoltDBStore(storage.BoltDBOptions{FilePath: filepath.Join(dir, "chain.db")})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	// The state is gone, the block log survives for a later replay.
	_, err = store.Get([]byte{byte(storage.SYSStateVersion)})
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	_, err = store.Get([]byte{byte(storage.SYSBlock), 0, 0, 0, 1})
	require.NoError(t, err)
}
