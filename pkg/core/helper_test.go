package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

const testGenesisTime = state.Timestamp(1600000000)

// newTestChain boots a fresh chain over a memory store with a no-op VM.
func newTestChain(t *testing.T) *Blockchain {
	return newTestChainWithVM(t, &NullExecutor{})
}

func newTestChainWithVM(t *testing.T, vmExec VMExecutor) *Blockchain {
	bc, err := NewBlockchain(OpenArgs{
		Store:         storage.NewMemoryStore(),
		VM:            vmExec,
		ChainID:       util.Uint256{0x42}, // test chain id
		InitialSupply: YangInitSupply,
		GenesisTime:   testGenesisTime,
		Logger:        zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	bc.SetSkipFlags(SkipTransactionSignatures | SkipAuthorityCheck)
	return bc
}

// mustNewKey makes a random private key.
func mustNewKey(t *testing.T) *keys.PrivateKey {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

// newTestAccount injects an account with the given qi/mana into the working
// state.
func newTestAccount(t *testing.T, bc *Blockchain, name string, qi int64) *state.Account {
	db := bc.WorkingDB()
	require.Nil(t, db.DAO().FindAccountByName(name))
	a := db.DAO().CreateAccount(func(a *state.Account) {
		a.Name = name
		a.Created = db.HeadBlockTime()
		a.Balance = asset.New(0, asset.YangSymbol)
		a.Qi = asset.New(qi, asset.QiSymbol)
		a.Mana = state.ManaBar{CurrentMana: qi, LastUpdateTime: db.HeadBlockTime()}
	})
	db.DAO().ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.TotalQi = p.TotalQi.Add(asset.New(qi, asset.QiSymbol))
	})
	return a
}
