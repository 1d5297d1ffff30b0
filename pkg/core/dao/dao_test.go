package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/core/storage"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

func TestAccountCreateFindModify(t *testing.T) {
	d := NewSimple()

	a := d.CreateAccount(func(a *state.Account) {
		a.Name = "alice"
		a.Qi = asset.New(1000, asset.QiSymbol)
	})
	assert.EqualValues(t, 1, a.ID)

	found := d.FindAccountByName("alice")
	require.NotNil(t, found)
	assert.Equal(t, a, found)
	assert.Nil(t, d.FindAccountByName("bob"))

	_, err := d.GetAccountByName("bob")
	assert.ErrorIs(t, err, ErrNotFound)

	updated := d.ModifyAccount(a, func(a *state.Account) {
		a.Qi = asset.New(2000, asset.QiSymbol)
	})
	assert.EqualValues(t, 2000, updated.Qi.Amount)

	// The index now serves the updated copy.
	again, err := d.GetAccount(a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, again.Qi.Amount)
}

func TestNFATickIndexOrdering(t *testing.T) {
	d := NewSimple()

	mk := func(tick state.Timestamp) *state.NFA {
		return d.CreateNFA(func(n *state.NFA) {
			n.NextTickTime = tick
		})
	}
	n1 := mk(300)
	n2 := mk(100)
	n3 := mk(100)
	n4 := mk(state.TimestampMax)

	var order []state.NFAID
	d.AscendNFAByTickTime(func(n *state.NFA) bool {
		order = append(order, n.ID)
		return true
	})
	// Ties on tick time break by ascending id.
	assert.Equal(t, []state.NFAID{n2.ID, n3.ID, n1.ID, n4.ID}, order)

	// Rescheduling moves the entity within the index.
	d.ModifyNFA(n2, func(n *state.NFA) { n.NextTickTime = 500 })
	order = order[:0]
	d.AscendNFAByTickTime(func(n *state.NFA) bool {
		order = append(order, n.ID)
		return true
	})
	assert.Equal(t, []state.NFAID{n3.ID, n1.ID, n2.ID, n4.ID}, order)
}

func TestCloneIsolation(t *testing.T) {
	d := NewSimple()
	a := d.CreateAccount(func(a *state.Account) { a.Name = "alice" })

	tx := d.Clone()
	tx.ModifyAccount(a, func(a *state.Account) { a.Qi = asset.New(42, asset.QiSymbol) })
	tx.CreateAccount(func(a *state.Account) { a.Name = "bob" })

	// The parent is untouched until Replace.
	orig, err := d.GetAccountByName("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 0, orig.Qi.Amount)
	assert.Nil(t, d.FindAccountByName("bob"))

	d.Replace(tx)
	committed, err := d.GetAccountByName("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 42, committed.Qi.Amount)
	assert.NotNil(t, d.FindAccountByName("bob"))
}

func TestZoneConnections(t *testing.T) {
	d := NewSimple()

	z1 := d.CreateZone(func(z *state.Zone) { z.Name = "one"; z.Type = state.ZoneYuanye })
	z2 := d.CreateZone(func(z *state.Zone) { z.Name = "two"; z.Type = state.ZoneHupo })
	z3 := d.CreateZone(func(z *state.Zone) { z.Name = "three"; z.Type = state.ZoneMilin })

	d.CreateZoneConnect(func(c *state.ZoneConnect) { c.From = z1.ID; c.To = z2.ID })
	d.CreateZoneConnect(func(c *state.ZoneConnect) { c.From = z3.ID; c.To = z1.ID })

	require.NotNil(t, d.FindZoneConnect(z1.ID, z2.ID))
	assert.Nil(t, d.FindZoneConnect(z2.ID, z1.ID))

	connected := d.ConnectedZones(z1.ID)
	assert.Len(t, connected, 2)
	assert.Contains(t, connected, z2.ID)
	assert.Contains(t, connected, z3.ID)

	connected = d.ConnectedZones(z2.ID)
	assert.Len(t, connected, 1)
	assert.Contains(t, connected, z1.ID)
}

func TestTransactionObjectPurge(t *testing.T) {
	d := NewSimple()

	mk := func(b byte, exp state.Timestamp) util.Uint256 {
		id := util.Uint256{b}
		d.CreateTransactionObject(func(tx *state.TransactionObject) {
			tx.TrxID = id
			tx.Expiration = exp
		})
		return id
	}
	id1 := mk(1, 100)
	id2 := mk(2, 200)
	id3 := mk(3, 300)

	require.NotNil(t, d.FindTransactionObject(id1))

	assert.Equal(t, 2, d.PurgeExpiredTransactions(200))
	assert.Nil(t, d.FindTransactionObject(id1))
	assert.Nil(t, d.FindTransactionObject(id2))
	assert.NotNil(t, d.FindTransactionObject(id3))
	assert.Equal(t, 1, d.TransactionObjectCount())
}

func TestNFABalanceIndex(t *testing.T) {
	d := NewSimple()

	n := d.CreateNFA(func(n *state.NFA) { n.NextTickTime = state.TimestampMax })
	b := d.CreateNFABalance(func(b *state.NFARegularBalance) {
		b.NFA = n.ID
		b.Liquid = asset.New(10, asset.GoldSymbol)
	})

	require.NotNil(t, d.FindNFABalance(n.ID, asset.GoldSymbol))
	assert.Nil(t, d.FindNFABalance(n.ID, asset.FoodSymbol))

	d.RemoveNFABalance(b)
	assert.Nil(t, d.FindNFABalance(n.ID, asset.GoldSymbol))
}

func TestPersistRestore(t *testing.T) {
	d := NewSimple()
	store := storage.NewMemoryStore()

	acc := d.CreateAccount(func(a *state.Account) {
		a.Name = "alice"
		a.Qi = asset.New(500, asset.QiSymbol)
	})
	d.CreateContract(func(c *state.Contract) {
		c.Name = "contract.actor.default"
		c.Owner = acc.ID
		c.ABI = map[string]string{"nfa_init": "function()"}
	})
	d.CreateNFA(func(n *state.NFA) {
		n.OwnerAccount = acc.ID
		n.NextTickTime = 12345
		n.Qi = asset.New(7, asset.QiSymbol)
	})
	d.ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.HeadBlockNumber = 42
		p.Time = 999
	})
	d.ModifyTiandaoProperties(func(p *state.TiandaoProperties) {
		p.ZoneTypeConnectionMaxNum[state.ZoneYuanye] = 3
	})

	require.NoError(t, d.Persist(store))

	restored := NewSimple()
	require.NoError(t, restored.Restore(store))

	a, err := restored.GetAccountByName("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 500, a.Qi.Amount)

	c, err := restored.GetContractByName("contract.actor.default")
	require.NoError(t, err)
	assert.True(t, c.HasFunction("nfa_init"))

	n, err := restored.GetNFA(1)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, n.NextTickTime)

	assert.EqualValues(t, 42, restored.GlobalProperties().HeadBlockNumber)
	assert.EqualValues(t, 3, restored.TiandaoProperties().MaxConnections(state.ZoneYuanye))

	// Fresh ids continue after the restored sequence.
	a2 := restored.CreateAccount(func(a *state.Account) { a.Name = "bob" })
	assert.EqualValues(t, 2, a2.ID)
}

func TestPersistDropsStaleKeys(t *testing.T) {
	d := NewSimple()
	store := storage.NewMemoryStore()

	n := d.CreateNFA(func(n *state.NFA) { n.NextTickTime = state.TimestampMax })
	b := d.CreateNFABalance(func(b *state.NFARegularBalance) {
		b.NFA = n.ID
		b.Liquid = asset.New(10, asset.GoldSymbol)
	})
	require.NoError(t, d.Persist(store))

	d.RemoveNFABalance(b)
	require.NoError(t, d.Persist(store))

	restored := NewSimple()
	require.NoError(t, restored.Restore(store))
	assert.Nil(t, restored.FindNFABalance(n.ID, asset.GoldSymbol))
}
