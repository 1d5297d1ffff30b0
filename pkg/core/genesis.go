package core

import (
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
)

// defaultZoneConnectionMax seeds the per-type zone degree caps of the genesis
// tiandao properties.
var defaultZoneConnectionMax = map[state.ZoneType]uint32{
	state.ZoneYuanye:    3,
	state.ZoneHupo:      3,
	state.ZoneNongtian:  3,
	state.ZoneLindi:     3,
	state.ZoneMilin:     3,
	state.ZoneYuanlin:   3,
	state.ZoneShanyue:   3,
	state.ZoneDongxue:   2,
	state.ZoneShilin:    3,
	state.ZoneQiuling:   3,
	state.ZoneTaoyuan:   2,
	state.ZoneSangyuan:  3,
	state.ZoneXiagu:     2,
	state.ZoneZaoze:     3,
	state.ZoneYaoyuan:   2,
	state.ZoneHaiyang:   4,
	state.ZoneShamo:     3,
	state.ZoneHuangye:   4,
	state.ZoneAnyuan:    1,
	state.ZoneDuhui:     6,
	state.ZoneMenpai:    4,
	state.ZoneShizhen:   5,
	state.ZoneGuansai:   4,
	state.ZoneCunzhuang: 4,
}

// InitGenesisState populates a fresh container: the committee and world
// accounts, the default contracts, the basic NFA symbols, the initial supply
// and the world rule set.
func (db *Database) InitGenesisState(initialSupply int64, genesisTime state.Timestamp) error {
	supply := asset.New(initialSupply, asset.YangSymbol)

	committee := db.dao.CreateAccount(func(a *state.Account) {
		a.Name = CommitteeAccount
		a.Created = genesisTime
		a.Balance = supply
		a.Qi = asset.New(initialSupply, asset.QiSymbol)
		a.Mana = state.ManaBar{CurrentMana: initialSupply, LastUpdateTime: genesisTime}
	})
	db.dao.CreateAccount(func(a *state.Account) {
		a.Name = YemingAccount
		a.Created = genesisTime
		a.Balance = asset.New(0, asset.YangSymbol)
		a.Qi = asset.New(0, asset.QiSymbol)
		a.Mana = state.ManaBar{LastUpdateTime: genesisTime}
	})
	db.dao.CreateAccount(func(a *state.Account) {
		a.Name = InitSiming
		a.Created = genesisTime
		a.Balance = asset.New(0, asset.YangSymbol)
		a.Qi = asset.New(0, asset.QiSymbol)
		a.Mana = state.ManaBar{LastUpdateTime: genesisTime}
	})

	for _, name := range []string{ActorContractName, ZoneContractName} {
		name := name
		db.dao.CreateContract(func(c *state.Contract) {
			c.Name = name
			c.Owner = committee.ID
			c.ABI = map[string]string{
				NFAInitFuncName:      "function ()",
				NFAHeartBeatFuncName: "function ()",
			}
			c.Data = nil
		})
	}

	db.dao.ModifyGlobalProperties(func(p *state.GlobalProperties) {
		p.HeadBlockNumber = 0
		p.Time = genesisTime
		p.CurrentSupply = supply
		p.TotalQi = asset.New(initialSupply, asset.QiSymbol)
	})
	db.dao.ModifyTiandaoProperties(func(p *state.TiandaoProperties) {
		for zt, max := range defaultZoneConnectionMax {
			p.ZoneTypeConnectionMaxNum[zt] = max
		}
	})

	if err := db.CreateBasicNFASymbols(); err != nil {
		return fmt.Errorf("genesis symbol bootstrap: %w", err)
	}
	return nil
}
