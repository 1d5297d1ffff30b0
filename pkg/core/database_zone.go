package core

import (
	"fmt"

	"github.com/enpitsuLin/taiyi/pkg/core/state"
	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// CreateZoneForCommittee runs the committee path of zone creation: mint the
// backing NFA from the default zone symbol, create the zone and initialize
// its ecology. Non-committee creators are rejected until the proposal path is
// specified.
func (db *Database) CreateZoneForCommittee(creator *state.Account, name string, zoneType state.ZoneType,
	sigkeys []*keys.PublicKey, result *OperationResult) (*state.Zone, error) {
	symbolObj := db.dao.FindNFASymbol(ZoneSymbolName)
	if symbolObj == nil {
		return nil, fmt.Errorf("%w: NFA symbol named %q is not exist", ErrNotFound, ZoneSymbolName)
	}

	ctx := vm.NewContext()
	vm.InitializeBaseEnv(ctx)

	nfa, err := db.CreateNFAEntity(creator, symbolObj, sigkeys, true, ctx)
	if err != nil {
		return nil, err
	}

	result.ContractAffecteds = append(result.ContractAffecteds,
		NFAAffected{Account: creator.Name, Item: nfa.ID, Action: NFACreateFor},
		NFAAffected{Account: creator.Name, Item: nfa.ID, Action: NFACreateBy},
	)

	zone := db.dao.CreateZone(func(z *state.Zone) {
		z.Name = name
		z.NFA = nfa.ID
		z.Type = zoneType
	})
	db.GrowZone(zone)
	return zone, nil
}

// GrowZone seeds the ecology of a fresh zone in its backing NFA data.
func (db *Database) GrowZone(zone *state.Zone) {
	nfa := db.dao.FindNFA(zone.NFA)
	if nfa == nil {
		return
	}
	db.dao.ModifyNFA(nfa, func(n *state.NFA) {
		data := n.Data.Clone()
		if data == nil {
			data = vm.Table{}
		}
		data["zone_type"] = zone.Type.String()
		n.Data = data
	})
}

// ConnectZones inserts a directed edge after checking ownership of the
// target zone and the degree caps of both endpoints. Reasserting an edge
// that already exists in the opposite direction does not count against the
// cap.
func (db *Database) ConnectZones(account *state.Account, fromName, toName string) error {
	toZone := db.dao.FindZoneByName(toName)
	if toZone == nil {
		return fmt.Errorf("%w: there is no zone named %q", ErrNotFound, toName)
	}
	toNFA, err := db.dao.GetNFA(toZone.NFA)
	if err != nil {
		return err
	}
	owner, err := db.dao.GetAccount(toNFA.OwnerAccount)
	if err != nil {
		return err
	}
	if owner.Name != account.Name {
		return fmt.Errorf("%w: account %s is not the owner of zone %s", ErrAuthority, account.Name, toName)
	}

	fromZone := db.dao.FindZoneByName(fromName)
	if fromZone == nil {
		return fmt.Errorf("%w: there is no zone named %q", ErrNotFound, fromName)
	}

	if db.dao.FindZoneConnect(fromZone.ID, toZone.ID) != nil {
		return fmt.Errorf("%w: connection from %q to %q is already exist", ErrValidation, fromZone.Name, toZone.Name)
	}

	tiandao := db.dao.TiandaoProperties()

	connected := db.dao.ConnectedZones(fromZone.ID)
	maxNum := tiandao.MaxConnections(fromZone.Type)
	if _, ok := connected[toZone.ID]; !ok && uint32(len(connected)) >= maxNum {
		return fmt.Errorf("%w: the \"from zone\"'s connections exceed the limit", ErrValidation)
	}
	connected = db.dao.ConnectedZones(toZone.ID)
	maxNum = tiandao.MaxConnections(toZone.Type)
	if _, ok := connected[fromZone.ID]; !ok && uint32(len(connected)) >= maxNum {
		return fmt.Errorf("%w: the \"to zone\"'s connections exceed the limit", ErrValidation)
	}

	db.dao.CreateZoneConnect(func(c *state.ZoneConnect) {
		c.From = fromZone.ID
		c.To = toZone.ID
	})
	return nil
}
