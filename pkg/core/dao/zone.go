package dao

import (
	"github.com/enpitsuLin/taiyi/pkg/core/state"
)

// CreateZone inserts a new zone, assigning it a fresh id.
func (d *Simple) CreateZone(init func(*state.Zone)) *state.Zone {
	d.seq.zone++
	z := &state.Zone{ID: state.ZoneID(d.seq.zone)}
	init(z)
	d.zonesByID.ReplaceOrInsert(z)
	d.zonesByName.ReplaceOrInsert(z)
	return z
}

// FindZoneByName returns the named zone or nil.
func (d *Simple) FindZoneByName(name string) *state.Zone {
	z, ok := d.zonesByName.Get(&state.Zone{Name: name})
	if !ok {
		return nil
	}
	return z
}

// GetZoneByName returns the named zone or ErrNotFound.
func (d *Simple) GetZoneByName(name string) (*state.Zone, error) {
	if z := d.FindZoneByName(name); z != nil {
		return z, nil
	}
	return nil, notFound("zone", name)
}

// GetZone returns the zone with the given id or ErrNotFound.
func (d *Simple) GetZone(id state.ZoneID) (*state.Zone, error) {
	z, ok := d.zonesByID.Get(&state.Zone{ID: id})
	if !ok {
		return nil, notFound("zone id", id)
	}
	return z, nil
}

// ModifyZone applies f to a copy of the zone, reindexes it and returns the
// new pointer.
func (d *Simple) ModifyZone(z *state.Zone, f func(*state.Zone)) *state.Zone {
	d.zonesByID.Delete(z)
	d.zonesByName.Delete(z)
	cp := *z
	f(&cp)
	d.zonesByID.ReplaceOrInsert(&cp)
	d.zonesByName.ReplaceOrInsert(&cp)
	return &cp
}

// AscendZones walks all zones in id order until f returns false.
func (d *Simple) AscendZones(f func(*state.Zone) bool) {
	d.zonesByID.Ascend(f)
}

// CreateZoneConnect inserts a new directed edge.
func (d *Simple) CreateZoneConnect(init func(*state.ZoneConnect)) *state.ZoneConnect {
	d.seq.connect++
	c := &state.ZoneConnect{ID: state.ZoneConnectID(d.seq.connect)}
	init(c)
	d.connectsByFromTo.ReplaceOrInsert(c)
	d.connectsByToFrom.ReplaceOrInsert(c)
	return c
}

// FindZoneConnect returns the directed (from, to) edge or nil.
func (d *Simple) FindZoneConnect(from, to state.ZoneID) *state.ZoneConnect {
	c, ok := d.connectsByFromTo.Get(&state.ZoneConnect{From: from, To: to})
	if !ok {
		return nil
	}
	return c
}

// ConnectedZones gathers the set of zones connected to the given one in
// either direction.
func (d *Simple) ConnectedZones(zone state.ZoneID) map[state.ZoneID]struct{} {
	connected := make(map[state.ZoneID]struct{})
	d.connectsByFromTo.AscendGreaterOrEqual(&state.ZoneConnect{From: zone}, func(c *state.ZoneConnect) bool {
		if c.From != zone {
			return false
		}
		connected[c.To] = struct{}{}
		return true
	})
	d.connectsByToFrom.AscendGreaterOrEqual(&state.ZoneConnect{To: zone}, func(c *state.ZoneConnect) bool {
		if c.To != zone {
			return false
		}
		connected[c.From] = struct{}{}
		return true
	})
	return connected
}

// AscendZoneConnects walks all edges in (from, to) order until f returns
// false.
func (d *Simple) AscendZoneConnects(f func(*state.ZoneConnect) bool) {
	d.connectsByFromTo.Ascend(f)
}
