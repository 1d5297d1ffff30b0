package state

import (
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/protocol/asset"
	"github.com/enpitsuLin/taiyi/pkg/util"
)

// GlobalProperties is the dynamic chain head state.
type GlobalProperties struct {
	HeadBlockNumber uint32
	HeadBlockID     util.Uint256
	Time            Timestamp

	// CurrentSupply is the total YANG in existence, TotalQi the total qi
	// across accounts and NFAs. Both feed the supply invariant check.
	CurrentSupply asset.Asset
	TotalQi       asset.Asset
}

// EncodeBinary implements the io.Serializable interface.
func (p *GlobalProperties) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(p.HeadBlockNumber)
	p.HeadBlockID.EncodeBinary(w)
	w.WriteU32LE(uint32(p.Time))
	p.CurrentSupply.EncodeBinary(w)
	p.TotalQi.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (p *GlobalProperties) DecodeBinary(r *io.BinReader) {
	p.HeadBlockNumber = r.ReadU32LE()
	p.HeadBlockID.DecodeBinary(r)
	p.Time = Timestamp(r.ReadU32LE())
	p.CurrentSupply.DecodeBinary(r)
	p.TotalQi.DecodeBinary(r)
}

// TiandaoProperties carries the simulated-world rule set, notably the zone
// connectivity caps per zone type.
type TiandaoProperties struct {
	ZoneTypeConnectionMaxNum map[ZoneType]uint32
}

// MaxConnections returns the degree cap of the given zone type, zero for
// unknown types.
func (p *TiandaoProperties) MaxConnections(zt ZoneType) uint32 {
	return p.ZoneTypeConnectionMaxNum[zt]
}

// EncodeBinary implements the io.Serializable interface.
func (p *TiandaoProperties) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(p.ZoneTypeConnectionMaxNum)))
	for zt := ZoneType(0); zt < ZoneTypeNum; zt++ {
		if max, ok := p.ZoneTypeConnectionMaxNum[zt]; ok {
			w.WriteB(byte(zt))
			w.WriteU32LE(max)
		}
	}
}

// DecodeBinary implements the io.Serializable interface.
func (p *TiandaoProperties) DecodeBinary(r *io.BinReader) {
	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	p.ZoneTypeConnectionMaxNum = make(map[ZoneType]uint32, n)
	for i := uint64(0); i < n; i++ {
		zt := ZoneType(r.ReadB())
		p.ZoneTypeConnectionMaxNum[zt] = r.ReadU32LE()
	}
}
