package state

import (
	"github.com/enpitsuLin/taiyi/pkg/io"
)

// ZoneType enumerates the fixed terrain and settlement kinds.
type ZoneType uint8

// Zone types in their canonical order. Anything out of range maps to
// ZoneInvalid.
const (
	ZoneYuanye ZoneType = iota // 原野
	ZoneHupo                   // 湖泊
	ZoneNongtian               // 农田

	ZoneLindi   // 林地
	ZoneMilin   // 密林
	ZoneYuanlin // 园林

	ZoneShanyue // 山岳
	ZoneDongxue // 洞穴
	ZoneShilin  // 石林

	ZoneQiuling  // 丘陵
	ZoneTaoyuan  // 桃源
	ZoneSangyuan // 桑园

	ZoneXiagu   // 峡谷
	ZoneZaoze   // 沼泽
	ZoneYaoyuan // 药园

	ZoneHaiyang  // 海洋
	ZoneShamo    // 沙漠
	ZoneHuangye  // 荒野
	ZoneAnyuan   // 暗渊
	ZoneDuhui    // 都会
	ZoneMenpai   // 门派
	ZoneShizhen  // 市镇
	ZoneGuansai  // 关寨
	ZoneCunzhuang // 村庄

	ZoneTypeNum
	ZoneInvalid ZoneType = 0xff
)

var zoneTypeStrings = [ZoneTypeNum]string{
	"YUANYE", "HUPO", "NONGTIAN",
	"LINDI", "MILIN", "YUANLIN",
	"SHANYUE", "DONGXUE", "SHILIN",
	"QIULIN", "TAOYUAN", "SANGYUAN",
	"XIAGU", "ZAOZE", "YAOYUAN",
	"HAIYANG", "SHAMO", "HUANGYE", "ANYUAN",
	"DUHUI", "MENPAI", "SHIZHEN", "GUANSAI", "CUNZHUANG",
}

// ZoneTypeFromString maps a type token to its ZoneType, ZoneInvalid if the
// token is unknown.
func ZoneTypeFromString(s string) ZoneType {
	for i, token := range zoneTypeStrings {
		if s == token {
			return ZoneType(i)
		}
	}
	return ZoneInvalid
}

// String implements the Stringer interface; unknown types give an empty
// string.
func (z ZoneType) String() string {
	if z >= ZoneTypeNum {
		return ""
	}
	return zoneTypeStrings[z]
}

// Zone is a named region backed by an NFA.
type Zone struct {
	ID   ZoneID
	Name string
	NFA  NFAID
	Type ZoneType
}

// EncodeBinary implements the io.Serializable interface.
func (z *Zone) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(z.ID))
	w.WriteString(z.Name)
	w.WriteU64LE(uint64(z.NFA))
	w.WriteB(byte(z.Type))
}

// DecodeBinary implements the io.Serializable interface.
func (z *Zone) DecodeBinary(r *io.BinReader) {
	z.ID = ZoneID(r.ReadU64LE())
	z.Name = r.ReadString()
	z.NFA = NFAID(r.ReadU64LE())
	z.Type = ZoneType(r.ReadB())
}

// ZoneConnect is a directed edge between two zones, unique per ordered pair.
type ZoneConnect struct {
	ID   ZoneConnectID
	From ZoneID
	To   ZoneID
}

// EncodeBinary implements the io.Serializable interface.
func (c *ZoneConnect) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(c.ID))
	w.WriteU64LE(uint64(c.From))
	w.WriteU64LE(uint64(c.To))
}

// DecodeBinary implements the io.Serializable interface.
func (c *ZoneConnect) DecodeBinary(r *io.BinReader) {
	c.ID = ZoneConnectID(r.ReadU64LE())
	c.From = ZoneID(r.ReadU64LE())
	c.To = ZoneID(r.ReadU64LE())
}
