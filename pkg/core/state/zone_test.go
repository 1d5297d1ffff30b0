package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneTypeFromString(t *testing.T) {
	assert.Equal(t, ZoneYuanye, ZoneTypeFromString("YUANYE"))
	assert.Equal(t, ZoneCunzhuang, ZoneTypeFromString("CUNZHUANG"))
	assert.Equal(t, ZoneInvalid, ZoneTypeFromString("ATLANTIS"))
	assert.Equal(t, ZoneInvalid, ZoneTypeFromString(""))
}

func TestZoneTypeString(t *testing.T) {
	assert.Equal(t, "YUANYE", ZoneYuanye.String())
	assert.Equal(t, "GUANSAI", ZoneGuansai.String())
	assert.Equal(t, "", ZoneInvalid.String())
	assert.Equal(t, "", ZoneTypeNum.String())
}

func TestZoneTypeCount(t *testing.T) {
	assert.EqualValues(t, 24, ZoneTypeNum)

	// Every token round-trips through the parser.
	for zt := ZoneType(0); zt < ZoneTypeNum; zt++ {
		assert.Equal(t, zt, ZoneTypeFromString(zt.String()))
	}
}
