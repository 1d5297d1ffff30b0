package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testRegenSeconds = 432000

func TestManaBarRegeneration(t *testing.T) {
	m := ManaBar{CurrentMana: 0, LastUpdateTime: 1000}

	m.Update(testRegenSeconds, 1000+testRegenSeconds/2, testRegenSeconds)
	assert.EqualValues(t, testRegenSeconds/2, m.CurrentMana)

	// Full period refills to the maximum and never beyond it.
	m.Update(testRegenSeconds, 1000+2*testRegenSeconds, testRegenSeconds)
	assert.EqualValues(t, testRegenSeconds, m.CurrentMana)
}

func TestManaBarMonotonicity(t *testing.T) {
	m := ManaBar{CurrentMana: 123, LastUpdateTime: 0}
	last := m.CurrentMana
	for now := Timestamp(1); now < 1000; now += 37 {
		m.Update(1000000, now, testRegenSeconds)
		assert.GreaterOrEqual(t, m.CurrentMana, last)
		assert.LessOrEqual(t, m.CurrentMana, int64(1000000))
		last = m.CurrentMana
	}
}

func TestManaBarIdempotentWithinSecond(t *testing.T) {
	m := ManaBar{CurrentMana: 10, LastUpdateTime: 500}
	m.Update(1000000, 600, testRegenSeconds)
	after := m.CurrentMana
	m.Update(1000000, 600, testRegenSeconds)
	assert.Equal(t, after, m.CurrentMana)
}

func TestManaBarClampAboveMax(t *testing.T) {
	// Shrinking qi lowers the ceiling, the bar follows on the next update.
	m := ManaBar{CurrentMana: 5000, LastUpdateTime: 100}
	m.Update(1000, 200, testRegenSeconds)
	assert.EqualValues(t, 1000, m.CurrentMana)
}

func TestManaBarUse(t *testing.T) {
	m := ManaBar{CurrentMana: 100}
	assert.True(t, m.HasMana(100))
	assert.False(t, m.HasMana(101))

	m.UseMana(40)
	assert.EqualValues(t, 60, m.CurrentMana)

	m.UseManaClamped(100)
	assert.EqualValues(t, 0, m.CurrentMana)
}
