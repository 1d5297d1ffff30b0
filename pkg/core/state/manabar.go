package state

import "github.com/enpitsuLin/taiyi/pkg/io"

// ManaBar is the regenerating resource budget attached to accounts and NFAs.
// The maximum is not stored, it is derived from the holder's qi.
type ManaBar struct {
	CurrentMana    int64
	LastUpdateTime Timestamp
}

// Update linearly regenerates mana up to maxMana. Repeated calls within the
// same second are no-ops, which makes regeneration idempotent.
func (m *ManaBar) Update(maxMana int64, now Timestamp, regenSeconds int64) {
	if now <= m.LastUpdateTime {
		return
	}
	dt := int64(now - m.LastUpdateTime)
	m.LastUpdateTime = now
	if m.CurrentMana >= maxMana {
		// Shrinking qi can leave the bar above the maximum, clamp it.
		m.CurrentMana = maxMana
		return
	}
	if regenSeconds <= 0 {
		m.CurrentMana = maxMana
		return
	}
	delta := dt * maxMana / regenSeconds
	m.CurrentMana += delta
	if m.CurrentMana > maxMana {
		m.CurrentMana = maxMana
	}
}

// HasMana reports whether the bar can cover the given charge.
func (m *ManaBar) HasMana(mana int64) bool {
	return m.CurrentMana >= mana
}

// UseMana subtracts the charge with no floor, so the bar can go negative;
// callers on the strict path must check HasMana first. UseManaClamped is the
// variant that floors at zero.
func (m *ManaBar) UseMana(mana int64) {
	m.CurrentMana -= mana
}

// UseManaClamped subtracts the charge flooring the bar at zero. Used on the
// tick path where under-funding is tolerated.
func (m *ManaBar) UseManaClamped(mana int64) {
	if m.CurrentMana < mana {
		m.CurrentMana = 0
	} else {
		m.CurrentMana -= mana
	}
}

// EncodeBinary implements the io.Serializable interface.
func (m *ManaBar) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(m.CurrentMana))
	w.WriteU32LE(uint32(m.LastUpdateTime))
}

// DecodeBinary implements the io.Serializable interface.
func (m *ManaBar) DecodeBinary(r *io.BinReader) {
	m.CurrentMana = int64(r.ReadU64LE())
	m.LastUpdateTime = Timestamp(r.ReadU32LE())
}
