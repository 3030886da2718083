// Package presentation turns raw backend match data into the stable, seeded
// score breakdown shown on the dashboard and in the explain view.
package presentation

import "unicode/utf16"

// mulberryIncrement is the Weyl sequence step of mulberry32.
const mulberryIncrement = 0x6D2B79F5

// Mulberry32 is a small seeded pseudo-random generator. Its output sequence is
// bit-identical to the JavaScript mulberry32 used by the web client, so scores
// rendered by either side agree for the same seed.
//
// A Mulberry32 is not safe for concurrent use.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 returns a generator seeded with seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next advances the generator and returns a float in [0, 1).
func (m *Mulberry32) Next() float64 {
	m.state += mulberryIncrement
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Source is anything that yields uniform draws in [0, 1).
type Source interface {
	Next() float64
}

// HashTitle maps a string to a 32-bit seed with a 31-multiplier rolling hash.
// Characters are hashed as UTF-16 code units to match charCodeAt in the
// browser, so titles outside the BMP seed identically on both sides.
func HashTitle(s string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(unit)
	}
	return h
}
