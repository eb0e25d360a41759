// Package placement decides which heightfield cells carry a feature. Every
// feature gets its own binary map built from height, slope, biome and a
// hashed spawn draw, optionally smoothed by a cellular automaton.
package placement

import "math/bits"

// Map is a binary grid with one bit per cell. Every row starts on a fresh
// word, so workers writing disjoint rows never share a word.
type Map struct {
	width    int
	length   int
	rowWords int
	bits     []uint64
}

// NewMap returns an all-inactive map.
func NewMap(width, length int) *Map {
	rowWords := (width + 63) / 64
	return &Map{width: width, length: length, rowWords: rowWords, bits: make([]uint64, rowWords*length)}
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Length() int { return m.length }

// Get reports whether (x, y) is active. Cells outside the grid are inactive.
func (m *Map) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.length {
		return false
	}
	return m.bits[y*m.rowWords+x>>6]&(1<<(uint(x)&63)) != 0
}

func (m *Map) Set(x, y int, active bool) {
	word := &m.bits[y*m.rowWords+x>>6]
	mask := uint64(1) << (uint(x) & 63)
	if active {
		*word |= mask
	} else {
		*word &^= mask
	}
}

// Count returns the number of active cells.
func (m *Map) Count() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equal reports whether both maps have the same size and active cells.
func (m *Map) Equal(other *Map) bool {
	if other == nil || m.width != other.width || m.length != other.length {
		return false
	}
	for i, w := range m.bits {
		if w != other.bits[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	out := &Map{width: m.width, length: m.length, rowWords: m.rowWords, bits: make([]uint64, len(m.bits))}
	copy(out.bits, m.bits)
	return out
}

// neighbours counts active Moore neighbours of (x, y).
func (m *Map) neighbours(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if m.Get(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}
