// Package rng provides the single seeded random stream threaded through a
// generation run, plus index-derived hashing for per-cell draws that must stay
// reproducible when cells are processed in parallel.
package rng

import "math/rand/v2"

// Source is a deterministic PCG stream. It is not safe for concurrent use;
// callers consume it in a fixed scan order.
type Source struct {
	r *rand.Rand
}

// New creates a deterministic stream for the provided seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Range returns a value in [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + (max-min)*s.r.Float64()
}

// IntN returns a value in [0, n). n <= 0 yields 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// Derive returns an independent stream for a named sub-task. The parent
// advances by exactly one draw.
func (s *Source) Derive() *Source {
	return New(int64(s.r.Uint64()))
}

// Hash3 mixes three integer coordinates with a seed.
func Hash3(x, y, z int, seed int64) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h ^= uint32(seed) ^ uint32(uint64(seed)>>32)*0x9e3779b1
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// Unit maps a hashed coordinate to [0, 1].
func Unit(x, y, z int, seed int64) float64 {
	return float64(Hash3(x, y, z, seed)&0xFFFFFF) / 0xFFFFFF
}

// Attribute maps (x, y, z, seed) to [0, 1) through a 64-bit finalizer. It
// shares no structure with Unit, so draws keyed on the same cell stay
// independent of a Unit draw that already gated that cell.
func Attribute(x, y, z int, seed int64) float64 {
	h := mix64(uint64(seed) ^ 0x9e3779b97f4a7c15)
	h = mix64(h ^ uint64(int64(x))*0xbf58476d1ce4e5b9)
	h = mix64(h ^ uint64(int64(y))*0x94d049bb133111eb)
	h = mix64(h ^ uint64(int64(z))*0x9e3779b97f4a7c15)
	return float64(h>>11) / (1 << 53)
}

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
