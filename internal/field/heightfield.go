package field

import (
	"fmt"
	"math"
)

// Heightfield is the mutable row-major buffer owned by a pipeline run.
// Index(x, y) = x + y*Width.
type Heightfield struct {
	Width  int
	Length int
	Data   []float64
}

// New allocates a zeroed heightfield.
func New(width, length int) (*Heightfield, error) {
	if width <= 0 || length <= 0 {
		return nil, fmt.Errorf("heightfield dimensions must be positive, got %dx%d", width, length)
	}
	return &Heightfield{Width: width, Length: length, Data: make([]float64, width*length)}, nil
}

// FromValues wraps an existing buffer. The slice is used, not copied.
func FromValues(width, length int, values []float64) (*Heightfield, error) {
	if width <= 0 || length <= 0 || len(values) != width*length {
		return nil, fmt.Errorf("heightfield expects %dx%d values, got %d", width, length, len(values))
	}
	return &Heightfield{Width: width, Length: length, Data: values}, nil
}

func (h *Heightfield) Index(x, y int) int { return x + y*h.Width }

func (h *Heightfield) At(x, y int) float64 { return h.Data[x+y*h.Width] }

func (h *Heightfield) Set(x, y int, v float64) { h.Data[x+y*h.Width] = v }

func (h *Heightfield) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < h.Width && y < h.Length
}

// Add accumulates another buffer of identical size into the field.
func (h *Heightfield) Add(values []float64) {
	for i, v := range values {
		h.Data[i] += v
	}
}

// MinMax returns the smallest and largest value in the buffer.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Normalize rescales the buffer so min maps to exactly 0 and max to exactly 1.
// A constant field maps to all zeros. It reports the range found before rescaling.
func (h *Heightfield) Normalize() (float64, float64) {
	lo, hi := MinMax(h.Data)
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		for i := range h.Data {
			h.Data[i] = 0
		}
		return lo, hi
	}
	for i, v := range h.Data {
		n := (v - lo) / span
		if v == hi {
			n = 1
		}
		h.Data[i] = n
	}
	return lo, hi
}

// Freeze hands the buffer over as an immutable snapshot. The heightfield must
// not be used afterwards.
func (h *Heightfield) Freeze() *Snapshot {
	s := &Snapshot{width: h.Width, length: h.Length, data: h.Data}
	h.Data = nil
	return s
}

// Snapshot is a read-only view of a finished heightfield, safe for concurrent readers.
type Snapshot struct {
	width  int
	length int
	data   []float64
}

// NewSnapshot copies values into a frozen heightfield.
func NewSnapshot(width, length int, values []float64) (*Snapshot, error) {
	if width <= 0 || length <= 0 || len(values) != width*length {
		return nil, fmt.Errorf("snapshot expects %dx%d values, got %d", width, length, len(values))
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &Snapshot{width: width, length: length, data: data}, nil
}

func (s *Snapshot) Width() int  { return s.width }
func (s *Snapshot) Length() int { return s.length }
func (s *Snapshot) Len() int    { return len(s.data) }

func (s *Snapshot) At(x, y int) float64 { return s.data[x+y*s.width] }

func (s *Snapshot) AtIndex(i int) float64 { return s.data[i] }

// Clamped reads a cell with coordinates clamped to the grid.
func (s *Snapshot) Clamped(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= s.width {
		x = s.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= s.length {
		y = s.length - 1
	}
	return s.data[x+y*s.width]
}

// Values returns a copy of the underlying buffer.
func (s *Snapshot) Values() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}

// Equal reports whether two snapshots are bit-identical.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if other == nil || s.width != other.width || s.length != other.length {
		return false
	}
	for i, v := range s.data {
		if math.Float64bits(v) != math.Float64bits(other.data[i]) {
			return false
		}
	}
	return true
}
