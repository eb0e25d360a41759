package placement

import "terragen/internal/field"

// Refine runs iterations passes of the clustering automaton over m and
// returns the final map; m itself is left untouched. A cell is active in the
// next pass when at least threshold of its Moore neighbours are active now.
// Neighbours outside the grid count as inactive.
func Refine(m *Map, iterations, threshold, workers int) *Map {
	cur := m.Clone()
	if iterations <= 0 {
		return cur
	}
	next := NewMap(m.width, m.length)
	for i := 0; i < iterations; i++ {
		step(cur, next, threshold, workers)
		cur, next = next, cur
	}
	return cur
}

func step(cur, next *Map, threshold, workers int) {
	field.ForRows(workers, cur.length, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < cur.width; x++ {
				next.Set(x, y, cur.neighbours(x, y) >= threshold)
			}
		}
	})
}
