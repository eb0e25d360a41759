package field

import "math"

// Slope returns the terrain steepness at (x, y) in degrees. Heights are
// scaled by terrainHeight and horizontal distances by cellSize; border cells
// fall back to one-sided differences.
func (s *Snapshot) Slope(x, y int, terrainHeight, cellSize float64) float64 {
	if cellSize <= 0 {
		cellSize = 1
	}
	dx := s.gradient(x-1, y, x+1, y)
	dy := s.gradient(x, y-1, x, y+1)
	rise := math.Hypot(dx, dy) * terrainHeight / cellSize
	return math.Atan(rise) * 180 / math.Pi
}

func (s *Snapshot) gradient(x0, y0, x1, y1 int) float64 {
	span := 2.0
	if x0 < 0 || y0 < 0 {
		x0, y0 = max(x0, 0), max(y0, 0)
		span--
	}
	if x1 >= s.width || y1 >= s.length {
		x1, y1 = min(x1, s.width-1), min(y1, s.length-1)
		span--
	}
	if span <= 0 {
		return 0
	}
	return (s.At(x1, y1) - s.At(x0, y0)) / span
}
