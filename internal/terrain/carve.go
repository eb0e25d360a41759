package terrain

import (
	"fmt"
	"math"

	"terragen/internal/config"
	"terragen/internal/field"
)

// LakeStage flattens a disc of the terrain down to the water level. Heights
// are only ever lowered.
type LakeStage struct {
	cfg config.LakeConfig
}

func NewLakeStage(cfg config.LakeConfig) *LakeStage {
	return &LakeStage{cfg: cfg}
}

func (s *LakeStage) Name() string { return "lake" }

func (s *LakeStage) Validate(width, length int) error {
	if s.cfg.Radius <= 0 {
		return fmt.Errorf("lake radius must be positive, got %f", s.cfg.Radius)
	}
	return nil
}

func (s *LakeStage) Apply(hf *field.Heightfield, run *Run) error {
	cx, cy := s.cfg.Center.X, s.cfg.Center.Y
	r2 := s.cfg.Radius * s.cfg.Radius
	level := s.cfg.WaterLevel

	y0 := max(0, int(math.Floor(cy-s.cfg.Radius)))
	y1 := min(hf.Length, int(math.Ceil(cy+s.cfg.Radius))+1)
	x0 := max(0, int(math.Floor(cx-s.cfg.Radius)))
	x1 := min(hf.Width, int(math.Ceil(cx+s.cfg.Radius))+1)
	if y0 >= y1 || x0 >= x1 {
		return nil
	}

	// Each cell only reads and writes itself, so rows can be done in place.
	field.ForRows(run.Workers, y1-y0, func(r0, r1 int) {
		for y := y0 + r0; y < y0+r1; y++ {
			dy := float64(y) - cy
			for x := x0; x < x1; x++ {
				dx := float64(x) - cx
				if dx*dx+dy*dy > r2 {
					continue
				}
				i := x + y*hf.Width
				if hf.Data[i] > level {
					hf.Data[i] = level
				}
			}
		}
	})
	return nil
}

// RiverStage carves a channel along a path that either follows the steepest
// descent from the start point or runs straight to the end point.
type RiverStage struct {
	index int
	cfg   config.RiverConfig
}

func NewRiverStage(index int, cfg config.RiverConfig) *RiverStage {
	if cfg.Mode == "" {
		cfg.Mode = config.RiverDescent
	}
	return &RiverStage{index: index, cfg: cfg}
}

func (s *RiverStage) Name() string { return fmt.Sprintf("river[%d]", s.index) }

func (s *RiverStage) Validate(width, length int) error {
	if s.cfg.Width <= 0 {
		return fmt.Errorf("river width must be positive, got %f", s.cfg.Width)
	}
	return nil
}

func (s *RiverStage) Apply(hf *field.Heightfield, run *Run) error {
	var path []config.Vec2
	if s.cfg.Mode == config.RiverLinear {
		path = []config.Vec2{s.cfg.Start, s.cfg.End}
	} else {
		path = DescentPath(hf, s.cfg.Start, s.cfg.End, s.cfg.MaxSteps)
	}
	CarvePath(hf, path, s.cfg.Width, s.cfg.Intensity, run.Workers)
	return nil
}

// DescentPath walks downhill from start, always moving to the lowest of the
// eight neighbours, until it reaches a local minimum, the border, maxSteps or
// the end point. The path is then closed with a straight run to end.
func DescentPath(hf *field.Heightfield, start, end config.Vec2, maxSteps int) []config.Vec2 {
	if maxSteps <= 0 {
		maxSteps = 4 * (hf.Width + hf.Length)
	}
	x := clampInt(int(math.Round(start.X)), 0, hf.Width-1)
	y := clampInt(int(math.Round(start.Y)), 0, hf.Length-1)
	path := []config.Vec2{{X: float64(x), Y: float64(y)}}

	for step := 0; step < maxSteps; step++ {
		if math.Hypot(float64(x)-end.X, float64(y)-end.Y) <= 1 {
			break
		}
		if x == 0 || y == 0 || x == hf.Width-1 || y == hf.Length-1 {
			if step > 0 {
				break
			}
		}
		bestX, bestY := x, y
		best := hf.At(x, y)
		for _, d := range neighbours8 {
			nx, ny := x+d[0], y+d[1]
			if !hf.InBounds(nx, ny) {
				continue
			}
			if h := hf.At(nx, ny); h < best {
				best, bestX, bestY = h, nx, ny
			}
		}
		if bestX == x && bestY == y {
			break
		}
		x, y = bestX, bestY
		path = append(path, config.Vec2{X: float64(x), Y: float64(y)})
	}

	last := path[len(path)-1]
	if last.X != end.X || last.Y != end.Y {
		path = append(path, end)
	}
	return path
}

// TrailStage carves a shallow track between two points, wobbling sideways
// along a sine wave whose phase comes from the run's random stream.
type TrailStage struct {
	index int
	cfg   config.TrailConfig
}

func NewTrailStage(index int, cfg config.TrailConfig) *TrailStage {
	return &TrailStage{index: index, cfg: cfg}
}

func (s *TrailStage) Name() string { return fmt.Sprintf("trail[%d]", s.index) }

func (s *TrailStage) Validate(width, length int) error {
	if s.cfg.Width <= 0 {
		return fmt.Errorf("trail width must be positive, got %f", s.cfg.Width)
	}
	return nil
}

func (s *TrailStage) Apply(hf *field.Heightfield, run *Run) error {
	phase := run.Random.Range(0, 2*math.Pi)
	path := TrailPath(s.cfg.Start, s.cfg.End, s.cfg.JitterAmplitude, s.cfg.JitterFrequency, phase)
	CarvePath(hf, path, s.cfg.Width, s.cfg.Intensity, run.Workers)
	return nil
}

// TrailPath samples the straight line from start to end roughly once per
// cell and offsets every sample perpendicular to it. The offset is enveloped
// so both endpoints stay fixed.
func TrailPath(start, end config.Vec2, amplitude, frequency, phase float64) []config.Vec2 {
	dx, dy := end.X-start.X, end.Y-start.Y
	dist := math.Hypot(dx, dy)
	samples := max(2, int(math.Ceil(dist))+1)
	var px, py float64
	if dist > 0 {
		px, py = -dy/dist, dx/dist
	}

	path := make([]config.Vec2, samples)
	for i := range path {
		t := float64(i) / float64(samples-1)
		offset := amplitude * math.Sin(math.Pi*t) * math.Sin(2*math.Pi*frequency*t+phase)
		path[i] = config.Vec2{
			X: start.X + dx*t + px*offset,
			Y: start.Y + dy*t + py*offset,
		}
	}
	return path
}

// CarvePath lowers every cell within width of the polyline by
// smoothstep(width, 0, distance) * intensity, never below zero.
func CarvePath(hf *field.Heightfield, path []config.Vec2, width, intensity float64, workers int) {
	if len(path) == 0 || width <= 0 || intensity == 0 {
		return
	}
	minX, minY := path[0].X, path[0].Y
	maxX, maxY := minX, minY
	for _, p := range path[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	x0 := max(0, int(math.Floor(minX-width)))
	x1 := min(hf.Width, int(math.Ceil(maxX+width))+1)
	y0 := max(0, int(math.Floor(minY-width)))
	y1 := min(hf.Length, int(math.Ceil(maxY+width))+1)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	field.ForRows(workers, y1-y0, func(r0, r1 int) {
		for y := y0 + r0; y < y0+r1; y++ {
			for x := x0; x < x1; x++ {
				d := distanceToPath(float64(x), float64(y), path)
				if d >= width {
					continue
				}
				depth := smoothstep(width, 0, d) * intensity
				i := x + y*hf.Width
				hf.Data[i] = math.Max(0, hf.Data[i]-depth)
			}
		}
	})
}

func distanceToPath(x, y float64, path []config.Vec2) float64 {
	if len(path) == 1 {
		return math.Hypot(x-path[0].X, y-path[0].Y)
	}
	best := math.Inf(1)
	for i := 1; i < len(path); i++ {
		if d := distanceToSegment(x, y, path[i-1], path[i]); d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(x, y float64, a, b config.Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := clamp01(((x-a.X)*dx + (y-a.Y)*dy) / lenSq)
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}

// smoothstep is the Hermite step between edge0 and edge1; edge0 may exceed edge1.
func smoothstep(edge0, edge1, v float64) float64 {
	if edge0 == edge1 {
		if v < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((v - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
