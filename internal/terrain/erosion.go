package terrain

import (
	"fmt"

	"terragen/internal/config"
	"terragen/internal/field"
)

// ErosionStage runs thermal (talus) erosion. Every pass reads one buffer and
// writes the other, so the result does not depend on row scheduling.
type ErosionStage struct {
	cfg config.ErosionConfig
}

func NewErosionStage(cfg config.ErosionConfig) *ErosionStage {
	return &ErosionStage{cfg: cfg}
}

func (s *ErosionStage) Name() string { return "erosion" }

func (s *ErosionStage) Validate(width, length int) error {
	if s.cfg.TalusAngle < 0 {
		return fmt.Errorf("erosion talus angle cannot be negative, got %f", s.cfg.TalusAngle)
	}
	return nil
}

func (s *ErosionStage) Apply(hf *field.Heightfield, run *Run) error {
	if s.cfg.Iterations <= 0 || hf.Width < 3 || hf.Length < 3 {
		return nil
	}
	src := hf.Data
	dst := make([]float64, len(src))
	for i := 0; i < s.cfg.Iterations; i++ {
		ErodePass(src, dst, hf.Width, hf.Length, s.cfg.TalusAngle, run.Workers)
		src, dst = dst, src
	}
	if &src[0] != &hf.Data[0] {
		copy(hf.Data, src)
	}
	return nil
}

// ErodePass computes one erosion pass from src into dst. For every pair of
// interior Moore neighbours whose height difference exceeds talus, half the
// excess moves from the higher cell to the lower one. Each cell gathers its
// own outflow and inflow, so the pass is conserving and border cells are
// copied unchanged.
func ErodePass(src, dst []float64, width, length int, talus float64, workers int) {
	field.ForRows(workers, length, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := x + y*width
				if x == 0 || y == 0 || x == width-1 || y == length-1 {
					dst[i] = src[i]
					continue
				}
				h := src[i]
				delta := 0.0
				for _, d := range neighbours8 {
					nx, ny := x+d[0], y+d[1]
					if nx == 0 || ny == 0 || nx == width-1 || ny == length-1 {
						continue
					}
					diff := h - src[nx+ny*width]
					if diff > talus {
						delta -= (diff - talus) / 2
					} else if -diff > talus {
						delta += (-diff - talus) / 2
					}
				}
				dst[i] = h + delta
			}
		}
	})
}
