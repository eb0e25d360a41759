package terrain

import (
	"errors"
	"fmt"

	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/rng"
)

// ErrInvalidDimensions is returned when midpoint displacement is asked to run
// on a grid whose sides are not 2^n+1. Settings validation reports the same
// sentinel, so callers match it whichever check fires first.
var ErrInvalidDimensions = config.ErrInvalidDimensions

// DisplacementStage runs midpoint displacement and adds the result into the field.
type DisplacementStage struct {
	cfg config.DisplacementConfig
}

func NewDisplacementStage(cfg config.DisplacementConfig) *DisplacementStage {
	return &DisplacementStage{cfg: cfg}
}

func (s *DisplacementStage) Name() string { return "displacement" }

func (s *DisplacementStage) Validate(width, length int) error {
	return checkDisplacementDimensions(width, length)
}

func (s *DisplacementStage) Apply(hf *field.Heightfield, run *Run) error {
	values, err := MidpointDisplacement(hf.Width, hf.Length, s.cfg.Factor, s.cfg.Decay, run.Random)
	if err != nil {
		return err
	}
	hf.Add(values)
	return nil
}

func checkDisplacementDimensions(width, length int) error {
	if !config.IsPowerOfTwoPlusOne(width) || !config.IsPowerOfTwoPlusOne(length) {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, length)
	}
	return nil
}

// MidpointDisplacement builds a width x length grid of values in [0,1].
// Lattice points at the initial step are seeded first, then every iteration
// runs the square step (cell centres) followed by the diamond step (edge
// midpoints) in row-major order, halving the step and scaling the
// displacement magnitude by decay. All draws come from src in that order.
func MidpointDisplacement(width, length int, factor, decay float64, src *rng.Source) ([]float64, error) {
	if err := checkDisplacementDimensions(width, length); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("midpoint displacement needs a random source")
	}

	h := make([]float64, width*length)
	at := func(x, y int) float64 { return h[x+y*width] }

	step := min(width, length) - 1
	for y := 0; y < length; y += step {
		for x := 0; x < width; x += step {
			h[x+y*width] = src.Float64()
		}
	}

	d := factor
	for step > 1 {
		half := step / 2

		// square step
		for y := half; y < length; y += step {
			for x := half; x < width; x += step {
				avg := (at(x-half, y-half) + at(x+half, y-half) + at(x-half, y+half) + at(x+half, y+half)) / 4
				h[x+y*width] = clamp01(avg + src.Range(-d, d))
			}
		}

		// diamond step
		for y := 0; y < length; y += half {
			start := half
			if (y/half)%2 == 1 {
				start = 0
			}
			for x := start; x < width; x += step {
				sum, n := 0.0, 0
				if x-half >= 0 {
					sum += at(x-half, y)
					n++
				}
				if x+half < width {
					sum += at(x+half, y)
					n++
				}
				if y-half >= 0 {
					sum += at(x, y-half)
					n++
				}
				if y+half < length {
					sum += at(x, y+half)
					n++
				}
				if n == 0 {
					continue
				}
				h[x+y*width] = clamp01(sum/float64(n) + src.Range(-d, d))
			}
		}

		step = half
		d *= decay
	}
	return h, nil
}
