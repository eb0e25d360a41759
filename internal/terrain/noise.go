package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"terragen/internal/config"
	"terragen/internal/field"
)

// sampler returns 2D noise mapped to [0,1].
type sampler interface {
	Sample(x, y float64) float64
}

type perlinSampler struct {
	p *perlin.Perlin
}

func (s perlinSampler) Sample(x, y float64) float64 {
	return clamp01(s.p.Noise2D(x, y)*0.5 + 0.5)
}

type simplexSampler struct {
	n opensimplex.Noise
}

func (s simplexSampler) Sample(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

// valueSampler is hashed value noise with smoothstep interpolation.
type valueSampler struct {
	seed int64
}

func (s valueSampler) Sample(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	n0 := random2D(x0, y0, s.seed)
	n1 := random2D(x1, y0, s.seed)
	ix0 := lerp(n0, n1, sx)

	n2 := random2D(x0, y1, s.seed)
	n3 := random2D(x1, y1, s.seed)
	ix1 := lerp(n2, n3, sx)

	return clamp01(lerp(ix0, ix1, sy)*0.5 + 0.5)
}

func newSampler(basis config.NoiseBasis, seed int64) sampler {
	switch basis {
	case config.BasisSimplex:
		return simplexSampler{n: opensimplex.NewNormalized(seed)}
	case config.BasisValue:
		return valueSampler{seed: seed}
	default:
		// A single octave: layering is done by the stage itself.
		return perlinSampler{p: perlin.NewPerlin(2, 2, 1, seed)}
	}
}

// NoiseStage accumulates octaves of gradient noise into the heightfield.
type NoiseStage struct {
	cfg       config.NoiseLayer
	amplitude float64
	noise     sampler
}

func NewNoiseStage(cfg config.NoiseLayer, runSeed int64) *NoiseStage {
	if cfg.Blend == "" {
		cfg.Blend = config.BlendAdditive
	}
	amplitude := 1.0
	if cfg.Amplitude != nil {
		amplitude = *cfg.Amplitude
	}
	return &NoiseStage{cfg: cfg, amplitude: amplitude, noise: newSampler(cfg.Basis, runSeed+cfg.SeedOffset)}
}

func (s *NoiseStage) Name() string {
	if s.cfg.Name != "" {
		return "noise:" + s.cfg.Name
	}
	return "noise"
}

func (s *NoiseStage) Validate(width, length int) error { return nil }

func (s *NoiseStage) Apply(hf *field.Heightfield, run *Run) error {
	if s.cfg.Layers <= 0 {
		return nil
	}
	w, l := hf.Width, hf.Length
	field.ForRows(run.Workers, l, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			ny := normalizedCoord(y, l)
			for x := 0; x < w; x++ {
				hf.Data[x+y*w] += s.Sample(normalizedCoord(x, w), ny)
			}
		}
	})
	return nil
}

// Sample evaluates the layered noise at a normalized grid coordinate.
func (s *NoiseStage) Sample(nx, ny float64) float64 {
	amplitude := s.amplitude
	frequency := 1.0
	acc := 0.0

	for i := 0; i < s.cfg.Layers; i++ {
		px := nx*s.cfg.BaseScale*frequency + s.cfg.Offset.X
		py := ny*s.cfg.BaseScale*frequency + s.cfg.Offset.Y
		value := s.noise.Sample(px, py)

		switch s.cfg.Blend {
		case config.BlendMultiplicative:
			if acc == 0 {
				acc = 1
			}
			acc *= 1 + value*amplitude
		default:
			acc += value * amplitude
		}

		amplitude *= s.cfg.AmplitudeDecay
		frequency *= s.cfg.FrequencyGrowth
	}
	return acc
}

func normalizedCoord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}
