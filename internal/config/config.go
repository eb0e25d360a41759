package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is matched by every validation failure reported by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// ErrInvalidDimensions is the cause of a validation failure for midpoint
// displacement on a grid whose sides are not 2^n+1.
var ErrInvalidDimensions = errors.New("midpoint displacement requires 2^n+1 dimensions")

// ValidationError names the offending setting. It is reported before any
// heightfield mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
	// Cause is an optional sentinel describing the failure more precisely.
	Cause error
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Is lets callers match any validation failure with errors.Is(err, ErrInvalidSettings).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSettings
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Settings captures every tunable consumed by one generation cycle.
type Settings struct {
	Width   int   `json:"width" yaml:"width"`
	Length  int   `json:"length" yaml:"length"`
	Seed    int64 `json:"seed" yaml:"seed"`
	Workers int   `json:"workers" yaml:"workers"` // 0 selects GOMAXPROCS

	Noise        []NoiseLayer       `json:"noise" yaml:"noise"`
	Displacement DisplacementConfig `json:"displacement" yaml:"displacement"`
	Lake         LakeConfig         `json:"lake" yaml:"lake"`
	Rivers       []RiverConfig      `json:"rivers" yaml:"rivers"`
	Trails       []TrailConfig      `json:"trails" yaml:"trails"`
	Erosion      ErosionConfig      `json:"erosion" yaml:"erosion"`
	Biomes       BiomeConfig        `json:"biomes" yaml:"biomes"`
	Features     FeatureConfig      `json:"features" yaml:"features"`
	Mesh         MeshConfig         `json:"mesh" yaml:"mesh"`
}

type BlendMode string

const (
	BlendAdditive       BlendMode = "additive"
	BlendMultiplicative BlendMode = "multiplicative"
)

type NoiseBasis string

const (
	BasisPerlin  NoiseBasis = "perlin"
	BasisSimplex NoiseBasis = "simplex"
	BasisValue   NoiseBasis = "value"
)

// Vec2 is a point in grid or normalized coordinates depending on the owning setting.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type NoiseLayer struct {
	Enabled         bool       `json:"enabled" yaml:"enabled"`
	Name            string     `json:"name" yaml:"name"`
	Basis           NoiseBasis `json:"basis" yaml:"basis"`
	Layers          int        `json:"layers" yaml:"layers"` // octaves
	BaseScale       float64    `json:"baseScale" yaml:"baseScale"`
	Amplitude       *float64   `json:"amplitude,omitempty" yaml:"amplitude,omitempty"` // first octave amplitude, unset means 1
	AmplitudeDecay  float64    `json:"amplitudeDecay" yaml:"amplitudeDecay"`
	FrequencyGrowth float64    `json:"frequencyGrowth" yaml:"frequencyGrowth"`
	Offset          Vec2       `json:"offset" yaml:"offset"`
	Blend           BlendMode  `json:"blend" yaml:"blend"`
	SeedOffset      int64      `json:"seedOffset" yaml:"seedOffset"`
}

type DisplacementConfig struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Factor  float64 `json:"factor" yaml:"factor"`       // initial displacement magnitude
	Decay   float64 `json:"decayRate" yaml:"decayRate"` // multiplier applied after every iteration
}

// LakeConfig positions are in cell units.
type LakeConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Center     Vec2    `json:"center" yaml:"center"`
	Radius     float64 `json:"radius" yaml:"radius"`
	WaterLevel float64 `json:"waterLevel" yaml:"waterLevel"`
}

type RiverMode string

const (
	RiverDescent RiverMode = "descent"
	RiverLinear  RiverMode = "linear"
)

type RiverConfig struct {
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	Start     Vec2      `json:"start" yaml:"start"`
	End       Vec2      `json:"end" yaml:"end"`
	Mode      RiverMode `json:"mode" yaml:"mode"`
	Width     float64   `json:"width" yaml:"width"`
	Intensity float64   `json:"intensity" yaml:"intensity"`
	MaxSteps  int       `json:"maxSteps" yaml:"maxSteps"`
}

type TrailConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	Start           Vec2    `json:"start" yaml:"start"`
	End             Vec2    `json:"end" yaml:"end"`
	Width           float64 `json:"width" yaml:"width"`
	Intensity       float64 `json:"intensity" yaml:"intensity"`
	JitterAmplitude float64 `json:"jitterAmplitude" yaml:"jitterAmplitude"`
	JitterFrequency float64 `json:"jitterFrequency" yaml:"jitterFrequency"`
}

type ErosionConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	TalusAngle float64 `json:"talusAngle" yaml:"talusAngle"`
	Iterations int     `json:"iterations" yaml:"iterations"`
}

type Distribution string

const (
	DistributionGrid   Distribution = "grid"
	DistributionRandom Distribution = "random"
	DistributionCustom Distribution = "custom"
)

// LayerRange is one height band of a biome definition.
type LayerRange struct {
	Name string  `json:"name" yaml:"name"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

type BiomeDefinition struct {
	Name   string        `json:"name" yaml:"name"`
	Layers [3]LayerRange `json:"layers" yaml:"layers"`
}

type BiomeConfig struct {
	Enabled      bool              `json:"enabled" yaml:"enabled"`
	CellCount    int               `json:"cellCount" yaml:"cellCount"`
	Distribution Distribution      `json:"distribution" yaml:"distribution"`
	CustomPoints []Vec2            `json:"customPoints" yaml:"customPoints"` // normalized [0,1]
	Definitions  []BiomeDefinition `json:"definitions" yaml:"definitions"`
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies inside the inclusive interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type FeatureSpec struct {
	Name             string  `json:"name" yaml:"name"`
	HeightRange      Range   `json:"heightRange" yaml:"heightRange"`
	SlopeRange       Range   `json:"slopeRange" yaml:"slopeRange"` // degrees
	SpawnProbability float64 `json:"spawnProbability" yaml:"spawnProbability"`
	RequiredBiome    *int    `json:"requiredBiome,omitempty" yaml:"requiredBiome,omitempty"`
	DensityRange     Range   `json:"densityRange" yaml:"densityRange"`
	ScaleRange       Range   `json:"scaleRange" yaml:"scaleRange"`
	RotationRange    Range   `json:"rotationRange" yaml:"rotationRange"`
}

type CellularConfig struct {
	Iterations        int `json:"iterations" yaml:"iterations"`
	NeighborThreshold int `json:"neighborThreshold" yaml:"neighborThreshold"`
}

type FeatureConfig struct {
	Enabled       bool           `json:"enabled" yaml:"enabled"`
	Specs         []FeatureSpec  `json:"specs" yaml:"specs"`
	GlobalDensity float64        `json:"globalDensity" yaml:"globalDensity"`
	Cellular      CellularConfig `json:"cellular" yaml:"cellular"`
	TerrainHeight float64        `json:"terrainHeight" yaml:"terrainHeight"` // world units spanned by normalized 1.0
	CellSize      float64        `json:"cellSize" yaml:"cellSize"`           // world units per cell
}

type DensityMode string

const (
	DensityFalloff DensityMode = "falloff"
	DensityBinary  DensityMode = "binary"
	DensitySolid   DensityMode = "solid"
)

type InsideDirection string

const (
	InsideAbove InsideDirection = "above"
	InsideBelow InsideDirection = "below"
)

type AuxBlend string

const (
	AuxLerp     AuxBlend = "lerp"
	AuxSubtract AuxBlend = "subtract"
)

type CaveConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Scale      float64  `json:"scale" yaml:"scale"`
	Weight     float64  `json:"weight" yaml:"weight"`
	Blend      AuxBlend `json:"blend" yaml:"blend"`
	SeedOffset int64    `json:"seedOffset" yaml:"seedOffset"`
}

type MeshConfig struct {
	Enabled       bool            `json:"enabled" yaml:"enabled"`
	GridWidth     int             `json:"gridWidth" yaml:"gridWidth"`
	GridHeight    int             `json:"gridHeight" yaml:"gridHeight"`
	GridLength    int             `json:"gridLength" yaml:"gridLength"`
	VoxelSize     float64         `json:"voxelSize" yaml:"voxelSize"`
	HeightScale   float64         `json:"heightScale" yaml:"heightScale"` // world units spanned by normalized 1.0
	FalloffFactor float64         `json:"falloffFactor" yaml:"falloffFactor"`
	Threshold     float64         `json:"threshold" yaml:"threshold"`
	Mode          DensityMode     `json:"mode" yaml:"mode"`
	Inside        InsideDirection `json:"inside" yaml:"inside"`
	WeldPrecision int             `json:"weldPrecision" yaml:"weldPrecision"` // decimal places
	Caves         CaveConfig      `json:"caves" yaml:"caves"`
}

// IsPowerOfTwoPlusOne reports whether n == 2^k+1 for some k >= 1.
func IsPowerOfTwoPlusOne(n int) bool {
	m := n - 1
	return m >= 2 && m&(m-1) == 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Settings) Validate() error {
	if s.Width < 2 || s.Length < 2 {
		return invalid("dimensions", "must be at least 2x2, got %dx%d", s.Width, s.Length)
	}
	if s.Workers < 0 {
		return invalid("workers", "cannot be negative")
	}
	for i, layer := range s.Noise {
		if err := layer.validate(fmt.Sprintf("noise[%d]", i)); err != nil {
			return err
		}
	}
	if s.Displacement.Enabled {
		if !IsPowerOfTwoPlusOne(s.Width) || !IsPowerOfTwoPlusOne(s.Length) {
			return &ValidationError{
				Field:  "displacement",
				Reason: fmt.Sprintf("requires 2^n+1 dimensions, got %dx%d", s.Width, s.Length),
				Cause:  ErrInvalidDimensions,
			}
		}
		if s.Displacement.Factor < 0 || s.Displacement.Decay < 0 {
			return invalid("displacement", "factor and decayRate cannot be negative")
		}
	}
	if s.Lake.Enabled && s.Lake.Radius <= 0 {
		return invalid("lake.radius", "must be positive")
	}
	for i, river := range s.Rivers {
		if !river.Enabled {
			continue
		}
		if river.Width <= 0 {
			return invalid(fmt.Sprintf("rivers[%d].width", i), "must be positive")
		}
		switch river.Mode {
		case "", RiverDescent, RiverLinear:
		default:
			return invalid(fmt.Sprintf("rivers[%d].mode", i), "unknown mode %q", river.Mode)
		}
	}
	for i, trail := range s.Trails {
		if trail.Enabled && trail.Width <= 0 {
			return invalid(fmt.Sprintf("trails[%d].width", i), "must be positive")
		}
	}
	if s.Erosion.Enabled {
		if s.Erosion.TalusAngle < 0 {
			return invalid("erosion.talusAngle", "cannot be negative")
		}
		if s.Erosion.Iterations < 0 {
			return invalid("erosion.iterations", "cannot be negative")
		}
	}
	if err := s.Biomes.Validate(); err != nil {
		return err
	}
	if err := s.Features.Validate(); err != nil {
		return err
	}
	return s.Mesh.Validate()
}

func (l NoiseLayer) validate(field string) error {
	if !l.Enabled {
		return nil
	}
	if l.Layers < 0 {
		return invalid(field+".layers", "cannot be negative")
	}
	switch l.Blend {
	case "", BlendAdditive, BlendMultiplicative:
	default:
		return invalid(field+".blend", "unknown mode %q", l.Blend)
	}
	switch l.Basis {
	case "", BasisPerlin, BasisSimplex, BasisValue:
	default:
		return invalid(field+".basis", "unknown basis %q", l.Basis)
	}
	return nil
}

// Validate checks the biome settings on their own; Settings.Validate calls it.
func (b BiomeConfig) Validate() error {
	if !b.Enabled {
		return nil
	}
	if len(b.Definitions) == 0 {
		return invalid("biomes.definitions", "cannot be empty when biomes are enabled")
	}
	for i, def := range b.Definitions {
		for j, layer := range def.Layers {
			if layer.Min > layer.Max {
				return invalid(fmt.Sprintf("biomes.definitions[%d].layers[%d]", i, j), "min exceeds max")
			}
		}
	}
	switch b.Distribution {
	case "", DistributionGrid, DistributionRandom:
		if b.CellCount <= 0 {
			return invalid("biomes.cellCount", "must be positive")
		}
	case DistributionCustom:
		if len(b.CustomPoints) == 0 {
			return invalid("biomes.customPoints", "cannot be empty for custom distribution")
		}
		for i, p := range b.CustomPoints {
			if !finite(p.X) || !finite(p.Y) || p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				return invalid(fmt.Sprintf("biomes.customPoints[%d]", i), "must lie inside [0,1]x[0,1]")
			}
		}
	default:
		return invalid("biomes.distribution", "unknown distribution %q", b.Distribution)
	}
	return nil
}

func (f FeatureConfig) Validate() error {
	if !f.Enabled {
		return nil
	}
	if f.GlobalDensity < 0 {
		return invalid("features.globalDensity", "cannot be negative")
	}
	if f.Cellular.Iterations < 0 {
		return invalid("features.cellular.iterations", "cannot be negative")
	}
	if f.CellSize <= 0 {
		return invalid("features.cellSize", "must be positive")
	}
	for i, spec := range f.Specs {
		if spec.Name == "" {
			return invalid(fmt.Sprintf("features.specs[%d].name", i), "must be set")
		}
		if spec.SpawnProbability < 0 || spec.SpawnProbability > 1 {
			return invalid(fmt.Sprintf("features.specs[%d].spawnProbability", i), "must be within [0,1]")
		}
	}
	return nil
}

func (m MeshConfig) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.GridWidth < 2 || m.GridHeight < 2 || m.GridLength < 2 {
		return invalid("mesh.grid", "must be at least 2 voxels on every axis")
	}
	if m.VoxelSize <= 0 {
		return invalid("mesh.voxelSize", "must be positive")
	}
	if m.WeldPrecision < 0 || m.WeldPrecision > 9 {
		return invalid("mesh.weldPrecision", "must be within [0,9]")
	}
	switch m.Mode {
	case "", DensityFalloff, DensityBinary, DensitySolid:
	default:
		return invalid("mesh.mode", "unknown mode %q", m.Mode)
	}
	if m.Mode != DensityBinary && m.FalloffFactor <= 0 {
		return invalid("mesh.falloffFactor", "must be positive")
	}
	switch m.Inside {
	case "", InsideAbove, InsideBelow:
	default:
		return invalid("mesh.inside", "unknown direction %q", m.Inside)
	}
	switch m.Caves.Blend {
	case "", AuxLerp, AuxSubtract:
	default:
		return invalid("mesh.caves.blend", "unknown blend %q", m.Caves.Blend)
	}
	return nil
}
