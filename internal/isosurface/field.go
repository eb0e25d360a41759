// Package isosurface turns a frozen heightfield into a volumetric density
// field and extracts a welded triangle mesh from it with marching cubes.
package isosurface

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"terragen/internal/config"
	"terragen/internal/field"
)

// ScalarField is a dense voxel grid of densities in [0,1]. Y is up and the
// value of voxel (x, y, z) is stored at x + Width*(y + Height*z).
type ScalarField struct {
	Width  int
	Height int
	Length int
	Values []float64
}

// NewScalarField allocates an empty field.
func NewScalarField(width, height, length int) (*ScalarField, error) {
	if width < 2 || height < 2 || length < 2 {
		return nil, fmt.Errorf("scalar field needs at least 2 voxels per axis, got %dx%dx%d", width, height, length)
	}
	return &ScalarField{
		Width:  width,
		Height: height,
		Length: length,
		Values: make([]float64, width*height*length),
	}, nil
}

func (f *ScalarField) Index(x, y, z int) int { return x + f.Width*(y+f.Height*z) }

func (f *ScalarField) At(x, y, z int) float64 { return f.Values[f.Index(x, y, z)] }

func (f *ScalarField) Set(x, y, z int, v float64) { f.Values[f.Index(x, y, z)] = v }

// Density maps the vertical distance between a voxel and the terrain surface
// to a value in [0,1].
func Density(mode config.DensityMode, voxelHeight, terrainHeight, voxelSize, falloff float64) float64 {
	switch mode {
	case config.DensityBinary:
		if voxelHeight <= terrainHeight {
			return 1
		}
		return 0
	case config.DensitySolid:
		return clamp01(0.5 + (terrainHeight-voxelHeight)/(voxelSize*falloff*2))
	default:
		return clamp01(1 - math.Abs(voxelHeight-terrainHeight)/(voxelSize*falloff))
	}
}

// AuxField is an extra 3D scalar in [0,1] blended into the terrain density.
type AuxField interface {
	Sample(x, y, z float64) float64
}

// CaveField is 3D simplex noise sampled in voxel units.
type CaveField struct {
	noise opensimplex.Noise
	scale float64
}

func NewCaveField(seed int64, scale float64) *CaveField {
	return &CaveField{noise: opensimplex.NewNormalized(seed), scale: scale}
}

func (c *CaveField) Sample(x, y, z float64) float64 {
	return c.noise.Eval3(x*c.scale, y*c.scale, z*c.scale)
}

// Blend folds an auxiliary value into a density.
func Blend(mode config.AuxBlend, density, aux, weight float64) float64 {
	switch mode {
	case config.AuxLerp:
		return clamp01(density + (aux-density)*weight)
	default:
		return clamp01(density - aux*weight)
	}
}

// BuildField samples the heightfield into a voxel grid. Every voxel column
// reads the nearest heightfield cell; the heightfield is scaled by
// HeightScale and voxel layers are VoxelSize apart.
func BuildField(hf *field.Snapshot, cfg config.MeshConfig, seed int64, workers int) (*ScalarField, error) {
	sf, err := NewScalarField(cfg.GridWidth, cfg.GridHeight, cfg.GridLength)
	if err != nil {
		return nil, err
	}
	if cfg.VoxelSize <= 0 {
		return nil, fmt.Errorf("voxel size must be positive, got %f", cfg.VoxelSize)
	}
	falloff := cfg.FalloffFactor
	if falloff <= 0 {
		falloff = 1
	}

	var caves AuxField
	if cfg.Caves.Enabled && cfg.Caves.Weight != 0 {
		caves = NewCaveField(seed+cfg.Caves.SeedOffset, cfg.Caves.Scale)
	}

	field.ForRows(workers, sf.Length, func(z0, z1 int) {
		for z := z0; z < z1; z++ {
			cz := nearest(z, sf.Length, hf.Length())
			for x := 0; x < sf.Width; x++ {
				cx := nearest(x, sf.Width, hf.Width())
				terrainHeight := hf.At(cx, cz) * cfg.HeightScale
				for y := 0; y < sf.Height; y++ {
					d := Density(cfg.Mode, float64(y)*cfg.VoxelSize, terrainHeight, cfg.VoxelSize, falloff)
					if caves != nil {
						d = Blend(cfg.Caves.Blend, d, caves.Sample(float64(x), float64(y), float64(z)), cfg.Caves.Weight)
					}
					sf.Values[x+sf.Width*(y+sf.Height*z)] = d
				}
			}
		}
	})
	return sf, nil
}

// nearest maps voxel i of n onto the closest of cells grid cells.
func nearest(i, n, cells int) int {
	if n <= 1 || cells <= 1 {
		return 0
	}
	c := int(math.Round(float64(i) * float64(cells-1) / float64(n-1)))
	return min(max(c, 0), cells-1)
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
