package placement

import (
	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/rng"
)

// Instance is one positioned object derived from an active cell.
type Instance struct {
	X, Y, Z  float64 // world units; Z is up
	Scale    float64
	Rotation float64 // degrees
	Density  float64
}

// Instances expands an active map into instances, in row-major order. Scale,
// rotation and density are drawn from the spec ranges with rng.Attribute,
// which is independent of the spawn draw that selected the cell. The result
// depends only on the map, the heightfield and seed.
func Instances(p Placement, hf *field.Snapshot, terrainHeight, cellSize float64, feature int, seed int64) []Instance {
	if cellSize <= 0 {
		cellSize = 1
	}
	var out []Instance
	for y := 0; y < p.Map.Length(); y++ {
		for x := 0; x < p.Map.Width(); x++ {
			if !p.Map.Get(x, y) {
				continue
			}
			out = append(out, Instance{
				X:        float64(x) * cellSize,
				Y:        float64(y) * cellSize,
				Z:        hf.At(x, y) * terrainHeight,
				Scale:    pick(p.Spec.ScaleRange, 1, rng.Attribute(x, y, feature*3, seed)),
				Rotation: pick(p.Spec.RotationRange, 0, rng.Attribute(x, y, feature*3+1, seed)),
				Density:  pick(p.Spec.DensityRange, 1, rng.Attribute(x, y, feature*3+2, seed)),
			})
		}
	}
	return out
}

// InstancesFor expands every placement in order, using the terrain scale of
// the feature settings. Feature i of placements uses index i for its draws.
func InstancesFor(placements []Placement, hf *field.Snapshot, cfg config.FeatureConfig, seed int64) [][]Instance {
	if len(placements) == 0 {
		return nil
	}
	out := make([][]Instance, len(placements))
	for i, p := range placements {
		out[i] = Instances(p, hf, cfg.TerrainHeight, cfg.CellSize, i, seed)
	}
	return out
}

// pick interpolates inside r, falling back when the range is unset.
func pick(r config.Range, fallback, t float64) float64 {
	if r.Min == 0 && r.Max == 0 {
		return fallback
	}
	return r.Min + (r.Max-r.Min)*t
}
