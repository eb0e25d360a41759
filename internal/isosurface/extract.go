package isosurface

import (
	"log"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"terragen/internal/config"
	"terragen/internal/field"
)

// interpolationEpsilon gates the edge interpolation fallbacks.
const interpolationEpsilon = 1e-9

// Options controls a single extraction.
type Options struct {
	Threshold float64
	Inside    config.InsideDirection
	VoxelSize float64
	// WeldPrecision is the number of decimal places used for vertex welding.
	WeldPrecision int
	Workers       int
}

func (o Options) inside(v float64) bool {
	if o.Inside == config.InsideBelow {
		return v < o.Threshold
	}
	return v > o.Threshold
}

// Extract runs marching cubes over the field. Slabs of cubes along Z are
// triangulated in parallel, then welded in slab order so the output is the
// same for any worker count. A field entirely on one side of the threshold
// yields an empty mesh.
func Extract(sf *ScalarField, opts Options) *Mesh {
	if opts.VoxelSize <= 0 {
		opts.VoxelSize = 1
	}
	slabs := make([][]mgl32.Vec3, sf.Length-1)
	field.ForRows(opts.Workers, sf.Length-1, func(z0, z1 int) {
		for z := z0; z < z1; z++ {
			slabs[z] = polygonizeSlab(sf, z, opts)
		}
	})

	b := newBuilder(opts.WeldPrecision)
	for _, tris := range slabs {
		for t := 0; t+2 < len(tris); t += 3 {
			b.triangle(tris[t], tris[t+1], tris[t+2])
		}
	}
	minArea := float32(1e-6 * opts.VoxelSize * opts.VoxelSize)
	return b.finish(minArea)
}

// polygonizeSlab returns triangle corners, three per triangle, for every cube
// whose lower corner lies at depth z.
func polygonizeSlab(sf *ScalarField, z int, opts Options) []mgl32.Vec3 {
	var out []mgl32.Vec3
	var values [8]float64
	var edgePoints [12]mgl32.Vec3
	for y := 0; y < sf.Height-1; y++ {
		for x := 0; x < sf.Width-1; x++ {
			cube := 0
			for i, o := range cornerOffsets {
				values[i] = sf.At(x+o[0], y+o[1], z+o[2])
				if opts.inside(values[i]) {
					cube |= 1 << i
				}
			}
			mask := edgeTable[cube]
			if mask == 0 {
				continue
			}
			for e := 0; e < 12; e++ {
				if mask&(1<<e) == 0 {
					continue
				}
				edgePoints[e] = edgePoint(x, y, z, e, values, opts)
			}
			row := &triTable[cube]
			for t := 0; t < len(row) && row[t] >= 0; t += 3 {
				out = append(out, edgePoints[row[t]], edgePoints[row[t+1]], edgePoints[row[t+2]])
			}
		}
	}
	return out
}

// edgePoint interpolates the threshold crossing along edge e of the cube at
// (x, y, z). The lower grid point of the edge is always taken as the first
// endpoint, so both cubes sharing an edge compute the same position.
func edgePoint(x, y, z, e int, values [8]float64, opts Options) mgl32.Vec3 {
	a, b := edgeCorners[e][0], edgeCorners[e][1]
	oa, ob := cornerOffsets[a], cornerOffsets[b]
	if oa[0]+oa[1]+oa[2] > ob[0]+ob[1]+ob[2] {
		a, b = b, a
		oa, ob = ob, oa
	}
	p1 := [3]float64{float64(x + oa[0]), float64(y + oa[1]), float64(z + oa[2])}
	p2 := [3]float64{float64(x + ob[0]), float64(y + ob[1]), float64(z + ob[2])}
	p := interpolate(p1, p2, values[a], values[b], opts.Threshold)
	s := opts.VoxelSize
	return mgl32.Vec3{float32(p[0] * s), float32(p[1] * s), float32(p[2] * s)}
}

// interpolate finds where the linear ramp between v1 at p1 and v2 at p2
// crosses threshold. Near-equal values resolve to p1.
func interpolate(p1, p2 [3]float64, v1, v2, threshold float64) [3]float64 {
	if math.Abs(threshold-v1) < interpolationEpsilon {
		return p1
	}
	if math.Abs(threshold-v2) < interpolationEpsilon {
		return p2
	}
	if math.Abs(v1-v2) < interpolationEpsilon {
		return p1
	}
	mu := (threshold - v1) / (v2 - v1)
	return [3]float64{
		p1[0] + mu*(p2[0]-p1[0]),
		p1[1] + mu*(p2[1]-p1[1]),
		p1[2] + mu*(p2[2]-p1[2]),
	}
}

// Generate builds the density field for a heightfield and extracts its mesh.
func Generate(hf *field.Snapshot, cfg config.MeshConfig, seed int64, workers int) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	sf, err := BuildField(hf, cfg, seed, workers)
	if err != nil {
		return nil, err
	}
	mesh := Extract(sf, Options{
		Threshold:     cfg.Threshold,
		Inside:        cfg.Inside,
		VoxelSize:     cfg.VoxelSize,
		WeldPrecision: cfg.WeldPrecision,
		Workers:       workers,
	})
	log.Printf("isosurface %dx%dx%d: %d vertices, %d triangles in %s",
		sf.Width, sf.Height, sf.Length, len(mesh.Vertices), mesh.TriangleCount(), time.Since(start).Round(time.Microsecond))
	return mesh, nil
}
