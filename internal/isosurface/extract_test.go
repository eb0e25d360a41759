package isosurface

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"terragen/internal/config"
	"terragen/internal/field"
)

func fill(t *testing.T, w, h, l int, fn func(x, y, z int) float64) *ScalarField {
	t.Helper()
	sf, err := NewScalarField(w, h, l)
	if err != nil {
		t.Fatalf("scalar field: %v", err)
	}
	for z := 0; z < l; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sf.Set(x, y, z, fn(x, y, z))
			}
		}
	}
	return sf
}

func sphere(t *testing.T) *ScalarField {
	cx, cy, cz, r := 4.37, 4.41, 4.29, 2.9
	return fill(t, 10, 10, 10, func(x, y, z int) float64 {
		d := math.Sqrt(math.Pow(float64(x)-cx, 2) + math.Pow(float64(y)-cy, 2) + math.Pow(float64(z)-cz, 2))
		return clamp01(1 - d/(2*r))
	})
}

func defaultOptions() Options {
	return Options{Threshold: 0.5, Inside: config.InsideAbove, VoxelSize: 1, WeldPrecision: 6, Workers: 3}
}

func TestEdgeTableMatchesTriangles(t *testing.T) {
	for c := 0; c < 256; c++ {
		used := uint16(0)
		row := triTable[c]
		n := 0
		for n < len(row) && row[n] >= 0 {
			used |= 1 << row[n]
			n++
		}
		if n%3 != 0 {
			t.Fatalf("case %d has %d edge entries", c, n)
		}
		if used != edgeTable[c] {
			t.Fatalf("case %d uses edges %012b, active edges are %012b", c, used, edgeTable[c])
		}
	}
	if edgeTable[0] != 0 || edgeTable[255] != 0 {
		t.Fatalf("uniform cubes must not cross the surface")
	}
}

func TestExtractUniformFieldIsEmpty(t *testing.T) {
	for _, v := range []float64{0, 0.2, 0.9, 1} {
		for _, inside := range []config.InsideDirection{config.InsideAbove, config.InsideBelow} {
			sf := fill(t, 4, 5, 3, func(x, y, z int) float64 { return v })
			opts := defaultOptions()
			opts.Inside = inside
			mesh := Extract(sf, opts)
			if len(mesh.Vertices) != 0 || mesh.TriangleCount() != 0 {
				t.Fatalf("value %.1f inside=%s: got %d vertices and %d triangles", v, inside, len(mesh.Vertices), mesh.TriangleCount())
			}
			if !mesh.Empty() {
				t.Fatalf("expected empty mesh")
			}
		}
	}
}

func TestExtractWeldsSharedEdgeVertices(t *testing.T) {
	// Solid bottom layer under two cubes side by side along X.
	sf := fill(t, 3, 2, 2, func(x, y, z int) float64 {
		if y == 0 {
			return 1
		}
		return 0
	})
	mesh := Extract(sf, defaultOptions())
	if got := mesh.TriangleCount(); got != 4 {
		t.Fatalf("expected 4 triangles, got %d", got)
	}
	// Six crossings: x in {0,1,2} times z in {0,1}. The x=1 pair is shared.
	if got := len(mesh.Vertices); got != 6 {
		t.Fatalf("expected 6 welded vertices, got %d", got)
	}
	for i, v := range mesh.Vertices {
		if math.Abs(float64(v[1])-0.5) > 1e-6 {
			t.Fatalf("vertex %d at height %f, want 0.5", i, v[1])
		}
	}
}

func TestExtractNormalsFaceAwayFromInside(t *testing.T) {
	sf := fill(t, 3, 3, 3, func(x, y, z int) float64 {
		if y == 0 {
			return 1
		}
		return 0
	})
	tests := []struct {
		inside config.InsideDirection
		want   float32
	}{
		{config.InsideAbove, 1},
		{config.InsideBelow, -1},
	}
	for _, tt := range tests {
		opts := defaultOptions()
		opts.Inside = tt.inside
		mesh := Extract(sf, opts)
		if mesh.Empty() {
			t.Fatalf("inside=%s: expected a surface", tt.inside)
		}
		for i, n := range mesh.Normals {
			if !n.ApproxEqualThreshold(mgl32.Vec3{0, tt.want, 0}, 1e-5) {
				t.Fatalf("inside=%s: normal %d = %v", tt.inside, i, n)
			}
		}
	}
}

func TestExtractSphereIsClosed(t *testing.T) {
	mesh := Extract(sphere(t), defaultOptions())
	if mesh.Empty() {
		t.Fatalf("expected a surface")
	}

	type edge struct{ a, b uint32 }
	directed := make(map[edge]int)
	for i := 0; i < len(mesh.Indices); i += 3 {
		tri := mesh.Indices[i : i+3]
		for k := 0; k < 3; k++ {
			directed[edge{tri[k], tri[(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		if n != 1 || directed[edge{e.b, e.a}] != 1 {
			t.Fatalf("edge %v used %d times, reverse %d times", e, n, directed[edge{e.b, e.a}])
		}
	}

	// Outward winding gives a positive enclosed volume.
	var volume float64
	for i := 0; i < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]]
		b := mesh.Vertices[mesh.Indices[i+1]]
		c := mesh.Vertices[mesh.Indices[i+2]]
		volume += float64(a.Dot(b.Cross(c))) / 6
	}
	if want := 4.0 / 3 * math.Pi * math.Pow(2.9, 3); volume < want*0.8 || volume > want*1.2 {
		t.Fatalf("enclosed volume %f, want about %f", volume, want)
	}

	for _, v := range mesh.Vertices {
		for k := 0; k < 3; k++ {
			if v[k] < mesh.Bounds.Min[k] || v[k] > mesh.Bounds.Max[k] {
				t.Fatalf("vertex %v outside bounds %+v", v, mesh.Bounds)
			}
		}
	}
}

func TestExtractIsScheduleIndependent(t *testing.T) {
	sf := sphere(t)
	opts := defaultOptions()
	opts.Workers = 1
	a := Extract(sf, opts)
	opts.Workers = 8
	b := Extract(sf, opts)
	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		t.Fatalf("mesh sizes differ")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("vertex %d differs", i)
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
}

func TestInterpolateFallbacks(t *testing.T) {
	p1 := [3]float64{0, 0, 0}
	p2 := [3]float64{1, 0, 0}
	if got := interpolate(p1, p2, 0.2, 0.8, 0.5); math.Abs(got[0]-0.5) > 1e-12 {
		t.Fatalf("midpoint = %v", got)
	}
	if got := interpolate(p1, p2, 0.5, 0.5, 0.5); got != p1 {
		t.Fatalf("equal values should resolve to the first corner, got %v", got)
	}
	if got := interpolate(p1, p2, 0.3, 0.3+1e-12, 0.9); got != p1 {
		t.Fatalf("near-equal values should resolve to the first corner, got %v", got)
	}
	if got := interpolate(p1, p2, 0.1, 0.5, 0.5); got != p2 {
		t.Fatalf("threshold at second corner should snap to it, got %v", got)
	}
}

func TestBuilderDropsDegenerateTriangles(t *testing.T) {
	b := newBuilder(4)
	b.triangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})
	// Collapses to a repeated index after rounding.
	b.triangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.00001, 0, 0}, mgl32.Vec3{0, 1, 0})
	// Collinear.
	b.triangle(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{6, 5, 5}, mgl32.Vec3{7, 5, 5})
	mesh := b.finish(1e-6)
	if mesh.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", mesh.TriangleCount())
	}
	if len(mesh.Vertices) != 3 {
		t.Fatalf("expected unused vertices to be dropped, got %d", len(mesh.Vertices))
	}
	if mesh.Bounds.Min != (mgl32.Vec3{0, 0, 0}) || mesh.Bounds.Max != (mgl32.Vec3{1, 0, 1}) {
		t.Fatalf("unexpected bounds %+v", mesh.Bounds)
	}
}

func TestDensityModes(t *testing.T) {
	if got := Density(config.DensityFalloff, 5, 5, 1, 2); got != 1 {
		t.Fatalf("falloff at surface = %f", got)
	}
	if got := Density(config.DensityFalloff, 6, 5, 1, 2); got != 0.5 {
		t.Fatalf("falloff one voxel off = %f", got)
	}
	if got := Density(config.DensityFalloff, 9, 5, 1, 2); got != 0 {
		t.Fatalf("falloff far away = %f", got)
	}
	if got := Density(config.DensitySolid, 5, 5, 1, 2); got != 0.5 {
		t.Fatalf("solid at surface = %f", got)
	}
	if Density(config.DensitySolid, 2, 5, 1, 2) != 1 || Density(config.DensitySolid, 9, 5, 1, 2) != 0 {
		t.Fatalf("solid should saturate below and above the surface")
	}
	if Density(config.DensityBinary, 4, 5, 1, 1) != 1 || Density(config.DensityBinary, 6, 5, 1, 1) != 0 {
		t.Fatalf("binary density inverted")
	}
}

func TestBlendModes(t *testing.T) {
	if got := Blend(config.AuxLerp, 0.2, 1, 0.5); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("lerp = %f", got)
	}
	if got := Blend(config.AuxSubtract, 0.8, 1, 0.5); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("subtract = %f", got)
	}
	if got := Blend(config.AuxSubtract, 0.1, 1, 0.5); got != 0 {
		t.Fatalf("subtract should clamp, got %f", got)
	}
}

func TestBuildFieldSamplesNearestCell(t *testing.T) {
	// Left half low, right half high.
	values := make([]float64, 5*5)
	for y := 0; y < 5; y++ {
		for x := 3; x < 5; x++ {
			values[x+y*5] = 1
		}
	}
	hf, _ := field.NewSnapshot(5, 5, values)
	cfg := config.MeshConfig{Enabled: true, GridWidth: 5, GridHeight: 6, GridLength: 5, VoxelSize: 1, HeightScale: 4, FalloffFactor: 1, Threshold: 0.5, Mode: config.DensityBinary}
	sf, err := BuildField(hf, cfg, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sf.At(0, 0, 2) != 1 || sf.At(0, 1, 2) != 0 {
		t.Fatalf("low column has the wrong surface")
	}
	if sf.At(4, 4, 2) != 1 || sf.At(4, 5, 2) != 0 {
		t.Fatalf("high column has the wrong surface")
	}
}

func TestGenerateLogsAndValidates(t *testing.T) {
	var buf bytes.Buffer
	originalWriter := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(originalWriter)

	values := make([]float64, 9*9)
	for i := range values {
		values[i] = float64(i%9) / 8
	}
	hf, _ := field.NewSnapshot(9, 9, values)
	cfg := config.Default().Mesh
	cfg.GridWidth, cfg.GridHeight, cfg.GridLength = 9, 24, 9
	cfg.Caves.Enabled = true

	mesh, err := Generate(hf, cfg, 7, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mesh.Empty() {
		t.Fatalf("expected a terrain surface")
	}
	if !strings.Contains(buf.String(), "isosurface 9x24x9") {
		t.Fatalf("unexpected logs: %s", buf.String())
	}

	cfg.WeldPrecision = 12
	if _, err := Generate(hf, cfg, 7, 2); err == nil {
		t.Fatalf("expected a validation error")
	}
}
