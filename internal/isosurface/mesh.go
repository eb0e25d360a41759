package isosurface

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Mesh is an indexed triangle list. Triangles wind counter-clockwise seen
// from outside the solid.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool { return len(m.Indices) == 0 }

type weldKey [3]int64

// builder deduplicates vertices by position rounded to a fixed number of
// decimal places.
type builder struct {
	scale    float64
	cache    map[weldKey]uint32
	vertices []mgl32.Vec3
	indices  []uint32
}

func newBuilder(precision int) *builder {
	return &builder{
		scale: math.Pow10(precision),
		cache: make(map[weldKey]uint32),
	}
}

func (b *builder) key(p mgl32.Vec3) weldKey {
	return weldKey{
		int64(math.Round(float64(p[0]) * b.scale)),
		int64(math.Round(float64(p[1]) * b.scale)),
		int64(math.Round(float64(p[2]) * b.scale)),
	}
}

func (b *builder) vertex(p mgl32.Vec3) uint32 {
	k := b.key(p)
	if idx, ok := b.cache[k]; ok {
		return idx
	}
	idx := uint32(len(b.vertices))
	b.vertices = append(b.vertices, p)
	b.cache[k] = idx
	return idx
}

func (b *builder) triangle(p0, p1, p2 mgl32.Vec3) {
	b.indices = append(b.indices, b.vertex(p0), b.vertex(p1), b.vertex(p2))
}

// finish drops degenerate triangles, compacts the vertex list and computes
// normals and bounds.
func (b *builder) finish(minArea float32) *Mesh {
	kept := make([]uint32, 0, len(b.indices))
	for t := 0; t+2 < len(b.indices); t += 3 {
		i0, i1, i2 := b.indices[t], b.indices[t+1], b.indices[t+2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		if triangleArea(b.vertices[i0], b.vertices[i1], b.vertices[i2]) < minArea {
			continue
		}
		kept = append(kept, i0, i1, i2)
	}
	return compact(b.vertices, kept)
}

func compact(vertices []mgl32.Vec3, indices []uint32) *Mesh {
	const unused = math.MaxUint32
	remap := make([]uint32, len(vertices))
	for i := range remap {
		remap[i] = unused
	}
	// Keep the original order of the vertices that survive.
	for _, idx := range indices {
		remap[idx] = 0
	}
	mesh := &Mesh{}
	for i, v := range vertices {
		if remap[i] == unused {
			continue
		}
		remap[i] = uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
	}
	mesh.Indices = make([]uint32, len(indices))
	for i, idx := range indices {
		mesh.Indices[i] = remap[idx]
	}
	mesh.RecalculateNormals()
	mesh.RecalculateBounds()
	return mesh
}

// RecalculateNormals sets every vertex normal to the area-weighted average of
// the faces that use it.
func (m *Mesh) RecalculateNormals() {
	normals := make([]mgl32.Vec3, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		n := faceNormal(m.Vertices[i0], m.Vertices[i1], m.Vertices[i2])
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i, n := range normals {
		if n.Len() == 0 {
			normals[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		normals[i] = n.Normalize()
	}
	m.Normals = normals
}

func (m *Mesh) RecalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	m.Bounds = Bounds{Min: lo, Max: hi}
}

// faceNormal is the unnormalized face normal; its length is twice the area.
func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

func triangleArea(a, b, c mgl32.Vec3) float32 {
	return faceNormal(a, b, c).Len() / 2
}
