package biome

import (
	"math"

	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/rng"
)

// LayerCount is the number of height bands per biome definition.
const LayerCount = 3

// Unclassified marks a cell whose height falls outside every layer of its two
// nearest sites.
const Unclassified = -1

// Map is the per-cell classification of one heightfield. It is read-only once
// Classify returns.
type Map struct {
	Width  int
	Length int
	// Biomes holds the owning definition index per cell, or Unclassified.
	Biomes []int
	// DominantLayer holds the winning layer index per cell, or Unclassified.
	DominantLayer []int
	// Weights holds the nearest site's blend weight per cell.
	Weights []float64
	// LayerWeights holds LayerCount accumulated weights per cell.
	LayerWeights []float64
	Sites        []Site
	Names        []string
}

func (m *Map) Biome(x, y int) int { return m.Biomes[x+y*m.Width] }

func (m *Map) Layer(x, y int) int { return m.DominantLayer[x+y*m.Width] }

// LayerWeight returns the accumulated weight of one layer at a cell.
func (m *Map) LayerWeight(x, y, layer int) float64 {
	return m.LayerWeights[(x+y*m.Width)*LayerCount+layer]
}

// Classify builds the biome map for a frozen heightfield. A disabled
// configuration, or one that yields no sites, classifies every cell as
// biome 0, layer 0 with weight 1. Cells are independent and run in parallel;
// site generation consumes src before any cell is visited.
func Classify(hf *field.Snapshot, cfg config.BiomeConfig, src *rng.Source, workers int) (*Map, error) {
	if cfg.Enabled {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	w, l := hf.Width(), hf.Length()
	m := &Map{
		Width:         w,
		Length:        l,
		Biomes:        make([]int, w*l),
		DominantLayer: make([]int, w*l),
		Weights:       make([]float64, w*l),
		LayerWeights:  make([]float64, w*l*LayerCount),
	}

	if cfg.Enabled {
		m.Sites = GenerateSites(cfg, src)
	}
	if len(m.Sites) == 0 {
		for i := range m.Weights {
			m.Weights[i] = 1
			m.LayerWeights[i*LayerCount] = 1
		}
		if len(cfg.Definitions) > 0 {
			m.Names = []string{cfg.Definitions[0].Name}
		}
		return m, nil
	}

	defs := make([][LayerCount]config.LayerRange, len(m.Sites))
	m.Names = make([]string, len(m.Sites))
	for i, site := range m.Sites {
		defs[i] = cfg.Definitions[site.Biome].Layers
		m.Names[i] = cfg.Definitions[site.Biome].Name
	}

	// Distances are measured in cell units so rectangular grids stay isotropic.
	sx, sy := float64(max(w-1, 1)), float64(max(l-1, 1))
	px := make([]float64, len(m.Sites))
	py := make([]float64, len(m.Sites))
	for i, site := range m.Sites {
		px[i], py[i] = site.X*sx, site.Y*sy
	}

	field.ForRows(workers, l, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := x + y*w
				a, b, d1, d2 := nearestTwo(float64(x), float64(y), px, py)

				w1 := 1.0
				if b >= 0 {
					if sum := d1 + d2; sum > 0 {
						w1 = 1 - d1/sum
					} else {
						w1 = 0.5
					}
				}
				m.Weights[i] = w1

				h := hf.AtIndex(i)
				var layers, fromA [LayerCount]float64
				for j, band := range defs[a] {
					if h >= band.Min && h <= band.Max {
						layers[j] += w1
						fromA[j] = w1
					}
				}
				if b >= 0 {
					for j, band := range defs[b] {
						if h >= band.Min && h <= band.Max {
							layers[j] += 1 - w1
						}
					}
				}
				copy(m.LayerWeights[i*LayerCount:], layers[:])

				dominant := 0
				for j := 1; j < LayerCount; j++ {
					if layers[j] > layers[dominant] {
						dominant = j
					}
				}
				if layers[dominant] == 0 {
					m.Biomes[i] = Unclassified
					m.DominantLayer[i] = Unclassified
					continue
				}
				m.DominantLayer[i] = dominant
				// The owner is the site contributing most to the winning layer.
				owner := a
				if b >= 0 && layers[dominant]-fromA[dominant] > fromA[dominant] {
					owner = b
				}
				m.Biomes[i] = m.Sites[owner].Biome
			}
		}
	})
	return m, nil
}

// nearestTwo returns the indices and squared distances of the nearest and
// second-nearest sites. b is -1 when there is only one site.
func nearestTwo(x, y float64, px, py []float64) (a, b int, d1, d2 float64) {
	a, b = -1, -1
	d1, d2 = math.Inf(1), math.Inf(1)
	for i := range px {
		dx, dy := x-px[i], y-py[i]
		d := dx*dx + dy*dy
		switch {
		case d < d1:
			b, d2 = a, d1
			a, d1 = i, d
		case d < d2:
			b, d2 = i, d
		}
	}
	return a, b, d1, d2
}
