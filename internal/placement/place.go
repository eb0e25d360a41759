package placement

import (
	"fmt"
	"log"
	"time"

	"terragen/internal/biome"
	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/rng"
)

// Placement is the final map for one feature, handed to whoever instantiates
// the objects.
type Placement struct {
	Spec config.FeatureSpec
	Map  *Map
	// Candidates is the number of cells that passed sampling before refinement.
	Candidates int
}

// Engine evaluates feature specs against a frozen heightfield.
type Engine struct {
	cfg     config.FeatureConfig
	seed    int64
	workers int
}

// NewEngine validates the feature settings. seed drives the per-cell spawn
// draws; identical seeds give identical maps regardless of worker count.
func NewEngine(cfg config.FeatureConfig, seed int64, workers int) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	return &Engine{cfg: cfg, seed: seed, workers: workers}, nil
}

// Place builds one placement per feature spec, in spec order. biomes may be
// nil when no spec requires a biome.
func (e *Engine) Place(hf *field.Snapshot, biomes *biome.Map) ([]Placement, error) {
	if !e.cfg.Enabled || len(e.cfg.Specs) == 0 {
		return nil, nil
	}
	w, l := hf.Width(), hf.Length()
	for _, spec := range e.cfg.Specs {
		if spec.RequiredBiome == nil {
			continue
		}
		if biomes == nil {
			return nil, fmt.Errorf("feature %s requires a biome map", spec.Name)
		}
		if biomes.Width != w || biomes.Length != l {
			return nil, fmt.Errorf("biome map is %dx%d, heightfield is %dx%d", biomes.Width, biomes.Length, w, l)
		}
	}

	start := time.Now()
	slopes := Slopes(hf, e.cfg.TerrainHeight, e.cfg.CellSize, e.workers)

	placements := make([]Placement, len(e.cfg.Specs))
	for i, spec := range e.cfg.Specs {
		candidates := e.sample(i, spec, hf, slopes, biomes)
		placements[i] = Placement{
			Spec:       spec,
			Map:        Refine(candidates, e.cfg.Cellular.Iterations, e.cfg.Cellular.NeighborThreshold, e.workers),
			Candidates: candidates.Count(),
		}
		log.Printf("placement %s: %d candidates, %d after %d automaton passes", spec.Name, placements[i].Candidates, placements[i].Map.Count(), e.cfg.Cellular.Iterations)
	}
	log.Printf("placement finished %d features in %s", len(placements), time.Since(start).Round(time.Microsecond))
	return placements, nil
}

// sample marks every cell that passes the height, slope and biome gates and
// wins its spawn draw. The draw is a hash of (x, y, feature, seed) so rows can
// be processed in any order.
func (e *Engine) sample(feature int, spec config.FeatureSpec, hf *field.Snapshot, slopes []float64, biomes *biome.Map) *Map {
	w, l := hf.Width(), hf.Length()
	m := NewMap(w, l)
	chance := spec.SpawnProbability * e.cfg.GlobalDensity
	if chance <= 0 {
		return m
	}
	field.ForRows(e.workers, l, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := x + y*w
				if !spec.HeightRange.Contains(hf.AtIndex(i)) {
					continue
				}
				if !spec.SlopeRange.Contains(slopes[i]) {
					continue
				}
				if spec.RequiredBiome != nil && biomes.Biomes[i] != *spec.RequiredBiome {
					continue
				}
				if chance < 1 && rng.Unit(x, y, feature, e.seed) >= chance {
					continue
				}
				m.Set(x, y, true)
			}
		}
	})
	return m
}

// Slopes returns the per-cell slope in degrees.
func Slopes(hf *field.Snapshot, terrainHeight, cellSize float64, workers int) []float64 {
	w, l := hf.Width(), hf.Length()
	out := make([]float64, w*l)
	field.ForRows(workers, l, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				out[x+y*w] = hf.Slope(x, y, terrainHeight, cellSize)
			}
		}
	})
	return out
}

// Place is a convenience wrapper around NewEngine and Engine.Place.
func Place(hf *field.Snapshot, biomes *biome.Map, cfg config.FeatureConfig, seed int64, workers int) ([]Placement, error) {
	engine, err := NewEngine(cfg, seed, workers)
	if err != nil {
		return nil, err
	}
	return engine.Place(hf, biomes)
}
