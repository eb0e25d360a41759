// Package biome partitions a finished heightfield into Voronoi regions and
// blends the height-banded layers of the two nearest sites for every cell.
package biome

import (
	"math"

	"terragen/internal/config"
	"terragen/internal/rng"
)

// Site is a Voronoi seed point in normalized [0,1]x[0,1] coordinates. Biome
// indexes the definition whose layer table the site carries.
type Site struct {
	X, Y  float64
	Biome int
}

// SiteCount is the number of sites a configuration produces: the requested
// count clamped to the available definitions.
func SiteCount(cfg config.BiomeConfig) int {
	n := cfg.CellCount
	if cfg.Distribution == config.DistributionCustom {
		n = len(cfg.CustomPoints)
	}
	return max(0, min(n, len(cfg.Definitions)))
}

// GenerateSites places the sites for one run. Random placement draws x then y
// for each site from src, in site order.
func GenerateSites(cfg config.BiomeConfig, src *rng.Source) []Site {
	n := SiteCount(cfg)
	if n == 0 {
		return nil
	}
	sites := make([]Site, n)
	switch cfg.Distribution {
	case config.DistributionCustom:
		for i := range sites {
			p := cfg.CustomPoints[i]
			sites[i] = Site{X: p.X, Y: p.Y, Biome: i}
		}
	case config.DistributionRandom:
		for i := range sites {
			x := src.Float64()
			y := src.Float64()
			sites[i] = Site{X: x, Y: y, Biome: i}
		}
	default:
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		rows := (n + cols - 1) / cols
		for i := range sites {
			col, row := i%cols, i/cols
			sites[i] = Site{
				X:     (float64(col) + 0.5) / float64(cols),
				Y:     (float64(row) + 0.5) / float64(rows),
				Biome: i,
			}
		}
	}
	return sites
}
