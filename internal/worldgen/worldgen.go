// Package worldgen runs one complete generation cycle: the heightfield
// pipeline, then biome classification with feature placement alongside mesh
// extraction, all reading the same frozen heightfield.
package worldgen

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"terragen/internal/biome"
	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/isosurface"
	"terragen/internal/placement"
	"terragen/internal/rng"
	"terragen/internal/terrain"
)

// World holds every artifact of one cycle. Nothing in it is updated after
// Generate returns; a new cycle rebuilds everything.
type World struct {
	RunID       string
	Settings    *config.Settings
	Heightfield *field.Snapshot
	Stages      []string
	// RawMin and RawMax are the heightfield range before normalization.
	RawMin, RawMax float64
	Biomes         *biome.Map
	Placements     []placement.Placement
	// Instances holds the expanded objects of each placement, in the same order.
	Instances [][]placement.Instance
	// Mesh is nil when mesh extraction is disabled.
	Mesh *isosurface.Mesh
}

// Generate validates the settings, runs the pipeline and fans out to the
// consumers of the finished heightfield. Any configuration error is reported
// before the heightfield is touched.
func Generate(ctx context.Context, cfg *config.Settings) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	result, err := terrain.Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate heightfield: %w", err)
	}
	world := &World{
		RunID:       result.RunID,
		Settings:    cfg,
		Heightfield: result.Heightfield,
		Stages:      result.Stages,
		RawMin:      result.RawMin,
		RawMax:      result.RawMax,
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Biome sites get their own stream so the pipeline's draws are not shared.
		biomes, err := biome.Classify(world.Heightfield, cfg.Biomes, rng.New(cfg.Seed).Derive(), cfg.Workers)
		if err != nil {
			return fmt.Errorf("classify biomes: %w", err)
		}
		world.Biomes = biomes
		if err := ctx.Err(); err != nil {
			return err
		}
		placements, err := placement.Place(world.Heightfield, biomes, cfg.Features, cfg.Seed, cfg.Workers)
		if err != nil {
			return fmt.Errorf("place features: %w", err)
		}
		world.Placements = placements
		world.Instances = placement.InstancesFor(placements, world.Heightfield, cfg.Features, cfg.Seed)
		return nil
	})
	if cfg.Mesh.Enabled {
		g.Go(func() error {
			mesh, err := isosurface.Generate(world.Heightfield, cfg.Mesh, cfg.Seed, cfg.Workers)
			if err != nil {
				return fmt.Errorf("extract mesh: %w", err)
			}
			world.Mesh = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("world %s: derived artifacts ready in %s", world.RunID, time.Since(start).Round(time.Microsecond))
	return world, nil
}
