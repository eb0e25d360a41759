package terrain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/rng"
)

// Stage is one step of the heightfield pipeline. Validate is called for every
// stage before any stage is applied; Apply mutates the run's buffer in place.
type Stage interface {
	Name() string
	Validate(width, length int) error
	Apply(hf *field.Heightfield, run *Run) error
}

// Run carries per-run state threaded through every stage.
type Run struct {
	ID      string
	Seed    int64
	Workers int
	// Random is the single stream for order-dependent draws. Stages consume it
	// sequentially in scan order and never from parallel workers.
	Random *rng.Source
}

// Result is the frozen output of one pipeline run.
type Result struct {
	RunID       string
	Heightfield *field.Snapshot
	Stages      []string
	// RawMin and RawMax are the accumulated range before normalization.
	RawMin, RawMax float64
}

// BuildStages turns the settings into the ordered stage list. The order is
// fixed: noise layers, displacement, lake, rivers, trails, erosion.
func BuildStages(cfg *config.Settings) []Stage {
	var stages []Stage
	for _, layer := range cfg.Noise {
		if layer.Enabled {
			stages = append(stages, NewNoiseStage(layer, cfg.Seed))
		}
	}
	if cfg.Displacement.Enabled {
		stages = append(stages, NewDisplacementStage(cfg.Displacement))
	}
	if cfg.Lake.Enabled {
		stages = append(stages, NewLakeStage(cfg.Lake))
	}
	for i, river := range cfg.Rivers {
		if river.Enabled {
			stages = append(stages, NewRiverStage(i, river))
		}
	}
	for i, trail := range cfg.Trails {
		if trail.Enabled {
			stages = append(stages, NewTrailStage(i, trail))
		}
	}
	if cfg.Erosion.Enabled {
		stages = append(stages, NewErosionStage(cfg.Erosion))
	}
	return stages
}

// Pipeline owns the stage list and the mutable buffer for a run.
type Pipeline struct {
	width   int
	length  int
	seed    int64
	workers int
	stages  []Stage
}

// NewPipeline validates the settings and every stage. No buffer is allocated
// when validation fails.
func NewPipeline(cfg *config.Settings) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stages := BuildStages(cfg)
	return newPipeline(cfg.Width, cfg.Length, cfg.Seed, cfg.Workers, stages)
}

func newPipeline(width, length int, seed int64, workers int, stages []Stage) (*Pipeline, error) {
	for _, stage := range stages {
		if err := stage.Validate(width, length); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}
	return &Pipeline{width: width, length: length, seed: seed, workers: workers, stages: stages}, nil
}

// StageNames lists the stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}

// Run executes every stage in order on a fresh buffer, normalizes once and
// freezes the result. The context is only checked before the run starts.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hf, err := field.New(p.width, p.length)
	if err != nil {
		return nil, err
	}
	run := &Run{
		ID:      uuid.NewString(),
		Seed:    p.seed,
		Workers: p.workers,
		Random:  rng.New(p.seed),
	}

	start := time.Now()
	log.Printf("terrain run %s: %dx%d seed=%d stages=%d", run.ID, p.width, p.length, p.seed, len(p.stages))
	for i, stage := range p.stages {
		stageStart := time.Now()
		if err := stage.Apply(hf, run); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		progress := (i + 1) * 100 / len(p.stages)
		log.Printf("terrain run %s: %s done in %s (%d%%)", run.ID, stage.Name(), time.Since(stageStart).Round(time.Microsecond), progress)
	}

	lo, hi := hf.Normalize()
	log.Printf("terrain run %s: normalized from [%.4f, %.4f] in %s", run.ID, lo, hi, time.Since(start).Round(time.Microsecond))

	return &Result{
		RunID:       run.ID,
		Heightfield: hf.Freeze(),
		Stages:      p.StageNames(),
		RawMin:      lo,
		RawMax:      hi,
	}, nil
}

// Generate builds and runs the pipeline for the settings in one call.
func Generate(ctx context.Context, cfg *config.Settings) (*Result, error) {
	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx)
}
