package worldgen

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"terragen/internal/config"
	"terragen/internal/terrain"
)

func smallSettings() *config.Settings {
	cfg := config.Default()
	cfg.Width, cfg.Length = 65, 65
	cfg.Lake.Center = config.Vec2{X: 40, Y: 20}
	cfg.Lake.Radius = 8
	cfg.Rivers[0].Start = config.Vec2{X: 5, Y: 5}
	cfg.Rivers[0].End = config.Vec2{X: 60, Y: 60}
	cfg.Trails[0].Start = config.Vec2{X: 0, Y: 32}
	cfg.Trails[0].End = config.Vec2{X: 64, Y: 40}
	cfg.Mesh.GridWidth, cfg.Mesh.GridHeight, cfg.Mesh.GridLength = 17, 24, 17
	return cfg
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalWriter := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(originalWriter) })
	return &buf
}

func TestGenerateIsDeterministic(t *testing.T) {
	captureLogs(t)
	cfg := smallSettings()
	first, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	again := smallSettings()
	again.Workers = 1
	second, err := Generate(context.Background(), again)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !first.Heightfield.Equal(second.Heightfield) {
		t.Fatalf("heightfields differ")
	}
	if !reflect.DeepEqual(first.Biomes.Biomes, second.Biomes.Biomes) ||
		!reflect.DeepEqual(first.Biomes.DominantLayer, second.Biomes.DominantLayer) ||
		!reflect.DeepEqual(first.Biomes.Weights, second.Biomes.Weights) {
		t.Fatalf("biome maps differ")
	}
	if len(first.Placements) != len(cfg.Features.Specs) {
		t.Fatalf("expected one placement per feature, got %d", len(first.Placements))
	}
	for i := range first.Placements {
		if !first.Placements[i].Map.Equal(second.Placements[i].Map) {
			t.Fatalf("placement %s differs", first.Placements[i].Spec.Name)
		}
	}
	if len(first.Instances) != len(first.Placements) {
		t.Fatalf("expected instances per placement, got %d", len(first.Instances))
	}
	for i, instances := range first.Instances {
		if len(instances) != first.Placements[i].Map.Count() {
			t.Fatalf("feature %d: %d instances for %d active cells", i, len(instances), first.Placements[i].Map.Count())
		}
	}
	if !reflect.DeepEqual(first.Instances, second.Instances) {
		t.Fatalf("instances differ")
	}
	if first.RawMin != second.RawMin || first.RawMax != second.RawMax || first.RawMax <= first.RawMin {
		t.Fatalf("unexpected raw range [%f, %f] vs [%f, %f]", first.RawMin, first.RawMax, second.RawMin, second.RawMax)
	}
	if first.Mesh == nil || second.Mesh == nil {
		t.Fatalf("expected meshes")
	}
	if !reflect.DeepEqual(first.Mesh.Indices, second.Mesh.Indices) || !reflect.DeepEqual(first.Mesh.Vertices, second.Mesh.Vertices) {
		t.Fatalf("meshes differ")
	}
}

func TestGenerateSkipsDisabledMesh(t *testing.T) {
	buf := captureLogs(t)
	cfg := smallSettings()
	cfg.Mesh.Enabled = false
	world, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if world.Mesh != nil {
		t.Fatalf("expected no mesh")
	}
	if world.Biomes == nil {
		t.Fatalf("expected a biome map")
	}
	if !strings.Contains(buf.String(), "world "+world.RunID+": derived artifacts ready") {
		t.Fatalf("unexpected logs: %s", buf.String())
	}
}

func TestGenerateRejectsInvalidSettings(t *testing.T) {
	cfg := smallSettings()
	cfg.Width = 100
	world, err := Generate(context.Background(), cfg)
	if !errors.Is(err, config.ErrInvalidSettings) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !errors.Is(err, terrain.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions in chain, got %v", err)
	}
	if world != nil {
		t.Fatalf("expected no world on error")
	}

	cfg = smallSettings()
	cfg.Biomes.CellCount = 0
	if _, err := Generate(context.Background(), cfg); !errors.Is(err, config.ErrInvalidSettings) {
		t.Fatalf("expected configuration error for zero biome cells, got %v", err)
	}
}
