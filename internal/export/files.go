package export

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"terragen/internal/worldgen"
)

// WriteWorld writes every artifact of a generation cycle into dir and returns
// the paths written, in order.
func WriteWorld(dir string, world *worldgen.World) ([]string, error) {
	if world == nil || world.Heightfield == nil {
		return nil, fmt.Errorf("world is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		if err := writeFile(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write("heightmap.png", func(w io.Writer) error {
		return WritePNG(w, HeightImage(world.Heightfield))
	}); err != nil {
		return written, err
	}

	header := RawHeader{RunID: world.RunID, RawMin: world.RawMin, RawMax: world.RawMax}
	if world.Settings != nil {
		header.Seed = world.Settings.Seed
	}
	if err := write("heightfield.r32.zst", func(w io.Writer) error {
		return WriteRaw(w, header, world.Heightfield)
	}); err != nil {
		return written, err
	}

	if world.Biomes != nil {
		if err := write("biomes.png", func(w io.Writer) error {
			return WritePNG(w, BiomeImage(world.Biomes))
		}); err != nil {
			return written, err
		}
	}

	for i, p := range world.Placements {
		base := "placement_" + fileSafe(p.Spec.Name)
		m := p.Map
		if err := write(base+".png", func(w io.Writer) error {
			return WritePNG(w, PlacementImage(m))
		}); err != nil {
			return written, err
		}
		if i < len(world.Instances) {
			instances := world.Instances[i]
			if err := write(base+".json", func(w io.Writer) error {
				return WriteInstances(w, p.Spec.Name, instances)
			}); err != nil {
				return written, err
			}
		}
	}

	if world.Mesh != nil {
		if err := write("terrain.obj", func(w io.Writer) error {
			return WriteOBJ(w, world.Mesh, "terrain")
		}); err != nil {
			return written, err
		}
	}

	log.Printf("world %s: wrote %d files to %s", world.RunID, len(written), dir)
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := fn(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
