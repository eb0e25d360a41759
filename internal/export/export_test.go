package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"terragen/internal/biome"
	"terragen/internal/config"
	"terragen/internal/field"
	"terragen/internal/isosurface"
	"terragen/internal/placement"
	"terragen/internal/worldgen"
)

func ramp(t *testing.T, width, length int) *field.Snapshot {
	t.Helper()
	values := make([]float64, width*length)
	for y := 0; y < length; y++ {
		for x := 0; x < width; x++ {
			values[x+y*width] = float64(x) / float64(width-1)
		}
	}
	hf, err := field.NewSnapshot(width, length, values)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return hf
}

func TestRawRoundTripKeepsFloat32Precision(t *testing.T) {
	hf := ramp(t, 7, 3)
	var buf bytes.Buffer
	if err := WriteRaw(&buf, RawHeader{RunID: "run-1", Seed: 9, RawMin: -2, RawMax: 3}, hf); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	header, got, err := ReadRaw(&buf)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if header.Version != RawVersion || header.RunID != "run-1" || header.Seed != 9 || header.Width != 7 || header.Length != 3 {
		t.Fatalf("unexpected header %+v", header)
	}
	for i := 0; i < hf.Len(); i++ {
		if want := float64(float32(hf.AtIndex(i))); got.AtIndex(i) != want {
			t.Fatalf("sample %d = %v, want %v", i, got.AtIndex(i), want)
		}
	}
}

func TestReadRawRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRaw(&buf, RawHeader{}, ramp(t, 4, 4)); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if _, _, err := ReadRaw(bytes.NewReader(buf.Bytes()[:buf.Len()/2])); err == nil {
		t.Fatalf("expected an error for a truncated stream")
	}
}

func TestHeightImageSpansFullRange(t *testing.T) {
	img := HeightImage(ramp(t, 5, 2))
	if img.Gray16At(0, 0).Y != 0 || img.Gray16At(4, 1).Y != math.MaxUint16 {
		t.Fatalf("unexpected extremes %d and %d", img.Gray16At(0, 0).Y, img.Gray16At(4, 1).Y)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("write png: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 5 || decoded.Bounds().Dy() != 2 {
		t.Fatalf("unexpected size %v", decoded.Bounds())
	}
}

func TestBiomeImageMarksUnclassifiedCells(t *testing.T) {
	m := &biome.Map{Width: 2, Length: 1, Biomes: []int{1, biome.Unclassified}, DominantLayer: []int{0, biome.Unclassified}}
	img := BiomeImage(m)
	if img.NRGBAAt(1, 0) != unclassifiedColor {
		t.Fatalf("expected unclassified colour, got %v", img.NRGBAAt(1, 0))
	}
	if img.NRGBAAt(0, 0) == unclassifiedColor {
		t.Fatalf("classified cell painted as unclassified")
	}
}

func TestPlacementImage(t *testing.T) {
	m := placement.NewMap(3, 2)
	m.Set(2, 1, true)
	img := PlacementImage(m)
	if img.GrayAt(2, 1).Y != 255 || img.GrayAt(0, 0).Y != 0 {
		t.Fatalf("unexpected pixels")
	}
}

func TestWriteOBJ(t *testing.T) {
	mesh := &isosurface.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Normals:  []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		Indices:  []uint32{0, 2, 1},
	}
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, mesh, "terrain"); err != nil {
		t.Fatalf("write obj: %v", err)
	}
	out := buf.String()
	for _, line := range []string{"o terrain", "v 1 0 0", "vn 0 1 0", "f 1//1 3//3 2//2"} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("expected %q in output:\n%s", line, out)
		}
	}
}

func TestWriteWorld(t *testing.T) {
	var logs bytes.Buffer
	originalWriter := log.Writer()
	log.SetOutput(&logs)
	defer log.SetOutput(originalWriter)

	cfg := config.Default()
	cfg.Width, cfg.Length = 33, 33
	cfg.Lake.Enabled = false
	cfg.Rivers = nil
	cfg.Trails = nil
	cfg.Mesh.GridWidth, cfg.Mesh.GridHeight, cfg.Mesh.GridLength = 9, 22, 9
	world, err := worldgen.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteWorld(dir, world)
	if err != nil {
		t.Fatalf("write world: %v", err)
	}
	want := []string{"heightmap.png", "heightfield.r32.zst", "biomes.png", "placement_pine.png", "placement_pine.json", "placement_boulder.png", "placement_boulder.json", "terrain.obj"}
	if len(paths) != len(want) {
		t.Fatalf("wrote %v", paths)
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Fatalf("file %d = %s, want %s", i, filepath.Base(paths[i]), name)
		}
		if info, err := os.Stat(paths[i]); err != nil || info.Size() == 0 {
			t.Fatalf("missing or empty %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "heightfield.r32.zst"))
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	defer f.Close()
	header, hf, err := ReadRaw(f)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if header.RunID != world.RunID || header.Seed != cfg.Seed || hf.Width() != 33 {
		t.Fatalf("unexpected header %+v", header)
	}
	if header.RawMin != world.RawMin || header.RawMax != world.RawMax || header.RawMax <= header.RawMin {
		t.Fatalf("raw range not recorded: %+v", header)
	}

	data, err := os.ReadFile(filepath.Join(dir, "placement_pine.json"))
	if err != nil {
		t.Fatalf("read instances: %v", err)
	}
	var doc struct {
		Feature   string `json:"feature"`
		Count     int    `json:"count"`
		Instances []struct {
			Scale float64 `json:"scale"`
		} `json:"instances"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode instances: %v", err)
	}
	if doc.Feature != "pine" || doc.Count != len(world.Instances[0]) || len(doc.Instances) != doc.Count {
		t.Fatalf("unexpected instance document: feature=%s count=%d", doc.Feature, doc.Count)
	}
}

func TestWriteInstances(t *testing.T) {
	var buf bytes.Buffer
	instances := []placement.Instance{{X: 1, Y: 2, Z: 3, Scale: 1.5, Rotation: 90, Density: 1}}
	if err := WriteInstances(&buf, "pine", instances); err != nil {
		t.Fatalf("write instances: %v", err)
	}
	out := buf.String()
	for _, key := range []string{`"feature": "pine"`, `"count": 1`, `"scale": 1.5`, `"rotation": 90`} {
		if !strings.Contains(out, key) {
			t.Fatalf("expected %s in output:\n%s", key, out)
		}
	}
}

func TestFileSafe(t *testing.T) {
	if got := fileSafe("pine tree/v2"); got != "pine_tree_v2" {
		t.Fatalf("fileSafe = %q", got)
	}
}
