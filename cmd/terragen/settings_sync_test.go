package main

import (
	"encoding/base64"
	"path/filepath"
	"testing"

	"terragen/internal/config"
)

func TestWriteSettingsFromEnvJSON(t *testing.T) {
	t.Setenv("TERRAGEN_SETTINGS_YAML_B64", "")
	t.Setenv("TERRAGEN_SETTINGS_JSON", `{"seed": 7, "width": 33, "length": 33}`)

	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	wrote, err := writeSettingsFromEnv(path)
	if err != nil {
		t.Fatalf("writeSettingsFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected settings to be written")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written settings: %v", err)
	}
	if cfg.Seed != 7 || cfg.Width != 33 || cfg.Length != 33 {
		t.Fatalf("unexpected settings: seed=%d %dx%d", cfg.Seed, cfg.Width, cfg.Length)
	}
	if len(cfg.Noise) != len(config.Default().Noise) {
		t.Fatalf("defaults were not preserved")
	}
}

func TestWriteSettingsFromEnvYAML(t *testing.T) {
	doc := "seed: 11\nerosion:\n  enabled: false\n"
	t.Setenv("TERRAGEN_SETTINGS_JSON", "")
	t.Setenv("TERRAGEN_SETTINGS_YAML_B64", base64.StdEncoding.EncodeToString([]byte(doc)))

	path := filepath.Join(t.TempDir(), "settings.json")
	wrote, err := writeSettingsFromEnv(path)
	if err != nil {
		t.Fatalf("writeSettingsFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected settings to be written")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written settings: %v", err)
	}
	if cfg.Seed != 11 || cfg.Erosion.Enabled {
		t.Fatalf("unexpected settings: seed=%d erosion=%v", cfg.Seed, cfg.Erosion.Enabled)
	}
}

func TestWriteSettingsFromEnvWithoutPayload(t *testing.T) {
	t.Setenv("TERRAGEN_SETTINGS_JSON", "")
	t.Setenv("TERRAGEN_SETTINGS_YAML_B64", "")

	wrote, err := writeSettingsFromEnv(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil || wrote {
		t.Fatalf("expected no-op, got wrote=%v err=%v", wrote, err)
	}
}

func TestWriteSettingsFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		yaml string
		path string
	}{
		{name: "missing path", json: `{"seed": 1}`},
		{name: "invalid settings", json: `{"width": 100}`, path: "settings.json"},
		{name: "schema mismatch", json: `{"width": "wide"}`, path: "settings.json"},
		{name: "bad base64", yaml: "%%%", path: "settings.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERRAGEN_SETTINGS_JSON", tt.json)
			t.Setenv("TERRAGEN_SETTINGS_YAML_B64", tt.yaml)
			path := tt.path
			if path != "" {
				path = filepath.Join(t.TempDir(), path)
			}
			if wrote, err := writeSettingsFromEnv(path); err == nil || wrote {
				t.Fatalf("expected failure, got wrote=%v err=%v", wrote, err)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 3
	applyOverrides(cfg, map[string]bool{"workers": true}, 99, 2, true)
	if cfg.Seed != 3 {
		t.Fatalf("seed overridden without the flag being set")
	}
	if cfg.Workers != 2 || cfg.Mesh.Enabled {
		t.Fatalf("unexpected overrides: workers=%d mesh=%v", cfg.Workers, cfg.Mesh.Enabled)
	}
}
