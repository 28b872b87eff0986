package tscnscene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tscnparse.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `asset_dir: ../project
tile_size: {width: 32, height: 16}
sample_limit: 0
workers: 4
layout: godot
verbosity: 2
format: yaml
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AssetDir != "../project" || cfg.Workers != 4 || cfg.Layout != "godot" || cfg.Verbosity != 2 || cfg.Format != "yaml" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.TileSize == nil || *cfg.TileSize != (TileSize{32, 16}) {
		t.Errorf("TileSize = %v", cfg.TileSize)
	}
	if cfg.SampleLimit == nil || *cfg.SampleLimit != 0 {
		t.Errorf("SampleLimit = %v, want explicit 0", cfg.SampleLimit)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.tileSize != (TileSize{32, 16}) || o.sampleLimit != 0 || o.workers != 4 || o.layout != LayoutGodot || o.assets == nil {
		t.Errorf("options = %+v", o)
	}
}

func TestConfigDefaults(t *testing.T) {
	opts, err := (&Config{}).Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o != defaultOptions() {
		t.Errorf("empty config changed options: %+v", o)
	}
}

func TestConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil || !strings.HasPrefix(err.Error(), "config: load") {
		t.Errorf("LoadConfig(missing) = %v", err)
	}
	if _, err := LoadConfig(writeConfig(t, "workers: [1\n")); err == nil || !strings.HasPrefix(err.Error(), "config: unmarshal") {
		t.Errorf("LoadConfig(bad yaml) = %v", err)
	}

	bad := []Config{
		{Layout: "hex"},
		{TileSize: &TileSize{Width: 0, Height: 16}},
	}
	for _, cfg := range bad {
		if _, err := cfg.Options(); err == nil {
			t.Errorf("Options(%+v) = nil error", cfg)
		}
	}
}
