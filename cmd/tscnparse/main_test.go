package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const scene = `[gd_scene load_steps=4 format=3]

[ext_resource type="Texture2D" path="res://tiles.png" id="1_tex"]

[sub_resource type="TileSetAtlasSource" id="Atlas"]
texture = ExtResource("1_tex")

[sub_resource type="TileSet" id="Set"]
sources/0 = SubResource("Atlas")

[node name="Root" type="Node2D"]

[node name="Map" type="TileMap" parent="."]
tile_set = SubResource("Set")
layer_0/name = "ground"
layer_0/tile_data = PackedInt32Array(0, 0, 0, 1, 4, 0)
`

// writeProject lays out a scene next to a 32x32 texture: a 2x2 atlas of
// 16 pixel tiles. The second tile points at atlas (4, 0) and is out of bounds.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	var img bytes.Buffer
	if err := png.Encode(&img, image.NewGray(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tiles.png"), img.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "level.tscn")
	if err := os.WriteFile(path, []byte(scene), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&rootFlags{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommandJSON(t *testing.T) {
	path := writeProject(t)
	msg, err := run(t, "parse", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(msg, "Successfully converted") {
		t.Errorf("output = %q", msg)
	}

	data, err := os.ReadFile(strings.TrimSuffix(path, ".tscn") + "_tilemap.json")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		TileMap struct {
			Layers []struct {
				Name  string `json:"name"`
				Tiles []any  `json:"tiles"`
			} `json:"layers"`
		} `json:"tilemap"`
		Report struct {
			Checked     int `json:"checked"`
			OutOfBounds int `json:"out_of_bounds"`
		} `json:"report"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.TileMap.Layers) != 1 || doc.TileMap.Layers[0].Name != "ground" || len(doc.TileMap.Layers[0].Tiles) != 2 {
		t.Errorf("layers = %+v", doc.TileMap.Layers)
	}
	if doc.Report.Checked != 2 || doc.Report.OutOfBounds != 1 {
		t.Errorf("report = %+v", doc.Report)
	}
}

func TestParseCommandYAMLToStdout(t *testing.T) {
	path := writeProject(t)
	out, err := run(t, "parse", path, "-o", "-", "-f", "yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("yaml: %v\n%s", err, out)
	}
	if _, ok := doc["tilemap"]; !ok {
		t.Errorf("missing tilemap key:\n%s", out)
	}
}

func TestParseCommandBadFormat(t *testing.T) {
	path := writeProject(t)
	if _, err := run(t, "parse", path, "-o", "-", "-f", "xml"); err == nil {
		t.Errorf("parse -f xml = nil error")
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeProject(t)

	out, err := run(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "2 tiles checked") || !strings.Contains(out, "atlas_out_of_bounds") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "validate", "--strict", path); !errors.Is(err, errFindings) {
		t.Errorf("validate --strict = %v, want errFindings", err)
	}

	out, err = run(t, "validate", "--samples", "0", path)
	if err != nil {
		t.Fatalf("validate --samples 0: %v", err)
	}
	if strings.Contains(out, "atlas_out_of_bounds") {
		t.Errorf("samples printed with --samples 0: %q", out)
	}
}

func TestConfigFlagMerge(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("layout: godot\nworkers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flags := &rootFlags{configPath: cfgPath, layout: "cell-atlas-source"}
	if err := flags.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if flags.cfg.Layout != "cell-atlas-source" || flags.cfg.Workers != 2 {
		t.Errorf("cfg = %+v", flags.cfg)
	}

	flags = &rootFlags{configPath: filepath.Join(dir, "missing.yaml")}
	if err := flags.load(); err == nil {
		t.Errorf("load(missing config) = nil error")
	}
}

func TestIsDocument(t *testing.T) {
	tests := map[string]bool{
		"level.tscn":        true,
		"tiles/world.tres":  true,
		"LEVEL.TSCN":        true,
		"tiles.png":         false,
		"level.tscn.import": false,
		"level.tscn~":       false,
	}
	for path, want := range tests {
		if got := isDocument(path); got != want {
			t.Errorf("isDocument(%q) = %v, want %v", path, got, want)
		}
	}
}
