package tscnscene

import (
	"bytes"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// packedTiles renders tiles as a PackedInt32Array literal.
func packedTiles(layout TileLayout, tiles ...TileRecord) string {
	parts := make([]string, 0, 3*len(tiles))
	for _, tile := range tiles {
		for _, w := range EncodeTile(tile, layout) {
			parts = append(parts, strconv.FormatInt(int64(w), 10))
		}
	}
	return "PackedInt32Array(" + strings.Join(parts, ", ") + ")"
}

var (
	groundTiles = []TileRecord{
		{Cell: Vec2i{0, 0}, Source: 0, Atlas: Vec2i{1, 2}},
		{Cell: Vec2i{-5, 12}, Source: 1, Atlas: Vec2i{9, 9}},
		{Cell: Vec2i{3, -1}, Source: 0, Atlas: Vec2i{10, 0}},
	}
	decorTiles = []TileRecord{
		{Cell: Vec2i{1, 1}, Source: 7, Atlas: Vec2i{0, 0}},
		{Cell: Vec2i{2, 1}, Source: 1, Atlas: Vec2i{4, 4}, Alternative: 2},
	}
)

// levelScene is a format 3 scene with a tile map, a trigger area and an
// instanced child. The TileSet is declared before the sources it names.
func levelScene(layout TileLayout) string {
	return `[gd_scene load_steps=7 format=3 uid="uid://c1level"]

[ext_resource type="Texture2D" uid="uid://b1tiles" path="res://art/tiles.png" id="1_tiles"]
[ext_resource type="PackedScene" path="res://enemy.tscn" id="2_enemy"]

[sub_resource type="TileSet" id="TileSet_main"]
tile_size = Vector2i(96, 96)
sources/0 = SubResource("TileSetAtlasSource_a")
sources/1 = SubResource("TileSetAtlasSource_b")

[sub_resource type="TileSetAtlasSource" id="TileSetAtlasSource_a"]
texture = ExtResource("1_tiles")
0:0/0 = 0
0:0/0/physics_layer_0/polygon_0/points = PackedVector2Array(-48, -48, 48, -48, 48, 48, -48, 48)

[sub_resource type="TileSetAtlasSource" id="TileSetAtlasSource_b"]
texture = ExtResource("1_tiles")
texture_region_size = Vector2i(94, 94)
separation = Vector2i(2, 2)

[sub_resource type="RectangleShape2D" id="RectangleShape2D_goal"]
size = Vector2(266.5, 15)

[node name="Level" type="Node2D"]
position = Vector2(32, -192)

[node name="TileMap" type="TileMap" parent="."]
tile_set = SubResource("TileSet_main")
format = 2
layer_0/name = "ground"
layer_0/tile_data = ` + packedTiles(layout, groundTiles...) + `
layer_1/name = "decor"
layer_1/z_index = -1
layer_1/tile_data = ` + packedTiles(layout, decorTiles...) + `

[node name="Goal" type="Area2D" parent="." groups=["triggers"]]
position = Vector2(422.75, -991.5)

[node name="Shape" type="CollisionShape2D" parent="Goal"]
shape = SubResource("RectangleShape2D_goal")

[node name="Enemy" parent="." instance=ExtResource("2_enemy")]
position = Vector2(10, 20)

[connection signal="body_entered" from="Goal" to="." method="_on_goal_entered"]
`
}

func levelAssets(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"art/tiles.png": {Data: pngBytes(t, 960, 960)},
	}
}
