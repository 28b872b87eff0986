package tscnscene

import (
	"testing"
)

func testSources() map[int]*TilesetSource {
	return map[int]*TilesetSource{
		0: {ID: 0, AtlasMax: Vec2i{10, 10}},
		1: {ID: 1, AtlasMax: Vec2i{4, 2}},
	}
}

func TestValidateCounts(t *testing.T) {
	var tiles []TileRecord
	for i := 0; i < 95; i++ {
		tiles = append(tiles, TileRecord{Cell: Vec2i{i, 0}, Source: i % 2, Atlas: Vec2i{i % 4, i % 2}})
	}
	tiles = append(tiles,
		TileRecord{Cell: Vec2i{0, 1}, Source: 9, Atlas: Vec2i{0, 0}},
		TileRecord{Cell: Vec2i{1, 1}, Source: 9, Atlas: Vec2i{0, 0}},
		TileRecord{Cell: Vec2i{2, 1}, Source: 42, Atlas: Vec2i{0, 0}},
		TileRecord{Cell: Vec2i{3, 1}, Source: 0, Atlas: Vec2i{10, 0}},
		TileRecord{Cell: Vec2i{4, 1}, Source: 1, Atlas: Vec2i{0, 2}},
	)
	layers := map[int]*Layer{0: {Index: 0, Tiles: tiles}}

	r := Validate(testSources(), layers, DefaultSampleLimit)
	if r.Checked != 100 || r.UnknownSource != 3 || r.OutOfBounds != 2 {
		t.Errorf("report = %s, want 100 checked, 3 unknown, 2 out of bounds", r)
	}
	if len(layers[0].Tiles) != 100 {
		t.Errorf("layer lost tiles: %d", len(layers[0].Tiles))
	}
	if r.Clean() {
		t.Errorf("Clean() = true")
	}

	want := []Finding{
		{Layer: 0, Cell: Vec2i{0, 1}, Source: 9, Reason: ReasonUnknownSource},
		{Layer: 0, Cell: Vec2i{1, 1}, Source: 9, Reason: ReasonUnknownSource},
		{Layer: 0, Cell: Vec2i{2, 1}, Source: 42, Reason: ReasonUnknownSource},
		{Layer: 0, Cell: Vec2i{3, 1}, Source: 0, Atlas: Vec2i{10, 0}, Reason: ReasonAtlasOutOfBounds},
		{Layer: 0, Cell: Vec2i{4, 1}, Source: 1, Atlas: Vec2i{0, 2}, Reason: ReasonAtlasOutOfBounds},
	}
	if len(r.Samples) != len(want) {
		t.Fatalf("len(Samples) = %d, want %d", len(r.Samples), len(want))
	}
	for i := range want {
		if r.Samples[i] != want[i] {
			t.Errorf("Samples[%d] = %v, want %v", i, r.Samples[i], want[i])
		}
	}
}

func TestValidateSampleLimit(t *testing.T) {
	layers := map[int]*Layer{
		3: {Index: 3, Tiles: []TileRecord{{Source: 5}, {Source: 5}}},
		1: {Index: 1, Tiles: []TileRecord{{Source: 5}, {Source: 6}, {Source: 7}}},
	}
	tests := []struct {
		limit   int
		samples int
	}{
		{0, 0},
		{2, 2},
		{DefaultSampleLimit, 5},
		{50, 5},
	}
	for _, tt := range tests {
		r := Validate(testSources(), layers, tt.limit)
		if r.UnknownSource != 5 {
			t.Errorf("limit %d: UnknownSource = %d, want 5", tt.limit, r.UnknownSource)
		}
		if len(r.Samples) != tt.samples {
			t.Errorf("limit %d: len(Samples) = %d, want %d", tt.limit, len(r.Samples), tt.samples)
		}
	}

	// Samples follow layer index order regardless of map iteration.
	r := Validate(testSources(), layers, 2)
	if r.Samples[0].Layer != 1 || r.Samples[1].Source != 6 {
		t.Errorf("Samples = %v, want layer 1 first", r.Samples)
	}
}

func TestValidateEmpty(t *testing.T) {
	r := Validate(nil, nil, DefaultSampleLimit)
	if r.Checked != 0 || !r.Clean() || r.Samples != nil {
		t.Errorf("report = %+v, want empty and clean", r)
	}

	r = Validate(nil, map[int]*Layer{0: {Tiles: []TileRecord{{Source: 0}}}}, DefaultSampleLimit)
	if r.UnknownSource != 1 {
		t.Errorf("UnknownSource = %d, want 1 with no sources", r.UnknownSource)
	}
}
