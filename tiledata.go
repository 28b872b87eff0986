package tscnscene

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// TileLayout selects how the three words of a packed tile are split into fields.
type TileLayout int

const (
	// LayoutCellAtlasSource reads (cell, atlas, source): atlas x/y are the
	// low/high halves of the second word, source id and alternative tile the
	// low/high halves of the third.
	LayoutCellAtlasSource TileLayout = iota
	// LayoutGodot reads (cell, source | atlasX<<16, atlasY | alternative<<16),
	// the arrangement Godot 4 writes for TileMap format 2.
	LayoutGodot
)

func (l TileLayout) String() string {
	switch l {
	case LayoutCellAtlasSource:
		return "cell-atlas-source"
	case LayoutGodot:
		return "godot"
	}
	return "TileLayout(" + strconv.Itoa(int(l)) + ")"
}

// ParseTileLayout accepts the names printed by TileLayout.String.
func ParseTileLayout(s string) (TileLayout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cell-atlas-source":
		return LayoutCellAtlasSource, nil
	case "godot", "godot4":
		return LayoutGodot, nil
	}
	return 0, fmt.Errorf("unknown tile layout %q", s)
}

// TileRecord is one placed tile. Atlas coordinates are kept exactly as decoded,
// in range or not.
type TileRecord struct {
	Cell        Vec2i `json:"cell" yaml:"cell"`
	Source      int   `json:"source" yaml:"source"`
	Atlas       Vec2i `json:"atlas" yaml:"atlas"`
	Alternative int   `json:"alternative,omitempty" yaml:"alternative,omitempty"`
}

// Layer is one tile grid; only occupied cells have records.
type Layer struct {
	Index   int          `json:"index" yaml:"index"`
	Name    string       `json:"name" yaml:"name"`
	ZIndex  int          `json:"z_index,omitempty" yaml:"z_index,omitempty"`
	Enabled bool         `json:"enabled" yaml:"enabled"`
	Node    string       `json:"node" yaml:"node"`
	Tiles   []TileRecord `json:"tiles" yaml:"tiles"`
}

func lowSigned(w int32) int  { return int(int16(uint32(w) & 0xFFFF)) }
func highSigned(w int32) int { return int(int16(uint32(w) >> 16)) }
func lowU16(w int32) int     { return int(uint32(w) & 0xFFFF) }
func highU16(w int32) int    { return int(uint32(w) >> 16) }

func pack(lo, hi int) int32 {
	return int32(uint32(uint16(lo)) | uint32(uint16(hi))<<16)
}

// EncodeCell packs a cell coordinate in [-32768, 32767] into one word.
func EncodeCell(x, y int) int32 {
	return pack(x, y)
}

// DecodeCell is the inverse of EncodeCell.
func DecodeCell(w int32) Vec2i {
	return Vec2i{X: lowSigned(w), Y: highSigned(w)}
}

// EncodeTile packs a record into its three words.
func EncodeTile(t TileRecord, layout TileLayout) [3]int32 {
	cell := pack(t.Cell.X, t.Cell.Y)
	if layout == LayoutGodot {
		return [3]int32{cell, pack(t.Source, t.Atlas.X), pack(t.Atlas.Y, t.Alternative)}
	}
	return [3]int32{cell, pack(t.Atlas.X, t.Atlas.Y), pack(t.Source, t.Alternative)}
}

// DecodeTileData turns a flat packed array into tile records, one per
// triplet, in input order. Only a trailing partial triplet is an error.
func DecodeTileData(words []int32, layout TileLayout) ([]TileRecord, error) {
	if rem := len(words) % 3; rem != 0 {
		return nil, fmt.Errorf("%w: %d words leave %d after the last full triplet",
			ErrMalformedTileData, len(words), rem)
	}
	tiles := make([]TileRecord, 0, len(words)/3)
	for i := 0; i < len(words); i += 3 {
		t := TileRecord{Cell: DecodeCell(words[i])}
		if layout == LayoutGodot {
			t.Source = lowU16(words[i+1])
			t.Atlas = Vec2i{X: highU16(words[i+1]), Y: lowU16(words[i+2])}
			t.Alternative = highU16(words[i+2])
		} else {
			t.Atlas = Vec2i{X: lowU16(words[i+1]), Y: highU16(words[i+1])}
			t.Source = lowU16(words[i+2])
			t.Alternative = highU16(words[i+2])
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// layerJob is the raw data of one layer gathered from a TileMap node.
type layerJob struct {
	layer    Layer
	words    []int32
	wordsPos Position
}

// collectLayers reads layer_N/* properties of a TileMap node. A bare
// tile_data property (single layer maps) becomes layer 0.
func collectLayers(n *Node) ([]*layerJob, error) {
	byIndex := make(map[int]*layerJob)
	get := func(i int) *layerJob {
		j, ok := byIndex[i]
		if !ok {
			j = &layerJob{layer: Layer{Index: i, Name: "layer_" + strconv.Itoa(i), Enabled: true, Node: n.Path()}}
			byIndex[i] = j
		}
		return j
	}
	for _, key := range n.Properties.Keys() {
		v, _ := n.Properties.Get(key)
		idx, field := 0, key
		if rest, ok := strings.CutPrefix(key, "layer_"); ok {
			num, f, found := strings.Cut(rest, "/")
			i, err := strconv.Atoi(num)
			if !found || err != nil {
				continue
			}
			idx, field = i, f
		} else if key != "tile_data" {
			continue
		}
		j := get(idx)
		var err error
		switch field {
		case "name":
			j.layer.Name, err = v.Text()
		case "z_index":
			var z int64
			z, err = v.Int()
			j.layer.ZIndex = int(z)
		case "enabled":
			j.layer.Enabled, err = v.Bool()
		case "tile_data":
			j.words, err = v.Int32s()
			j.wordsPos = n.Pos
		}
		if err != nil {
			return nil, errorAt(n.Pos, fmt.Errorf("node %q %s: %w", n.Path(), key, err))
		}
	}
	jobs := make([]*layerJob, 0, len(byIndex))
	for _, j := range byIndex {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].layer.Index < jobs[b].layer.Index })
	return jobs, nil
}

// decodeLayers decodes every job. With workers > 1 layers decode
// concurrently; each goroutine writes only its own slot, and the first error
// in job order is returned so failures are reproducible.
func decodeLayers(jobs []*layerJob, layout TileLayout, workers int) ([]*Layer, error) {
	out := make([]*Layer, len(jobs))
	errs := make([]error, len(jobs))
	decode := func(i int) error {
		j := jobs[i]
		tiles, err := DecodeTileData(j.words, layout)
		if err != nil {
			errs[i] = errorAt(j.wordsPos, fmt.Errorf("layer %d of %q: %w", j.layer.Index, j.layer.Node, err))
			return errs[i]
		}
		l := j.layer
		l.Tiles = tiles
		out[i] = &l
		return nil
	}

	if workers <= 1 || len(jobs) < 2 {
		for i := range jobs {
			if err := decode(i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range jobs {
		i := i
		g.Go(func() error {
			return decode(i)
		})
	}
	if err := g.Wait(); err != nil {
		// Wait returns whichever layer failed first in time.
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return nil, err
	}
	return out, nil
}
