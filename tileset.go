package tscnscene

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

const (
	typeTileSet     = "TileSet"
	typeAtlasSource = "TileSetAtlasSource"
)

// DefaultTileSize is used when neither the tile set nor its source declares one.
var DefaultTileSize = TileSize{Width: 16, Height: 16}

// TilesetSource is one atlas a layer may draw from. AtlasMax is the exclusive
// upper bound of valid atlas coordinates: X columns, Y rows.
type TilesetSource struct {
	ID          int         `json:"id" yaml:"id"`
	AtlasMax    Vec2i       `json:"atlas_max" yaml:"atlas_max"`
	TexturePath string      `json:"texture_path" yaml:"texture_path"`
	TextureSize Vec2i       `json:"texture_size" yaml:"texture_size"`
	TileSize    TileSize    `json:"tile_size" yaml:"tile_size"`
	Margins     Vec2i       `json:"margins" yaml:"margins"`
	Separation  Vec2i       `json:"separation" yaml:"separation"`
	Resource    string      `json:"resource" yaml:"resource"`
	Tiles       []AtlasTile `json:"tiles,omitempty" yaml:"tiles,omitempty"`
}

// AtlasTile is a tile the source declares, with its collision polygons.
type AtlasTile struct {
	Atlas       Vec2i            `json:"atlas" yaml:"atlas"`
	Alternative int              `json:"alternative,omitempty" yaml:"alternative,omitempty"`
	Physics     []PhysicsPolygon `json:"physics,omitempty" yaml:"physics,omitempty"`
}

// PhysicsPolygon is one collision polygon of a tile, in pixels relative to
// the tile center.
type PhysicsPolygon struct {
	Layer   int    `json:"layer" yaml:"layer"`
	Polygon int    `json:"polygon" yaml:"polygon"`
	Points  []Vec2 `json:"points" yaml:"points"`
}

// InAtlas reports whether an atlas coordinate lies in [0, AtlasMax) on both axes.
func (s *TilesetSource) InAtlas(c Vec2i) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < s.AtlasMax.X && c.Y < s.AtlasMax.Y
}

// AtlasExtent computes how many whole tiles fit in a region per axis:
// floor((region + separation) / (tile + separation)).
func AtlasExtent(region, tile, separation Vec2i) Vec2i {
	return Vec2i{
		X: extentAxis(region.X, tile.X, separation.X),
		Y: extentAxis(region.Y, tile.Y, separation.Y),
	}
}

func extentAxis(region, tile, sep int) int {
	num, den := region+sep, tile+sep
	if num <= 0 || den <= 0 || tile <= 0 {
		return 0
	}
	return num / den
}

// tileSetDoc is a TileSet declaration together with the table its
// SubResource/ExtResource references resolve against. For a tile set
// stored in its own .tres that is the .tres table, not the scene's.
type tileSetDoc struct {
	table *ResourceTable
	decl  *ResourceDeclaration
}

var errNoTextureRegion = errors.New("missing texture region data")

// extractTilesetSources builds the source table of a tile set. Sources that
// cannot produce a positive extent are reported and left out.
func extractTilesetSources(ts tileSetDoc, assets fs.FS, fallback TileSize) (map[int]*TilesetSource, []InvalidSource) {
	sources := make(map[int]*TilesetSource)
	var invalid []InvalidSource

	setTile := fallback
	if v, ok := ts.decl.Properties.Get("tile_size"); ok {
		if sz, err := v.Vector2i(); err == nil {
			setTile = TileSize{Width: sz.X, Height: sz.Y}
		} else {
			log.Warningf("tile set %s: tile_size: %v", ts.decl.ID, err)
		}
	}

	type entry struct {
		id  int
		key string
		val Value
	}
	var entries []entry
	for _, key := range ts.decl.Properties.Keys() {
		rest, ok := strings.CutPrefix(key, "sources/")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		v, _ := ts.decl.Properties.Get(key)
		entries = append(entries, entry{id: id, key: key, val: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	for _, e := range entries {
		src, err := buildSource(ts.table, e.id, e.val, assets, setTile)
		if err != nil {
			log.Warningf("tileset source %d: %v", e.id, err)
			invalid = append(invalid, InvalidSource{ID: e.id, Resource: refText(e.val), Reason: err.Error()})
			continue
		}
		sources[e.id] = src
	}
	log.Debugf("tileset: %d sources, %d invalid", len(sources), len(invalid))
	return sources, invalid
}

func refText(v Value) string {
	if ref, err := v.Ref(); err == nil {
		return ref.ID
	}
	return v.String()
}

func buildSource(table *ResourceTable, id int, v Value, assets fs.FS, setTile TileSize) (*TilesetSource, error) {
	decl, err := table.ResolveValue(v)
	if err != nil {
		return nil, err
	}
	if decl.Type != typeAtlasSource {
		return nil, fmt.Errorf("%s is a %s, not an atlas source", decl.ID, decl.Type)
	}
	src := &TilesetSource{ID: id, Resource: decl.ID, TileSize: setTile}

	if v, ok := decl.Properties.Get("texture_region_size"); ok {
		sz, err := v.Vector2i()
		if err != nil {
			return nil, fmt.Errorf("texture_region_size: %w", err)
		}
		src.TileSize = TileSize{Width: sz.X, Height: sz.Y}
	}
	if src.Margins, err = optionalVector2i(decl.Properties, "margins"); err != nil {
		return nil, err
	}
	if src.Separation, err = optionalVector2i(decl.Properties, "separation"); err != nil {
		return nil, err
	}
	if src.Tiles, err = atlasTiles(decl.Properties); err != nil {
		return nil, err
	}

	texVal, ok := decl.Properties.Get("texture")
	if !ok {
		return nil, fmt.Errorf("%w: no texture", errNoTextureRegion)
	}
	tex, err := table.ResolveValue(texVal)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	if tex.Path == "" {
		return nil, fmt.Errorf("%w: texture %s has no path", errNoTextureRegion, tex.ID)
	}
	src.TexturePath = tex.Path
	if src.TextureSize, err = textureSize(assets, tex.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoTextureRegion, err)
	}

	region := Vec2i{X: src.TextureSize.X - src.Margins.X, Y: src.TextureSize.Y - src.Margins.Y}
	src.AtlasMax = AtlasExtent(region, src.TileSize.vec(), src.Separation)
	if src.AtlasMax.X <= 0 || src.AtlasMax.Y <= 0 {
		return nil, fmt.Errorf("atlas extent %s is empty (region %s, tile %dx%d, separation %s)",
			src.AtlasMax, region, src.TileSize.Width, src.TileSize.Height, src.Separation)
	}
	return src, nil
}

func optionalVector2i(props *Properties, key string) (Vec2i, error) {
	v, ok := props.Get(key)
	if !ok {
		return Vec2i{}, nil
	}
	vec, err := v.Vector2i()
	if err != nil {
		return Vec2i{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}

// atlasTiles collects the tiles declared by "X:Y/ALT" keys and their
// "X:Y/ALT/physics_layer_N/polygon_M/points" collision polygons, sorted by
// row, column and alternative.
func atlasTiles(props *Properties) ([]AtlasTile, error) {
	type tileKey struct {
		atlas Vec2i
		alt   int
	}
	byKey := make(map[tileKey]*AtlasTile)
	for _, key := range props.Keys() {
		parts := strings.Split(key, "/")
		if len(parts) < 2 {
			continue
		}
		atlas, ok := atlasCoords(parts[0])
		if !ok {
			continue
		}
		alt, err := strconv.Atoi(parts[1])
		if err != nil {
			continue // per-coordinate settings such as size_in_atlas
		}
		k := tileKey{atlas: atlas, alt: alt}
		tile, ok := byKey[k]
		if !ok {
			tile = &AtlasTile{Atlas: atlas, Alternative: alt}
			byKey[k] = tile
		}
		layer, polygon, ok := polygonPointsKey(parts[2:])
		if !ok {
			continue
		}
		v, _ := props.Get(key)
		points, err := v.Vectors()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		tile.Physics = append(tile.Physics, PhysicsPolygon{Layer: layer, Polygon: polygon, Points: points})
	}
	if len(byKey) == 0 {
		return nil, nil
	}

	tiles := make([]AtlasTile, 0, len(byKey))
	for _, t := range byKey {
		sort.Slice(t.Physics, func(i, j int) bool {
			if t.Physics[i].Layer != t.Physics[j].Layer {
				return t.Physics[i].Layer < t.Physics[j].Layer
			}
			return t.Physics[i].Polygon < t.Physics[j].Polygon
		})
		tiles = append(tiles, *t)
	}
	sort.Slice(tiles, func(i, j int) bool {
		a, b := tiles[i], tiles[j]
		if a.Atlas.Y != b.Atlas.Y {
			return a.Atlas.Y < b.Atlas.Y
		}
		if a.Atlas.X != b.Atlas.X {
			return a.Atlas.X < b.Atlas.X
		}
		return a.Alternative < b.Alternative
	})
	return tiles, nil
}

func atlasCoords(s string) (Vec2i, bool) {
	xs, ys, ok := strings.Cut(s, ":")
	if !ok {
		return Vec2i{}, false
	}
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return Vec2i{}, false
	}
	return Vec2i{X: x, Y: y}, true
}

// polygonPointsKey matches physics_layer_N/polygon_M/points.
func polygonPointsKey(parts []string) (layer, polygon int, ok bool) {
	if len(parts) != 3 || parts[2] != "points" {
		return 0, 0, false
	}
	l, okL := strings.CutPrefix(parts[0], "physics_layer_")
	p, okP := strings.CutPrefix(parts[1], "polygon_")
	if !okL || !okP {
		return 0, 0, false
	}
	layer, errL := strconv.Atoi(l)
	polygon, errP := strconv.Atoi(p)
	if errL != nil || errP != nil {
		return 0, 0, false
	}
	return layer, polygon, true
}
