package tscnscene

import "strings"

// TileSet lists the valid atlas sources by ascending id.
type TileSet struct {
	Sources []TilesetSource `json:"sources" yaml:"sources"`
}

// TileMapData is the exported tile data of a scene.
type TileMapData struct {
	Format  int     `json:"format" yaml:"format"`
	TileSet TileSet `json:"tileset" yaml:"tileset"`
	Layers  []Layer `json:"layers" yaml:"layers"`
}

// NodeData is a flattened scene node with its composed position.
type NodeData struct {
	Name       string         `json:"name" yaml:"name"`
	Type       string         `json:"type,omitempty" yaml:"type,omitempty"`
	Path       string         `json:"path" yaml:"path"`
	Parent     string         `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position   Vec2           `json:"position" yaml:"position"`
	Absolute   Vec2           `json:"absolute_position" yaml:"absolute_position"`
	Instance   string         `json:"instance,omitempty" yaml:"instance,omitempty"`
	Groups     []string       `json:"groups,omitempty" yaml:"groups,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// MapData is the root of the JSON/YAML export written by offline tooling.
type MapData struct {
	File        string       `json:"file" yaml:"file"`
	UID         string       `json:"uid,omitempty" yaml:"uid,omitempty"`
	TileMap     TileMapData  `json:"tilemap" yaml:"tilemap"`
	Nodes       []NodeData   `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
	Report      *Report      `json:"report" yaml:"report"`
}

// ToMapData flattens a parse result for encoding. Sources and layers are
// sorted by id/index and nodes are listed depth first, so the output is
// stable for a given document.
func ToMapData(res *ParseResult) *MapData {
	if res == nil {
		return nil
	}
	data := &MapData{
		File:        res.File,
		UID:         res.UID,
		TileMap:     TileMapData{Format: res.Format},
		Connections: res.Connections,
		Report:      res.Report,
	}
	for _, id := range res.SourceIDs() {
		data.TileMap.TileSet.Sources = append(data.TileMap.TileSet.Sources, *res.Sources[id])
	}
	for _, i := range res.LayerIndices() {
		data.TileMap.Layers = append(data.TileMap.Layers, *res.Layers[i])
	}
	if res.Root != nil {
		res.Root.Walk(func(n *Node) bool {
			nd := NodeData{
				Name:       n.Name,
				Type:       n.Type,
				Path:       n.Path(),
				Parent:     n.ParentPath(),
				Position:   n.Position,
				Absolute:   n.AbsolutePosition(),
				Groups:     n.Groups,
				Properties: exportProperties(res.Resources, n),
			}
			if ref, ok := n.Instance(); ok {
				if decl, found := res.Resources.Resolve(ref); found {
					nd.Instance = decl.Path
				} else {
					nd.Instance = ref.String()
				}
			}
			data.Nodes = append(data.Nodes, nd)
			return true
		})
	}
	return data
}

// exportProperties drops the position, exported separately, and the packed
// tile data, which is exported decoded as layers. External resources the
// table resolves are exported as their asset path.
func exportProperties(table *ResourceTable, n *Node) map[string]any {
	props := n.Properties.Map()
	delete(props, "position")
	for k := range props {
		v, _ := n.Properties.Get(k)
		ref, err := v.Ref()
		if err != nil || ref.Kind != KindExtResource {
			continue
		}
		if decl, ok := table.Resolve(ref); ok && decl.Path != "" {
			props[k] = decl.Path
		}
	}
	if n.Type == typeTileMap {
		for k := range props {
			if k == "tile_data" || isLayerTileData(k) {
				delete(props, k)
			}
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

func isLayerTileData(key string) bool {
	return strings.HasPrefix(key, "layer_") && strings.HasSuffix(key, "/tile_data")
}
