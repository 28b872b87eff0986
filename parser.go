package tscnscene

import (
	"fmt"
	"io/fs"
	"sort"
)

const typeTileMap = "TileMap"

// sceneParser runs the phases of one parse in dependency order: sections,
// resources, scene graph, tile set sources, layer decoding, validation.
type sceneParser struct {
	opts options
	file string
}

func newSceneParser(file string, opts options) *sceneParser {
	return &sceneParser{opts: opts, file: file}
}

func (p *sceneParser) parse(src []byte) (*ParseResult, error) {
	sections, err := ReadSections(p.file, src)
	if err != nil {
		return nil, err
	}
	res := &ParseResult{File: p.file}
	p.readHeader(&sections[0], res)

	if res.Resources, err = BuildResourceTable(sections); err != nil {
		return nil, err
	}
	if res.Root, res.Connections, err = BuildSceneGraph(sections); err != nil {
		return nil, err
	}

	tileMaps := findTileMaps(res.Root)
	jobs, err := p.layerJobs(tileMaps)
	if err != nil {
		return nil, err
	}

	var invalid []InvalidSource
	res.Sources = make(map[int]*TilesetSource)
	if ts, ok := p.findTileSet(res.Resources, tileMaps); ok {
		res.Sources, invalid = extractTilesetSources(ts, p.opts.assets, p.opts.tileSize)
	}

	decoded, err := decodeLayers(jobs, p.opts.layout, p.opts.workers)
	if err != nil {
		return nil, err
	}
	res.Layers = make(map[int]*Layer, len(decoded))
	for _, l := range decoded {
		res.Layers[l.Index] = l
	}

	res.Report = Validate(res.Sources, res.Layers, p.opts.sampleLimit)
	res.Report.InvalidSources = invalid
	if !res.Report.Clean() {
		log.Warningf("%s: %s", p.file, res.Report)
	}
	log.Infof("%s: %d resources, %d layers, %d sources", p.file, res.Resources.Len(), len(res.Layers), len(res.Sources))
	return res, nil
}

func (p *sceneParser) readHeader(first *Section, res *ParseResult) {
	if first.Tag != TagScene && first.Tag != TagResourceDoc {
		log.Warningf("%s: document starts with [%s], expected [%s] or [%s]", first.Pos, first.Tag, TagScene, TagResourceDoc)
		return
	}
	if v, ok := first.Attrs.Get("format"); ok {
		if f, err := v.Int(); err == nil {
			res.Format = int(f)
		}
	}
	res.UID = first.Attr("uid")
}

func findTileMaps(root *Node) []*Node {
	var out []*Node
	if root == nil {
		return out
	}
	root.Walk(func(n *Node) bool {
		if n.Type == typeTileMap {
			out = append(out, n)
		}
		return true
	})
	return out
}

// layerJobs gathers layers of every TileMap. The first map keeps its
// declared indices; layers of later maps that collide move to the next free
// index so the index -> layer mapping stays one to one.
func (p *sceneParser) layerJobs(tileMaps []*Node) ([]*layerJob, error) {
	var jobs []*layerJob
	taken := make(map[int]bool)
	next := 0
	for _, tm := range tileMaps {
		tmJobs, err := collectLayers(tm)
		if err != nil {
			return nil, err
		}
		for _, j := range tmJobs {
			if taken[j.layer.Index] {
				for taken[next] {
					next++
				}
				log.Debugf("layer %d of %q renumbered to %d", j.layer.Index, tm.Path(), next)
				j.layer.Index = next
			}
			taken[j.layer.Index] = true
			jobs = append(jobs, j)
		}
	}
	sort.SliceStable(jobs, func(a, b int) bool { return jobs[a].layer.Index < jobs[b].layer.Index })
	return jobs, nil
}

// findTileSet locates the TileSet the layers draw from: the tile_set of the
// first TileMap that has one, else the main resource of a TileSet .tres,
// else the only TileSet sub-resource of the document.
func (p *sceneParser) findTileSet(table *ResourceTable, tileMaps []*Node) (tileSetDoc, bool) {
	for _, tm := range tileMaps {
		v, ok := tm.Properties.Get("tile_set")
		if !ok {
			continue
		}
		ts, err := p.resolveTileSet(table, v)
		if err != nil {
			log.Warningf("%s: tile_set of %q: %v", tm.Pos, tm.Path(), err)
			return tileSetDoc{}, false
		}
		return ts, true
	}
	if main := table.Main(); main != nil && main.Type == typeTileSet {
		return tileSetDoc{table: table, decl: main}, true
	}
	if sets := table.OfType(typeTileSet); len(sets) == 1 {
		return tileSetDoc{table: table, decl: sets[0]}, true
	} else if len(sets) > 1 {
		log.Warningf("%s: %d TileSet resources and no TileMap names one", p.file, len(sets))
	}
	return tileSetDoc{}, false
}

func (p *sceneParser) resolveTileSet(table *ResourceTable, v Value) (tileSetDoc, error) {
	decl, err := table.ResolveValue(v)
	if err != nil {
		return tileSetDoc{}, err
	}
	if decl.Kind == KindSubResource {
		if decl.Type != typeTileSet {
			return tileSetDoc{}, fmt.Errorf("%s is a %s", decl.ID, decl.Type)
		}
		return tileSetDoc{table: table, decl: decl}, nil
	}
	return p.loadTileSetResource(decl.Path)
}

// loadTileSetResource parses a tile set saved as its own .tres file.
func (p *sceneParser) loadTileSetResource(resPath string) (tileSetDoc, error) {
	if p.opts.assets == nil {
		return tileSetDoc{}, fmt.Errorf("no asset directory to resolve %s", resPath)
	}
	name, err := assetPath(resPath)
	if err != nil {
		return tileSetDoc{}, err
	}
	src, err := fs.ReadFile(p.opts.assets, name)
	if err != nil {
		return tileSetDoc{}, fmt.Errorf("read tile set: %w", err)
	}
	sections, err := ReadSections(name, src)
	if err != nil {
		return tileSetDoc{}, err
	}
	table, err := BuildResourceTable(sections)
	if err != nil {
		return tileSetDoc{}, err
	}
	main := table.Main()
	if main == nil || main.Type != typeTileSet {
		return tileSetDoc{}, fmt.Errorf("%s does not hold a TileSet", resPath)
	}
	return tileSetDoc{table: table, decl: main}, nil
}
