package tscnscene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ParseResult is everything a parse produces. It is built once and must be
// treated as read-only by its consumers.
type ParseResult struct {
	File        string
	Format      int
	UID         string
	Resources   *ResourceTable
	Root        *Node
	Sources     map[int]*TilesetSource
	Layers      map[int]*Layer
	Connections []Connection
	Report      *Report
}

// Node finds a node by path from the root ("." is the root itself).
func (r *ParseResult) Node(path string) *Node {
	if r.Root == nil {
		return nil
	}
	return r.Root.Find(path)
}

func (r *ParseResult) Layer(index int) (*Layer, bool) {
	l, ok := r.Layers[index]
	return l, ok
}

func (r *ParseResult) Source(id int) (*TilesetSource, bool) {
	s, ok := r.Sources[id]
	return s, ok
}

// LayerIndices returns the layer indices in ascending order.
func (r *ParseResult) LayerIndices() []int {
	out := make([]int, 0, len(r.Layers))
	for i := range r.Layers {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SourceIDs returns the valid source identifiers in ascending order.
func (r *ParseResult) SourceIDs() []int {
	out := make([]int, 0, len(r.Sources))
	for id := range r.Sources {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Parse reads and parses a scene document. Unless an asset option is given,
// res:// paths resolve against the directory holding inputFile.
func Parse(inputFile string, opts ...Option) (*ParseResult, error) {
	if inputFile == "" {
		return nil, errors.New("input file is empty")
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.assets == nil {
		o.assets = os.DirFS(filepath.Dir(inputFile))
	}
	return newSceneParser(inputFile, o).parse(data)
}

// ParseBytes parses an in-memory document; name is only used in positions.
// Without an asset option, textures and external tile sets cannot be
// resolved and their sources are reported invalid.
func ParseBytes(name string, data []byte, opts ...Option) (*ParseResult, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSceneParser(name, o).parse(data)
}
