package tscnscene

import (
	"fmt"
	"sort"
)

// DefaultSampleLimit bounds Report.Samples unless overridden.
const DefaultSampleLimit = 5

// Reason classifies a tile finding.
type Reason string

const (
	ReasonUnknownSource    Reason = "unknown_source"
	ReasonAtlasOutOfBounds Reason = "atlas_out_of_bounds"
)

// Finding is one offending tile kept as a diagnostic sample.
type Finding struct {
	Layer  int    `json:"layer" yaml:"layer"`
	Cell   Vec2i  `json:"cell" yaml:"cell"`
	Source int    `json:"source" yaml:"source"`
	Atlas  Vec2i  `json:"atlas" yaml:"atlas"`
	Reason Reason `json:"reason" yaml:"reason"`
}

func (f Finding) String() string {
	return fmt.Sprintf("layer %d cell %s source %d atlas %s: %s", f.Layer, f.Cell, f.Source, f.Atlas, f.Reason)
}

// InvalidSource is a tile set source left out of the source table.
type InvalidSource struct {
	ID       int    `json:"id" yaml:"id"`
	Resource string `json:"resource" yaml:"resource"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Report tallies data quality findings. It is advisory: nothing in a
// ParseResult is changed or dropped because of it.
type Report struct {
	Checked        int             `json:"checked" yaml:"checked"`
	UnknownSource  int             `json:"unknown_source" yaml:"unknown_source"`
	OutOfBounds    int             `json:"out_of_bounds" yaml:"out_of_bounds"`
	InvalidSources []InvalidSource `json:"invalid_sources,omitempty" yaml:"invalid_sources,omitempty"`
	Samples        []Finding       `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Clean reports whether no finding of any kind was recorded.
func (r *Report) Clean() bool {
	return r.UnknownSource == 0 && r.OutOfBounds == 0 && len(r.InvalidSources) == 0
}

func (r *Report) String() string {
	return fmt.Sprintf("%d tiles checked, %d unknown source, %d atlas out of bounds, %d invalid sources",
		r.Checked, r.UnknownSource, r.OutOfBounds, len(r.InvalidSources))
}

// Validate checks every tile against the source table. Layers are visited in
// index order and tiles in decode order so samples are reproducible.
func Validate(sources map[int]*TilesetSource, layers map[int]*Layer, sampleLimit int) *Report {
	r := &Report{}
	indices := make([]int, 0, len(layers))
	for i := range layers {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		layer := layers[i]
		for _, t := range layer.Tiles {
			r.Checked++
			var reason Reason
			src, ok := sources[t.Source]
			switch {
			case !ok:
				r.UnknownSource++
				reason = ReasonUnknownSource
			case !src.InAtlas(t.Atlas):
				r.OutOfBounds++
				reason = ReasonAtlasOutOfBounds
			default:
				continue
			}
			if len(r.Samples) < sampleLimit {
				r.Samples = append(r.Samples, Finding{
					Layer:  layer.Index,
					Cell:   t.Cell,
					Source: t.Source,
					Atlas:  t.Atlas,
					Reason: reason,
				})
			}
		}
	}
	return r
}
