package tscnscene

import "fmt"

// Vec2i is an integer grid coordinate (tile cell, atlas cell, pixel size).
type Vec2i struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (v Vec2i) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

// Vec2 represents a 2D coordinate in scene space (pixels)
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// TileSize represents the dimensions of a tile
type TileSize struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (s TileSize) vec() Vec2i {
	return Vec2i{X: s.Width, Y: s.Height}
}

// Rect2 is an axis aligned rectangle given by its top-left corner and size.
type Rect2 struct {
	Position Vec2 `json:"position" yaml:"position"`
	Size     Vec2 `json:"size" yaml:"size"`
}

// Position locates a section or assignment inside a document.
type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
