package tscnscene

import (
	"io/fs"
	"os"
)

type options struct {
	assets      fs.FS
	tileSize    TileSize
	sampleLimit int
	workers     int
	layout      TileLayout
}

func defaultOptions() options {
	return options{
		tileSize:    DefaultTileSize,
		sampleLimit: DefaultSampleLimit,
		workers:     1,
		layout:      LayoutCellAtlasSource,
	}
}

// Option configures a parse.
type Option func(*options)

// WithAssetDir sets the directory res:// paths resolve against (the Godot
// project root). Parse defaults to the directory holding the scene.
func WithAssetDir(dir string) Option {
	return func(o *options) {
		o.assets = os.DirFS(dir)
	}
}

// WithAssetFS resolves res:// paths inside fsys, e.g. an embed.FS.
func WithAssetFS(fsys fs.FS) Option {
	return func(o *options) {
		o.assets = fsys
	}
}

// WithTileSize sets the cell size used when a tile set declares none.
func WithTileSize(width, height int) Option {
	return func(o *options) {
		o.tileSize = TileSize{Width: width, Height: height}
	}
}

// WithSampleLimit bounds how many offending tiles the report keeps.
func WithSampleLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.sampleLimit = n
		}
	}
}

// WithWorkers decodes up to n layers concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithTileLayout(layout TileLayout) Option {
	return func(o *options) {
		o.layout = layout
	}
}
