package tscnscene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of parse options, used by the command line tool.
//
//	asset_dir: ../project
//	tile_size: {width: 16, height: 16}
//	sample_limit: 10
//	workers: 4
//	layout: godot
//	format: yaml
type Config struct {
	AssetDir    string    `yaml:"asset_dir"`
	TileSize    *TileSize `yaml:"tile_size"`
	SampleLimit *int      `yaml:"sample_limit"`
	Workers     int       `yaml:"workers"`
	Layout      string    `yaml:"layout"`
	Verbosity   int       `yaml:"verbosity"`
	Format      string    `yaml:"format"` // export format of the parse command: json or yaml
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// Options converts the config into parse options. Unset fields keep the
// library defaults.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.AssetDir != "" {
		opts = append(opts, WithAssetDir(c.AssetDir))
	}
	if c.TileSize != nil {
		if c.TileSize.Width <= 0 || c.TileSize.Height <= 0 {
			return nil, fmt.Errorf("config: tile_size must be positive, got %dx%d", c.TileSize.Width, c.TileSize.Height)
		}
		opts = append(opts, WithTileSize(c.TileSize.Width, c.TileSize.Height))
	}
	if c.SampleLimit != nil {
		opts = append(opts, WithSampleLimit(*c.SampleLimit))
	}
	if c.Workers > 0 {
		opts = append(opts, WithWorkers(c.Workers))
	}
	layout, err := ParseTileLayout(c.Layout)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	opts = append(opts, WithTileLayout(layout))
	return opts, nil
}
