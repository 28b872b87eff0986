package tscnscene

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const resPrefix = "res://"

// assetPath maps a res:// path onto a path inside the asset file system.
func assetPath(resPath string) (string, error) {
	p, ok := strings.CutPrefix(resPath, resPrefix)
	if !ok {
		return "", fmt.Errorf("%q is not a res:// path", resPath)
	}
	p = path.Clean(strings.TrimPrefix(p, "/"))
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%q escapes the asset directory", resPath)
	}
	return p, nil
}

// textureSize reads only the image header of a texture to get its pixel size.
func textureSize(assets fs.FS, resPath string) (Vec2i, error) {
	if assets == nil {
		return Vec2i{}, fmt.Errorf("no asset directory to resolve %s", resPath)
	}
	p, err := assetPath(resPath)
	if err != nil {
		return Vec2i{}, err
	}
	f, err := assets.Open(p)
	if err != nil {
		return Vec2i{}, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Vec2i{}, fmt.Errorf("decode texture header %s: %w", p, err)
	}
	log.Debugf("texture %s: %s %dx%d", p, format, cfg.Width, cfg.Height)
	return Vec2i{X: cfg.Width, Y: cfg.Height}, nil
}
