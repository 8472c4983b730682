package assets

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/spaghettifunk/lumen/engine/core"
	xdraw "golang.org/x/image/draw"
)

// ImageData is a decoded feature texture ready for upload: tightly packed
// RGBA, four bytes per pixel.
type ImageData struct {
	Pixels   []byte
	Width    uint32
	Height   uint32
	Channels uint32
}

func LoadImage(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		err := fmt.Errorf("failed to open texture %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		err := fmt.Errorf("failed to decode texture %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, src, bounds, xdraw.Src, nil)

	return &ImageData{
		Pixels:   rgba.Pix,
		Width:    uint32(bounds.Dx()),
		Height:   uint32(bounds.Dy()),
		Channels: 4,
	}, nil
}
