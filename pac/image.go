package pac

import (
	"fmt"
	"image"
	"image/color"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/mazznoer/csscolorparser"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

// How to render a boot logo preview
type PreviewConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"` // Any css color
}

func (c *PreviewConfig) ReasonableDefaults() {
	if c.Width <= 0 {
		c.Width = 240
	}
	if c.Height <= 0 {
		c.Height = 320
	}
	if c.Background == "" {
		c.Background = "#000000"
	}
}

// Size information about a rendered preview
type PreviewResult struct {
	Format         string
	OriginalWidth  int
	OriginalHeight int
	ScaledWidth    int
	ScaledHeight   int
}

// Decode an extracted logo partition (bmp, png, gif or jpeg), scale it to
// fit within the configured size (keeping aspect ratio, never upscaling),
// center it on a canvas of the background color and write it as png.
func RenderPreview(raw io.Reader, config *PreviewConfig, out io.Writer) (*PreviewResult, error) {
	config.ReasonableDefaults()
	bg, err := csscolorparser.Parse(config.Background)
	if err != nil {
		return nil, fmt.Errorf("bad background color %q: %w", config.Background, err)
	}
	img, format, err := image.Decode(raw)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	scaled := resize.Thumbnail(uint(config.Width), uint(config.Height), img, resize.Bilinear)
	canvas := imaging.New(config.Width, config.Height, color.NRGBAModel.Convert(bg))
	canvas = imaging.PasteCenter(canvas, scaled)
	if err := imaging.Encode(out, canvas, imaging.PNG); err != nil {
		return nil, err
	}
	return &PreviewResult{
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		ScaledWidth:    scaled.Bounds().Dx(),
		ScaledHeight:   scaled.Bounds().Dy(),
	}, nil
}
