package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawInfo writes text lines into the bottom left corner on a light backdrop
func drawInfo(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	lines := strings.Split(text, "\n")
	lineHeight := face.Metrics().Height.Ceil()

	widest := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > widest {
			widest = w
		}
	}

	bounds := img.Bounds()
	top := bounds.Max.Y - len(lines)*lineHeight - 8
	backdrop := image.Rect(bounds.Min.X, top, bounds.Min.X+widest+12, bounds.Max.Y)
	draw.Draw(img, backdrop, image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 200}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 40, G: 40, B: 40, A: 255}),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(bounds.Min.X+6, top+4+(i+1)*lineHeight-face.Metrics().Descent.Ceil())
		d.DrawString(line)
	}
}
