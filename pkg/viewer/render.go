package viewer

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/gogpu/gg"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

var (
	background   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	meshFill     = color.NRGBA{R: 179, G: 204, B: 230, A: 255}
	meshWire     = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	highlightRed = color.NRGBA{R: 255, A: 255}
)

// Frame is one rendered image with the pick buffer matching it
type Frame struct {
	Image *image.RGBA
	picks *PickBuffer
}

// EncodePNG writes the frame as PNG
func (f *Frame) EncodePNG(w io.Writer) error {
	return png.Encode(w, f.Image)
}

// PNG returns the encoded frame
func (f *Frame) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type projected struct {
	x, y, z [3]float64
	depth   float64
	col     color.NRGBA
	shade   float64
}

// render draws the scene back to front and fills the pick buffer on the way
func render(scene Scene, camera *Camera, width, height int, info string) *Frame {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	setColor(dc, background, 1)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	_ = dc.Fill()

	picks := NewPickBuffer(width, height)
	if camera != nil {
		if scene.MeshMode() {
			drawMesh(dc, scene, camera, width, height)
		} else if scene.Shape != nil {
			drawShape(dc, picks, scene, camera, width, height)
		}
	}

	img := toRGBA(dc.Image())
	if info != "" {
		drawInfo(img, info)
	}
	return &Frame{Image: img, picks: picks}
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func setColor(dc *gg.Context, c color.NRGBA, shade float64) {
	dc.SetRGBA(
		float64(c.R)/255*shade,
		float64(c.G)/255*shade,
		float64(c.B)/255*shade,
		float64(c.A)/255,
	)
}

func project(camera *Camera, t geometry.Triangle, width, height int, col color.NRGBA) projected {
	var p projected
	for i, v := range t.Vertices() {
		p.x[i], p.y[i], p.z[i] = camera.Project(v, float64(width), float64(height))
	}
	p.depth = (p.z[0] + p.z[1] + p.z[2]) / 3
	p.col = col
	light := math.Abs(t.Normal.Dot(camera.ViewDirection()))
	p.shade = 0.55 + 0.45*light
	return p
}

func fillProjected(dc *gg.Context, p projected) {
	dc.MoveTo(p.x[0], p.y[0])
	dc.LineTo(p.x[1], p.y[1])
	dc.LineTo(p.x[2], p.y[2])
	dc.ClosePath()
}

func sortBackToFront(tris []projected) {
	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].depth > tris[j].depth
	})
}

func drawShape(dc *gg.Context, picks *PickBuffer, scene Scene, camera *Camera, width, height int) {
	var tris []projected
	for fi, face := range scene.Shape.Faces {
		col := colorAt(scene.FaceColors, fi, color.NRGBA{R: 179, G: 179, B: 179, A: 255})
		if col.A == 0 {
			continue
		}
		for _, t := range face.Triangles {
			p := project(camera, t, width, height, col)
			picks.fillTriangle(p.x[0], p.y[0], p.z[0], p.x[1], p.y[1], p.z[1], p.x[2], p.y[2], p.z[2], int32(fi))
			tris = append(tris, p)
		}
	}

	sortBackToFront(tris)
	for _, p := range tris {
		setColor(dc, p.col, p.shade)
		fillProjected(dc, p)
		_ = dc.Fill()
	}

	for ei, edge := range scene.Shape.Edges {
		col := colorAt(scene.EdgeColors, ei, color.NRGBA{A: 255})
		if col.A == 0 {
			continue
		}
		lineWidth := 1.2
		if col == highlightRed {
			lineWidth = 3
		}
		drawPolyline(dc, picks, camera, edge.Points, col, lineWidth, int32(ei))
	}
}

// drawPolyline strokes the visible segments of an edge
func drawPolyline(dc *gg.Context, picks *PickBuffer, camera *Camera, points []geometry.Vector3, col color.NRGBA, lineWidth float64, id int32) {
	w, h := float64(picks.width), float64(picks.height)
	setColor(dc, col, 1)
	dc.SetLineWidth(lineWidth)
	for i := 0; i+1 < len(points); i++ {
		x1, y1, z1 := camera.Project(points[i], w, h)
		x2, y2, z2 := camera.Project(points[i+1], w, h)

		mx, my := int((x1+x2)/2), int((y1+y2)/2)
		if !picks.visibleAt(mx, my, (z1+z2)/2) {
			continue
		}
		dc.MoveTo(x1, y1)
		dc.LineTo(x2, y2)
		picks.drawLine(int(math.Round(x1)), int(math.Round(y1)), z1, int(math.Round(x2)), int(math.Round(y2)), z2, id)
	}
	_ = dc.Stroke()
}

func drawMesh(dc *gg.Context, scene Scene, camera *Camera, width, height int) {
	tris := make([]projected, 0, len(scene.Surface.Triangles))
	for _, t := range scene.Surface.Triangles {
		tris = append(tris, project(camera, t, width, height, meshFill))
	}
	sortBackToFront(tris)

	dc.SetLineWidth(0.6)
	for _, p := range tris {
		fillProjected(dc, p)
		setColor(dc, p.col, p.shade)
		_ = dc.FillPreserve()
		setColor(dc, meshWire, 1)
		_ = dc.Stroke()
	}
}

func colorAt(colors []color.NRGBA, i int, fallback color.NRGBA) color.NRGBA {
	if i < len(colors) {
		return colors[i]
	}
	return fallback
}
