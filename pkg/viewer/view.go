// Package viewer projects engine tessellation into images: an orbit camera,
// a software pick buffer that maps pixels back to faces and edges, a PNG
// renderer for the browser and a fyne widget for the desktop.
package viewer

import (
	"image/color"

	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
)

// Scene is what the viewer draws: either a shape with per-entity colors or
// the surface of a generated mesh
type Scene struct {
	Shape      *shape.Shape
	FaceColors []color.NRGBA
	EdgeColors []color.NRGBA
	Surface    *stl.Model
}

// MeshMode reports whether the scene shows a mesh
func (s Scene) MeshMode() bool {
	return s.Surface != nil
}

// Default image size of a view
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// View keeps the camera and the last rendered frame of one viewer
type View struct {
	camera *Camera
	scene  Scene
	info   string
	width  int
	height int
	frame  *Frame
}

// NewView creates an empty view
func NewView(width, height int) *View {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &View{width: width, height: height}
}

// ShowGeometry displays a shape. The camera is reframed when the shape
// changes, color updates keep the current orbit.
func (v *View) ShowGeometry(s *shape.Shape, faces, edges []color.NRGBA) {
	if v.camera == nil || v.scene.Shape != s {
		v.camera = NewCamera(s.Bounds)
	}
	v.scene = Scene{Shape: s, FaceColors: faces, EdgeColors: edges}
	v.frame = nil
}

// ShowMesh displays a mesh surface, keeping the camera of the geometry
func (v *View) ShowMesh(surface *stl.Model) {
	if surface == nil {
		surface = stl.NewModel("")
	}
	if v.camera == nil {
		v.camera = NewCamera(surface.Bounds())
	}
	v.scene.Surface = surface
	v.frame = nil
}

// ShowGeometryMode leaves mesh display and returns to the shape
func (v *View) ShowGeometryMode() {
	v.scene.Surface = nil
	v.frame = nil
}

// Clear drops the scene
func (v *View) Clear() {
	v.scene = Scene{}
	v.camera = nil
	v.info = ""
	v.frame = nil
}

// Scene returns the current scene
func (v *View) Scene() Scene {
	return v.scene
}

// SetInfo sets the text drawn in the bottom left corner
func (v *View) SetInfo(text string) {
	if text != v.info {
		v.info = text
		v.frame = nil
	}
}

// Resize changes the image size
func (v *View) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == v.width && height == v.height) {
		return
	}
	v.width, v.height = width, height
	v.frame = nil
}

// Size returns the image size
func (v *View) Size() (width, height int) {
	return v.width, v.height
}

// Rotate orbits the camera
func (v *View) Rotate(deltaX, deltaY float64) {
	if v.camera != nil {
		v.camera.Rotate(deltaX, deltaY)
		v.frame = nil
	}
}

// Zoom moves the camera closer (negative) or further away (positive)
func (v *View) Zoom(delta float64) {
	if v.camera != nil {
		v.camera.Zoom(delta)
		v.frame = nil
	}
}

// ResetCamera restores the initial orbit
func (v *View) ResetCamera() {
	if v.camera != nil {
		v.camera.Reset()
		v.frame = nil
	}
}

// Frame returns the current image, rendering it if anything changed
func (v *View) Frame() *Frame {
	if v.frame == nil {
		v.frame = render(v.scene, v.camera, v.width, v.height, v.info)
	}
	return v.frame
}

// Pick translates a click at pixel (x, y) into the entity under it. Mesh
// display has no pickable entities.
func (v *View) Pick(x, y int) Pick {
	if v.scene.Shape == nil || v.scene.MeshMode() {
		return Pick{Dim: DimNone}
	}
	dim, index := v.Frame().picks.Pick(x, y)
	return Pick{Dim: dim, Index: index}
}
