// Package projector derives the per-face and per-edge colors the viewer
// draws from visibility and selection. The viewer only knows faces and
// edges, so solid state is projected down onto the faces bounding each solid.
package projector

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/philipparndt/gomesh/pkg/shape"
)

// Color is an RGBA color with components in [0,1]
type Color struct {
	R, G, B, A float64
}

var (
	Gray        = Color{0.7, 0.7, 0.7, 1}
	Highlight   = Color{1, 0, 0, 1}
	EdgeBlack   = Color{0, 0, 0, 1}
	Transparent = Color{1, 1, 1, 0}
)

// NRGBA converts to an 8-bit color
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Hidden reports whether the color is fully transparent
func (c Color) Hidden() bool {
	return c.A == 0
}

// CSS renders the color as an rgba() value
func (c Color) CSS() string {
	n := c.NRGBA()
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", n.R, n.G, n.B, c.A)
}

func to8(v float64) uint8 {
	return uint8(max(0, min(1, v))*255 + 0.5)
}

// State is what the projection depends on besides the shape. Visible and
// Selected are indexed by shape.Kind.
type State struct {
	Active   shape.Kind
	Visible  [3][]bool
	Selected [3][]int
}

func (st *State) visible(kind shape.Kind, i int) bool {
	v := st.Visible[kind]
	return i >= len(v) || v[i]
}

func (st *State) selected(kind shape.Kind, i int) bool {
	return slices.Contains(st.Selected[kind], i)
}

// Colors is a full color assignment
type Colors struct {
	Faces []Color
	Edges []Color
}

// Project recomputes every color from scratch
func Project(s *shape.Shape, st State) Colors {
	c := Colors{
		Faces: make([]Color, len(s.Faces)),
		Edges: make([]Color, len(s.Edges)),
	}

	for i := range c.Faces {
		switch st.Active {
		case shape.Solid:
			c.Faces[i] = solidFace(s, &st, i)
		case shape.Face:
			c.Faces[i] = pick(st.visible(shape.Face, i), st.selected(shape.Face, i), Gray)
		default:
			c.Faces[i] = pick(st.visible(shape.Face, i), false, Gray)
		}
	}

	for i := range c.Edges {
		selected := st.Active == shape.Edge && st.selected(shape.Edge, i)
		c.Edges[i] = pick(st.visible(shape.Edge, i), selected, EdgeBlack)
	}

	return c
}

func pick(visible, selected bool, base Color) Color {
	switch {
	case !visible:
		return Transparent
	case selected:
		return Highlight
	default:
		return base
	}
}

// solidFace draws a face if any solid it bounds is visible and highlights it
// if any of them is selected
func solidFace(s *shape.Shape, st *State, face int) Color {
	drawn, selected := false, false
	for _, solid := range s.FaceSolids(face) {
		if st.visible(shape.Solid, solid) {
			drawn = true
		}
		if st.selected(shape.Solid, solid) {
			selected = true
		}
	}
	return pick(drawn, selected, Gray)
}
