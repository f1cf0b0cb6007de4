// Package stl reads the triangulated surface the meshing engine exports next
// to its native mesh file, for display in mesh view.
package stl

import (
	"github.com/philipparndt/gomesh/pkg/geometry"
)

// Model is the surface of a generated mesh. A nil model is an empty surface.
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel returns an empty surface
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// Add appends surface triangles
func (m *Model) Add(triangles ...geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangles...)
}

// Len returns the number of surface elements
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles)
}

// Bounds returns the box mesh view frames
func (m *Model) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	if m == nil {
		return bbox
	}
	for _, t := range m.Triangles {
		bbox.Extend(t.V1)
		bbox.Extend(t.V2)
		bbox.Extend(t.V3)
	}
	return bbox
}

// Area returns the total surface area
func (m *Model) Area() float64 {
	if m == nil {
		return 0
	}
	area := 0.0
	for _, t := range m.Triangles {
		area += t.Area()
	}
	return area
}
