// Package shape holds the topology of a loaded CAD geometry as the meshing
// engine reports it: solids, faces and edges with their names, mesh-size
// overrides and a display tessellation.
package shape

import (
	"fmt"
	"slices"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

// SolidEntity is a closed volume bounded by faces
type SolidEntity struct {
	Name     string
	MeshSize float64
	Faces    []int // indices into Shape.Faces
}

// FaceEntity is a bounded surface patch with its display triangles
type FaceEntity struct {
	Name      string
	MeshSize  float64
	Triangles []geometry.Triangle
}

// EdgeEntity is a curve segment with its display polyline
type EdgeEntity struct {
	Name     string
	MeshSize float64
	Points   []geometry.Vector3
}

// Shape is the handle for one loaded geometry. It is replaced as a whole on
// reload and never merged with a previous one.
type Shape struct {
	Name   string // base name of the uploaded file, without extension
	Source string // path of the geometry file handed to the engine
	Digest string // content digest of the source file
	Bounds geometry.BoundingBox
	Solids []SolidEntity
	Faces  []FaceEntity
	Edges  []EdgeEntity

	faceSolids [][]int
	loaded     [3][]entityValue
}

// entityValue is a name and mesh size as the engine reported them
type entityValue struct {
	name     string
	meshSize float64
}

// New assembles a shape and builds the face to solid adjacency
func New(name string, solids []SolidEntity, faces []FaceEntity, edges []EdgeEntity) (*Shape, error) {
	s := &Shape{
		Name:   name,
		Solids: solids,
		Faces:  faces,
		Edges:  edges,
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	s.Bounds = s.computeBounds()
	for _, kind := range Kinds {
		values := make([]entityValue, s.Count(kind))
		for i := range values {
			values[i].name, values[i].meshSize = s.Entity(kind, i)
		}
		s.loaded[kind] = values
	}
	return s, nil
}

func (s *Shape) index() error {
	s.faceSolids = make([][]int, len(s.Faces))
	for si, solid := range s.Solids {
		for _, fi := range solid.Faces {
			if fi < 0 || fi >= len(s.Faces) {
				return fmt.Errorf("solid %d references face %d, shape has %d faces", si, fi, len(s.Faces))
			}
			s.faceSolids[fi] = append(s.faceSolids[fi], si)
		}
	}
	return nil
}

func (s *Shape) computeBounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, f := range s.Faces {
		for _, t := range f.Triangles {
			bbox.Extend(t.V1)
			bbox.Extend(t.V2)
			bbox.Extend(t.V3)
		}
	}
	for _, e := range s.Edges {
		for _, p := range e.Points {
			bbox.Extend(p)
		}
	}
	return bbox
}

// Count returns the number of entities of the given kind
func (s *Shape) Count(kind Kind) int {
	switch kind {
	case Solid:
		return len(s.Solids)
	case Face:
		return len(s.Faces)
	case Edge:
		return len(s.Edges)
	default:
		return 0
	}
}

// FaceSolids returns the solids bounded by a face
func (s *Shape) FaceSolids(face int) []int {
	if face < 0 || face >= len(s.faceSolids) {
		return nil
	}
	return s.faceSolids[face]
}

// Entity returns the name and mesh size of one entity
func (s *Shape) Entity(kind Kind, index int) (name string, meshSize float64) {
	switch kind {
	case Solid:
		return s.Solids[index].Name, s.Solids[index].MeshSize
	case Face:
		return s.Faces[index].Name, s.Faces[index].MeshSize
	default:
		return s.Edges[index].Name, s.Edges[index].MeshSize
	}
}

// Loaded returns the name and mesh size an entity had when the geometry was
// loaded, before any edit
func (s *Shape) Loaded(kind Kind, index int) (name string, meshSize float64) {
	if kind < 0 || int(kind) >= len(s.loaded) || index < 0 || index >= len(s.loaded[kind]) {
		return "", Unbounded
	}
	v := s.loaded[kind][index]
	return v.name, v.meshSize
}

// SetEntity writes a name and mesh size back onto the handle
func (s *Shape) SetEntity(kind Kind, index int, name string, meshSize float64) {
	switch kind {
	case Solid:
		s.Solids[index].Name, s.Solids[index].MeshSize = name, meshSize
	case Face:
		s.Faces[index].Name, s.Faces[index].MeshSize = name, meshSize
	default:
		s.Edges[index].Name, s.Edges[index].MeshSize = name, meshSize
	}
}

// Summary returns a short "1 solids, 6 faces, 12 edges" description
func (s *Shape) Summary() string {
	return fmt.Sprintf("%d solids, %d faces, %d edges", len(s.Solids), len(s.Faces), len(s.Edges))
}

// Clone copies the entity names and mesh sizes. Tessellation, adjacency and
// the loaded values are shared since they never change after loading.
func (s *Shape) Clone() *Shape {
	c := *s
	c.Solids = slices.Clone(s.Solids)
	c.Faces = slices.Clone(s.Faces)
	c.Edges = slices.Clone(s.Edges)
	return &c
}
