// Package enginetest provides an in-process engine for tests. Every valid
// file loads as the same unit box: 1 solid, 6 faces, 12 edges.
package enginetest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/pkg/volmesh"
)

// File headers accepted as geometry
var magics = []string{"ISO-10303-21", "DBRep_DrawableShape"}

// StepContent is a minimal file the fake engine accepts
const StepContent = "ISO-10303-21;\nHEADER;\nENDSEC;\nEND-ISO-10303-21;\n"

// Engine is a fake engine.Engine
type Engine struct {
	// Dir receives generated mesh files; a temp dir is used when empty
	Dir string
	// FailMeshing makes GenerateMesh return a meshing error with this message
	FailMeshing string
	// Gate blocks GenerateMesh until it is closed or the context ends
	Gate chan struct{}

	mu         sync.Mutex
	loads      int
	meshCalls  int
	lastParams engine.MeshParameters
	lastShape  *shape.Shape
}

// New creates a fake engine writing meshes below dir
func New(dir string) *Engine {
	return &Engine{Dir: dir}
}

// Load accepts files starting with a STEP or BREP header
func (e *Engine) Load(ctx context.Context, path string) (*shape.Shape, error) {
	if err := engine.CheckExtension(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	head, _ := bufio.NewReader(file).Peek(32)
	valid := false
	for _, magic := range magics {
		if strings.HasPrefix(string(head), magic) {
			valid = true
		}
	}
	if !valid {
		return nil, &engine.GeometryError{Path: filepath.Base(path), Message: "not a STEP or BREP file"}
	}

	s := Box(engine.GeometryName(path))
	s.Source = path
	if s.Digest, err = engine.FileDigest(path); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.loads++
	e.mu.Unlock()
	return s, nil
}

// GenerateMesh writes a small tetrahedral mesh file
func (e *Engine) GenerateMesh(ctx context.Context, s *shape.Shape, params engine.MeshParameters) (*engine.Mesh, error) {
	e.mu.Lock()
	e.meshCalls++
	e.lastParams = params
	e.lastShape = s
	gate := e.Gate
	e.mu.Unlock()

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.FailMeshing != "" {
		return nil, &engine.MeshingError{Message: e.FailMeshing}
	}

	dir, err := os.MkdirTemp(e.Dir, "mesh-")
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh directory: %w", err)
	}
	path := filepath.Join(dir, engine.MeshFileName(s.Name))
	if err := os.WriteFile(path, []byte(TetraMesh), 0o644); err != nil {
		return nil, err
	}
	stats, err := volmesh.ReadFile(path)
	if err != nil {
		return nil, err
	}

	surface := stl.NewModel(s.Name)
	for _, f := range s.Faces {
		for _, t := range f.Triangles {
			surface.Add(t)
		}
	}

	return &engine.Mesh{
		Name:       engine.MeshFileName(s.Name),
		Path:       path,
		Dir:        dir,
		Surface:    surface,
		Stats:      *stats,
		Parameters: params,
	}, nil
}

// Loads returns how many geometries were loaded
func (e *Engine) Loads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

// MeshCalls returns how many times GenerateMesh ran
func (e *Engine) MeshCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meshCalls
}

// LastParameters returns the parameters of the latest GenerateMesh call
func (e *Engine) LastParameters() engine.MeshParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastParams
}

// LastShape returns the shape handed to the latest GenerateMesh call
func (e *Engine) LastShape() *shape.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastShape
}

// TetraMesh is the mesh file written for every generation
const TetraMesh = `mesh3d
dimension
3
surfaceelements
4
1 1 1 0 3 1 3 2
2 1 1 0 3 1 2 4
3 1 1 0 3 1 4 3
4 1 1 0 3 2 3 4
volumeelements
1
1 4 1 2 3 4
points
4
0 0 0
1 0 0
0 1 0
0 0 1
endmesh
`

// Box builds the unit cube shape
func Box(name string) *shape.Shape {
	v := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x, y, z) }
	corners := [8]geometry.Vector3{
		v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 1, 0),
		v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1),
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{2, 3, 7, 6}, // back
		{0, 4, 7, 3}, // left
		{1, 2, 6, 5}, // right
	}
	faces := make([]shape.FaceEntity, len(quads))
	for i, q := range quads {
		a, b, c, d := corners[q[0]], corners[q[1]], corners[q[2]], corners[q[3]]
		faces[i] = shape.FaceEntity{
			MeshSize: shape.Unbounded,
			Triangles: []geometry.Triangle{
				geometry.NewTriangleFromVertices(a, b, c),
				geometry.NewTriangleFromVertices(a, c, d),
			},
		}
	}

	segments := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	edges := make([]shape.EdgeEntity, len(segments))
	for i, seg := range segments {
		edges[i] = shape.EdgeEntity{
			MeshSize: shape.Unbounded,
			Points:   []geometry.Vector3{corners[seg[0]], corners[seg[1]]},
		}
	}

	solids := []shape.SolidEntity{{MeshSize: shape.Unbounded, Faces: []int{0, 1, 2, 3, 4, 5}}}

	s, err := shape.New(name, solids, faces, edges)
	if err != nil {
		panic(err)
	}
	return s
}

// WriteFile writes content to name inside dir and returns the path
func WriteFile(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, []byte(content), 0o644)
}
