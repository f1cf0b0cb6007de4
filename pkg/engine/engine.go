// Package engine is the boundary to the external geometry and meshing
// engine. Geometry kernels and mesh generators are never implemented here;
// the engine loads a CAD file into a shape handle and turns an annotated
// shape into a mesh file.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/pkg/volmesh"
)

// MeshExtension is the extension of the engine native mesh file
const MeshExtension = ".vol"

// Engine loads geometry and generates meshes
type Engine interface {
	// Load reads a geometry file. Invalid files yield a *GeometryError or
	// ErrUnsupportedFormat.
	Load(ctx context.Context, path string) (*shape.Shape, error)

	// GenerateMesh meshes the shape using its current names and mesh size
	// overrides. Failures reported by the mesher yield a *MeshingError.
	GenerateMesh(ctx context.Context, s *shape.Shape, params MeshParameters) (*Mesh, error)
}

// Mesh is the result of one successful mesh generation
type Mesh struct {
	Name       string // download file name
	Path       string // location of the native mesh file
	Dir        string // directory owned by this mesh, removed by Close
	Surface    *stl.Model
	Stats      volmesh.Stats
	Parameters MeshParameters
}

// MeshFileName returns the download name for a geometry's mesh
func MeshFileName(geometry string) string {
	if geometry == "" {
		geometry = "mesh"
	}
	return geometry + MeshExtension
}

// Close removes the files backing the mesh
func (m *Mesh) Close() error {
	if m == nil || m.Dir == "" {
		return nil
	}
	return os.RemoveAll(m.Dir)
}

// SupportedExtensions lists the accepted geometry file extensions
var SupportedExtensions = []string{".step", ".stp", ".brep"}

// CheckExtension returns ErrUnsupportedFormat unless the file name carries
// one of the supported extensions
func CheckExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(name))
}

// GeometryName returns the base name of a geometry file without extension
func GeometryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
