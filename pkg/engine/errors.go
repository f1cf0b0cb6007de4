package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files without a geometry extension
	ErrUnsupportedFormat = errors.New("unsupported geometry format")

	// ErrInvalidParameters wraps mesh parameter validation failures
	ErrInvalidParameters = errors.New("invalid mesh parameters")
)

// GeometryError reports a file the engine could not read as geometry
type GeometryError struct {
	Path    string
	Message string
	Err     error
}

func (e *GeometryError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid geometry: %s", e.Message)
	}
	return fmt.Sprintf("invalid geometry %s: %s", e.Path, e.Message)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// MeshingError carries the mesher's own failure message, which is shown to
// the user as is
type MeshingError struct {
	Message string
}

func (e *MeshingError) Error() string {
	return e.Message
}

// IsInvalidGeometry reports whether err means the uploaded file is not usable
func IsInvalidGeometry(err error) bool {
	var geoErr *GeometryError
	return errors.Is(err, ErrUnsupportedFormat) || errors.As(err, &geoErr)
}

// AsMeshingError extracts a meshing failure from err
func AsMeshingError(err error) (*MeshingError, bool) {
	var meshErr *MeshingError
	if errors.As(err, &meshErr) {
		return meshErr, true
	}
	return nil, false
}
