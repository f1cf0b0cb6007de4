package shape

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unbounded is the canonical "no mesh size override" value. The engine treats
// any size this large as unlimited, so the value crosses the engine boundary
// unchanged; every other boundary converts it to an empty field or a null.
const Unbounded = 1e99

// ErrInvalidMeshSize is returned for non-numeric or non-positive mesh sizes
var ErrInvalidMeshSize = errors.New("mesh size must be a positive number")

// IsUnbounded reports whether v means "no override"
func IsUnbounded(v float64) bool {
	return v > 1e98
}

// ParseMeshSize converts user input into the canonical representation.
// Empty input clears the override.
func ParseMeshSize(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unbounded, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMeshSize, s)
	}
	return CheckMeshSize(v)
}

// CheckMeshSize validates a numeric mesh size
func CheckMeshSize(v float64) (float64, error) {
	if v <= 0 || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMeshSize, v)
	}
	if IsUnbounded(v) {
		return Unbounded, nil
	}
	return v, nil
}

// FormatMeshSize renders a mesh size for an input field; unbounded is empty
func FormatMeshSize(v float64) string {
	if IsUnbounded(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MeshSizePtr returns nil for unbounded sizes, for serialized forms where
// "absent" is the natural encoding of "unset"
func MeshSizePtr(v float64) *float64 {
	if IsUnbounded(v) {
		return nil
	}
	return &v
}

// MeshSizeFromPtr is the inverse of MeshSizePtr
func MeshSizeFromPtr(p *float64) float64 {
	if p == nil {
		return Unbounded
	}
	return *p
}

// SameMeshSize compares two mesh sizes, treating all unbounded values alike
func SameMeshSize(a, b float64) bool {
	if IsUnbounded(a) || IsUnbounded(b) {
		return IsUnbounded(a) == IsUnbounded(b)
	}
	return a == b
}
