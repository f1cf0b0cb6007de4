package shape

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three topological entity collections of a shape
type Kind int

const (
	Solid Kind = iota
	Face
	Edge
)

// Kinds lists all kinds in tab order
var Kinds = []Kind{Solid, Face, Edge}

// String returns the wire name of the kind ("solids", "faces", "edges")
func (k Kind) String() string {
	switch k {
	case Solid:
		return "solids"
	case Face:
		return "faces"
	case Edge:
		return "edges"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Label returns the human readable tab label
func (k Kind) Label() string {
	switch k {
	case Solid:
		return "Solids"
	case Face:
		return "Faces"
	case Edge:
		return "Edges"
	default:
		return k.String()
	}
}

// Dim returns the topological dimension of the kind
func (k Kind) Dim() int {
	switch k {
	case Solid:
		return 3
	case Face:
		return 2
	case Edge:
		return 1
	default:
		return -1
	}
}

// ParseKind converts a wire name (or its singular form) into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solids", "solid":
		return Solid, nil
	case "faces", "face":
		return Face, nil
	case "edges", "edge":
		return Edge, nil
	default:
		return 0, fmt.Errorf("unknown shape kind: %q", s)
	}
}

// KindForDim maps a viewer pick dimension back to a kind
func KindForDim(dim int) (Kind, bool) {
	switch dim {
	case 3:
		return Solid, true
	case 2:
		return Face, true
	case 1:
		return Edge, true
	default:
		return 0, false
	}
}
