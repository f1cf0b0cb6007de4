package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/stl"
)

func equilateral() geometry.Triangle {
	return geometry.NewTriangleFromVertices(
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(0.5, math.Sqrt(3)/2, 0),
	)
}

func TestTriangleQuality(t *testing.T) {
	if q := TriangleQuality(equilateral()); math.Abs(q-1) > 1e-9 {
		t.Errorf("equilateral quality = %v, want 1", q)
	}

	sliver := geometry.NewTriangleFromVertices(
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(2, 0, 0),
	)
	if q := TriangleQuality(sliver); q != 0 {
		t.Errorf("collinear quality = %v, want 0", q)
	}
}

func TestAnalyzeSurfaceCountsSharedEdgesOnce(t *testing.T) {
	model := stl.NewModel("square")
	a := geometry.NewVector3(0, 0, 0)
	b := geometry.NewVector3(1, 0, 0)
	c := geometry.NewVector3(1, 1, 0)
	d := geometry.NewVector3(0, 1, 0)
	model.Add(geometry.NewTriangleFromVertices(a, b, c))
	model.Add(geometry.NewTriangleFromVertices(a, c, d))

	result := AnalyzeSurface(model)

	if result.TriangleCount != 2 {
		t.Errorf("TriangleCount = %d, want 2", result.TriangleCount)
	}
	if result.EdgeCount != 5 {
		t.Errorf("EdgeCount = %d, want 5", result.EdgeCount)
	}
	if math.Abs(result.SurfaceArea-1) > 1e-9 {
		t.Errorf("SurfaceArea = %v, want 1", result.SurfaceArea)
	}
	if result.MinEdgeLength != 1 {
		t.Errorf("MinEdgeLength = %v, want 1", result.MinEdgeLength)
	}
	if math.Abs(result.MaxEdgeLength-math.Sqrt2) > 1e-9 {
		t.Errorf("MaxEdgeLength = %v, want sqrt(2)", result.MaxEdgeLength)
	}
	if result.Degenerate != 0 {
		t.Errorf("Degenerate = %d, want 0", result.Degenerate)
	}

	longest := result.LongestEdges(1)
	if len(longest) != 1 || math.Abs(longest[0].Length-math.Sqrt2) > 1e-9 {
		t.Errorf("LongestEdges(1) = %v, want the diagonal", longest)
	}
	if got := len(result.LongestEdges(10)); got != 5 {
		t.Errorf("LongestEdges(10) returned %d edges, want 5", got)
	}
}

func TestAnalyzeEmptySurface(t *testing.T) {
	result := AnalyzeSurface(stl.NewModel("empty"))
	if result.EdgeCount != 0 || result.String() != "empty surface" {
		t.Errorf("unexpected result for empty surface: %+v", result)
	}
}
