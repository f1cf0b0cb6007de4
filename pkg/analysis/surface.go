// Package analysis computes quality figures of a generated mesh from its
// boundary surface.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/stl"
)

// degenerateArea is the triangle area below which a surface element counts
// as collapsed
const degenerateArea = 1e-12

// EdgeInfo describes one unique edge of the surface
type EdgeInfo struct {
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
}

// SurfaceResult contains measurements of a mesh surface
type SurfaceResult struct {
	BoundingBox   geometry.BoundingBox
	SurfaceArea   float64
	TriangleCount int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64

	// Quality is 1 for an equilateral triangle and tends to 0 for slivers
	MinQuality float64
	AvgQuality float64
	Degenerate int

	Edges []EdgeInfo
}

type edgeKey [2]geometry.Vector3

func newEdgeKey(a, b geometry.Vector3) edgeKey {
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func less(a, b geometry.Vector3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// TriangleQuality returns 4*sqrt(3)*area divided by the sum of the squared
// edge lengths
func TriangleQuality(t geometry.Triangle) float64 {
	a := t.V1.Distance(t.V2)
	b := t.V2.Distance(t.V3)
	c := t.V3.Distance(t.V1)
	sum := a*a + b*b + c*c
	if sum == 0 {
		return 0
	}
	return 4 * math.Sqrt(3) * t.Area() / sum
}

// AnalyzeSurface measures the triangles of a mesh surface. Edges shared by
// neighboring triangles are counted once.
func AnalyzeSurface(model *stl.Model) *SurfaceResult {
	result := &SurfaceResult{
		BoundingBox:   model.Bounds(),
		SurfaceArea:   model.Area(),
		TriangleCount: model.Len(),
	}
	if result.TriangleCount == 0 {
		return result
	}

	seen := make(map[edgeKey]struct{})
	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	minQuality := math.MaxFloat64
	totalQuality := 0.0

	for _, triangle := range model.Triangles {
		q := TriangleQuality(triangle)
		totalQuality += q
		minQuality = math.Min(minQuality, q)
		if triangle.Area() < degenerateArea {
			result.Degenerate++
		}

		v := triangle.Vertices()
		for i := range v {
			start, end := v[i], v[(i+1)%3]
			key := newEdgeKey(start, end)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			length := start.Distance(end)
			result.Edges = append(result.Edges, EdgeInfo{Start: start, End: end, Length: length})
			totalLength += length
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
		}
	}

	result.EdgeCount = len(result.Edges)
	result.MinEdgeLength = minLength
	result.MaxEdgeLength = maxLength
	result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	result.MinQuality = minQuality
	result.AvgQuality = totalQuality / float64(result.TriangleCount)
	return result
}

// LongestEdges returns the count longest edges, longest first
func (r *SurfaceResult) LongestEdges(count int) []EdgeInfo {
	edges := make([]EdgeInfo, len(r.Edges))
	copy(edges, r.Edges)

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Length > edges[j].Length
	})

	if count > len(edges) {
		count = len(edges)
	}
	return edges[:count]
}

// String summarizes edge lengths and quality in one line
func (r *SurfaceResult) String() string {
	if r.TriangleCount == 0 {
		return "empty surface"
	}
	return fmt.Sprintf("edge length %.4g..%.4g (avg %.4g), quality min %.3f avg %.3f",
		r.MinEdgeLength, r.MaxEdgeLength, r.AvgEdgeLength, r.MinQuality, r.AvgQuality)
}
