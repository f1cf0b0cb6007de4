package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// BoundingBox represents an axis-aligned bounding box
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates an empty bounding box that any point will extend
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(point Vector3) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// IsEmpty reports whether no point was ever added
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float64 {
	return b.Size().Length()
}

// MaxDimension returns the largest edge length of the box
func (b BoundingBox) MaxDimension() float64 {
	return b.Size().MaxComponent()
}

// Volume returns the volume of the bounding box
func (b BoundingBox) Volume() float64 {
	size := b.Size()
	return size.X * size.Y * size.Z
}

// String renders the box as "(x,y,z) - (x,y,z)"
func (b BoundingBox) String() string {
	return fmt.Sprintf("%s - %s", b.Min, b.Max)
}

// UnmarshalJSON decodes the engine's [[minx,miny,minz],[maxx,maxy,maxz]] form
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var corners [2]Vector3
	if err := json.Unmarshal(data, &corners); err != nil {
		return fmt.Errorf("invalid bounding box: %w", err)
	}
	b.Min, b.Max = corners[0], corners[1]
	return nil
}

// MarshalJSON encodes the box as a pair of corners
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Vector3{b.Min, b.Max})
}
