package viewer

import (
	"math"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

// Default orbit angles, looking down at the front right corner
const (
	defaultRotationX = 0.45
	defaultRotationY = 0.65
)

// Camera orbits a target point at a fixed distance
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	RotationX float64 // Rotation around X axis (vertical)
	RotationY float64 // Rotation around Y axis (horizontal)

	home float64
}

// NewCamera creates a camera framing a bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	c := &Camera{
		Up:  geometry.NewVector3(0, 1, 0),
		FOV: math.Pi / 4, // 45 degrees
	}
	c.Frame(bbox)
	return c
}

// Frame points the camera at a bounding box and resets the orbit
func (c *Camera) Frame(bbox geometry.BoundingBox) {
	c.Target = bbox.Center()
	distance := bbox.Diagonal() * 1.4
	if distance <= 0 {
		distance = 1
	}
	c.home = distance
	c.Reset()
}

// Reset restores the initial orbit around the current target
func (c *Camera) Reset() {
	c.Distance = c.home
	c.RotationX = defaultRotationX
	c.RotationY = defaultRotationY
	c.UpdatePosition()
}

// UpdatePosition updates camera position based on rotation angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate rotates the camera by the given angles
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	// Clamp X rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	c.RotationX = math.Max(-maxAngle, math.Min(maxAngle, c.RotationX))

	c.UpdatePosition()
}

// Zoom changes the camera distance by a relative amount
func (c *Camera) Zoom(delta float64) {
	c.Distance *= (1.0 + delta)
	minDistance := c.home * 0.05
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
	c.UpdatePosition()
}

// basis returns the camera axes
func (c *Camera) basis() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project projects a 3D point to 2D screen coordinates. The third value is
// the depth along the view direction.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward, right, up := c.basis()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	if z <= 0.01 {
		z = 0.01 // Prevent division by zero
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z
}

// ViewDirection returns the unit vector from the camera to its target
func (c *Camera) ViewDirection() geometry.Vector3 {
	forward, _, _ := c.basis()
	return forward
}
