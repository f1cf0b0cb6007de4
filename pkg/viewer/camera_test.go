package viewer

import (
	"math"
	"testing"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

func unitBox() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	b.Extend(geometry.NewVector3(0, 0, 0))
	b.Extend(geometry.NewVector3(1, 1, 1))
	return b
}

func TestCameraProjectsTargetToCenter(t *testing.T) {
	c := NewCamera(unitBox())

	x, y, z := c.Project(c.Target, 400, 300)
	if math.Abs(x-200) > 1e-9 || math.Abs(y-150) > 1e-9 {
		t.Errorf("Project failed: expected (200,150), got (%v,%v)", x, y)
	}
	if math.Abs(z-c.Distance) > 1e-9 {
		t.Errorf("Project failed: expected depth %v, got %v", c.Distance, z)
	}
}

func TestCameraRotateClampsPitch(t *testing.T) {
	c := NewCamera(unitBox())
	c.Rotate(10, 0)

	if c.RotationX >= math.Pi/2 {
		t.Errorf("Rotate failed: pitch not clamped, got %v", c.RotationX)
	}
	if d := c.Position.Distance(c.Target); math.Abs(d-c.Distance) > 1e-9 {
		t.Errorf("Rotate failed: expected distance %v, got %v", c.Distance, d)
	}
}

func TestCameraZoomAndReset(t *testing.T) {
	c := NewCamera(unitBox())
	home := c.Distance

	c.Zoom(-0.5)
	if math.Abs(c.Distance-home*0.5) > 1e-9 {
		t.Errorf("Zoom failed: expected %v, got %v", home*0.5, c.Distance)
	}
	c.Zoom(-0.99)
	if c.Distance < home*0.05-1e-12 {
		t.Errorf("Zoom failed: distance below minimum, got %v", c.Distance)
	}

	c.Rotate(0.3, 1)
	c.Reset()
	if c.Distance != home || c.RotationX != defaultRotationX || c.RotationY != defaultRotationY {
		t.Errorf("Reset failed: got distance %v rotation (%v,%v)", c.Distance, c.RotationX, c.RotationY)
	}
}
