package viewer

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/philipparndt/gomesh/pkg/engine/enginetest"
	"github.com/philipparndt/gomesh/pkg/stl"
)

func boxColors(faces, edges int, face, edge color.NRGBA) ([]color.NRGBA, []color.NRGBA) {
	fc := make([]color.NRGBA, faces)
	for i := range fc {
		fc[i] = face
	}
	ec := make([]color.NRGBA, edges)
	for i := range ec {
		ec[i] = edge
	}
	return fc, ec
}

func TestViewPicksFaceAtCenter(t *testing.T) {
	box := enginetest.Box("cube")
	fc, ec := boxColors(6, 12, color.NRGBA{R: 179, G: 179, B: 179, A: 255}, color.NRGBA{A: 255})

	v := NewView(200, 200)
	v.ShowGeometry(box, fc, ec)

	pick := v.Pick(100, 100)
	if pick.Dim != DimFace && pick.Dim != DimEdge {
		t.Fatalf("Pick failed: expected an entity at the center, got dim %d", pick.Dim)
	}

	if pick := v.Pick(0, 0); !pick.Empty() {
		t.Errorf("Pick failed: expected empty space in the corner, got dim %d index %d", pick.Dim, pick.Index)
	}
}

func TestViewHiddenFacesAreNotPickable(t *testing.T) {
	box := enginetest.Box("cube")
	fc, ec := boxColors(6, 12, color.NRGBA{R: 255, G: 255, B: 255, A: 0}, color.NRGBA{R: 255, G: 255, B: 255, A: 0})

	v := NewView(200, 200)
	v.ShowGeometry(box, fc, ec)

	if pick := v.Pick(100, 100); !pick.Empty() {
		t.Errorf("Pick failed: hidden entities must not be picked, got dim %d", pick.Dim)
	}
}

func TestViewMeshModeHasNoPicks(t *testing.T) {
	box := enginetest.Box("cube")
	fc, ec := boxColors(6, 12, color.NRGBA{R: 179, G: 179, B: 179, A: 255}, color.NRGBA{A: 255})

	surface := stl.NewModel("cube")
	for _, f := range box.Faces {
		for _, tri := range f.Triangles {
			surface.Add(tri)
		}
	}

	v := NewView(120, 90)
	v.ShowGeometry(box, fc, ec)
	v.ShowMesh(surface)
	if pick := v.Pick(60, 45); !pick.Empty() {
		t.Errorf("Pick failed: mesh view must not pick, got dim %d", pick.Dim)
	}

	v.ShowGeometryMode()
	if v.Scene().MeshMode() {
		t.Error("ShowGeometryMode failed: still in mesh mode")
	}
}

func TestFramePNG(t *testing.T) {
	box := enginetest.Box("cube")
	fc, ec := boxColors(6, 12, color.NRGBA{R: 179, G: 179, B: 179, A: 255}, color.NRGBA{A: 255})

	v := NewView(160, 120)
	v.ShowGeometry(box, fc, ec)
	v.SetInfo("Boundingbox: (0.00,0.00,0.00) - (1.00,1.00,1.00)")

	data, err := v.Frame().PNG()
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PNG failed: not decodable: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("PNG failed: expected 160x120, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestViewFrameIsCachedUntilChange(t *testing.T) {
	box := enginetest.Box("cube")
	fc, ec := boxColors(6, 12, color.NRGBA{R: 179, G: 179, B: 179, A: 255}, color.NRGBA{A: 255})

	v := NewView(80, 80)
	v.ShowGeometry(box, fc, ec)
	first := v.Frame()
	if v.Frame() != first {
		t.Error("Frame failed: expected cached frame")
	}
	v.Rotate(0.1, 0)
	if v.Frame() == first {
		t.Error("Frame failed: expected new frame after rotation")
	}
}
