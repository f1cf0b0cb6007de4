package viewer

import "testing"

func TestPickBufferFacesAndDepth(t *testing.T) {
	b := NewPickBuffer(100, 100)
	b.fillTriangle(0, 0, 5, 99, 0, 5, 0, 99, 5, 1)
	b.fillTriangle(0, 0, 2, 60, 0, 2, 0, 60, 2, 2)

	if dim, idx := b.Pick(10, 10); dim != DimFace || idx != 2 {
		t.Errorf("Pick failed: expected nearer face 2, got dim %d index %d", dim, idx)
	}
	if dim, idx := b.Pick(70, 20); dim != DimFace || idx != 1 {
		t.Errorf("Pick failed: expected face 1, got dim %d index %d", dim, idx)
	}
	if dim, _ := b.Pick(95, 95); dim != DimNone {
		t.Errorf("Pick failed: expected empty space, got dim %d", dim)
	}
	if dim, _ := b.Pick(-5, 200); dim != DimNone {
		t.Errorf("Pick failed: expected empty space outside the buffer, got dim %d", dim)
	}
}

func TestPickBufferEdgeWinsNearby(t *testing.T) {
	b := NewPickBuffer(50, 50)
	b.fillTriangle(0, 0, 5, 49, 0, 5, 0, 49, 5, 0)
	b.drawLine(0, 20, 5, 40, 20, 5, 7)

	if dim, idx := b.Pick(10, 22); dim != DimEdge || idx != 7 {
		t.Errorf("Pick failed: expected edge 7 within radius, got dim %d index %d", dim, idx)
	}
	if dim, idx := b.Pick(10, 10); dim != DimFace || idx != 0 {
		t.Errorf("Pick failed: expected face 0 away from edge, got dim %d index %d", dim, idx)
	}
}

func TestPickBufferHidesOccludedEdges(t *testing.T) {
	b := NewPickBuffer(50, 50)
	b.fillTriangle(0, 0, 1, 49, 0, 1, 0, 49, 1, 0)
	b.drawLine(0, 10, 8, 30, 10, 8, 3)

	if dim, _ := b.Pick(5, 10); dim != DimFace {
		t.Errorf("Pick failed: edge behind face must not be picked, got dim %d", dim)
	}
}
