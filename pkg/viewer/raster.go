package viewer

import (
	"math"
)

// Pick dimensions reported for a click
const (
	DimNone = -1
	DimEdge = 1
	DimFace = 2
)

// Pick is a click on the viewer translated into the entity under the cursor
type Pick struct {
	Dim     int
	Index   int
	DidMove bool
	Ctrl    bool
	Shift   bool
}

// Empty reports whether the click hit no entity
func (p Pick) Empty() bool {
	return p.Dim == DimNone
}

// edgeRadius is how far from an edge, in pixels, a click still selects it
const edgeRadius = 3

// PickBuffer records, per pixel, the nearest face and the edge drawn on top
type PickBuffer struct {
	width, height int
	faces         []int32
	edges         []int32
	zbuffer       []float64
}

// NewPickBuffer creates an empty buffer
func NewPickBuffer(width, height int) *PickBuffer {
	n := width * height
	b := &PickBuffer{
		width:   width,
		height:  height,
		faces:   make([]int32, n),
		edges:   make([]int32, n),
		zbuffer: make([]float64, n),
	}
	for i := range b.faces {
		b.faces[i] = -1
		b.edges[i] = -1
		b.zbuffer[i] = math.MaxFloat64
	}
	return b
}

// Depth returns the nearest face depth at a pixel
func (b *PickBuffer) Depth(x, y int) float64 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return math.MaxFloat64
	}
	return b.zbuffer[y*b.width+x]
}

// visibleAt reports whether depth z is in front of the faces at (x, y)
// allowing for the depth of a face the point lies on
func (b *PickBuffer) visibleAt(x, y int, z float64) bool {
	return z <= b.Depth(x, y)*1.01+1e-9
}

// fillTriangle rasterizes a face triangle with depth testing
func (b *PickBuffer) fillTriangle(x1, y1, z1, x2, y2, z2, x3, y3, z3 float64, id int32) {
	vertices := [3][3]float64{
		{x1, y1, z1},
		{x2, y2, z2},
		{x3, y3, z3},
	}

	// Sort vertices by Y coordinate (top to bottom)
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}
	if vertices[1][1] > vertices[2][1] {
		vertices[1], vertices[2] = vertices[2], vertices[1]
	}
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}

	x1, y1, z1 = vertices[0][0], vertices[0][1], vertices[0][2]
	x2, y2, z2 = vertices[1][0], vertices[1][1], vertices[1][2]
	x3, y3, z3 = vertices[2][0], vertices[2][1], vertices[2][2]

	for y := int(math.Max(0, math.Ceil(y1))); y <= int(math.Min(float64(b.height-1), y3)); y++ {
		fy := float64(y)

		var xs, zs [2]float64
		n := 0
		cross := func(ya, yb, xa, xb, za, zb float64) {
			if n < 2 && ya != yb && fy >= ya && fy <= yb {
				t := (fy - ya) / (yb - ya)
				xs[n] = xa + t*(xb-xa)
				zs[n] = za + t*(zb-za)
				n++
			}
		}
		cross(y1, y2, x1, x2, z1, z2)
		cross(y2, y3, x2, x3, z2, z3)
		cross(y1, y3, x1, x3, z1, z3)
		if n < 2 {
			continue
		}

		xStart, xEnd, zStart, zEnd := xs[0], xs[1], zs[0], zs[1]
		if xStart > xEnd {
			xStart, xEnd = xEnd, xStart
			zStart, zEnd = zEnd, zStart
		}

		for x := int(math.Max(0, math.Ceil(xStart))); x <= int(math.Min(float64(b.width-1), xEnd)); x++ {
			t := 0.0
			if xEnd != xStart {
				t = (float64(x) - xStart) / (xEnd - xStart)
			}
			z := zStart + t*(zEnd-zStart)

			// Depth test - draw if closer (smaller z)
			idx := y*b.width + x
			if z < b.zbuffer[idx] {
				b.zbuffer[idx] = z
				b.faces[idx] = id
			}
		}
	}
}

// drawLine rasterizes an edge segment using Bresenham's algorithm. Pixels
// behind a face are skipped, so hidden edges cannot be picked.
func (b *PickBuffer) drawLine(x1, y1 int, z1 float64, x2, y2 int, z2 float64, id int32) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steps := max(dx, dy)

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	x, y := x1, y1
	for step := 0; ; step++ {
		if x >= 0 && x < b.width && y >= 0 && y < b.height {
			t := 0.0
			if steps > 0 {
				t = float64(step) / float64(steps)
			}
			if b.visibleAt(x, y, z1+t*(z2-z1)) {
				b.edges[y*b.width+x] = id
			}
		}

		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// Pick returns the entity at a pixel. Edges within a few pixels win over
// the face under the cursor, nearest edge first.
func (b *PickBuffer) Pick(x, y int) (dim, index int) {
	best, bestDist := int32(-1), math.MaxInt
	for oy := -edgeRadius; oy <= edgeRadius; oy++ {
		for ox := -edgeRadius; ox <= edgeRadius; ox++ {
			px, py := x+ox, y+oy
			if px < 0 || py < 0 || px >= b.width || py >= b.height {
				continue
			}
			if id := b.edges[py*b.width+px]; id >= 0 {
				if d := ox*ox + oy*oy; d < bestDist {
					best, bestDist = id, d
				}
			}
		}
	}
	if best >= 0 && bestDist <= edgeRadius*edgeRadius {
		return DimEdge, int(best)
	}

	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return DimNone, 0
	}
	if id := b.faces[y*b.width+x]; id >= 0 {
		return DimFace, int(id)
	}
	return DimNone, 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
