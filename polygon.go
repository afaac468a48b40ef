package tagged

import "fmt"

// TrianglePolicy decides how a polygon with more than three corners is cut.
type TrianglePolicy int

const (
	// PolicyFan fans every polygon around its first corner. Correct for
	// convex planar polygons only; this is not checked.
	PolicyFan TrianglePolicy = iota
	// PolicyQuadSplit handles triangles and quads only.
	PolicyQuadSplit
)

func (p TrianglePolicy) String() string {
	if p == PolicyQuadSplit {
		return "quad-split"
	}
	return "fan"
}

// Triangulate returns triangles over the local corner slots 0..n-1 of a
// polygon, in a fixed order that preserves the polygon winding.
func Triangulate(n int, policy TrianglePolicy) ([][3]int, error) {
	if n < 3 {
		return nil, fmt.Errorf("%d corners: %w", n, ErrInvalidGeometry)
	}
	switch policy {
	case PolicyQuadSplit:
		switch n {
		case 3:
			return [][3]int{{0, 1, 2}}, nil
		case 4:
			return [][3]int{{0, 1, 2}, {2, 3, 0}}, nil
		default:
			return nil, fmt.Errorf("%d corners: %w", n, ErrUnsupportedPolygonArity)
		}
	default:
		tris := make([][3]int, 0, n-2)
		tris = append(tris, [3]int{0, 1, 2})
		for k := 3; k < n; k++ {
			tris = append(tris, [3]int{0, k - 1, k})
		}
		return tris, nil
	}
}
