package contour

import "gonum.org/v1/gonum/spatial/r2"

// Triangle holds three indices into the polygon vertex slice it was
// produced from.
type Triangle struct{ A, B, C int }

// TriangulatePolygon fans a simple polygon into triangles by ear
// clipping. The reference engine uses a constrained Delaunay
// triangulation library for this; nothing in this codebase's dependency
// set provides one, and collision geometry only needs a valid
// triangulation (not a quality one), so ear clipping over the standard
// library is the appropriate substitute here. polygon must be wound
// consistently (the winding marching squares produces is preserved
// end to end); a polygon with fewer than 3 vertices or with
// self-intersecting edges yields no triangles.
func TriangulatePolygon(polygon []Vec2) []Triangle {
	n := len(polygon)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return []Triangle{{0, 1, 2}}
	}
	if hasSelfIntersections(polygon) {
		return nil
	}

	ccw := signedArea(polygon) > 0
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	var triangles []Triangle
	guard := 0
	for len(remaining) > 3 && guard < n*n {
		guard++
		clipped := false
		for i := 0; i < len(remaining); i++ {
			ia := remaining[(i-1+len(remaining))%len(remaining)]
			ib := remaining[i]
			ic := remaining[(i+1)%len(remaining)]

			if isEar(polygon, remaining, ia, ib, ic, ccw) {
				triangles = append(triangles, Triangle{ia, ib, ic})
				remaining = append(remaining[:i], remaining[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			break
		}
	}
	if len(remaining) == 3 {
		triangles = append(triangles, Triangle{remaining[0], remaining[1], remaining[2]})
	}
	return triangles
}

// TriangulatePolygons triangulates each polygon of at least 3 vertices,
// pairing it with its polygon for convenience.
func TriangulatePolygons(polygons [][]Vec2) []PolygonMesh {
	out := make([]PolygonMesh, 0, len(polygons))
	for _, p := range polygons {
		if len(p) < 3 {
			continue
		}
		out = append(out, PolygonMesh{Polygon: p, Triangles: TriangulatePolygon(p)})
	}
	return out
}

func signedArea(polygon []Vec2) float64 {
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		a, b := polygon[i], polygon[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func isEar(polygon []Vec2, remaining []int, ia, ib, ic int, ccw bool) bool {
	a, b, c := polygon[ia], polygon[ib], polygon[ic]
	cross := cross2D(r2.Sub(b, a), r2.Sub(c, a))
	if ccw && cross <= 0 {
		return false
	}
	if !ccw && cross >= 0 {
		return false
	}

	for _, idx := range remaining {
		if idx == ia || idx == ib || idx == ic {
			continue
		}
		if pointInTriangle(polygon[idx], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := cross2D(r2.Sub(b, a), r2.Sub(p, a))
	d2 := cross2D(r2.Sub(c, b), r2.Sub(p, b))
	d3 := cross2D(r2.Sub(a, c), r2.Sub(p, c))

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross2D(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

func hasSelfIntersections(polygon []Vec2) bool {
	n := len(polygon)
	for i := 0; i < n; i++ {
		a1, a2 := polygon[i], polygon[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if j == (i+n-1)%n {
				continue
			}
			b1, b2 := polygon[j], polygon[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(a1, a2, b1, b2 Vec2) bool {
	d1 := cross2D(r2.Sub(b2, b1), r2.Sub(a1, b1))
	d2 := cross2D(r2.Sub(b2, b1), r2.Sub(a2, b1))
	d3 := cross2D(r2.Sub(a2, a1), r2.Sub(b1, a1))
	d4 := cross2D(r2.Sub(a2, a1), r2.Sub(b2, a1))

	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// PointInPolygon tests containment via ray casting.
func PointInPolygon(point Vec2, polygon []Vec2) bool {
	inside := false
	n := len(polygon)
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Y > point.Y) != (vj.Y > point.Y) &&
			point.X < (vj.X-vi.X)*(point.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
