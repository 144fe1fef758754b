package contour

import "gonum.org/v1/gonum/spatial/r2"

// DouglasPeucker simplifies a closed polyline, keeping every vertex whose
// perpendicular deviation from its neighbours exceeds tolerance. Because
// the polyline is a loop rather than an open chain, the two furthest-apart
// vertices are used as anchors so the choice of an arbitrary start point
// doesn't bias which detail survives.
func DouglasPeucker(polyline []Vec2, tolerance float64) []Vec2 {
	if len(polyline) <= 3 {
		return append([]Vec2(nil), polyline...)
	}

	i1, i2 := findFurthestPair(polyline)
	half1, half2 := splitAtIndices(polyline, i1, i2)

	simplified1 := simplifyOpen(half1, tolerance)
	simplified2 := simplifyOpen(half2, tolerance)

	if len(simplified1) > 0 {
		simplified1 = simplified1[:len(simplified1)-1]
	}
	if len(simplified2) > 0 {
		simplified2 = simplified2[:len(simplified2)-1]
	}
	return append(simplified1, simplified2...)
}

// SimplifyPolylines simplifies each polyline and drops any that collapse
// below a triangle.
func SimplifyPolylines(polylines [][]Vec2, tolerance float64) [][]Vec2 {
	out := make([][]Vec2, 0, len(polylines))
	for _, p := range polylines {
		s := DouglasPeucker(p, tolerance)
		if len(s) >= 3 {
			out = append(out, s)
		}
	}
	return out
}

func findFurthestPair(polyline []Vec2) (int, int) {
	maxDistSq := 0.0
	bi, bj := 0, len(polyline)/2
	for i := 0; i < len(polyline); i++ {
		for j := i + 1; j < len(polyline); j++ {
			d := lengthSquared(r2.Sub(polyline[i], polyline[j]))
			if d > maxDistSq {
				maxDistSq = d
				bi, bj = i, j
			}
		}
	}
	return bi, bj
}

// splitAtIndices cuts a closed polyline at two indices into two open
// chains that share both endpoints, so re-stitching after simplification
// reproduces a closed loop.
func splitAtIndices(polyline []Vec2, i1, i2 int) (half1, half2 []Vec2) {
	start, end := i1, i2
	if start > end {
		start, end = end, start
	}

	half1 = append([]Vec2(nil), polyline[start:end+1]...)

	half2 = append([]Vec2(nil), polyline[end:]...)
	half2 = append(half2, polyline[:start+1]...)
	return half1, half2
}

func simplifyOpen(polyline []Vec2, tolerance float64) []Vec2 {
	if len(polyline) <= 2 {
		return append([]Vec2(nil), polyline...)
	}

	toleranceSq := tolerance * tolerance
	first, last := polyline[0], polyline[len(polyline)-1]

	maxDistSq := 0.0
	maxIdx := 0
	for i := 1; i < len(polyline)-1; i++ {
		d := perpendicularDistanceSquared(polyline[i], first, last)
		if d > maxDistSq {
			maxDistSq = d
			maxIdx = i
		}
	}

	if maxDistSq > toleranceSq {
		left := simplifyOpen(polyline[:maxIdx+1], tolerance)
		right := simplifyOpen(polyline[maxIdx:], tolerance)
		left = left[:len(left)-1]
		return append(left, right...)
	}
	return []Vec2{first, last}
}

func perpendicularDistanceSquared(point, lineStart, lineEnd Vec2) float64 {
	lineVec := r2.Sub(lineEnd, lineStart)
	lineLenSq := lengthSquared(lineVec)
	if lineLenSq < 1e-10 {
		return lengthSquared(r2.Sub(point, lineStart))
	}

	t := r2.Dot(r2.Sub(point, lineStart), lineVec) / lineLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	projection := r2.Add(lineStart, r2.Scale(t, lineVec))
	return lengthSquared(r2.Sub(point, projection))
}
