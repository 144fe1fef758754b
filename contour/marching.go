// Package contour extracts collision polygons from the pixel canvas:
// marching squares turns a tile's solid/empty grid into polylines,
// Douglas-Peucker simplification trims them down, and ear-clipping
// triangulation turns each polygon into triangles a physics engine can
// consume. A per-tile cache keeps regenerated meshes from being thrown
// away the moment a neighbouring tile goes dirty.
package contour

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Border is the padding added on each side of a tile's solid grid. The
// padding ring is always treated as empty, so every contour closes at the
// tile boundary; pixels outside the tile do not affect the result.
const Border = 1

// Vec2 is a 2D point or vector in world pixel space.
type Vec2 = r2.Vec

func lengthSquared(v Vec2) float64 { return r2.Dot(v, v) }

type edgeSegment struct{ a, b Vec2 }

// edgeTable maps a 4-bit corner solidity case to 0, 1 or 2 unit-cell-local
// edge segments. Bit 0 = top-left, bit 1 = top-right, bit 2 = bottom-left,
// bit 3 = bottom-right; index = tl | tr<<1 | bl<<2 | br<<3. Coordinates are
// in cell-local space [0,1] with Y+ up.
var edgeTable = [16][]edgeSegment{
	{},                                                           // 0000
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 0.5, Y: 1}}},                   // 0001 tl
	{{Vec2{X: 0.5, Y: 1}, Vec2{X: 1, Y: 0.5}}},                   // 0010 tr
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 1, Y: 0.5}}},                   // 0011 tl+tr
	{{Vec2{X: 0.5, Y: 0}, Vec2{X: 0, Y: 0.5}}},                   // 0100 bl
	{{Vec2{X: 0.5, Y: 0}, Vec2{X: 0.5, Y: 1}}},                   // 0101 tl+bl
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 0.5, Y: 1}}, {Vec2{X: 0.5, Y: 0}, Vec2{X: 1, Y: 0.5}}}, // 0110 saddle
	{{Vec2{X: 0.5, Y: 0}, Vec2{X: 1, Y: 0.5}}},                   // 0111 tl+tr+bl
	{{Vec2{X: 1, Y: 0.5}, Vec2{X: 0.5, Y: 0}}},                   // 1000 br
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 0.5, Y: 0}}, {Vec2{X: 0.5, Y: 1}, Vec2{X: 1, Y: 0.5}}}, // 1001 saddle
	{{Vec2{X: 0.5, Y: 1}, Vec2{X: 0.5, Y: 0}}},                   // 1010 tr+br
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 0.5, Y: 0}}},                   // 1011 tl+tr+br
	{{Vec2{X: 1, Y: 0.5}, Vec2{X: 0, Y: 0.5}}},                   // 1100 bl+br
	{{Vec2{X: 0.5, Y: 1}, Vec2{X: 1, Y: 0.5}}},                   // 1101 tl+bl+br
	{{Vec2{X: 0, Y: 0.5}, Vec2{X: 0.5, Y: 1}}},                   // 1110 tr+bl+br
	{},                                                           // 1111
}

// SolidAt reports whether the pixel at local grid coordinates (x, y) should
// count as solid for collision purposes.
type SolidAt func(x, y int32) bool

// extractSegments runs marching squares over a w x h grid of cells (so
// (w-1) x (h-1) squares), returning every edge segment in cell-index space
// scaled by scale.
func extractSegments(w, h int32, solid SolidAt, scale float64) []edgeSegment {
	var out []edgeSegment
	for cy := int32(0); cy < h-1; cy++ {
		for cx := int32(0); cx < w-1; cx++ {
			tl := solid(cx, cy+1)
			tr := solid(cx+1, cy+1)
			bl := solid(cx, cy)
			br := solid(cx+1, cy)

			idx := 0
			if tl {
				idx |= 1
			}
			if tr {
				idx |= 2
			}
			if bl {
				idx |= 4
			}
			if br {
				idx |= 8
			}

			for _, seg := range edgeTable[idx] {
				out = append(out, edgeSegment{
					a: r2.Scale(scale, r2.Add(Vec2{X: float64(cx), Y: float64(cy)}, seg.a)),
					b: r2.Scale(scale, r2.Add(Vec2{X: float64(cx), Y: float64(cy)}, seg.b)),
				})
			}
		}
	}
	return out
}

// gridKey snaps a point produced by marching squares (always at exact 0.5
// multiples of scale) to an integer key so endpoints that should coincide
// compare equal despite floating point.
func gridKey(v Vec2, scale float64) [2]int32 {
	return [2]int32{
		int32(math.Round(v.X * 2 / scale)),
		int32(math.Round(v.Y * 2 / scale)),
	}
}

type adjEntry struct {
	seg     int
	isStart bool
}

// connectSegments stitches unordered edge segments into polylines by
// walking shared endpoints. A walk stops at the first endpoint with no
// unused segment left; every polyline of at least three points is kept,
// so an open chain (which a grid with an empty border ring does not
// produce) is returned open rather than dropped.
func connectSegments(segments []edgeSegment, scale float64) [][]Vec2 {
	if len(segments) == 0 {
		return nil
	}

	adjacency := make(map[[2]int32][]adjEntry, len(segments)*2)
	for i, s := range segments {
		ka, kb := gridKey(s.a, scale), gridKey(s.b, scale)
		adjacency[ka] = append(adjacency[ka], adjEntry{i, true})
		adjacency[kb] = append(adjacency[kb], adjEntry{i, false})
	}

	used := make([]bool, len(segments))
	var polylines [][]Vec2

	for start := range segments {
		if used[start] {
			continue
		}
		poly := traversePolyline(segments, adjacency, used, start, scale)
		if len(poly) >= 3 {
			polylines = append(polylines, poly)
		}
	}
	return polylines
}

func traversePolyline(segments []edgeSegment, adjacency map[[2]int32][]adjEntry, used []bool, start int, scale float64) []Vec2 {
	var poly []Vec2
	cur := start
	enteringFromStart := true

	for {
		used[cur] = true
		seg := segments[cur]

		var next Vec2
		if enteringFromStart {
			if len(poly) == 0 {
				poly = append(poly, seg.a)
			}
			poly = append(poly, seg.b)
			next = seg.b
		} else {
			if len(poly) == 0 {
				poly = append(poly, seg.b)
			}
			poly = append(poly, seg.a)
			next = seg.a
		}

		neighbours := adjacency[gridKey(next, scale)]
		found := -1
		var foundStart bool
		for _, e := range neighbours {
			if !used[e.seg] {
				found = e.seg
				foundStart = e.isStart
				break
			}
		}
		if found < 0 {
			break
		}
		cur = found
		enteringFromStart = foundStart
	}

	if len(poly) >= 4 {
		first, last := poly[0], poly[len(poly)-1]
		if math.Abs(first.X-last.X) < 1e-3 && math.Abs(first.Y-last.Y) < 1e-3 {
			poly = poly[:len(poly)-1]
		}
	}
	return poly
}

// MarchingSquares extracts closed contour polylines from a tile's solid
// grid. tileEdge is the tile's pixel width/height; origin is the tile's
// world-space bottom-left corner. solid is queried over [0, tileEdge) on
// both axes; the Border ring around it is treated as empty, so each tile's
// contours close at its own edges and are not joined with those of
// neighbouring tiles.
func MarchingSquares(tileEdge int32, origin Vec2, solid SolidAt) [][]Vec2 {
	gridSize := tileEdge + 2*Border

	// Force the outer ring of cells empty so every contour closes at the
	// tile boundary instead of running off the padded edge.
	padded := func(x, y int32) bool {
		if x == 0 || y == 0 || x == gridSize-1 || y == gridSize-1 {
			return false
		}
		return solid(x-Border, y-Border)
	}

	segments := extractSegments(gridSize, gridSize, padded, 1.0)
	shift := Vec2{X: origin.X - Border, Y: origin.Y - Border}
	for i := range segments {
		segments[i].a = r2.Add(segments[i].a, shift)
		segments[i].b = r2.Add(segments[i].b, shift)
	}
	return connectSegments(segments, 1.0)
}
