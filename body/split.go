package body

// cardinal4 is the 4-connectivity neighbourhood used for splitting: two
// solid cells belong to the same fragment only if there's a cardinal path
// of solid cells between them (diagonal-only contact doesn't hold a body
// together).
var cardinal4 = [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Fragment is one connected component produced by Split: a tightly-bounded
// Body plus the offset, in the original body's local-space units, from the
// original body's centre to the fragment's centre. A caller spawning a new
// entity for the fragment derives its world position by rotating
// (OffsetX, OffsetY) by the original body's transform angle and adding it
// to the original world position.
type Fragment struct {
	Body             *Body
	OffsetX, OffsetY float32
}

// Split partitions a body's solid cells into their 4-connected components.
// If the body is already a single component (or empty), Split returns nil
// -- the caller should treat that as "no split needed" and keep using b
// unmodified. Every returned fragment's StableID is zero; assigning a real
// one is the caller's responsibility.
func Split(b *Body) []Fragment {
	visited := make([]bool, b.Width*b.Height)
	idx := func(x, y int32) int32 { return y*b.Width + x }

	var components [][]coord2
	for y := int32(0); y < b.Height; y++ {
		for x := int32(0); x < b.Width; x++ {
			if visited[idx(x, y)] || !b.IsSolid(x, y) {
				continue
			}
			components = append(components, floodFill(b, visited, x, y))
		}
	}

	if len(components) <= 1 {
		return nil
	}

	out := make([]Fragment, 0, len(components))
	for _, comp := range components {
		out = append(out, fragmentFrom(b, comp))
	}
	return out
}

type coord2 struct{ x, y int32 }

func floodFill(b *Body, visited []bool, sx, sy int32) []coord2 {
	idx := func(x, y int32) int32 { return y*b.Width + x }
	stack := []coord2{{sx, sy}}
	visited[idx(sx, sy)] = true
	var comp []coord2

	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		comp = append(comp, cur)

		for _, off := range cardinal4 {
			nx, ny := cur.x+off[0], cur.y+off[1]
			if nx < 0 || ny < 0 || nx >= b.Width || ny >= b.Height {
				continue
			}
			if visited[idx(nx, ny)] || !b.IsSolid(nx, ny) {
				continue
			}
			visited[idx(nx, ny)] = true
			stack = append(stack, coord2{nx, ny})
		}
	}
	return comp
}

// fragmentFrom builds a tightly-bounded Body from one connected component
// of b, preserving each cell's pixel data, and computes the fragment's
// centroid offset from b's centre (b.Width/2, b.Height/2 in local units).
func fragmentFrom(b *Body, comp []coord2) Fragment {
	minX, minY := comp[0].x, comp[0].y
	maxX, maxY := comp[0].x, comp[0].y
	var sumX, sumY int64
	for _, c := range comp {
		if c.x < minX {
			minX = c.x
		}
		if c.x > maxX {
			maxX = c.x
		}
		if c.y < minY {
			minY = c.y
		}
		if c.y > maxY {
			maxY = c.y
		}
		sumX += int64(c.x)
		sumY += int64(c.y)
	}
	width := maxX - minX + 1
	height := maxY - minY + 1

	frag := New(0, width, height)
	for _, c := range comp {
		frag.SetPixel(c.x-minX, c.y-minY, b.GetPixel(c.x, c.y))
	}

	n := float32(len(comp))
	centroidX := float32(sumX)/n + 0.5
	centroidY := float32(sumY)/n + 0.5
	return Fragment{
		Body:    frag,
		OffsetX: centroidX - float32(b.Width)/2,
		OffsetY: centroidY - float32(b.Height)/2,
	}
}
