package seed

// infDist stands in for "unbounded" during the chamfer sweep; any real
// in-chunk distance is far smaller, so it never survives as a final value.
const infDist = float32(1 << 20)

const (
	orthCost = float32(1)
	diagCost = float32(1.41421356)
)

// DistanceField computes an approximate Euclidean distance transform over
// a w*h solid/void mask (row-major, nonzero = solid): for every solid
// cell, the distance in pixels to the nearest void cell. Void cells are
// distance 0. Uses a two-pass chamfer sweep (forward top-left to
// bottom-right, then backward), the standard cheap substitute for an
// exact EDT when sub-pixel accuracy doesn't matter -- only banding bands
// derived from it do.
func DistanceField(mask []uint8, w, h int32) []float32 {
	dist := make([]float32, len(mask))
	for i, v := range mask {
		if v == 0 {
			dist[i] = 0
		} else {
			dist[i] = infDist
		}
	}

	idx := func(x, y int32) int32 { return y*w + x }

	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			i := idx(x, y)
			d := dist[i]
			if x > 0 {
				d = minF(d, dist[idx(x-1, y)]+orthCost)
			}
			if y > 0 {
				d = minF(d, dist[idx(x, y-1)]+orthCost)
			}
			if x > 0 && y > 0 {
				d = minF(d, dist[idx(x-1, y-1)]+diagCost)
			}
			if x < w-1 && y > 0 {
				d = minF(d, dist[idx(x+1, y-1)]+diagCost)
			}
			dist[i] = d
		}
	}

	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := idx(x, y)
			d := dist[i]
			if x < w-1 {
				d = minF(d, dist[idx(x+1, y)]+orthCost)
			}
			if y < h-1 {
				d = minF(d, dist[idx(x, y+1)]+orthCost)
			}
			if x < w-1 && y < h-1 {
				d = minF(d, dist[idx(x+1, y+1)]+diagCost)
			}
			if x > 0 && y < h-1 {
				d = minF(d, dist[idx(x-1, y+1)]+diagCost)
			}
			dist[i] = d
		}
	}

	return dist
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
