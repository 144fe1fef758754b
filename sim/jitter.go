package sim

import "github.com/pxlsim/pixelworld/canvas"

const (
	channelJitterX Channel = 1000 + iota
	channelJitterY
)

// JitterFor derives this tick's tile-grid jitter offset. factor is in
// [0, 1]; 0 (the spec's documented default) disables jitter entirely.
func JitterFor(seed uint64, tick uint64, tileEdge int32, factor float32) canvas.Jitter {
	span := int32(float32(tileEdge) * factor)
	if span <= 0 {
		return canvas.Jitter{}
	}
	jx := int32(Hash(seed, channelJitterX, tick, 0, 0) % uint64(span))
	jy := int32(Hash(seed, channelJitterY, tick, 0, 0) % uint64(span))
	return canvas.Jitter{X: jx, Y: jy}
}
