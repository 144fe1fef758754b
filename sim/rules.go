package sim

import (
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// Context carries the per-tick state the swap rules need: the world seed,
// the current tick number, the material registry, and the liquid flow
// direction chosen once per tick (so horizontal flow stays coherent across
// tile boundaries).
type Context struct {
	Seed       uint64
	Tick       uint64
	Registry   *pixel.Registry
	LiquidFlip int32
}

// NewContext derives a tick Context, picking the liquid direction flip once
// via Hash(seed, ChannelDirectionFlip, tick, 0, 0).
func NewContext(seed uint64, tick uint64, reg *pixel.Registry) Context {
	return Context{
		Seed:       seed,
		Tick:       tick,
		Registry:   reg,
		LiquidFlip: FlipSign(Hash(seed, ChannelDirectionFlip, tick, 0, 0)),
	}
}

// lookup resolves a world position to its pixel and whether its chunk is
// loaded.
func lookup(c *canvas.Canvas, p coord.WorldPos) (pixel.Pixel, bool) {
	cpos, lpos := coord.WorldToChunkLocal(p, c.Edge())
	ch, ok := c.Get(cpos)
	if !ok {
		return pixel.Pixel{}, false
	}
	return ch.Surface.Get(lpos.X, lpos.Y), true
}

// canDisplace implements spec.md §4.5's displacement predicate.
func canDisplace(reg *pixel.Registry, src pixel.Pixel, c *canvas.Canvas, target coord.WorldPos) bool {
	tgt, loaded := lookup(c, target)
	if !loaded {
		return false
	}
	if tgt.IsVoid() {
		return true
	}
	tgtMat := reg.MustGet(tgt.Material)
	switch tgtMat.Physics {
	case pixel.Solid, pixel.Powder:
		return false
	}
	srcMat := reg.MustGet(src.Material)
	return srcMat.Density > tgtMat.Density
}

// SwapWorker returns a canvas.SwapWorker bound to this tick's context,
// dispatching each source pixel by its material's physics state.
func (tc Context) SwapWorker() canvas.SwapWorker {
	return func(pos coord.WorldPos, c *canvas.Canvas) (coord.WorldPos, bool) {
		src, loaded := lookup(c, pos)
		if !loaded || src.IsVoid() {
			return coord.WorldPos{}, false
		}
		mat, ok := tc.Registry.Get(src.Material)
		if !ok {
			return coord.WorldPos{}, false
		}
		switch mat.Physics {
		case pixel.Powder:
			return tc.powderSwap(c, pos, src, mat)
		case pixel.Liquid:
			return tc.liquidSwap(c, pos, src, mat)
		default: // Solid, Gas: no swap
			return coord.WorldPos{}, false
		}
	}
}

func (tc Context) airResisted(pos coord.WorldPos, mat pixel.Material) bool {
	if mat.AirResistance == 0 {
		return false
	}
	h := Hash(tc.Seed, ChannelAirResistance, tc.Tick, pos.X, pos.Y)
	return RollSkip(h, mat.AirResistance)
}

// powderSwap implements the powder rule: an air-resistance check, then a
// per-pixel random flip and drift, trying straight-down-with-drift,
// straight-down, and the two diagonals in order.
func (tc Context) powderSwap(c *canvas.Canvas, pos coord.WorldPos, src pixel.Pixel, mat pixel.Material) (coord.WorldPos, bool) {
	if tc.airResisted(pos, mat) {
		return coord.WorldPos{}, false
	}

	flipH := Hash(tc.Seed, ChannelDirectionFlip, tc.Tick, pos.X, pos.Y)
	flip := FlipSign(flipH)

	drift := int32(0)
	if mat.AirDrift > 0 {
		driftH := Hash(tc.Seed, ChannelAirDrift, tc.Tick, pos.X, pos.Y)
		if RollSkip(driftH, mat.AirDrift) {
			drift = flip
		}
	}

	candidates := make([]coord.WorldPos, 0, 4)
	if drift != 0 {
		candidates = append(candidates, coord.WorldPos{X: pos.X + drift, Y: pos.Y - 1})
		candidates = append(candidates, coord.WorldPos{X: pos.X, Y: pos.Y - 1})
	} else {
		candidates = append(candidates, coord.WorldPos{X: pos.X, Y: pos.Y - 1})
	}
	candidates = append(candidates, coord.WorldPos{X: pos.X + flip, Y: pos.Y - 1})
	candidates = append(candidates, coord.WorldPos{X: pos.X - flip, Y: pos.Y - 1})

	for _, cand := range candidates {
		if canDisplace(tc.Registry, src, c, cand) {
			return cand, true
		}
	}
	return coord.WorldPos{}, false
}

// liquidSwap implements the liquid rule: falling/diagonal clauses as for
// powder (using the tick-global flip), then horizontal flow if the
// material disperses.
func (tc Context) liquidSwap(c *canvas.Canvas, pos coord.WorldPos, src pixel.Pixel, mat pixel.Material) (coord.WorldPos, bool) {
	if tc.airResisted(pos, mat) {
		return coord.WorldPos{}, false
	}

	flip := tc.LiquidFlip

	drift := int32(0)
	if mat.AirDrift > 0 {
		driftH := Hash(tc.Seed, ChannelAirDrift, tc.Tick, pos.X, pos.Y)
		if RollSkip(driftH, mat.AirDrift) {
			drift = flip
		}
	}

	fallCandidates := make([]coord.WorldPos, 0, 4)
	if drift != 0 {
		fallCandidates = append(fallCandidates, coord.WorldPos{X: pos.X + drift, Y: pos.Y - 1})
	}
	fallCandidates = append(fallCandidates,
		coord.WorldPos{X: pos.X, Y: pos.Y - 1},
		coord.WorldPos{X: pos.X + flip, Y: pos.Y - 1},
		coord.WorldPos{X: pos.X - flip, Y: pos.Y - 1},
	)
	for _, cand := range fallCandidates {
		if canDisplace(tc.Registry, src, c, cand) {
			return cand, true
		}
	}

	if mat.Dispersion > 0 {
		flowCandidates := []coord.WorldPos{
			{X: pos.X + flip, Y: pos.Y},
			{X: pos.X - flip, Y: pos.Y},
		}
		for _, cand := range flowCandidates {
			if canDisplace(tc.Registry, src, c, cand) {
				return cand, true
			}
		}
	}

	return coord.WorldPos{}, false
}
