package burn

import (
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/sim"
)

// cardinalOffsets are the four neighbours a burning pixel can ignite.
var cardinalOffsets = [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Pass runs the burning-propagation subsystem: cardinal-neighbour ignition
// spread and the ash roll, at its own tick-rate-reduced schedule. It is
// built on the same four-phase traversal as the main physics tick so a
// burning pixel's neighbours are never read and written by two goroutines
// at once.
type Pass struct {
	Reg   *pixel.Registry
	Rates Rates
	Seed  uint64
	// BurningRate is this subsystem's own tick rate in Hz (physicsRate /
	// TickBudget(physicsRate, configuredBurningRate)), used to derive
	// per-tick probabilities from Rates' continuous configuration.
	BurningRate float32
}

// Run executes one burning-subsystem tick over every tile in
// tilesByPhase. No tile-grid jitter is applied here — unlike the physics
// tick, the burning pass doesn't need isotropic sampling across ticks.
func (p Pass) Run(c *canvas.Canvas, tilesByPhase [4][]coord.TilePos, tileEdge, tilesPerChunk int32, tick uint64, dirty *canvas.DirtySet) {
	spreadChance := p.Rates.SpreadChancePerTick(p.BurningRate)
	ashChance := p.Rates.AshChancePerTick(p.BurningRate)

	canvas.RunPhases(c, tilesByPhase, tileEdge, tilesPerChunk, canvas.Jitter{}, func(pos coord.WorldPos, cv *canvas.Canvas) {
		px, ok := getPixel(cv, pos)
		if !ok || !px.Flags.Has(pixel.FlagBurning) {
			return
		}
		mat, ok := p.Reg.Get(px.Material)
		if !ok {
			return
		}

		p.spreadToNeighbours(cv, pos, tick, spreadChance, dirty)

		if mat.OnBurn == nil {
			return
		}
		p.rollAsh(cv, pos, px, mat, tick, ashChance, dirty)
	})
}

// spreadToNeighbours rolls, independently per cardinal neighbour, whether a
// burning pixel ignites it this tick.
func (p Pass) spreadToNeighbours(cv *canvas.Canvas, pos coord.WorldPos, tick uint64, spreadChance float32, dirty *canvas.DirtySet) {
	for _, off := range cardinalOffsets {
		npos := coord.WorldPos{X: pos.X + off[0], Y: pos.Y + off[1]}
		npx, ok := getPixel(cv, npos)
		if !ok || npx.IsVoid() || npx.Flags.Has(pixel.FlagBurning) {
			continue
		}
		nmat, ok := p.Reg.Get(npx.Material)
		if !ok || !nmat.Flammable() {
			continue
		}
		h := sim.Hash(p.Seed, sim.ChannelBurnSpread, tick, npos.X, npos.Y)
		if !rollChance(h, spreadChance) {
			continue
		}
		npx.Flags = npx.Flags.Set(pixel.FlagBurning)
		setPixel(cv, npos, npx)
		markDirty(cv, npos, dirty)
	}
}

// rollAsh applies a burning pixel's per-tick chance of completing its burn
// effect.
func (p Pass) rollAsh(cv *canvas.Canvas, pos coord.WorldPos, px pixel.Pixel, mat pixel.Material, tick uint64, ashChance float32, dirty *canvas.DirtySet) {
	h := sim.Hash(p.Seed, sim.ChannelBurnAsh, tick, pos.X, pos.Y)
	if !rollChance(h, ashChance) {
		return
	}

	switch mat.OnBurn.Kind {
	case pixel.BurnDestroy:
		px = pixel.Pixel{}
	case pixel.BurnTransform:
		px.Material = mat.OnBurn.Target
		px.Flags = px.Flags.Clear(pixel.FlagBurning)
		px.ColorIndex = uint8(sim.Hash(p.Seed, sim.ChannelBurnColor, tick, pos.X, pos.Y))
	case pixel.BurnResist:
		// Noop per spec: the pixel, and its BURNING flag, are left exactly
		// as they were.
		return
	}
	setPixel(cv, pos, px)
	markDirty(cv, pos, dirty)
}

// rollChance compares a hash draw against a [0,1] probability.
func rollChance(h uint64, chance float32) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 1 {
		return true
	}
	return float32(h>>11)/float32(1<<53) < chance
}

// getPixel reads the pixel at a world position, reporting whether its
// chunk is loaded.
func getPixel(cv *canvas.Canvas, p coord.WorldPos) (pixel.Pixel, bool) {
	return cv.GetPixelValue(p)
}

// setPixel writes the pixel at a world position. No-op if the chunk isn't
// loaded.
func setPixel(cv *canvas.Canvas, p coord.WorldPos, px pixel.Pixel) {
	cv.SetPixelValue(p, px)
}

// markDirty marks p's owning tile simulation- and collision-dirty and
// records its chunk as touched.
func markDirty(cv *canvas.Canvas, p coord.WorldPos, dirty *canvas.DirtySet) {
	canvas.PropagateBoundary(cv, p, cv.TileEdgeAt(p), dirty)
}
