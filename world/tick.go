package world

import (
	"github.com/pxlsim/pixelworld/burn"
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/sim"
)

// Tick advances the simulation by one step, in the fixed order spec.md §5
// prescribes: body systems before the CA tick, the CA tick itself
// (physics swap pass, burning pass, heat pass), body systems after the CA
// tick, then streaming/persistence/collision housekeeping. onError
// receives any persistence failure surfaced this tick (may be nil).
func (w *World) Tick(onError func(error)) {
	c := w.canvas()
	tilesPerChunk := w.cfg.Edge / w.cfg.TileEdge

	w.preCATickBodies(c, &canvas.DirtySet{})

	tilesByPhase := w.awakeTilesByPhase(c, tilesPerChunk)
	w.runPhysicsPass(c, tilesByPhase, tilesPerChunk)
	if w.tick%uint64(burn.TickBudget(w.cfg.PhysicsRate, w.cfg.BurningRate)) == 0 {
		w.runBurningPass(c, tilesByPhase, tilesPerChunk)
	}
	if w.tick%uint64(burn.TickBudget(w.cfg.PhysicsRate, w.cfg.HeatRate)) == 0 {
		w.runHeatPass(c)
	}
	c.ForEachChunk(func(_ coord.ChunkPos, ch *chunk.Chunk) {
		ch.TickAllDirtyRects()
	})

	w.postCATickBodies(c)

	w.pollPendingBodies()
	w.dispatchCollisionMeshWork()
	w.syncStreamingWindow()
	w.drainPersistenceResults(onError)

	w.tick++
}

// awakeTilesByPhase collects every tile of every currently loaded chunk,
// classified into its checkerboard phase, for the physics and burning
// passes to drive canvas.RunPhases over. Unlike World.Blit's externally
// specified rect, the CA tick always considers the whole loaded set —
// RunPhases's own dirty-rect bounds per tile are what actually narrows the
// work down to awake cells.
func (w *World) awakeTilesByPhase(c *canvas.Canvas, tilesPerChunk int32) [4][]coord.TilePos {
	var tilesByPhase [4][]coord.TilePos
	c.ForEachChunk(func(cpos coord.ChunkPos, _ *chunk.Chunk) {
		baseX, baseY := cpos.X*tilesPerChunk, cpos.Y*tilesPerChunk
		for ty := int32(0); ty < tilesPerChunk; ty++ {
			for tx := int32(0); tx < tilesPerChunk; tx++ {
				t := coord.TilePos{X: baseX + tx, Y: baseY + ty}
				phase := coord.PhaseFromTile(t)
				tilesByPhase[phase] = append(tilesByPhase[phase], t)
			}
		}
	})
	return tilesByPhase
}

// runPhysicsPass runs the per-tick powder/liquid swap rule over every
// awake cell, via the checkerboard four-phase scheduler. The tile grid is
// shifted by sim.JitterFor's per-tick offset; with the default
// JitterFactor of 0 there is no shift.
func (w *World) runPhysicsPass(c *canvas.Canvas, tilesByPhase [4][]coord.TilePos, tilesPerChunk int32) {
	ctx := sim.NewContext(w.cfg.WorldSeed, w.tick, w.reg)
	jitter := sim.JitterFor(w.cfg.WorldSeed, w.tick, w.cfg.TileEdge, w.cfg.JitterFactor)
	dirty := canvas.ParallelSimulate(c, tilesByPhase, w.cfg.TileEdge, tilesPerChunk, jitter, ctx.SwapWorker())
	w.flagModified(dirty)
}

// runBurningPass runs the burning-propagation subsystem at its own
// tick-rate-reduced schedule.
func (w *World) runBurningPass(c *canvas.Canvas, tilesByPhase [4][]coord.TilePos, tilesPerChunk int32) {
	pass := burn.Pass{
		Reg:         w.reg,
		Rates:       w.cfg.BurnRates,
		Seed:        w.cfg.WorldSeed,
		BurningRate: w.cfg.BurningRate,
	}
	dirty := &canvas.DirtySet{}
	pass.Run(c, tilesByPhase, w.cfg.TileEdge, tilesPerChunk, w.tick, dirty)
	w.flagModified(dirty)
}

// runHeatPass runs the downsampled heat-diffusion subsystem sequentially
// over every loaded chunk.
func (w *World) runHeatPass(c *canvas.Canvas) {
	pass := burn.HeatPass{Reg: w.reg, Rates: w.cfg.BurnRates, Seed: w.cfg.WorldSeed}
	dirty := &canvas.DirtySet{}
	pass.Run(c, w.tick, dirty)
	w.flagModified(dirty)
}
