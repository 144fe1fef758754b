package world

import (
	"github.com/pxlsim/pixelworld/blast"
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// DebugSink receives an optional trace of pixel-level mutations, matching
// spec.md §6's set_pixel/blit debug_sink parameter. A nil sink means no
// caller wants the trace; every mutation site guards against nil before
// calling it so the hot path pays nothing when tracing is off.
type DebugSink func(event string, pos coord.WorldPos)

func notify(sink DebugSink, event string, pos coord.WorldPos) {
	if sink != nil {
		sink(event, pos)
	}
}

// flagModified marks every chunk in a dirty set as GPU-dirty, edited, and
// not-yet-persisted, so the streaming window knows to queue a save
// snapshot the next time that chunk leaves the window.
func (w *World) flagModified(dirty *canvas.DirtySet) {
	if dirty == nil {
		return
	}
	for _, pos := range dirty.Positions() {
		w.flagChunkModified(pos)
	}
}

func (w *World) flagChunkModified(pos coord.ChunkPos) {
	idx, ok := w.pool.IndexOf(pos)
	if !ok {
		return
	}
	slot := w.pool.GetMut(idx)
	slot.Dirty = true
	slot.Modified = true
	slot.Persisted = false
}

// GetPixel reads the pixel at a world position. The bool result is false
// if that position's chunk isn't currently loaded (spec.md §6's
// `Option<&Pixel>`).
func (w *World) GetPixel(pos coord.WorldPos) (pixel.Pixel, bool) {
	return w.canvas().GetPixelValue(pos)
}

// SetPixel writes a pixel at a world position, marking its chunk dirty,
// modified, and not-persisted. Returns false if the chunk isn't loaded or
// seeded (spec.md §6).
func (w *World) SetPixel(pos coord.WorldPos, px pixel.Pixel, sink DebugSink) bool {
	c := w.canvas()
	if _, ok := c.GetPixelValue(pos); !ok {
		return false
	}
	c.SetPixelValue(pos, px)
	w.flagChunkModified(coordChunkOf(pos, w.cfg.Edge))
	notify(sink, "set_pixel", pos)
	return true
}

func coordChunkOf(p coord.WorldPos, edge int32) coord.ChunkPos {
	cpos, _ := coord.WorldToChunkLocal(p, edge)
	return cpos
}

// FragmentCallback computes a replacement pixel for one cell of a Blit's
// target rectangle, given its world position and its [0,1) parametric
// position (u, v) within the rect. Returning ok=false leaves that cell
// untouched.
type FragmentCallback func(wx, wy int32, u, v float32) (px pixel.Pixel, ok bool)

// Blit writes a rectangle of pixels computed by a fragment callback,
// processed tile-by-tile in the same four-phase order the CA tick uses so
// concurrent tiles never touch the same cell (spec.md §6, §8 property 7:
// a write only lands if its chunk is loaded and seeded).
func (w *World) Blit(rect coord.Rect, fragment FragmentCallback, sink DebugSink) {
	if rect.Empty() {
		return
	}
	c := w.canvas()
	tileEdge := w.cfg.TileEdge
	tiles := rect.ToTileRange(tileEdge)

	var byPhase [4][]coord.TilePos
	for _, t := range tiles {
		phase := coord.PhaseFromTile(t)
		byPhase[phase] = append(byPhase[phase], t)
	}

	width := float32(rect.MaxX - rect.MinX)
	height := float32(rect.MaxY - rect.MinY)
	dirty := &canvas.DirtySet{}

	// RunPhases drives its traversal from existing per-tile dirty-rect
	// bounds, which is the right behaviour for CA-driven work but wrong
	// for an externally-specified rect: a caller's Blit target may well
	// cover cells the CA currently considers asleep. Iterate the rect
	// directly instead, still phase-by-phase so same-phase tiles remain
	// provably disjoint.
	for _, phase := range coord.Phases {
		for _, t := range byPhase[phase] {
			tileRect := coord.Rect{
				MinX: t.X * tileEdge, MinY: t.Y * tileEdge,
				MaxX: t.X*tileEdge + tileEdge, MaxY: t.Y*tileEdge + tileEdge,
			}
			region := tileRect.Intersect(rect)
			if region.Empty() {
				continue
			}
			for wy := region.MinY; wy < region.MaxY; wy++ {
				for wx := region.MinX; wx < region.MaxX; wx++ {
					u := float32(wx-rect.MinX) / width
					v := float32(wy-rect.MinY) / height
					px, ok := fragment(wx, wy, u, v)
					if !ok {
						continue
					}
					pos := coord.WorldPos{X: wx, Y: wy}
					if _, loaded := c.GetPixelValue(pos); !loaded {
						continue
					}
					c.SetPixelValue(pos, px)
					canvas.PropagateBoundary(c, pos, tileEdge, dirty)
					notify(sink, "blit", pos)
				}
			}
		}
	}

	w.flagModified(dirty)
}

// SwapPixels atomically exchanges the pixels at two world positions,
// handling same-chunk and cross-chunk cases uniformly. Returns false if
// either position's chunk isn't loaded.
func (w *World) SwapPixels(a, b coord.WorldPos) bool {
	c := w.canvas()
	dirty := &canvas.DirtySet{}
	ok := canvas.ApplySwap(c, a, b, dirty)
	if ok {
		w.flagModified(dirty)
	}
	return ok
}

// MarkPixelSimDirty expands the owning tile's simulation dirty rect at a
// world position without writing a pixel, for hosts that mutate a chunk's
// surface directly (e.g. a restored body) and need the CA to notice.
func (w *World) MarkPixelSimDirty(pos coord.WorldPos) {
	cpos, lpos := coord.WorldToChunkLocal(pos, w.cfg.Edge)
	idx, ok := w.pool.IndexOf(cpos)
	if !ok {
		return
	}
	slot := w.pool.GetMut(idx)
	slot.Chunk.ExpandSimDirtyAt(lpos.X, lpos.Y)
	w.flagChunkModified(cpos)
}

// Blast carves a radial crater via blast.Run, flagging every touched chunk
// modified.
func (w *World) Blast(params blast.Params, hit blast.Callback) {
	c := w.canvas()
	dirty := &canvas.DirtySet{}
	blast.Run(c, params, dirty, hit)
	w.flagModified(dirty)
}
