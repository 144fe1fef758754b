package canvas

import (
	"runtime"
	"sync"

	"github.com/pxlsim/pixelworld/coord"
)

// SwapWorker computes, for a single source pixel, whether it should swap
// with another cell this tick. It must only read/write within the 3x3
// neighbourhood of pos — the four-phase schedule's safety proof depends on
// workers honoring that bound.
type SwapWorker func(pos coord.WorldPos, c *Canvas) (target coord.WorldPos, ok bool)

// Jitter is the per-tick tile-grid offset applied before classifying tiles
// into phases, in [0, tileEdge) on each axis.
type Jitter struct{ X, Y int32 }

// DirtySet accumulates chunk positions touched during a parallel phase. Its
// zero value is ready to use; Merge is safe for concurrent callers.
type DirtySet struct {
	mu  sync.Mutex
	set map[coord.ChunkPos]bool
}

// Merge records pos as dirty.
func (d *DirtySet) Merge(pos coord.ChunkPos) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.set == nil {
		d.set = make(map[coord.ChunkPos]bool)
	}
	d.set[pos] = true
}

// Positions returns the accumulated set as a slice.
func (d *DirtySet) Positions() []coord.ChunkPos {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]coord.ChunkPos, 0, len(d.set))
	for p := range d.set {
		out = append(out, p)
	}
	return out
}

// originalTileContributors returns the up to four original (unjittered)
// tiles whose owned square overlaps the jittered tile at (tx, ty): the tile
// itself, plus its +x/+y/++ neighbours when the corresponding jitter
// component is nonzero.
func originalTileContributors(tx, ty int32, jitter Jitter) []coord.TilePos {
	out := []coord.TilePos{{X: tx, Y: ty}}
	if jitter.X > 0 {
		out = append(out, coord.TilePos{X: tx + 1, Y: ty})
	}
	if jitter.Y > 0 {
		out = append(out, coord.TilePos{X: tx, Y: ty + 1})
	}
	if jitter.X > 0 && jitter.Y > 0 {
		out = append(out, coord.TilePos{X: tx + 1, Y: ty + 1})
	}
	return out
}

// tileDirtyWorldBounds resolves an original (unjittered) world tile
// position to its owning chunk's dirty-rect bounds, translated into world
// coordinates. Returns an empty rect if the chunk isn't loaded or the tile
// is asleep.
func tileDirtyWorldBounds(c *Canvas, t coord.TilePos, tileEdge, tilesPerChunk int32) coord.Rect {
	cpos, ltx, lty := coord.TileToChunkAndLocalTile(t, tilesPerChunk)
	ch, ok := c.Get(cpos)
	if !ok {
		return coord.Rect{}
	}
	bounds, awake := ch.DirtyRect(ltx, lty).Bounds()
	if !awake || bounds.Empty() {
		return coord.Rect{}
	}
	origin := coord.ChunkToWorldOrigin(cpos, c.edge)
	return coord.Rect{
		MinX: bounds.MinX + origin.X, MinY: bounds.MinY + origin.Y,
		MaxX: bounds.MaxX + origin.X, MaxY: bounds.MaxY + origin.Y,
	}
}

// ownedSquare is the jittered tile's exclusive territory in world pixel
// coordinates.
func ownedSquare(tx, ty, tileEdge int32, jitter Jitter) coord.Rect {
	minX := tx*tileEdge + jitter.X
	minY := ty*tileEdge + jitter.Y
	return coord.Rect{MinX: minX, MinY: minY, MaxX: minX + tileEdge, MaxY: minY + tileEdge}
}

// numWorkers returns the worker-pool size for a parallel phase, grounded on
// the teacher's runtime.GOMAXPROCS(0)-sized pool.
func numWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// ParallelSimulate runs worker over every dirty cell of every tile in
// tilesByPhase, phase by phase in the fixed order A, B, C, D, with a
// barrier between phases. Same-phase tiles are processed concurrently by a
// bounded worker pool; each swap is applied (see ApplySwap) as soon as
// worker returns it, so every swap of a phase is in place before the next
// phase starts. tick is passed
// through to worker via the pos/Canvas pair only implicitly — callers that
// need the tick number close over it when constructing worker.
func ParallelSimulate(c *Canvas, tilesByPhase [4][]coord.TilePos, tileEdge, tilesPerChunk int32, jitter Jitter, worker SwapWorker) *DirtySet {
	dirty := &DirtySet{}
	RunPhases(c, tilesByPhase, tileEdge, tilesPerChunk, jitter, func(pos coord.WorldPos, c *Canvas) {
		target, ok := worker(pos, c)
		if !ok {
			return
		}
		ApplySwap(c, pos, target, dirty)
	})
	return dirty
}

// CellFunc is called once per dirty cell during a RunPhases pass. It may
// read and mutate the canvas directly; RunPhases only guarantees that
// same-phase tiles' owned squares (and their 1-pixel reach) are disjoint,
// so CellFunc must honor the same 3x3-neighbourhood discipline as
// SwapWorker.
type CellFunc func(pos coord.WorldPos, c *Canvas)

// RunPhases is the generic four-phase parallel driver: for each phase in
// fixed order A, B, C, D, it fans a bounded worker pool out over the
// phase's tiles (barrier between phases) and, for each tile, calls fn once
// per cell in the union of its original-tile contributors' dirty bounds,
// clipped to the tile's jittered owned square. ParallelSimulate and the
// burning pass are both built on top of this.
func RunPhases(c *Canvas, tilesByPhase [4][]coord.TilePos, tileEdge, tilesPerChunk int32, jitter Jitter, fn CellFunc) {
	for _, phase := range coord.Phases {
		tiles := tilesByPhase[phase]
		if len(tiles) == 0 {
			continue
		}

		workers := numWorkers()
		if workers > len(tiles) {
			workers = len(tiles)
		}
		chunkSize := (len(tiles) + workers - 1) / workers

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * chunkSize
			end := start + chunkSize
			if end > len(tiles) {
				end = len(tiles)
			}
			if start >= end {
				continue
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					t := tiles[i]
					runTileCells(c, t, tileEdge, tilesPerChunk, jitter, fn)
				}
			}(start, end)
		}
		wg.Wait()
	}
}

// runTileCells resolves one jittered tile's cell region and invokes fn over
// it.
func runTileCells(c *Canvas, t coord.TilePos, tileEdge, tilesPerChunk int32, jitter Jitter, fn CellFunc) {
	owned := ownedSquare(t.X, t.Y, tileEdge, jitter)

	var union coord.Rect
	for _, orig := range originalTileContributors(t.X, t.Y, jitter) {
		union = union.Union(tileDirtyWorldBounds(c, orig, tileEdge, tilesPerChunk))
	}
	region := union.Intersect(owned)
	if region.Empty() {
		return
	}

	for y := region.MinY; y < region.MaxY; y++ {
		for x := region.MinX; x < region.MaxX; x++ {
			fn(coord.WorldPos{X: x, Y: y}, c)
		}
	}
}

// ApplySwap exchanges the pixels at src and target, marks both endpoints
// simulation-dirty, and records both chunks (and the tiles the endpoints
// belong to) as touched. Safe to call concurrently only across disjoint
// same-phase tiles, per the canvas's phase-disjointness guarantee.
func ApplySwap(c *Canvas, src, target coord.WorldPos, dirty *DirtySet) bool {
	srcChunkPos, srcLocal := coord.WorldToChunkLocal(src, c.edge)
	dstChunkPos, dstLocal := coord.WorldToChunkLocal(target, c.edge)

	srcChunk, ok := c.Get(srcChunkPos)
	if !ok {
		return false
	}
	dstChunk, ok := c.Get(dstChunkPos)
	if !ok {
		return false
	}

	if srcChunk == dstChunk {
		srcChunk.Surface.Swap(srcLocal.X, srcLocal.Y, dstLocal.X, dstLocal.Y)
	} else {
		a := srcChunk.Surface.Get(srcLocal.X, srcLocal.Y)
		b := dstChunk.Surface.Get(dstLocal.X, dstLocal.Y)
		srcChunk.Surface.Set(srcLocal.X, srcLocal.Y, b)
		dstChunk.Surface.Set(dstLocal.X, dstLocal.Y, a)
	}

	expandSimDirtyWithBoundary(c, src, dirty)
	expandSimDirtyWithBoundary(c, target, dirty)
	WakeNeighbours(c, target, dirty)

	return true
}

// expandSimDirtyWithBoundary marks p's owning tile dirty and, if p sits on
// a tile edge, also marks the neighbouring tile (possibly in an adjacent
// chunk) dirty, per spec.md §4.5's boundary-propagation rule.
func expandSimDirtyWithBoundary(c *Canvas, p coord.WorldPos, dirty *DirtySet) {
	cpos, lpos := coord.WorldToChunkLocal(p, c.edge)
	ch, ok := c.Get(cpos)
	if !ok {
		return
	}
	ch.ExpandSimDirtyAt(lpos.X, lpos.Y)
	dirty.Merge(cpos)

	tileEdge := ch.TileEdge
	withinX := lpos.X % tileEdge
	withinY := lpos.Y % tileEdge

	propagate := func(dx, dy int32) {
		np := coord.WorldPos{X: p.X + dx, Y: p.Y + dy}
		ncpos, nlpos := coord.WorldToChunkLocal(np, c.edge)
		nch, ok := c.Get(ncpos)
		if !ok {
			return
		}
		nch.ExpandSimDirtyAt(nlpos.X, nlpos.Y)
		dirty.Merge(ncpos)
	}
	if withinX == 0 {
		propagate(-1, 0)
	}
	if withinX == tileEdge-1 {
		propagate(1, 0)
	}
	if withinY == 0 {
		propagate(0, -1)
	}
	if withinY == tileEdge-1 {
		propagate(0, 1)
	}
}

// WakeNeighbours marks the cells above and to the sides of a pixel that
// just moved into p as simulation-dirty candidates for falling next tick,
// matching the offsets (0,1), (-1,1), (1,1), (-1,0), (1,0).
func WakeNeighbours(c *Canvas, p coord.WorldPos, dirty *DirtySet) {
	offsets := [5][2]int32{{0, 1}, {-1, 1}, {1, 1}, {-1, 0}, {1, 0}}
	for _, off := range offsets {
		wp := coord.WorldPos{X: p.X + off[0], Y: p.Y + off[1]}
		cpos, lpos := coord.WorldToChunkLocal(wp, c.edge)
		ch, ok := c.Get(cpos)
		if !ok {
			continue
		}
		ch.ExpandSimDirtyAt(lpos.X, lpos.Y)
		dirty.Merge(cpos)
	}
}

// PropagateBoundary expands the dirty rect of the tile adjacent to a
// tile-edge-local pixel so the pixel is honoured by both neighbours' next
// frame. Exposed separately from ApplySwap for call sites (e.g. body blit)
// that mark a pixel dirty without performing a swap.
func PropagateBoundary(c *Canvas, p coord.WorldPos, tileEdge int32, dirty *DirtySet) {
	cpos, lpos := coord.WorldToChunkLocal(p, c.edge)
	ch, ok := c.Get(cpos)
	if !ok {
		return
	}
	expandSimDirtyWithBoundary(c, p, dirty)
	ch.MarkCollisionDirtyAt(lpos.X, lpos.Y)
}
