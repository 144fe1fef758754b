// Package chunk implements the fixed-size pixel chunk: its pixel surface,
// per-tile simulation dirty-rect grid, per-tile collision-dirty bitmap, and
// downsampled heat grid.
package chunk

import (
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// Chunk owns one square surface of pixels plus the bookkeeping grids the
// simulation needs to schedule work over it.
type Chunk struct {
	Edge     int32 // L
	TileEdge int32 // T
	HeatEdge int32 // H

	Surface *pixel.Surface

	tilesPerSide int32
	dirtyRects   []TileDirtyRect // len tilesPerSide^2, row-major
	collDirty    []bool          // len tilesPerSide^2, row-major

	heatSide int32
	heat     []uint8 // len heatSide^2, row-major

	// FromPersistence is set when this chunk's pixel data was loaded from
	// storage rather than freshly procedurally seeded.
	FromPersistence bool
}

// New allocates a chunk with the given edge lengths. edge must be divisible
// by tileEdge and heatEdge.
func New(edge, tileEdge, heatEdge int32) *Chunk {
	tps := edge / tileEdge
	hs := edge / heatEdge
	return &Chunk{
		Edge:         edge,
		TileEdge:     tileEdge,
		HeatEdge:     heatEdge,
		Surface:      pixel.NewSurface(edge),
		tilesPerSide: tps,
		dirtyRects:   make([]TileDirtyRect, tps*tps),
		collDirty:    make([]bool, tps*tps),
		heatSide:     hs,
		heat:         make([]uint8, hs*hs),
	}
}

// Reset clears the chunk back to its just-allocated state so a pool slot
// can reuse the backing arrays for a different world position.
func (c *Chunk) Reset() {
	c.Surface.Clear()
	for i := range c.dirtyRects {
		c.dirtyRects[i] = TileDirtyRect{}
	}
	for i := range c.collDirty {
		c.collDirty[i] = false
	}
	for i := range c.heat {
		c.heat[i] = 0
	}
	c.FromPersistence = false
}

// TilesPerSide returns how many tiles span one edge of the chunk.
func (c *Chunk) TilesPerSide() int32 { return c.tilesPerSide }

func (c *Chunk) localTileIndex(ltx, lty int32) int {
	return int(lty*c.tilesPerSide + ltx)
}

// tileLocal converts a local pixel position to its tile-local tile index
// (tile coordinates within this chunk, 0..tilesPerSide-1).
func (c *Chunk) tileLocal(lx, ly int32) (int32, int32) {
	return lx / c.TileEdge, ly / c.TileEdge
}

// DirtyRect returns the tile dirty-rect tracker for the tile at local tile
// coordinates (ltx, lty).
func (c *Chunk) DirtyRect(ltx, lty int32) *TileDirtyRect {
	return &c.dirtyRects[c.localTileIndex(ltx, lty)]
}

// ExpandSimDirtyAt marks the tile owning local pixel (lx, ly) as
// simulation-dirty at that pixel.
func (c *Chunk) ExpandSimDirtyAt(lx, ly int32) {
	ltx, lty := c.tileLocal(lx, ly)
	c.DirtyRect(ltx, lty).Expand(lx, ly)
}

// TickAllDirtyRects advances every tile's dirty-rect state machine by one
// frame. Called once per chunk per tick, after all simulation phases.
func (c *Chunk) TickAllDirtyRects() {
	for i := range c.dirtyRects {
		c.dirtyRects[i].Tick()
	}
}

// CollisionDirty reports whether the tile at local tile coordinates needs
// its collision mesh regenerated.
func (c *Chunk) CollisionDirty(ltx, lty int32) bool {
	return c.collDirty[c.localTileIndex(ltx, lty)]
}

// MarkCollisionDirty flags a tile (and, at a chunk edge, propagation to the
// neighbour is the caller's responsibility — chunks don't reach across
// their own boundary).
func (c *Chunk) MarkCollisionDirty(ltx, lty int32) {
	if ltx < 0 || lty < 0 || ltx >= c.tilesPerSide || lty >= c.tilesPerSide {
		return
	}
	c.collDirty[c.localTileIndex(ltx, lty)] = true
}

// MarkCollisionDirtyAt flags the tile owning local pixel (lx, ly), and its
// neighbour tile if (lx, ly) sits on the tile's 1-pixel border.
func (c *Chunk) MarkCollisionDirtyAt(lx, ly int32) {
	ltx, lty := c.tileLocal(lx, ly)
	c.MarkCollisionDirty(ltx, lty)

	withinTileX := lx - ltx*c.TileEdge
	withinTileY := ly - lty*c.TileEdge
	if withinTileX == 0 {
		c.MarkCollisionDirty(ltx-1, lty)
	}
	if withinTileX == c.TileEdge-1 {
		c.MarkCollisionDirty(ltx+1, lty)
	}
	if withinTileY == 0 {
		c.MarkCollisionDirty(ltx, lty-1)
	}
	if withinTileY == c.TileEdge-1 {
		c.MarkCollisionDirty(ltx, lty+1)
	}
}

// ClearCollisionDirty is called once a tile's collision mesh has been
// regenerated.
func (c *Chunk) ClearCollisionDirty(ltx, lty int32) {
	if ltx < 0 || lty < 0 || ltx >= c.tilesPerSide || lty >= c.tilesPerSide {
		return
	}
	c.collDirty[c.localTileIndex(ltx, lty)] = false
}

// HeatSide returns how many heat cells span one edge of the chunk.
func (c *Chunk) HeatSide() int32 { return c.heatSide }

func (c *Chunk) heatIndex(hx, hy int32) int {
	return int(hy*c.heatSide + hx)
}

// Heat returns the heat-cell value at downsampled coordinates (hx, hy).
func (c *Chunk) Heat(hx, hy int32) uint8 {
	return c.heat[c.heatIndex(hx, hy)]
}

// SetHeat writes a heat-cell value.
func (c *Chunk) SetHeat(hx, hy int32, v uint8) {
	c.heat[c.heatIndex(hx, hy)] = v
}

// HeatCellOf returns the heat-cell coordinates owning local pixel (lx, ly).
func (c *Chunk) HeatCellOf(lx, ly int32) (int32, int32) {
	return lx / c.HeatEdge, ly / c.HeatEdge
}

// TileRangeAll returns every (ltx, lty) tile coordinate pair in the chunk,
// for passes that cover the whole chunk.
func (c *Chunk) TileRangeAll() []coord.TilePos {
	out := make([]coord.TilePos, 0, c.tilesPerSide*c.tilesPerSide)
	for ty := int32(0); ty < c.tilesPerSide; ty++ {
		for tx := int32(0); tx < c.tilesPerSide; tx++ {
			out = append(out, coord.TilePos{X: tx, Y: ty})
		}
	}
	return out
}
