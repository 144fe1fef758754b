// Package canvas implements the read-shared/write-exclusive multi-chunk
// accessor and the four-phase parallel scheduler that runs per-tile work
// over it without locks on the hot path.
package canvas

import (
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// Canvas gives tile workers read-write access to a disjoint slice of the
// world: a map of chunk position to exclusive chunk reference. The pool's
// position-uniqueness invariant (see package pool) is what makes handing
// out this map safe — every *chunk.Chunk value in it is backed by a
// distinct slot.
type Canvas struct {
	chunks map[coord.ChunkPos]*chunk.Chunk
	edge   int32
}

// New wraps a position->chunk map (typically pool.Pool.CollectSeeded's
// output) as a Canvas.
func New(chunks map[coord.ChunkPos]*chunk.Chunk, edge int32) *Canvas {
	return &Canvas{chunks: chunks, edge: edge}
}

// Get returns the chunk at pos, or (nil, false) if it is not loaded.
func (c *Canvas) Get(pos coord.ChunkPos) (*chunk.Chunk, bool) {
	ch, ok := c.chunks[pos]
	return ch, ok
}

// GetMut is identical to Get; the name documents caller intent.
func (c *Canvas) GetMut(pos coord.ChunkPos) (*chunk.Chunk, bool) {
	return c.Get(pos)
}

// GetPixel reads the pixel at world position p, returning (_, false) if its
// chunk is not currently loaded in this canvas.
func (c *Canvas) GetPixel(p coord.WorldPos) (pixelAt, bool) {
	cpos, lpos := coord.WorldToChunkLocal(p, c.edge)
	ch, ok := c.chunks[cpos]
	if !ok {
		return pixelAt{}, false
	}
	return pixelAt{ch: ch, lx: lpos.X, ly: lpos.Y}, true
}

// pixelAt is a resolved (chunk, local position) pair, avoiding repeated
// coordinate translation when a caller reads then writes the same cell.
type pixelAt struct {
	ch     *chunk.Chunk
	lx, ly int32
}

// Get reads the resolved cell's current pixel.
func (p pixelAt) Get() pixel.Pixel { return p.ch.Surface.Get(p.lx, p.ly) }

// Set writes the resolved cell's pixel.
func (p pixelAt) Set(px pixel.Pixel) { p.ch.Surface.Set(p.lx, p.ly, px) }

// GetPixelValue is a convenience wrapper over GetPixel for callers that
// only need the pixel value, not the resolved handle.
func (c *Canvas) GetPixelValue(p coord.WorldPos) (pixel.Pixel, bool) {
	at, ok := c.GetPixel(p)
	if !ok {
		return pixel.Pixel{}, false
	}
	return at.Get(), true
}

// SetPixelValue writes a pixel at world position p; it is a no-op if p's
// chunk is not currently loaded in this canvas.
func (c *Canvas) SetPixelValue(p coord.WorldPos, px pixel.Pixel) {
	at, ok := c.GetPixel(p)
	if !ok {
		return
	}
	at.Set(px)
}

// TileEdgeAt returns the tile edge length of the chunk containing p, or 0
// if that chunk is not loaded.
func (c *Canvas) TileEdgeAt(p coord.WorldPos) int32 {
	cpos, _ := coord.WorldToChunkLocal(p, c.edge)
	ch, ok := c.chunks[cpos]
	if !ok {
		return 0
	}
	return ch.TileEdge
}

// SetHeatAt writes a heat value into the heat cell covering world pixel
// position p. No-op if p's chunk is not loaded.
func (c *Canvas) SetHeatAt(p coord.WorldPos, heat uint8) {
	cpos, lpos := coord.WorldToChunkLocal(p, c.edge)
	ch, ok := c.chunks[cpos]
	if !ok {
		return
	}
	hx, hy := ch.HeatCellOf(lpos.X, lpos.Y)
	ch.SetHeat(hx, hy, heat)
}

// Edge returns the configured chunk edge length.
func (c *Canvas) Edge() int32 { return c.edge }

// ForEachChunk calls fn once per loaded chunk; order is unspecified.
func (c *Canvas) ForEachChunk(fn func(coord.ChunkPos, *chunk.Chunk)) {
	for pos, ch := range c.chunks {
		fn(pos, ch)
	}
}
