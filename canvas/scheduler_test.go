package canvas

import (
	"testing"

	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

const (
	testEdge     = int32(32)
	testTileEdge = int32(8)
	testHeatEdge = int32(4)
	testTPC      = testEdge / testTileEdge
)

func newTestCanvas(positions ...coord.ChunkPos) *Canvas {
	chunks := make(map[coord.ChunkPos]*chunk.Chunk, len(positions))
	for _, p := range positions {
		chunks[p] = chunk.New(testEdge, testTileEdge, testHeatEdge)
	}
	return New(chunks, testEdge)
}

func allTilesByPhase(positions []coord.ChunkPos) [4][]coord.TilePos {
	var byPhase [4][]coord.TilePos
	for _, cp := range positions {
		for lty := int32(0); lty < testTPC; lty++ {
			for ltx := int32(0); ltx < testTPC; ltx++ {
				t := coord.TilePos{X: cp.X*testTPC + ltx, Y: cp.Y*testTPC + lty}
				ph := coord.PhaseFromTile(t)
				byPhase[ph] = append(byPhase[ph], t)
			}
		}
	}
	return byPhase
}

func TestApplySwapSameChunk(t *testing.T) {
	pos := coord.ChunkPos{}
	c := newTestCanvas(pos)
	ch, _ := c.Get(pos)
	ch.Surface.Set(0, 0, pixel.Pixel{Material: 5})

	dirty := &DirtySet{}
	ok := ApplySwap(c, coord.WorldPos{X: 0, Y: 0}, coord.WorldPos{X: 1, Y: 0}, dirty)
	if !ok {
		t.Fatalf("expected swap to succeed")
	}
	if ch.Surface.Get(1, 0).Material != 5 {
		t.Errorf("expected material to move to target cell")
	}
	if !ch.Surface.Get(0, 0).IsVoid() {
		t.Errorf("expected source cell to become void after swap")
	}
}

func TestApplySwapCrossChunk(t *testing.T) {
	a := coord.ChunkPos{X: 0}
	b := coord.ChunkPos{X: 1}
	c := newTestCanvas(a, b)
	chA, _ := c.Get(a)
	chA.Surface.Set(testEdge-1, 0, pixel.Pixel{Material: 9})

	dirty := &DirtySet{}
	ok := ApplySwap(c, coord.WorldPos{X: testEdge - 1, Y: 0}, coord.WorldPos{X: testEdge, Y: 0}, dirty)
	if !ok {
		t.Fatalf("expected cross-chunk swap to succeed")
	}
	chB, _ := c.Get(b)
	if chB.Surface.Get(0, 0).Material != 9 {
		t.Errorf("expected material to land in neighbour chunk's local (0,0)")
	}
}

func TestApplySwapUnloadedTargetFails(t *testing.T) {
	pos := coord.ChunkPos{}
	c := newTestCanvas(pos)
	dirty := &DirtySet{}
	ok := ApplySwap(c, coord.WorldPos{X: 0, Y: 0}, coord.WorldPos{X: testEdge * 5, Y: 0}, dirty)
	if ok {
		t.Errorf("expected swap into an unloaded chunk to fail")
	}
}

func TestParallelSimulateFallingPowder(t *testing.T) {
	pos := coord.ChunkPos{}
	c := newTestCanvas(pos)
	ch, _ := c.Get(pos)
	ch.Surface.Set(4, 10, pixel.Pixel{Material: 2})
	ch.ExpandSimDirtyAt(4, 10)

	worker := func(p coord.WorldPos, c *Canvas) (coord.WorldPos, bool) {
		cpos, lpos := coord.WorldToChunkLocal(p, testEdge)
		chunkAt, ok := c.Get(cpos)
		if !ok {
			return coord.WorldPos{}, false
		}
		px := chunkAt.Surface.Get(lpos.X, lpos.Y)
		if px.Material != 2 {
			return coord.WorldPos{}, false
		}
		below := coord.WorldPos{X: p.X, Y: p.Y - 1}
		bc, bl := coord.WorldToChunkLocal(below, testEdge)
		bch, ok := c.Get(bc)
		if !ok || !bch.Surface.Get(bl.X, bl.Y).IsVoid() {
			return coord.WorldPos{}, false
		}
		return below, true
	}

	byPhase := allTilesByPhase([]coord.ChunkPos{pos})
	for tick := 0; tick < 10; tick++ {
		ParallelSimulate(c, byPhase, testTileEdge, testTPC, Jitter{}, worker)
		ch.TickAllDirtyRects()
	}

	if ch.Surface.Get(4, 0).Material != 2 {
		t.Errorf("expected powder to have fallen to the floor, got material %d", ch.Surface.Get(4, 0).Material)
	}
	if !ch.Surface.Get(4, 10).IsVoid() {
		t.Errorf("expected original cell to be void after falling")
	}
}
