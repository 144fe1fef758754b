package world

import (
	"testing"

	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/burn"
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/persistence"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/world/components"
)

const (
	testSand pixel.MaterialID = 1
	testRock pixel.MaterialID = 2
)

func testRegistry() *pixel.Registry {
	reg := pixel.NewRegistry()
	reg.Define(testSand, pixel.Material{Name: "sand", Physics: pixel.Powder, Density: 100})
	reg.Define(testRock, pixel.Material{Name: "rock", Physics: pixel.Solid, Density: 255, BlastResistance: 1})
	return reg
}

// voidSeeder seeds every chunk as entirely void, so tests start from a known
// empty canvas and opt into whatever pixels they need explicitly.
type voidSeeder struct{}

func (voidSeeder) Seed(pos coord.ChunkPos, ch *chunk.Chunk) {}

func testConfig(reg *pixel.Registry) Config {
	return Config{
		Edge:         8,
		TileEdge:     4,
		HeatEdge:     4,
		WorldSeed:    1,
		StreamWidth:  3,
		StreamHeight: 3,
		PoolCapacity: 16,
		PhysicsRate:  60,
		BurningRate:  60,
		HeatRate:     60,
		BurnRates: burn.Rates{
			SpreadPerNeighbourPerSec: 1,
			BurnDurationSec:          1,
			BurningHeat:              10,
			CoolingFactor:            0.95,
		},
		DeltaThreshold:   persistence.DeltaThreshold,
		ContourTolerance: 0.5,
		SubmersionConfig: body.SubmersionConfig{Threshold: 0.5},
		Registry:         reg,
	}
}

// newTestWorld builds a world with a streaming camera already parked at the
// origin and its surrounding chunks activated, ready for pixel-level tests.
func newTestWorld(t *testing.T) *World {
	t.Helper()
	reg := testRegistry()
	w := SpawnPixelWorld(testConfig(reg), voidSeeder{})
	w.SpawnStreamingCamera(components.Transform{})
	w.syncStreamingWindow()
	return w
}

func TestSpawnPixelWorldActivatesChunksAroundCamera(t *testing.T) {
	w := newTestWorld(t)
	if _, ok := w.GetPixel(coord.WorldPos{X: 0, Y: 0}); !ok {
		t.Fatalf("expected the origin chunk to be active after syncStreamingWindow")
	}
}

func TestSetPixelRequiresLoadedChunk(t *testing.T) {
	w := newTestWorld(t)

	px := pixel.Pixel{Material: testSand}
	if !w.SetPixel(coord.WorldPos{X: 1, Y: 1}, px, nil) {
		t.Fatalf("SetPixel into an active chunk should succeed")
	}
	got, ok := w.GetPixel(coord.WorldPos{X: 1, Y: 1})
	if !ok || got.Material != testSand {
		t.Fatalf("GetPixel = %+v, %v; want sand pixel", got, ok)
	}

	// Far outside the streamed window: not loaded.
	far := coord.WorldPos{X: 100000, Y: 100000}
	if w.SetPixel(far, px, nil) {
		t.Fatalf("SetPixel into an unloaded chunk should fail")
	}
}

func TestSetPixelFlagsChunkModified(t *testing.T) {
	w := newTestWorld(t)
	pos := coord.WorldPos{X: 2, Y: 2}
	cpos, _ := coord.WorldToChunkLocal(pos, w.cfg.Edge)
	idx, ok := w.pool.IndexOf(cpos)
	if !ok {
		t.Fatalf("expected chunk %v to be active", cpos)
	}
	if w.pool.GetMut(idx).Modified {
		t.Fatalf("freshly activated chunk should not start Modified")
	}

	w.SetPixel(pos, pixel.Pixel{Material: testSand}, nil)

	slot := w.pool.GetMut(idx)
	if !slot.Modified || !slot.Dirty || slot.Persisted {
		t.Fatalf("slot bookkeeping after SetPixel = %+v, want Modified=Dirty=true, Persisted=false", slot)
	}
}

func TestSwapPixels(t *testing.T) {
	w := newTestWorld(t)
	a := coord.WorldPos{X: 0, Y: 0}
	b := coord.WorldPos{X: 1, Y: 0}
	w.SetPixel(a, pixel.Pixel{Material: testSand}, nil)

	if !w.SwapPixels(a, b) {
		t.Fatalf("SwapPixels between two loaded cells should succeed")
	}
	pa, _ := w.GetPixel(a)
	pb, _ := w.GetPixel(b)
	if pa.Material != pixel.Void || pb.Material != testSand {
		t.Fatalf("after swap: a=%+v b=%+v, want a void, b sand", pa, pb)
	}
}

func TestBlitOnlyWritesLoadedCells(t *testing.T) {
	w := newTestWorld(t)
	rect := coord.Rect{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}
	var calls int
	w.Blit(rect, func(wx, wy int32, u, v float32) (pixel.Pixel, bool) {
		calls++
		return pixel.Pixel{Material: testRock}, true
	}, nil)

	if calls != 4 {
		t.Fatalf("fragment callback invoked %d times, want 4", calls)
	}
	for y := int32(0); y < 2; y++ {
		for x := int32(0); x < 2; x++ {
			px, ok := w.GetPixel(coord.WorldPos{X: x, Y: y})
			if !ok || px.Material != testRock {
				t.Errorf("pixel (%d,%d) = %+v, %v; want rock", x, y, px, ok)
			}
		}
	}
}

func TestTickAdvancesCounter(t *testing.T) {
	w := newTestWorld(t)
	if w.TickCount() != 0 {
		t.Fatalf("TickCount() = %d, want 0 before any Tick", w.TickCount())
	}
	w.Tick(nil)
	if w.TickCount() != 1 {
		t.Fatalf("TickCount() = %d, want 1 after one Tick", w.TickCount())
	}
}

func TestTickDoesNotPanicOverSeveralSteps(t *testing.T) {
	w := newTestWorld(t)
	w.SetPixel(coord.WorldPos{X: 2, Y: 2}, pixel.Pixel{Material: testSand}, nil)
	for i := 0; i < 5; i++ {
		w.Tick(func(err error) { t.Fatalf("unexpected persistence error: %v", err) })
	}
	if w.TickCount() != 5 {
		t.Fatalf("TickCount() = %d, want 5", w.TickCount())
	}
}
