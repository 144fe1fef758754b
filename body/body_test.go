package body

import (
	"testing"

	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

func testRegistry() *pixel.Registry {
	reg := pixel.NewRegistry()
	reg.Define(1, pixel.Material{Name: "plank", Physics: pixel.Solid})
	reg.Define(2, pixel.Material{Name: "water", Physics: pixel.Liquid, Density: 50})
	return reg
}

func newTestCanvas() *canvas.Canvas {
	ch := chunk.New(32, 8, 4)
	return canvas.New(map[coord.ChunkPos]*chunk.Chunk{{}: ch}, 32)
}

func TestBlitWritesBodyPixels(t *testing.T) {
	reg := testRegistry()
	c := newTestCanvas()
	b := New(1, 2, 2)
	for y := int32(0); y < 2; y++ {
		for x := int32(0); x < 2; x++ {
			b.SetPixel(x, y, pixel.Pixel{Material: 1})
		}
	}

	var voids []coord.WorldPos
	result := Blit(c, reg, b, Transform{X: 10, Y: 10}, &voids, nil)
	if len(result.Written) != 4 {
		t.Fatalf("expected 4 written positions for a 2x2 body, got %d", len(result.Written))
	}
	for _, p := range result.Written {
		px, ok := getPixel(c, p)
		if !ok || !px.Flags.Has(pixel.FlagPixelBody) {
			t.Errorf("expected %+v to carry FlagPixelBody after blit", p)
		}
	}
}

func TestBlitDisplacesLiquid(t *testing.T) {
	reg := testRegistry()
	c := newTestCanvas()
	b := New(1, 1, 1)
	b.SetPixel(0, 0, pixel.Pixel{Material: 1})

	ch, _ := c.Get(coord.ChunkPos{})
	ch.Surface.Set(10, 10, pixel.Pixel{Material: 2}) // water sits where the body will land
	ch.Surface.Set(5, 5, pixel.Pixel{})               // a void slot

	voids := []coord.WorldPos{{X: 5, Y: 5}}
	result := Blit(c, reg, b, Transform{X: 10, Y: 10}, &voids, nil)

	if len(result.DisplacedLiquid) != 1 {
		t.Fatalf("expected the body to detect and displace one liquid pixel, got %d", len(result.DisplacedLiquid))
	}
	displaced, _ := getPixel(c, coord.WorldPos{X: 5, Y: 5})
	if displaced.Material != 2 {
		t.Errorf("expected the water to have moved into the void slot, got material %d", displaced.Material)
	}
}

func TestClearOnlyVoidsBodyFlaggedCells(t *testing.T) {
	reg := testRegistry()
	c := newTestCanvas()
	b := New(1, 1, 1)
	b.SetPixel(0, 0, pixel.Pixel{Material: 1})

	var voids []coord.WorldPos
	result := Blit(c, reg, b, Transform{X: 10, Y: 10}, &voids, nil)

	ch, _ := c.Get(coord.ChunkPos{})
	// Simulate the CA overwriting one of the body's cells with something
	// else entirely (no FlagPixelBody) before Clear runs.
	other := result.Written[0]
	ch.Surface.Set(other.X, other.Y, pixel.Pixel{Material: 2})

	Clear(c, result.Written, &voids)

	px, _ := getPixel(c, other)
	if px.Material != 2 {
		t.Errorf("Clear must not touch a cell the CA already overwrote")
	}
}

func TestDetectDestroyedFindsVoidedCells(t *testing.T) {
	reg := testRegistry()
	c := newTestCanvas()
	b := New(1, 2, 1)
	b.SetPixel(0, 0, pixel.Pixel{Material: 1})
	b.SetPixel(1, 0, pixel.Pixel{Material: 1})

	var voids []coord.WorldPos
	result := Blit(c, reg, b, Transform{X: 10, Y: 10}, &voids, nil)

	// Simulate external erasure of one cell.
	erased := result.Written[0]
	ch, _ := c.Get(coord.ChunkPos{})
	ch.Surface.Set(erased.X, erased.Y, pixel.Pixel{})

	destroyed := DetectDestroyed(c, result.Written)
	if len(destroyed) != 1 || destroyed[0] != erased {
		t.Errorf("expected exactly the erased cell to be reported destroyed, got %+v", destroyed)
	}
}

func TestSplitSingleComponentReturnsNil(t *testing.T) {
	b := New(1, 2, 1)
	b.SetPixel(0, 0, pixel.Pixel{Material: 1})
	b.SetPixel(1, 0, pixel.Pixel{Material: 1})

	if frags := Split(b); frags != nil {
		t.Errorf("a fully connected body should not split, got %d fragments", len(frags))
	}
}

func TestSplitSeparatesDisconnectedCells(t *testing.T) {
	b := New(1, 3, 1)
	b.SetPixel(0, 0, pixel.Pixel{Material: 1})
	b.SetPixel(2, 0, pixel.Pixel{Material: 1}) // gap at x=1: two components

	frags := Split(b)
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	for _, f := range frags {
		if f.Body.SolidCount() != 1 {
			t.Errorf("expected each fragment to carry exactly 1 cell, got %d", f.Body.SolidCount())
		}
	}
}

func TestSubmersionThresholdCrossing(t *testing.T) {
	cfg := DefaultSubmersionConfig()
	written := []coord.WorldPos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	displaced := []coord.WorldPos{{X: 0, Y: 0}} // 1/4 == threshold

	state := SampleSubmersion(cfg, SubmersionState{}, written, displaced)
	if !state.IsSubmerged {
		t.Errorf("1/4 submerged fraction should meet the default 0.25 threshold")
	}
	if !state.JustSubmerged() {
		t.Errorf("expected JustSubmerged on the first submerged sample")
	}

	resurfaced := SampleSubmersion(cfg, state, written, nil)
	if resurfaced.IsSubmerged {
		t.Errorf("0 displaced liquid should not count as submerged")
	}
	if !resurfaced.JustSurfaced() {
		t.Errorf("expected JustSurfaced when the fraction drops back to 0")
	}
}

func TestBuoyancyForceZeroWhenNotSubmerged(t *testing.T) {
	fx, fy := BuoyancyForce(SubmersionState{}, 10, 9.8, 1000)
	if fx != 0 || fy != 0 {
		t.Errorf("expected no buoyancy force for a dry body")
	}
}
