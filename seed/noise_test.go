package seed

import (
	"testing"

	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

func TestNoiseSeederIsDeterministicForAFixedSeed(t *testing.T) {
	const stone = pixel.MaterialID(1)
	pos := coord.ChunkPos{X: 2, Y: -1}

	a := chunk.New(32, 8, 4)
	b := chunk.New(32, 8, 4)

	NewNoiseSeeder(42, stone).Seed(pos, a)
	NewNoiseSeeder(42, stone).Seed(pos, b)

	for y := int32(0); y < 32; y++ {
		for x := int32(0); x < 32; x++ {
			if a.Surface.Get(x, y) != b.Surface.Get(x, y) {
				t.Fatalf("pixel (%d,%d) differs between two seeders built from the same world seed", x, y)
			}
		}
	}
}

func TestNoiseSeederProducesBothSolidAndVoidPixels(t *testing.T) {
	const stone = pixel.MaterialID(1)
	ch := chunk.New(64, 8, 4)
	NewNoiseSeeder(7, stone).Seed(coord.ChunkPos{}, ch)

	var sawSolid, sawVoid bool
	for y := int32(0); y < 64; y++ {
		for x := int32(0); x < 64; x++ {
			p := ch.Surface.Get(x, y)
			if p.IsVoid() {
				sawVoid = true
			} else {
				sawSolid = true
				if p.Material != stone {
					t.Errorf("solid pixel (%d,%d) has material %v, want %v", x, y, p.Material, stone)
				}
				if !p.Flags.Has(pixel.FlagSolid) {
					t.Errorf("solid pixel (%d,%d) missing FlagSolid", x, y)
				}
			}
		}
	}
	if !sawSolid || !sawVoid {
		t.Fatalf("expected a mix of solid and void pixels, sawSolid=%v sawVoid=%v", sawSolid, sawVoid)
	}
}

func TestNoiseSeederDifferentChunksDifferentTerrain(t *testing.T) {
	const stone = pixel.MaterialID(1)
	a := chunk.New(32, 8, 4)
	b := chunk.New(32, 8, 4)

	seeder := NewNoiseSeeder(11, stone)
	seeder.Seed(coord.ChunkPos{X: 0, Y: 0}, a)
	seeder.Seed(coord.ChunkPos{X: 50, Y: 50}, b)

	same := true
	for y := int32(0); y < 32 && same; y++ {
		for x := int32(0); x < 32; x++ {
			if a.Surface.Get(x, y) != b.Surface.Get(x, y) {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatalf("chunks at very different world positions produced identical terrain")
	}
}
