package seed

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// NoiseSeeder is the procedural seeder: a fractal Brownian motion field
// over OpenSimplex noise decides, per pixel, whether the chunk is solid or
// void at that world position; a two-pass distance transform then feathers
// the solid/void boundary into a colour-index band so the contour system
// has a few pixels of gradient to work with instead of a hard edge.
type NoiseSeeder struct {
	noise opensimplex.Noise

	// Scale is the base sampling frequency; smaller values produce larger
	// terrain features.
	Scale float64
	// Octaves, Lacunarity, Gain control the FBM summation: how many noise
	// layers are summed, how much each layer's frequency multiplies by, and
	// how much its amplitude shrinks.
	Octaves    int
	Lacunarity float64
	Gain       float64
	// Threshold is the FBM value (roughly -1..1) above which a cell is
	// solid.
	Threshold float64
	// FeatherBand is the distance, in pixels, over which the colour index
	// ramps from the solid/void boundary to full intensity.
	FeatherBand float32

	// SolidMaterial is the material id assigned to every solid pixel this
	// seeder produces.
	SolidMaterial pixel.MaterialID
}

// NewNoiseSeeder returns a noise seeder with reasonable terrain defaults,
// seeded from worldSeed.
func NewNoiseSeeder(worldSeed int64, solidMaterial pixel.MaterialID) *NoiseSeeder {
	return &NoiseSeeder{
		noise:         opensimplex.New(worldSeed),
		Scale:         1.0 / 96.0,
		Octaves:       4,
		Lacunarity:    2.0,
		Gain:          0.5,
		Threshold:     0.0,
		FeatherBand:   32,
		SolidMaterial: solidMaterial,
	}
}

// Seed implements Seeder.
func (s *NoiseSeeder) Seed(pos coord.ChunkPos, ch *chunk.Chunk) {
	edge := ch.Edge
	baseX := float64(pos.X) * float64(edge)
	baseY := float64(pos.Y) * float64(edge)

	mask := make([]uint8, edge*edge)
	for ly := int32(0); ly < edge; ly++ {
		wy := baseY + float64(ly)
		for lx := int32(0); lx < edge; lx++ {
			wx := baseX + float64(lx)
			v := s.fbm(wx, wy)
			i := ly*edge + lx
			if v >= s.Threshold {
				mask[i] = 1
			}
		}
	}

	dist := DistanceField(mask, edge, edge)

	for ly := int32(0); ly < edge; ly++ {
		for lx := int32(0); lx < edge; lx++ {
			i := ly*edge + lx
			if mask[i] == 0 {
				ch.Surface.Set(lx, ly, pixel.Pixel{})
				continue
			}
			band := dist[i] / s.FeatherBand
			if band > 1 {
				band = 1
			}
			color := uint8(band * 255)
			ch.Surface.Set(lx, ly, pixel.Pixel{
				Material:   s.SolidMaterial,
				ColorIndex: color,
				Flags:      pixel.FlagSolid,
			})
		}
	}
}

// fbm sums Octaves layers of 2D OpenSimplex noise at world position (x, y),
// returning a value in roughly [-1, 1].
func (s *NoiseSeeder) fbm(x, y float64) float64 {
	sum := 0.0
	amp := 1.0
	freq := s.Scale
	norm := 0.0

	for o := 0; o < s.Octaves; o++ {
		sum += amp * s.noise.Eval2(x*freq, y*freq)
		norm += amp
		freq *= s.Lacunarity
		amp *= s.Gain
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
