// Package body implements pixel bodies: rigid bodies whose visual and
// physical footprint is a grid of individual pixels that participate in
// the cellular automaton. Each tick a body is blitted into the canvas
// (displacing any fluid it overlaps), simulated as ordinary terrain, read
// back for CA-caused destruction, then cleared before the next physics
// step moves it.
package body

import (
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// Transform is a body's rigid-motion pose in world space. Angle is in
// radians, measured the same way as the CA's Y+-up convention.
type Transform struct {
	X, Y  float32
	Angle float32
}

// Body is a physics object composed of pixels. The surface holds
// object-local pixel data; a local cell counts as part of the body's shape
// whenever it is non-void, so no separate shape mask is kept (that can't
// distinguish "body pixel currently void because it burned away" from
// "never part of the body", but both act identically for blit/collision
// purposes).
type Body struct {
	StableID uint64
	Surface  *pixel.Surface
	Width    int32
	Height   int32
	// OriginX, OriginY offset entity-origin-relative local coordinates so
	// (0,0) in the surface sits at (-Width/2, -Height/2) of the transform.
	OriginX, OriginY int32

	// Written holds the world positions this body occupied as of its last
	// Blit call, so Clear and erasure detection know exactly where to look
	// without recomputing the AABB under a possibly-stale transform.
	Written []coord.WorldPos
}

// New allocates an empty pixel body of the given local dimensions, origin
// centred on the entity transform. The backing surface is square
// (side = max(width, height)); only the [0,width)x[0,height) sub-rectangle
// is meaningful.
func New(id uint64, width, height int32) *Body {
	side := width
	if height > side {
		side = height
	}
	return &Body{
		StableID: id,
		Surface:  pixel.NewSurface(side),
		Width:    width,
		Height:   height,
		OriginX:  -width / 2,
		OriginY:  -height / 2,
	}
}

// IsSolid reports whether local cell (lx, ly) belongs to the body.
func (b *Body) IsSolid(lx, ly int32) bool {
	if lx < 0 || ly < 0 || lx >= b.Width || ly >= b.Height {
		return false
	}
	return !b.Surface.Get(lx, ly).IsVoid()
}

// SetSolid clears a local cell out of the body without touching pixels
// outside its bounds; used by destruction readback.
func (b *Body) SetSolid(lx, ly int32, solid bool) {
	if lx < 0 || ly < 0 || lx >= b.Width || ly >= b.Height {
		return
	}
	if !solid {
		b.Surface.Set(lx, ly, pixel.Pixel{})
	}
}

// SetPixel writes a local cell's pixel.
func (b *Body) SetPixel(lx, ly int32, p pixel.Pixel) {
	if lx < 0 || ly < 0 || lx >= b.Width || ly >= b.Height {
		return
	}
	b.Surface.Set(lx, ly, p)
}

// GetPixel reads a local cell's pixel.
func (b *Body) GetPixel(lx, ly int32) pixel.Pixel {
	return b.Surface.Get(lx, ly)
}

// SolidCount returns how many local cells currently belong to the body.
func (b *Body) SolidCount() int {
	n := 0
	for y := int32(0); y < b.Height; y++ {
		for x := int32(0); x < b.Width; x++ {
			if b.IsSolid(x, y) {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether the body has no solid cells left (a fully
// destroyed body should be despawned by the caller).
func (b *Body) IsEmpty() bool { return b.SolidCount() == 0 }
