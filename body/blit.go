package body

import (
	"math"

	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// WorldAABB returns the axis-aligned bounding box, in world pixel
// coordinates, of a body's four local corners under transform t.
func WorldAABB(b *Body, t Transform) coord.Rect {
	corners := [4][2]float32{
		{float32(b.OriginX), float32(b.OriginY)},
		{float32(b.OriginX + b.Width), float32(b.OriginY)},
		{float32(b.OriginX), float32(b.OriginY + b.Height)},
		{float32(b.OriginX + b.Width), float32(b.OriginY + b.Height)},
	}
	sin, cos := sincos(t.Angle)

	var r coord.Rect
	for _, c := range corners {
		wx := t.X + c[0]*cos - c[1]*sin
		wy := t.Y + c[0]*sin + c[1]*cos
		r = r.ExpandToInclude(int32(math.Floor(float64(wx))), int32(math.Floor(float64(wy))))
	}
	return r
}

func sincos(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}

// inverseTransform maps a world point back to the body's local space.
func inverseTransform(t Transform, wx, wy float32) (float32, float32) {
	dx, dy := wx-t.X, wy-t.Y
	sin, cos := sincos(-t.Angle)
	return dx*cos - dy*sin, dx*sin + dy*cos
}

// BlitResult is what a body occupied and displaced during one Blit call.
type BlitResult struct {
	// Written is every world position the body now occupies.
	Written []coord.WorldPos
	// DisplacedLiquid is the subset of Written where a Liquid pixel was
	// found under the body (whether or not a void slot was left to move it
	// into) -- feed this to SampleSubmersion.
	DisplacedLiquid []coord.WorldPos
}

// Blit writes a body's solid pixels into the canvas at transform t. Where a
// target cell already holds a fluid (Liquid or Gas), the fluid is
// displaced into a free slot from voids (positions cleared earlier this
// tick by Clear, typically this same body's previous footprint); when no
// usable slot is left the fluid is overwritten by the body pixel;
// non-fluid materials are left untouched underneath the body (the spec
// doesn't define crushing). dirty may be nil if the caller doesn't need
// the touched-chunk set (e.g. a one-off test blit).
func Blit(c *canvas.Canvas, reg *pixel.Registry, b *Body, t Transform, voids *[]coord.WorldPos, dirty *canvas.DirtySet) BlitResult {
	aabb := WorldAABB(b, t)
	result := BlitResult{Written: make([]coord.WorldPos, 0, (aabb.MaxX-aabb.MinX)*(aabb.MaxY-aabb.MinY))}

	for wy := aabb.MinY; wy < aabb.MaxY; wy++ {
		for wx := aabb.MinX; wx < aabb.MaxX; wx++ {
			lxf, lyf := inverseTransform(t, float32(wx)+0.5, float32(wy)+0.5)
			lx := int32(math.Floor(float64(lxf))) - b.OriginX
			ly := int32(math.Floor(float64(lyf))) - b.OriginY
			if !b.IsSolid(lx, ly) {
				continue
			}

			px := b.GetPixel(lx, ly)
			pos := coord.WorldPos{X: wx, Y: wy}

			if existing, ok := getPixel(c, pos); ok && !existing.IsVoid() && !existing.Flags.Has(pixel.FlagPixelBody) {
				if mat, ok := reg.Get(existing.Material); ok && (mat.Physics == pixel.Liquid || mat.Physics == pixel.Gas) {
					if mat.Physics == pixel.Liquid {
						result.DisplacedLiquid = append(result.DisplacedLiquid, pos)
					}
					displace(c, existing, voids, dirty)
				}
			}

			px.Flags = px.Flags.Set(pixel.FlagPixelBody)
			setPixel(c, pos, px)
			result.Written = append(result.Written, pos)
		}
	}
	return result
}

// displace swaps a fluid pixel into the first available void slot that
// isn't itself occupied by another body's pixel, consuming that slot and
// marking it simulation-dirty so the CA re-examines it next tick.
func displace(c *canvas.Canvas, fluid pixel.Pixel, voids *[]coord.WorldPos, dirty *canvas.DirtySet) {
	for len(*voids) > 0 {
		n := len(*voids) - 1
		slot := (*voids)[n]
		*voids = (*voids)[:n]

		if existing, ok := getPixel(c, slot); ok && existing.Flags.Has(pixel.FlagPixelBody) {
			continue
		}
		setPixel(c, slot, fluid)
		if dirty != nil {
			canvas.PropagateBoundary(c, slot, tileEdgeAt(c, slot), dirty)
		}
		return
	}
}

func tileEdgeAt(c *canvas.Canvas, p coord.WorldPos) int32 {
	return c.TileEdgeAt(p)
}

// Clear removes a body's pixels (written by a previous Blit call) from the
// canvas, voiding only cells that still carry FlagPixelBody -- a cell the
// CA or an external edit has since overwritten is left alone. The cleared
// positions are appended to voids for the next Blit's displacement pool.
func Clear(c *canvas.Canvas, written []coord.WorldPos, voids *[]coord.WorldPos) {
	for _, pos := range written {
		existing, ok := getPixel(c, pos)
		if !ok || !existing.Flags.Has(pixel.FlagPixelBody) {
			continue
		}
		setPixel(c, pos, pixel.Pixel{})
		*voids = append(*voids, pos)
	}
}

// DetectDestroyed scans a body's last-written positions and returns the
// ones that no longer hold a body pixel -- either voided or overwritten by
// something else -- which indicates brush erasure or CA destruction
// (burning to ash, dissolving, etc.).
func DetectDestroyed(c *canvas.Canvas, written []coord.WorldPos) []coord.WorldPos {
	var out []coord.WorldPos
	for _, pos := range written {
		existing, ok := getPixel(c, pos)
		if !ok || existing.IsVoid() || !existing.Flags.Has(pixel.FlagPixelBody) {
			out = append(out, pos)
		}
	}
	return out
}

// ApplyDestroyed clears the corresponding local cells of a body given a set
// of destroyed world positions observed under transform t (the transform
// that was active when those positions were written).
func ApplyDestroyed(b *Body, t Transform, destroyed []coord.WorldPos) {
	for _, pos := range destroyed {
		lxf, lyf := inverseTransform(t, float32(pos.X)+0.5, float32(pos.Y)+0.5)
		lx := int32(math.Floor(float64(lxf))) - b.OriginX
		ly := int32(math.Floor(float64(lyf))) - b.OriginY
		b.SetSolid(lx, ly, false)
	}
}

func getPixel(c *canvas.Canvas, p coord.WorldPos) (pixel.Pixel, bool) {
	return c.GetPixelValue(p)
}

func setPixel(c *canvas.Canvas, p coord.WorldPos, px pixel.Pixel) {
	c.SetPixelValue(p, px)
}
