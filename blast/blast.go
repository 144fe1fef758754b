// Package blast implements the radial ray-cast primitive used to carve
// craters, propagate explosions, and inject heat pulses into the canvas.
// It owns no state of its own: Run steps a fixed number of rays outward
// from a centre point, letting the caller's callback decide what happens
// to each pixel it crosses.
package blast

import (
	"math"

	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// Decision is what a ray does when it hits a non-void pixel.
type Decision int

const (
	// Skip ignores this pixel; the ray continues without spending energy.
	Skip Decision = iota
	// StopRay terminates this ray immediately.
	StopRay
	// HitPixel replaces the pixel and spends Cost energy; the ray
	// terminates once its remaining energy reaches zero.
	HitPixel
)

// Outcome is a callback's verdict for one hit pixel.
type Outcome struct {
	Decision    Decision
	Replacement pixel.Pixel
	Cost        float32
}

// Callback decides what happens when a ray reaches a non-void pixel.
type Callback func(px pixel.Pixel, pos coord.WorldPos) Outcome

// Params configures one blast.
type Params struct {
	CenterX, CenterY float32
	// Strength is each ray's starting energy budget.
	Strength float32
	// MaxRadius bounds how far a ray travels, in world pixels.
	MaxRadius float32
	// HeatRadius is the radius of the post-blast heat injection disk.
	HeatRadius float32
}

// Run casts ceil(2*pi*MaxRadius) rays outward from the blast centre, one
// world pixel per integer step, invoking cb for every non-void pixel a
// ray crosses. After all rays complete, it wakes a ring of pixels at and
// just outside MaxRadius (so material exposed by the crater starts
// falling/flowing next tick) and injects heat over a disk of HeatRadius
// with a spherical falloff.
func Run(c *canvas.Canvas, p Params, dirty *canvas.DirtySet, cb Callback) {
	castRays(c, p, dirty, cb)
	wakeBoundaryRing(c, p, dirty)
	injectHeat(c, p)
}

func castRays(c *canvas.Canvas, p Params, dirty *canvas.DirtySet, cb Callback) {
	numRays := int(math.Ceil(2 * math.Pi * float64(p.MaxRadius)))
	maxStep := int(p.MaxRadius)

	for rayIdx := 0; rayIdx < numRays; rayIdx++ {
		angle := 2 * math.Pi * float64(rayIdx) / float64(numRays)
		dirX, dirY := math.Cos(angle), math.Sin(angle)
		remaining := p.Strength

		for step := 0; step <= maxStep; step++ {
			wx := int32(math.Round(float64(p.CenterX) + dirX*float64(step)))
			wy := int32(math.Round(float64(p.CenterY) + dirY*float64(step)))
			pos := coord.WorldPos{X: wx, Y: wy}

			px, ok := c.GetPixelValue(pos)
			if !ok {
				break // ray left loaded terrain
			}
			if px.IsVoid() {
				continue
			}

			outcome := cb(px, pos)
			switch outcome.Decision {
			case Skip:
				continue
			case StopRay:
				step = maxStep + 1 // break outer loop via condition below
			case HitPixel:
				remaining -= outcome.Cost
				c.SetPixelValue(pos, outcome.Replacement)
				canvas.PropagateBoundary(c, pos, c.TileEdgeAt(pos), dirty)
				if remaining <= 0 {
					step = maxStep + 1
				}
			}
		}
	}
}

// wakeBoundaryRing marks a thin ring at MaxRadius +/-1 simulation-dirty so
// material left overhanging the new crater edge is re-examined.
func wakeBoundaryRing(c *canvas.Canvas, p Params, dirty *canvas.DirtySet) {
	radius := float64(p.MaxRadius)
	numRays := int(math.Ceil(2 * math.Pi * (radius + 2)))
	if numRays == 0 {
		return
	}

	for rayIdx := 0; rayIdx < numRays; rayIdx++ {
		angle := 2 * math.Pi * float64(rayIdx) / float64(numRays)
		for _, dr := range [3]float64{-1, 0, 1} {
			step := radius + float64(dr)
			if step < 0 {
				step = 0
			}
			wx := int32(math.Round(float64(p.CenterX) + math.Cos(angle)*step))
			wy := int32(math.Round(float64(p.CenterY) + math.Sin(angle)*step))
			pos := coord.WorldPos{X: wx, Y: wy}
			canvas.PropagateBoundary(c, pos, c.TileEdgeAt(pos), dirty)
		}
	}
}

// injectHeat applies a spherical heat falloff over a disk of HeatRadius
// centred on the blast: heat = (1 - dist/HeatRadius) * 255.
func injectHeat(c *canvas.Canvas, p Params) {
	hr := p.HeatRadius
	if hr <= 0 {
		return
	}
	hrSq := hr * hr
	r := int32(hr)

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			distSq := float32(dx*dx + dy*dy)
			if distSq > hrSq {
				continue
			}
			t := float32(math.Sqrt(float64(distSq / hrSq)))
			heat := uint8((1 - t) * 255)
			if heat == 0 {
				continue
			}
			pos := coord.WorldPos{
				X: int32(p.CenterX) + dx,
				Y: int32(p.CenterY) + dy,
			}
			c.SetHeatAt(pos, heat)
		}
	}
}
