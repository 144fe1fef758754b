package body

import (
	"github.com/pxlsim/pixelworld/coord"
)

// SubmersionConfig holds the threshold at which a body is considered
// submerged, as opposed to merely touching liquid at its edges.
type SubmersionConfig struct {
	// Threshold is the fraction of a body's solid cells that must have been
	// displacing liquid for it to count as submerged. Default 0.25.
	Threshold float32
}

// DefaultSubmersionConfig matches the reference engine's default.
func DefaultSubmersionConfig() SubmersionConfig { return SubmersionConfig{Threshold: 0.25} }

// SubmersionState tracks a body's liquid-contact fraction and the
// submerged/surfaced edge transitions derived from it.
type SubmersionState struct {
	IsSubmerged       bool
	SubmergedFraction float32
	// SubmergedCenterX, SubmergedCenterY is the world-space centroid of the
	// displaced-liquid sample points, used as the buoyancy force's
	// application point.
	SubmergedCenterX, SubmergedCenterY float32
	DebugLiquidSamples                 uint32
	DebugTotalSamples                  uint32

	previousSubmerged bool
}

// JustSubmerged reports whether this is the first sample where the body
// crossed into submerged.
func (s SubmersionState) JustSubmerged() bool { return s.IsSubmerged && !s.previousSubmerged }

// JustSurfaced reports whether this is the first sample where the body
// crossed back out of submerged.
func (s SubmersionState) JustSurfaced() bool { return !s.IsSubmerged && s.previousSubmerged }

// SampleSubmersion derives submersion state from the fluid a body
// displaced during its most recent Blit. displacedLiquid should be the
// subset of written positions where Blit found and displaced a Liquid
// pixel (the caller tracks this alongside the written-position slice).
func SampleSubmersion(cfg SubmersionConfig, prev SubmersionState, written []coord.WorldPos, displacedLiquid []coord.WorldPos) SubmersionState {
	total := uint32(len(written))
	liquid := uint32(len(displacedLiquid))

	var fraction float32
	if total > 0 {
		fraction = float32(liquid) / float32(total)
	}

	var cx, cy float32
	if liquid > 0 {
		var sx, sy int64
		for _, p := range displacedLiquid {
			sx += int64(p.X)
			sy += int64(p.Y)
		}
		cx = float32(sx) / float32(liquid)
		cy = float32(sy) / float32(liquid)
	}

	return SubmersionState{
		IsSubmerged:         fraction >= cfg.Threshold,
		SubmergedFraction:   fraction,
		SubmergedCenterX:    cx,
		SubmergedCenterY:    cy,
		DebugLiquidSamples:  liquid,
		DebugTotalSamples:   total,
		previousSubmerged:   prev.IsSubmerged,
	}
}

// BuoyancyForce returns the upward (Y+) force a submerged body
// experiences, proportional to its submerged fraction and the displaced
// liquid's density relative to gravity. massKg is the body's total mass;
// gravity is a positive magnitude (e.g. 9.8).
func BuoyancyForce(state SubmersionState, massKg, gravity, liquidDensity float32) (fx, fy float32) {
	if state.SubmergedFraction <= 0 {
		return 0, 0
	}
	return 0, state.SubmergedFraction * liquidDensity * gravity * massKg / 1000
}
