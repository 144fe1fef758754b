// Package burn implements the burning-propagation and heat-diffusion
// auxiliary simulations, run at independent tick-rate-reduced schedules
// from the main physics tick.
package burn

// Rates holds the continuous, tick-rate-independent configuration burn
// probabilities are derived from.
type Rates struct {
	// SpreadPerNeighbourPerSec is how often, per second, a burning pixel
	// ignites one specific flammable cardinal neighbour.
	SpreadPerNeighbourPerSec float32
	// BurnDurationSec is the mean time a pixel spends burning before its
	// ash roll succeeds.
	BurnDurationSec float32
	// BurningHeat is the heat contribution of a single burning pixel when
	// accumulating a heat cell's source temperature.
	BurningHeat uint8
	// CoolingFactor multiplies the blended self/neighbour heat average
	// each tick (slightly below 1 so heat dissipates over time).
	CoolingFactor float32
}

// TickBudget derives how many physics ticks elapse between executions of a
// reduced-rate subsystem, given the nominal physics rate P and the
// subsystem's own rate (burning rate B or heat rate H_rate), both in Hz.
// round(P / rate), floored at 1.
func TickBudget(physicsRate, subsystemRate float32) int {
	if subsystemRate <= 0 {
		return 1
	}
	n := int(physicsRate/subsystemRate + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// SpreadChancePerTick is the derived per-tick, per-neighbour ignition
// probability at the given burning rate B (ticks/sec for the burning
// subsystem, i.e. burningRate = physicsRate / TickBudget(...)).
func (r Rates) SpreadChancePerTick(burningRate float32) float32 {
	if burningRate <= 0 {
		return 0
	}
	return r.SpreadPerNeighbourPerSec / burningRate
}

// AshChancePerTick is the derived per-tick probability that a burning pixel
// completes its ash transform this burning-subsystem tick.
func (r Rates) AshChancePerTick(burningRate float32) float32 {
	if r.BurnDurationSec <= 0 || burningRate <= 0 {
		return 1
	}
	return 1 / (r.BurnDurationSec * burningRate)
}
