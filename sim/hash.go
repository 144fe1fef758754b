// Package sim implements the cellular-automaton tick: the deterministic
// hash function and the per-pixel swap rules for powder, liquid, solid and
// gas materials.
package sim

// Channel distinguishes independent randomness streams drawn from the same
// hash function, so two streams never alias each other's bit pattern.
type Channel uint32

const (
	ChannelAirResistance Channel = iota
	ChannelAirDrift
	ChannelDirectionFlip
	ChannelBurnAsh
	ChannelBurnSpread
	ChannelHeatIgnite
	ChannelBurnColor
)

// Hash returns a deterministic, uniformly-distributed 64-bit value for
// (seed, channel, tick, x, y). It is a splitmix64-style avalanche over the
// five inputs folded together; any single-bit change to an input flips
// roughly half the output bits.
func Hash(seed uint64, channel Channel, tick uint64, x, y int32) uint64 {
	h := seed
	h = mix(h ^ uint64(channel)*0x9E3779B97F4A7C15)
	h = mix(h ^ tick*0xBF58476D1CE4E5B9)
	h = mix(h ^ uint64(uint32(x))*0x94D049BB133111EB)
	h = mix(h ^ uint64(uint32(y))*0xD6E8FEB86659FD93)
	return h
}

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// RollSkip reports whether a 1/n per-tick probability fires for the given
// hash draw. n == 0 means the probability is disabled (never fires).
func RollSkip(h uint64, n uint8) bool {
	if n == 0 {
		return false
	}
	return h%uint64(n) == 0
}

// FlipSign turns one hash draw into a {-1, +1} direction.
func FlipSign(h uint64) int32 {
	if h%2 == 0 {
		return -1
	}
	return 1
}
