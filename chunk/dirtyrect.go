package chunk

import "github.com/pxlsim/pixelworld/coord"

// cooldownFrames is how many ticks a tile keeps simulating after its last
// expand() call before it is allowed to sleep. Two frames gives a single
// oscillating edge pixel time to settle before the tile goes quiet.
const cooldownFrames = 2

// TileDirtyRect is the two-phase, cooldown-gated simulation-dirty tracker
// for a single tile. See spec §3 "Tile dirty rect".
type TileDirtyRect struct {
	next     coord.Rect
	current  coord.Rect
	cooldown uint8
}

// Expand records that (x, y) participated in this frame's simulation and
// resets the cooldown to its maximum.
func (d *TileDirtyRect) Expand(x, y int32) {
	d.next = d.next.ExpandToInclude(x, y)
	d.cooldown = cooldownFrames
}

// Tick advances the state machine by one frame:
//   - current absorbs next (expand-only union)
//   - if next was empty this frame, cooldown decrements
//   - next is cleared
//   - if cooldown has reached 0, current is cleared (the tile goes to sleep)
//
// Idempotent when called repeatedly on an already-slept tile
// (cooldown == 0, next empty): current stays empty, cooldown stays 0.
func (d *TileDirtyRect) Tick() {
	hadActivity := !d.next.Empty()
	d.current = d.current.Union(d.next)
	d.next = coord.Rect{}
	if !hadActivity && d.cooldown > 0 {
		d.cooldown--
	}
	if d.cooldown == 0 {
		d.current = coord.Rect{}
	}
}

// Bounds returns the rect to simulate this frame, or (_, false) if the tile
// is asleep.
func (d *TileDirtyRect) Bounds() (coord.Rect, bool) {
	if d.cooldown == 0 {
		return coord.Rect{}, false
	}
	return d.current, true
}

// Asleep reports whether the tile has no pending work and no residual
// cooldown.
func (d *TileDirtyRect) Asleep() bool {
	return d.cooldown == 0 && d.next.Empty() && d.current.Empty()
}
