// Package stream implements the streaming window: the viewport-centred
// chunk set, its delta computation as the centre moves, and the events that
// drive async seeding/loading and pixel-body (re)hydration.
package stream

import (
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pool"
)

// Delta is the result of moving the streaming window's centre: the set of
// chunk positions that left the window and the set that entered it.
// Iteration order within Leaving/Entering is unspecified and must not be
// relied upon by consumers.
type Delta struct {
	Leaving  []coord.ChunkPos
	Entering []coord.ChunkPos
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool { return len(d.Leaving) == 0 && len(d.Entering) == 0 }

// SaveRequest is a snapshot queued for persistence when a modified-but-not-
// yet-persisted chunk leaves the window.
type SaveRequest struct {
	Pos       coord.ChunkPos
	RawPixels []byte // 4 bytes per pixel, row-major, length Edge^2*4
}

// SeededChunks is emitted when a slot finishes transitioning Seeding ->
// Active, so a body-load step can queue any bodies whose footprint
// intersects the newly seeded chunk.
type SeededChunks struct {
	Pos coord.ChunkPos
}

// Window tracks a rectangular visible set of chunks centred on a moving
// position.
type Window struct {
	centre        coord.ChunkPos
	halfW, halfH  int32 // floor(width/2), floor(height/2)
	hasCentre     bool
	persistence   bool
}

// New creates a window spanning centre ± floor(width/2) by centre ±
// floor(height/2) chunks: width x height for odd sizes, one chunk more on
// an axis whose size is even. persistenceEnabled selects
// whether entering chunks transition to Loading (await a storage read) or
// directly to Seeding (no persistence backend configured).
func New(width, height int32, persistenceEnabled bool) *Window {
	return &Window{
		halfW:       width / 2,
		halfH:       height / 2,
		persistence: persistenceEnabled,
	}
}

// setFor returns the rectangular chunk-position set around centre.
func (w *Window) setFor(centre coord.ChunkPos) map[coord.ChunkPos]bool {
	out := make(map[coord.ChunkPos]bool)
	for dx := -w.halfW; dx <= w.halfW; dx++ {
		for dy := -w.halfH; dy <= w.halfH; dy++ {
			out[coord.ChunkPos{X: centre.X + dx, Y: centre.Y + dy}] = true
		}
	}
	return out
}

// Contains reports whether pos is in the window's current visible set.
func (w *Window) Contains(pos coord.ChunkPos) bool {
	if !w.hasCentre {
		return false
	}
	dx := pos.X - w.centre.X
	dy := pos.Y - w.centre.Y
	return dx >= -w.halfW && dx <= w.halfW && dy >= -w.halfH && dy <= w.halfH
}

// Centre returns the current window centre.
func (w *Window) Centre() coord.ChunkPos { return w.centre }

// UpdateCentre recomputes the visible set for a new centre position and
// applies the resulting delta to p: deactivating slots that left the
// window (queuing a save snapshot for modified-but-unpersisted chunks) and
// acquiring+activating slots for positions that entered it.
//
// Returns the delta plus any chunks that entered but could not be acquired
// (pool exhausted) — those are the caller's responsibility to retry next
// frame; per spec.md §7 PoolExhausted, this is never treated as fatal.
func (w *Window) UpdateCentre(newCentre coord.ChunkPos, p *pool.Pool) (Delta, []SaveRequest, []coord.ChunkPos) {
	if w.hasCentre && newCentre == w.centre {
		return Delta{}, nil, nil
	}

	oldSet := map[coord.ChunkPos]bool{}
	if w.hasCentre {
		oldSet = w.setFor(w.centre)
	}
	newSet := w.setFor(newCentre)

	var delta Delta
	var saves []SaveRequest
	var deferred []coord.ChunkPos

	for pos := range oldSet {
		if newSet[pos] {
			continue
		}
		delta.Leaving = append(delta.Leaving, pos)
		idx, ok := p.Deactivate(pos)
		if !ok {
			continue
		}
		slot := p.GetMut(idx)
		if slot.Modified && !slot.Persisted {
			saves = append(saves, SaveRequest{
				Pos:       pos,
				RawPixels: slot.Chunk.Surface.RawBytes(),
			})
		}
		slot.State = pool.Recycling
		slot.EntityHandle = nil
		slot.State = pool.InPool
	}

	for pos := range newSet {
		if oldSet[pos] {
			continue
		}
		delta.Entering = append(delta.Entering, pos)
		idx, err := p.Acquire()
		if err != nil {
			deferred = append(deferred, pos)
			continue
		}
		p.Activate(pos, idx)
		slot := p.GetMut(idx)
		if w.persistence {
			slot.State = pool.Loading
		} else {
			slot.State = pool.Seeding
		}
	}

	w.centre = newCentre
	w.hasCentre = true
	return delta, saves, deferred
}
