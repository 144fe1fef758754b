package stream

import (
	"testing"

	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pool"
)

func TestUpdateCentreFirstCallAllEntering(t *testing.T) {
	wantCount := (4/2*2 + 1) * (3/2*2 + 1)
	p := pool.New(wantCount, 32, 8, 4)
	w := New(4, 3, false)

	delta, _, deferred := w.UpdateCentre(coord.ChunkPos{}, p)
	if len(delta.Leaving) != 0 {
		t.Errorf("first centre should have no leaving chunks")
	}
	if len(delta.Entering) != wantCount {
		t.Errorf("expected %d entering chunks, got %d", wantCount, len(delta.Entering))
	}
	if len(deferred) != 0 {
		t.Errorf("pool sized exactly to the window should not defer any entering chunk: %v", deferred)
	}
}

func TestUpdateCentreSamePositionIsNoop(t *testing.T) {
	p := pool.New(16, 32, 8, 4)
	w := New(4, 3, false)
	w.UpdateCentre(coord.ChunkPos{}, p)
	delta, saves, deferred := w.UpdateCentre(coord.ChunkPos{}, p)
	if !delta.Empty() || saves != nil || deferred != nil {
		t.Errorf("re-centring on the same position must be a no-op")
	}
}

func TestUpdateCentreDeactivatesLeavingChunks(t *testing.T) {
	p := pool.New(16, 32, 8, 4)
	w := New(4, 3, false)
	w.UpdateCentre(coord.ChunkPos{}, p)
	w.UpdateCentre(coord.ChunkPos{X: 10}, p)

	// A chunk far from the new centre should no longer be mapped.
	if _, ok := p.IndexOf(coord.ChunkPos{X: -10}); ok {
		t.Errorf("chunk far outside the new window should have been deactivated")
	}
}

func TestUpdateCentrePoolExhaustionDefers(t *testing.T) {
	p := pool.New(2, 32, 8, 4)
	w := New(4, 3, false)
	_, _, deferred := w.UpdateCentre(coord.ChunkPos{}, p)
	if len(deferred) == 0 {
		t.Errorf("expected pool exhaustion to defer some entering chunks with only 2 slots")
	}
}
