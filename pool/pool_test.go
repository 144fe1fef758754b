package pool

import (
	"errors"
	"testing"

	"github.com/pxlsim/pixelworld/coord"
)

func newTestPool(capacity int) *Pool {
	return New(capacity, 32, 8, 4)
}

func TestAcquireExhausted(t *testing.T) {
	p := newTestPool(2)
	for i := 0; i < 2; i++ {
		idx, err := p.Acquire()
		if err != nil {
			t.Fatalf("unexpected error acquiring slot %d: %v", i, err)
		}
		p.Activate(coord.ChunkPos{X: int32(i)}, idx)
		p.GetMut(idx).State = Active
	}
	if _, err := p.Acquire(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestPoolUniqueness(t *testing.T) {
	p := newTestPool(4)
	pos := coord.ChunkPos{X: 1, Y: 2}
	idx, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	p.Activate(pos, idx)
	p.GetMut(idx).State = Active

	got, ok := p.IndexOf(pos)
	if !ok || got != idx {
		t.Fatalf("expected pos to map to %d, got %d (ok=%v)", idx, got, ok)
	}

	freed, ok := p.Deactivate(pos)
	if !ok || freed != idx {
		t.Fatalf("expected deactivate to return %d, got %d", idx, freed)
	}
	if _, ok := p.IndexOf(pos); ok {
		t.Errorf("position should no longer be mapped after deactivate")
	}
}

func TestGetTwoMutAliasing(t *testing.T) {
	p := newTestPool(4)
	if _, _, err := p.GetTwoMut(2, 2); !errors.Is(err, ErrAliasing) {
		t.Fatalf("expected ErrAliasing for identical indices, got %v", err)
	}

	a, b, err := p.GetTwoMut(0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Dirty = true
	if b.Dirty {
		t.Errorf("mutating slot 0 through a should not affect slot 3 through b")
	}
}

func TestCollectSeededOnlyActive(t *testing.T) {
	p := newTestPool(3)
	for i, state := range []Lifecycle{Active, Loading, Active} {
		idx := SlotIndex(i)
		pos := coord.ChunkPos{X: int32(i)}
		p.Activate(pos, idx)
		p.GetMut(idx).State = state
	}

	seeded := p.CollectSeeded()
	if len(seeded) != 2 {
		t.Fatalf("expected 2 active chunks, got %d", len(seeded))
	}
	if _, ok := seeded[coord.ChunkPos{X: 1}]; ok {
		t.Errorf("Loading slot should not appear in CollectSeeded")
	}
}
