package world

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
)

func TestDrainSubmergedClearsQueue(t *testing.T) {
	w := newTestWorld(t)
	w.events.submerged = []SubmergedEvent{{Entity: ecs.Entity{}, Fraction: 0.75}}

	got := w.DrainSubmerged()
	if len(got) != 1 || got[0].Fraction != 0.75 {
		t.Fatalf("DrainSubmerged = %+v, want one event with Fraction 0.75", got)
	}
	if len(w.DrainSubmerged()) != 0 {
		t.Fatalf("second DrainSubmerged call should return no events")
	}
}

func TestDrainSurfacedClearsQueue(t *testing.T) {
	w := newTestWorld(t)
	w.events.surfaced = []SurfacedEvent{{Entity: ecs.Entity{}}}

	got := w.DrainSurfaced()
	if len(got) != 1 {
		t.Fatalf("DrainSurfaced = %+v, want one event", got)
	}
	if len(w.DrainSurfaced()) != 0 {
		t.Fatalf("second DrainSurfaced call should return no events")
	}
}
