package world

import (
	"testing"

	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/world/components"
)

func solidSquareSource(size int32, material pixel.MaterialID) BodySource {
	return func(lx, ly int32) (pixel.Pixel, bool) {
		if lx < 0 || ly < 0 || lx >= size || ly >= size {
			return pixel.Pixel{}, false
		}
		return pixel.Pixel{Material: material}, true
	}
}

func TestSpawnPixelBodyStaysUnspawnedUntilCollisionTilesAreCached(t *testing.T) {
	w := newTestWorld(t)
	entity := w.SpawnPixelBody(2, 2, solidSquareSource(2, testRock), testRock, components.Transform{})

	query := w.bodyFilter.Query()
	found := false
	for query.Next() {
		if query.Entity() != entity {
			continue
		}
		found = true
		_, pb := query.Get()
		if pb.Spawned {
			t.Fatalf("a freshly spawned body should not be Spawned before its tiles are cached")
		}
	}
	if !found {
		t.Fatalf("spawned entity not found in bodyFilter query")
	}
}

func TestPollPendingBodiesSpawnsOnceTilesAreCached(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPixelBody(2, 2, solidSquareSource(2, testRock), testRock, components.Transform{})

	// Nominate and generate collision meshes for every tile around the
	// origin so the body's RequiredTiles are all satisfied.
	w.SpawnCollisionQueryPoint(components.Transform{}, 2)
	w.dispatchCollisionMeshWork()
	w.pollPendingBodies()

	query := w.bodyFilter.Query()
	for query.Next() {
		_, pb := query.Get()
		if !pb.Spawned {
			t.Fatalf("body should be Spawned once its required tiles are cached")
		}
	}
}

func TestPreCATickBodiesBlitsOnceSpawned(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPixelBody(2, 2, solidSquareSource(2, testRock), testRock, components.Transform{})
	w.SpawnCollisionQueryPoint(components.Transform{}, 2)
	w.dispatchCollisionMeshWork()
	w.pollPendingBodies()

	w.Tick(func(err error) { t.Fatalf("unexpected persistence error: %v", err) })

	query := w.bodyFilter.Query()
	for query.Next() {
		_, pb := query.Get()
		if len(pb.Body.Written) == 0 {
			t.Fatalf("expected the spawned body to have blitted pixels after one Tick")
		}
	}
}
