package world

import (
	"testing"

	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/world/components"
)

func TestDispatchCollisionMeshWorkCachesNominatedTiles(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnCollisionQueryPoint(components.Transform{}, 1)

	w.dispatchCollisionMeshWork()

	tile := coord.TilePos{X: 0, Y: 0}
	if !w.contours.Contains(tile) {
		t.Fatalf("expected the query point's own tile to have a cached mesh")
	}
	if _, ok := w.CollisionMesh(tile); !ok {
		t.Fatalf("CollisionMesh should return the cached mesh")
	}
}

func TestDispatchCollisionMeshWorkSkipsAlreadyCachedTiles(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnCollisionQueryPoint(components.Transform{}, 0)

	w.dispatchCollisionMeshWork()
	first, ok := w.CollisionMesh(coord.TilePos{X: 0, Y: 0})
	if !ok {
		t.Fatalf("expected the first dispatch to cache a mesh")
	}
	w.SetPixel(coord.WorldPos{X: 0, Y: 0}, pixel.Pixel{Material: testRock}, nil)
	w.dispatchCollisionMeshWork()

	// The mesh generated on the first call is never refreshed merely by
	// calling dispatchCollisionMeshWork again; that requires Invalidate.
	got, ok := w.CollisionMesh(coord.TilePos{X: 0, Y: 0})
	if !ok {
		t.Fatalf("expected a cached mesh to still be present")
	}
	if got.Generation != first.Generation {
		t.Errorf("mesh was regenerated: generation %d, want %d", got.Generation, first.Generation)
	}
}

func TestDispatchCollisionMeshWorkSkipsUnloadedChunks(t *testing.T) {
	w := newTestWorld(t)
	far := components.Transform{X: 1_000_000, Y: 1_000_000}
	w.SpawnCollisionQueryPoint(far, 0)

	w.dispatchCollisionMeshWork()

	farTile := coord.WorldToTile(coord.WorldPos{X: 1_000_000, Y: 1_000_000}, w.cfg.TileEdge)
	if w.contours.Contains(farTile) {
		t.Fatalf("should not have generated a mesh for a tile in an unloaded chunk")
	}
}
