package seed

import "testing"

func TestDistanceFieldVoidCellsAreZero(t *testing.T) {
	mask := []uint8{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}
	dist := DistanceField(mask, 3, 3)
	for i, v := range mask {
		if v == 0 && dist[i] != 0 {
			t.Errorf("void cell %d: dist = %v, want 0", i, dist[i])
		}
	}
}

func TestDistanceFieldIncreasesAwayFromBoundary(t *testing.T) {
	w, h := int32(9), int32(9)
	mask := make([]uint8, w*h)
	for i := range mask {
		mask[i] = 1
	}
	// Punch a single void cell at the corner so every solid cell has a
	// finite distance to it.
	mask[0] = 0

	dist := DistanceField(mask, w, h)
	center := dist[4*w+4]
	edge := dist[0*w+1]
	if !(center > edge) {
		t.Errorf("distance at center (%v) should exceed distance near the void (%v)", center, edge)
	}
}

func TestDistanceFieldAdjacentToVoidIsOne(t *testing.T) {
	mask := []uint8{
		0, 1,
		1, 1,
	}
	dist := DistanceField(mask, 2, 2)
	if dist[1] != 1 {
		t.Errorf("cell orthogonally adjacent to void: dist = %v, want 1", dist[1])
	}
}
