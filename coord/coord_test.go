package coord

import "testing"

func TestWorldToChunkLocalRoundTrip(t *testing.T) {
	const edge = int32(32)
	cases := []WorldPos{
		{X: 0, Y: 0},
		{X: 31, Y: 31},
		{X: 32, Y: 32},
		{X: -1, Y: -1},
		{X: -32, Y: -33},
		{X: 100, Y: -5},
	}
	for _, p := range cases {
		c, l := WorldToChunkLocal(p, edge)
		got := LocalToWorld(c, l, edge)
		if got != p {
			t.Errorf("round trip failed for %+v: chunk=%+v local=%+v got=%+v", p, c, l, got)
		}
	}
}

func TestWorldToChunkLocalNegative(t *testing.T) {
	c, l := WorldToChunkLocal(WorldPos{X: -1, Y: -1}, 32)
	if c != (ChunkPos{X: -1, Y: -1}) {
		t.Errorf("expected chunk (-1,-1), got %+v", c)
	}
	if l != (LocalPos{X: 31, Y: 31}) {
		t.Errorf("expected local (31,31), got %+v", l)
	}
}

func TestPhaseDisjointness(t *testing.T) {
	const span = 6
	for x1 := int32(-span); x1 <= span; x1++ {
		for y1 := int32(-span); y1 <= span; y1++ {
			t1 := TilePos{X: x1, Y: y1}
			p1 := PhaseFromTile(t1)
			for x2 := int32(-span); x2 <= span; x2++ {
				for y2 := int32(-span); y2 <= span; y2++ {
					t2 := TilePos{X: x2, Y: y2}
					if t1 == t2 {
						continue
					}
					if PhaseFromTile(t2) != p1 {
						continue
					}
					dx := x1 - x2
					if dx < 0 {
						dx = -dx
					}
					dy := y1 - y2
					if dy < 0 {
						dy = -dy
					}
					if dx+dy < 2 {
						t.Fatalf("same-phase tiles %+v and %+v are adjacent (phase %v)", t1, t2, p1)
					}
				}
			}
		}
	}
}

func TestRectToTileRange(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 17, MaxY: 8}
	tiles := r.ToTileRange(8)
	// x: 0..16 covers tiles 0,1,2 ; y: 0..7 covers tile 0
	want := map[TilePos]bool{
		{X: 0, Y: 0}: true, {X: 1, Y: 0}: true, {X: 2, Y: 0}: true,
	}
	if len(tiles) != len(want) {
		t.Fatalf("expected %d tiles, got %d (%v)", len(want), len(tiles), tiles)
	}
	for _, tp := range tiles {
		if !want[tp] {
			t.Errorf("unexpected tile %+v", tp)
		}
	}
}

func TestRectUnionEmptyOperand(t *testing.T) {
	var empty Rect
	r := Rect{MinX: 1, MinY: 1, MaxX: 3, MaxY: 3}
	if got := empty.Union(r); got != r {
		t.Errorf("union with empty should return other rect, got %+v", got)
	}
	if got := r.Union(empty); got != r {
		t.Errorf("union with empty should return other rect, got %+v", got)
	}
}

func TestRectExpandToInclude(t *testing.T) {
	var r Rect
	r = r.ExpandToInclude(5, 5)
	if !r.Contains(5, 5) {
		t.Errorf("expanded rect should contain (5,5): %+v", r)
	}
	r = r.ExpandToInclude(2, 8)
	if !(r.Contains(2, 8) && r.Contains(5, 5)) {
		t.Errorf("expanded rect should contain both points: %+v", r)
	}
}
