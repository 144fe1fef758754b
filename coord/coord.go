// Package coord implements the world/chunk/local/tile coordinate algebra
// that every other pixelworld package builds on. Y+ is up; all rectangles
// are half-open in both axes.
package coord

// WorldPos addresses a single pixel in the infinite world.
type WorldPos struct {
	X, Y int32
}

// ChunkPos addresses a chunk in chunk-grid units.
type ChunkPos struct {
	X, Y int32
}

// LocalPos addresses a pixel within its owning chunk, 0..L-1 in each axis.
type LocalPos struct {
	X, Y int32
}

// TilePos addresses a tile in world-tile-grid units (not chunk-relative).
type TilePos struct {
	X, Y int32
}

// floorDiv is Euclidean floor division, correct for negative dividends:
// floorDiv(-1, 32) == -1, floorMod(-1, 32) == 31.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// ceilDiv rounds toward positive infinity.
func ceilDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// WorldToChunkLocal splits a world pixel position into its owning chunk and
// the pixel's local position within that chunk. L is the chunk edge length.
func WorldToChunkLocal(p WorldPos, edge int32) (ChunkPos, LocalPos) {
	cx := floorDiv(p.X, edge)
	cy := floorDiv(p.Y, edge)
	lx := floorMod(p.X, edge)
	ly := floorMod(p.Y, edge)
	return ChunkPos{X: cx, Y: cy}, LocalPos{X: lx, Y: ly}
}

// ChunkToWorldOrigin returns the world position of a chunk's bottom-left
// (minimum-coordinate) corner.
func ChunkToWorldOrigin(c ChunkPos, edge int32) WorldPos {
	return WorldPos{X: c.X * edge, Y: c.Y * edge}
}

// LocalToWorld re-combines a chunk position and local offset into a world
// position; the inverse half of WorldToChunkLocal.
func LocalToWorld(c ChunkPos, l LocalPos, edge int32) WorldPos {
	origin := ChunkToWorldOrigin(c, edge)
	return WorldPos{X: origin.X + l.X, Y: origin.Y + l.Y}
}

// WorldToTile maps a world pixel position to the tile that contains it,
// given the tile edge length.
func WorldToTile(p WorldPos, tileEdge int32) TilePos {
	return TilePos{X: floorDiv(p.X, tileEdge), Y: floorDiv(p.Y, tileEdge)}
}

// TileOrigin returns the world position of a tile's minimum corner.
func TileOrigin(t TilePos, tileEdge int32) WorldPos {
	return WorldPos{X: t.X * tileEdge, Y: t.Y * tileEdge}
}

// Rect is a half-open axis-aligned rectangle: [MinX, MaxX) x [MinY, MaxY).
type Rect struct {
	MinX, MinY, MaxX, MaxY int32
}

// Empty reports whether the rectangle contains no cells.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Contains reports whether (x, y) lies within the rectangle.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Union returns the smallest rectangle containing both r and o. An empty
// operand is ignored so Union can be used as an accumulator starting from
// the zero Rect.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	out := r
	if o.MinX < out.MinX {
		out.MinX = o.MinX
	}
	if o.MinY < out.MinY {
		out.MinY = o.MinY
	}
	if o.MaxX > out.MaxX {
		out.MaxX = o.MaxX
	}
	if o.MaxY > out.MaxY {
		out.MaxY = o.MaxY
	}
	return out
}

// Intersect returns the overlap of r and o; the result is Empty if they do
// not overlap.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		MinX: max32(r.MinX, o.MinX),
		MinY: max32(r.MinY, o.MinY),
		MaxX: min32(r.MaxX, o.MaxX),
		MaxY: min32(r.MaxY, o.MaxY),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// ExpandToInclude grows the rect (if necessary) so that (x, y) is covered.
func (r Rect) ExpandToInclude(x, y int32) Rect {
	if r.Empty() {
		return Rect{MinX: x, MinY: y, MaxX: x + 1, MaxY: y + 1}
	}
	out := r
	if x < out.MinX {
		out.MinX = x
	}
	if x+1 > out.MaxX {
		out.MaxX = x + 1
	}
	if y < out.MinY {
		out.MinY = y
	}
	if y+1 > out.MaxY {
		out.MaxY = y + 1
	}
	return out
}

// ToTileRange returns the inclusive range of TilePos that overlap r, via
// floor/ceil division of the rectangle bounds by tileEdge.
func (r Rect) ToTileRange(tileEdge int32) []TilePos {
	if r.Empty() {
		return nil
	}
	minTX := floorDiv(r.MinX, tileEdge)
	minTY := floorDiv(r.MinY, tileEdge)
	maxTX := ceilDiv(r.MaxX, tileEdge) - 1
	maxTY := ceilDiv(r.MaxY, tileEdge) - 1

	out := make([]TilePos, 0, int((maxTX-minTX+1)*(maxTY-minTY+1)))
	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			out = append(out, TilePos{X: tx, Y: ty})
		}
	}
	return out
}

// Phase is one of the four checkerboard groups tiles are classified into.
// Tiles in the same phase are never adjacent, so they can be processed in
// parallel without synchronization within a phase.
type Phase uint8

const (
	PhaseA Phase = iota // (x%2, y%2) == (0, 1)
	PhaseB              // (1, 1)
	PhaseC              // (0, 0)
	PhaseD              // (1, 0)
)

// Phases lists all four phases in the fixed execution order A, B, C, D.
var Phases = [4]Phase{PhaseA, PhaseB, PhaseC, PhaseD}

// PhaseFromTile classifies a tile by the parity of its coordinates.
func PhaseFromTile(t TilePos) Phase {
	x := floorMod(t.X, 2)
	y := floorMod(t.Y, 2)
	switch {
	case x == 0 && y == 1:
		return PhaseA
	case x == 1 && y == 1:
		return PhaseB
	case x == 0 && y == 0:
		return PhaseC
	default: // x == 1 && y == 0
		return PhaseD
	}
}

// TileToChunkAndLocalTile splits a world tile position into the chunk that
// owns it and the tile's local tile-grid coordinates within that chunk.
// tilesPerChunk is chunkEdge / tileEdge.
func TileToChunkAndLocalTile(t TilePos, tilesPerChunk int32) (ChunkPos, int32, int32) {
	cx := floorDiv(t.X, tilesPerChunk)
	cy := floorDiv(t.Y, tilesPerChunk)
	ltx := floorMod(t.X, tilesPerChunk)
	lty := floorMod(t.Y, tilesPerChunk)
	return ChunkPos{X: cx, Y: cy}, ltx, lty
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
