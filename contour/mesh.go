package contour

// PolygonMesh is one simplified contour paired with its triangulation,
// both in world pixel space.
type PolygonMesh struct {
	Polygon   []Vec2
	Triangles []Triangle
}

// TileCollisionMesh is the complete collision geometry generated for one
// tile: zero or more disjoint polygons (a tile can contain several
// unconnected solid islands, or none at all).
type TileCollisionMesh struct {
	Polygons   []PolygonMesh
	Generation uint64
}

// IsEmpty reports whether the tile contributed no collision geometry at
// all -- worth caching directly, since re-deriving "this tile is all air"
// is as expensive as deriving a populated mesh.
func (m TileCollisionMesh) IsEmpty() bool { return len(m.Polygons) == 0 }

// BuildTileMesh runs the full marching-squares -> simplify -> triangulate
// pipeline for one tile.
func BuildTileMesh(tileEdge int32, origin Vec2, solid SolidAt, tolerance float64) TileCollisionMesh {
	raw := MarchingSquares(tileEdge, origin, solid)
	simplified := SimplifyPolylines(raw, tolerance)

	mesh := TileCollisionMesh{Polygons: make([]PolygonMesh, 0, len(simplified))}
	for _, poly := range simplified {
		mesh.Polygons = append(mesh.Polygons, PolygonMesh{
			Polygon:   poly,
			Triangles: TriangulatePolygon(poly),
		})
	}
	return mesh
}
