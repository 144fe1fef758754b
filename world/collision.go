package world

import (
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/contour"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
)

// dispatchCollisionMeshWork generates a collision mesh for every tile a
// CollisionQueryPoint nominates that isn't already cached. Generation runs
// synchronously, in the tick that notices the gap, rather than as a
// cross-tick background task: the cache's Get/Contains surface is already
// a complete poll-for-readiness contract (bodies gate their own spawn on
// it via BodyQueue.Ready), so a query point's caller sees the same
// "eventually ready" behaviour either way, without this package needing to
// hand out task handles for a host to await.
func (w *World) dispatchCollisionMeshWork() {
	c := w.canvas()

	query := w.queryFilter.Query()
	for query.Next() {
		tr, cq := query.Get()
		centre := coord.WorldToTile(coord.WorldPos{X: int32(tr.X), Y: int32(tr.Y)}, w.cfg.TileEdge)
		for dy := -cq.TileRadius; dy <= cq.TileRadius; dy++ {
			for dx := -cq.TileRadius; dx <= cq.TileRadius; dx++ {
				tile := coord.TilePos{X: centre.X + dx, Y: centre.Y + dy}
				if w.contours.Contains(tile) {
					continue
				}
				w.generateTileMesh(c, tile)
			}
		}
	}
}

// generateTileMesh builds and caches one tile's collision mesh, or leaves
// it uncached (to retry next tick) if the tile's owning chunk isn't
// currently loaded.
func (w *World) generateTileMesh(c *canvas.Canvas, tile coord.TilePos) {
	origin := coord.TileOrigin(tile, w.cfg.TileEdge)
	owningChunk, _ := coord.WorldToChunkLocal(origin, w.cfg.Edge)
	if _, ok := c.Get(owningChunk); !ok {
		return
	}

	solid := func(lx, ly int32) bool {
		pos := coord.WorldPos{X: origin.X + lx, Y: origin.Y + ly}
		px, ok := c.GetPixelValue(pos)
		if !ok || px.IsVoid() || px.Flags.Has(pixel.FlagPixelBody) {
			return false
		}
		mat, ok := w.reg.Get(px.Material)
		return ok && mat.Physics == pixel.Solid
	}

	mesh := contour.BuildTileMesh(w.cfg.TileEdge, contour.Vec2{X: float64(origin.X), Y: float64(origin.Y)}, solid, w.cfg.ContourTolerance)
	w.contours.InsertDirect(tile, mesh)
}

// CollisionMesh returns the cached collision mesh for a tile, if one has
// been generated, per spec.md §6's collision query surface.
func (w *World) CollisionMesh(tile coord.TilePos) (contour.TileCollisionMesh, bool) {
	return w.contours.Get(tile)
}
