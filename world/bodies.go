package world

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/stream"
	"github.com/pxlsim/pixelworld/world/components"
)

// stabilizingWindowTicks is how many ticks a freshly spawned body's Written
// set must exist before DetectDestroyed's readback is trusted: the body's
// very first Blit hasn't gone through a CA pass yet, so there's nothing
// meaningful to compare it against.
const stabilizingWindowTicks = 1

// nextStableID mints a new pixel body stable id. Per the body id scheme
// this module uses throughout (save records, collision mesh ownership),
// ids are u64s; a uuid gives us global uniqueness across save files without
// a world-local counter to persist, so a fresh uuid is generated and its
// low 8 bytes taken as the id.
func (w *World) nextStableID() uint64 {
	id := uuid.New()
	return binary.LittleEndian.Uint64(id[:8])
}

// BodySource supplies one local cell's pixel for SpawnPixelBody, given its
// (lx, ly) in [0, width) x [0, height). Unlike a Blit FragmentCallback it
// receives only the local cell coordinates, with no world position and no
// parametric (u, v). Returning ok=false leaves that cell void (outside the body's shape).
type BodySource func(lx, ly int32) (px pixel.Pixel, ok bool)

// SpawnPixelBody creates a new pixel body of the given local dimensions,
// filling its solid cells from source and stamping every one with material,
// at the given initial world transform. Per spec.md §6, the body doesn't
// participate in the simulation until Spawned flips true, once every tile
// its footprint covers has a cached collision mesh.
func (w *World) SpawnPixelBody(width, height int32, source BodySource, material pixel.MaterialID, transform components.Transform) ecs.Entity {
	b := body.New(w.nextStableID(), width, height)
	for ly := int32(0); ly < height; ly++ {
		for lx := int32(0); lx < width; lx++ {
			px, ok := source(lx, ly)
			if !ok {
				continue
			}
			px.Material = material
			px.Flags = px.Flags.Set(pixel.FlagPixelBody)
			b.SetPixel(lx, ly, px)
		}
	}

	tiles := requiredTiles(b, body.Transform(transform), w.cfg.TileEdge)
	pb := components.PixelBody{Body: b, RequiredTiles: tiles}
	t := transform
	entity := w.bodyMap.NewEntity(&t, &pb)
	w.bodyQ.Enqueue(stream.PendingBody{StableID: b.StableID, RequiredTiles: tiles})
	return entity
}

// requiredTiles is the set of tiles a body's world AABB overlaps, under the
// given transform -- the tiles that must have a cached collision mesh
// before the body is allowed to participate in the simulation.
func requiredTiles(b *body.Body, t body.Transform, tileEdge int32) []coord.TilePos {
	return body.WorldAABB(b, t).ToTileRange(tileEdge)
}

// pollPendingBodies flips Spawned true for every queued body (fresh spawn
// or persistence rehydration alike) whose required tiles all now have a
// cached collision mesh, per spec.md §4.3's body-queue description.
func (w *World) pollPendingBodies() {
	ready := w.bodyQ.Ready(w.contours.Contains)
	if len(ready) == 0 {
		return
	}
	readySet := make(map[uint64]struct{}, len(ready))
	for _, r := range ready {
		readySet[r.StableID] = struct{}{}
	}

	query := w.bodyFilter.Query()
	for query.Next() {
		_, pb := query.Get()
		if pb.Spawned {
			continue
		}
		if _, ok := readySet[pb.Body.StableID]; ok {
			pb.Spawned = true
		}
	}
}

// preCATickBodies runs the before-CA-tick body phase (spec.md §5 step 2):
// for every already-spawned body, detect and apply any destruction an
// external edit caused since its last blit, clear its previous footprint,
// then blit it fresh at its current transform.
func (w *World) preCATickBodies(c *canvas.Canvas, dirty *canvas.DirtySet) {
	query := w.bodyFilter.Query()
	for query.Next() {
		tr, pb := query.Get()
		if !pb.Spawned {
			continue
		}
		w.applyExternalErasure(c, pb)

		var voids []coord.WorldPos
		body.Clear(c, pb.Body.Written, &voids)

		bt := body.Transform(*tr)
		result := body.Blit(c, w.reg, pb.Body, bt, &voids, dirty)
		pb.Body.Written = result.Written
		pb.DisplacedLiquid = result.DisplacedLiquid
		pb.LastTransform = *tr
	}
}

// applyExternalErasure clears local cells the canvas no longer shows as
// this body's pixels -- a set_pixel/blit/blast that landed on the body's
// footprint since its last tick -- using the transform that was active
// when Written was last computed. This runs unconditionally for every
// spawned body, stabilizing window or not: an external edit can land on a
// body's footprint regardless of how long it's been spawned.
func (w *World) applyExternalErasure(c *canvas.Canvas, pb *components.PixelBody) {
	if len(pb.Body.Written) == 0 {
		return
	}
	destroyed := body.DetectDestroyed(c, pb.Body.Written)
	if len(destroyed) == 0 {
		return
	}
	body.ApplyDestroyed(pb.Body, body.Transform(pb.LastTransform), destroyed)
	w.invalidateTilesFor(destroyed)
}

// postCATickBodies runs the after-CA-tick body phase (spec.md §5 step 4):
// readback destruction the CA pass itself caused (burned to ash,
// dissolved, etc.), split bodies the readback disconnected, invalidate the
// collision mesh cache for every touched tile, and sample submersion for
// buoyancy and the Submerged/Surfaced events.
func (w *World) postCATickBodies(c *canvas.Canvas) {
	var toRemove []ecs.Entity
	var toSpawn []pendingFragment

	query := w.bodyFilter.Query()
	for query.Next() {
		entity := query.Entity()
		tr, pb := query.Get()
		if !pb.Spawned {
			continue
		}
		stabilizing := pb.TicksSinceSpawn < stabilizingWindowTicks
		pb.TicksSinceSpawn++

		if !stabilizing {
			bt := body.Transform(pb.LastTransform)
			destroyed := body.DetectDestroyed(c, pb.Body.Written)
			if len(destroyed) > 0 {
				body.ApplyDestroyed(pb.Body, bt, destroyed)
				w.invalidateTilesFor(destroyed)
			}
		}

		if pb.Body.IsEmpty() {
			toRemove = append(toRemove, entity)
			continue
		}

		if fragments := body.Split(pb.Body); fragments != nil {
			toRemove = append(toRemove, entity)
			for _, frag := range fragments {
				toSpawn = append(toSpawn, pendingFragment{frag: frag, origin: *tr})
			}
			continue
		}

		prev := pb.Submersion
		pb.Submersion = body.SampleSubmersion(w.cfg.SubmersionConfig, prev, pb.Body.Written, pb.DisplacedLiquid)
		w.emitSubmersionEvents(entity, pb.Submersion)
	}

	for _, e := range toRemove {
		w.ecs.RemoveEntity(e)
	}
	for _, pf := range toSpawn {
		w.spawnFragment(pf)
	}
}

type pendingFragment struct {
	frag   body.Fragment
	origin components.Transform
}

// spawnFragment instantiates one Split fragment as a new entity, placing it
// at the origin body's transform offset by the fragment's local-space
// centroid rotated into world space.
func (w *World) spawnFragment(pf pendingFragment) {
	frag := pf.frag.Body
	if w.cfg.MinSplitSize > 0 && frag.SolidCount() < w.cfg.MinSplitSize {
		return
	}

	sin, cos := sincosAngle(pf.origin.Angle)
	wx := pf.origin.X + pf.frag.OffsetX*cos - pf.frag.OffsetY*sin
	wy := pf.origin.Y + pf.frag.OffsetX*sin + pf.frag.OffsetY*cos

	frag.StableID = w.nextStableID()

	t := components.Transform{X: wx, Y: wy, Angle: pf.origin.Angle}
	tiles := requiredTiles(frag, body.Transform(t), w.cfg.TileEdge)
	pb := components.PixelBody{Body: frag, RequiredTiles: tiles}
	w.bodyMap.NewEntity(&t, &pb)
	w.bodyQ.Enqueue(stream.PendingBody{StableID: frag.StableID, RequiredTiles: tiles})
}

func sincosAngle(angle float32) (float32, float32) {
	// Mirrors body.sincos, unexported there; duplicated rather than
	// exporting a trig helper for one call site.
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}

// invalidateTilesFor drops the cached collision mesh for every tile a set
// of world positions falls in, so a body's destruction is reflected in the
// next mesh generation pass.
func (w *World) invalidateTilesFor(positions []coord.WorldPos) {
	seen := make(map[coord.TilePos]struct{})
	for _, p := range positions {
		t := coord.WorldToTile(p, w.cfg.TileEdge)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		w.contours.Invalidate(t)
	}
}

// emitSubmersionEvents appends a Submerged or Surfaced event for the tick a
// body's submersion state crosses its configured threshold.
func (w *World) emitSubmersionEvents(entity ecs.Entity, state body.SubmersionState) {
	switch {
	case state.JustSubmerged():
		w.events.submerged = append(w.events.submerged, SubmergedEvent{Entity: entity, Fraction: state.SubmergedFraction})
	case state.JustSurfaced():
		w.events.surfaced = append(w.events.surfaced, SurfacedEvent{Entity: entity})
	}
}
