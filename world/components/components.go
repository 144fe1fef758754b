// Package components defines the ark ECS component types the world package
// wires its entities from: the streaming camera, collision query points,
// and pixel bodies. It mirrors the teacher's top-level components package,
// scoped to this module's own entity shapes instead of organisms and
// brains.
package components

import (
	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/coord"
)

// Transform is a rigid-motion pose shared by every positioned entity this
// package defines: the streaming camera, collision query points, and pixel
// bodies.
type Transform struct {
	X, Y  float32
	Angle float32
}

// StreamingCamera marks the entity whose Transform drives the streaming
// window's centre. At most one such entity is meaningful at a time; if
// several exist, the world uses whichever the query visits first.
type StreamingCamera struct{}

// CollisionQueryPoint marks an entity whose Transform nominates tiles
// around it for collision mesh generation. TileRadius is how many tiles
// out from the point's own tile are nominated.
type CollisionQueryPoint struct {
	TileRadius int32
}

// PixelBody is a spawned pixel body's live ECS-side state: the simulation
// data body.Body doesn't itself track (submersion, queue/stabilizing
// bookkeeping) layered around the core *body.Body value.
type PixelBody struct {
	Body *body.Body

	// Spawned is false while the body is still queued in the streaming
	// window's BodyQueue awaiting collision-tile readiness around its
	// footprint; its first blit only happens once this flips true.
	Spawned bool
	// RequiredTiles is the set of tiles whose collision mesh must be
	// cached before Spawned flips true.
	RequiredTiles []coord.TilePos

	// TicksSinceSpawn gates destruction readback: a body needs at least
	// one completed blit (Written populated) before DetectDestroyed's
	// comparison against Written is meaningful, so readback is skipped
	// until TicksSinceSpawn reaches the stabilizing window.
	TicksSinceSpawn int

	DisplacedLiquid []coord.WorldPos
	Submersion      body.SubmersionState

	// LastTransform is the pose Written was computed under, so erasure
	// detection can invert a destroyed world position back to the local
	// cell that caused it even if the entity's Transform has since moved.
	LastTransform Transform
}
