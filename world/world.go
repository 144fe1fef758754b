// Package world wires every leaf package into the one stateful object a
// host program drives: SpawnPixelWorld's ark ECS resources, the pool /
// streaming window / canvas / collision cache singletons spec.md §9 calls
// out as process-wide per-world state, and the public runtime surface of
// spec.md §6. It plays the role the teacher's game.Game plays for its own
// domain: one struct wrapping *ecs.World plus the generated Map/Filter
// accessors, constructed once by SpawnPixelWorld and driven one Tick at a
// time by the host.
package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/burn"
	"github.com/pxlsim/pixelworld/canvas"
	"github.com/pxlsim/pixelworld/contour"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/persistence"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/pool"
	"github.com/pxlsim/pixelworld/seed"
	"github.com/pxlsim/pixelworld/stream"
	"github.com/pxlsim/pixelworld/world/components"
)

// Config bundles the construction-time parameters SpawnPixelWorld needs.
// Its fields mirror config.Config's World/Streaming/Physics/Burning/Heat/
// Contour/Blast sections; cmd/pixelworld builds one of these from a loaded
// config.Config rather than this package depending on config directly (the
// teacher keeps the same one-way dependency: config -> game, never back).
type Config struct {
	Edge     int32 // L
	TileEdge int32 // T
	HeatEdge int32 // H
	WorldSeed uint64

	StreamWidth, StreamHeight int32 // chunks; see stream.New for the exact span
	PoolCapacity              int

	PhysicsRate  float32 // P, Hz
	JitterFactor float32 // f, default 0 per spec.md §9 open question

	BurningRate float32 // B, Hz
	BurnRates   burn.Rates

	HeatRate float32 // H-rate, Hz

	DeltaThreshold float32 // fraction of a chunk's pixels that may differ from baseline before Full beats Delta

	ContourTolerance float64
	MinSplitSize     int // fragments with fewer solid cells than this are discarded rather than respawned
	SubmersionConfig body.SubmersionConfig

	Registry *pixel.Registry
}

// World is the instantiated pixel-world simulation: the ark ECS world plus
// every per-world singleton spec.md §9 names (chunk pool, collision cache)
// and the bookkeeping the tick loop threads between phases.
type World struct {
	cfg Config
	reg *pixel.Registry

	ecs *ecs.World

	cameraMap    *ecs.Map2[components.Transform, components.StreamingCamera]
	cameraFilter *ecs.Filter2[components.Transform, components.StreamingCamera]
	queryMap     *ecs.Map2[components.Transform, components.CollisionQueryPoint]
	queryFilter  *ecs.Filter2[components.Transform, components.CollisionQueryPoint]
	bodyMap      *ecs.Map2[components.Transform, components.PixelBody]
	bodyFilter   *ecs.Filter2[components.Transform, components.PixelBody]

	pool     *pool.Pool
	window   *stream.Window
	contours *contour.Cache
	bodyQ    stream.BodyQueue

	seeder           seed.Seeder
	proceduralSeeder seed.Seeder // baseline for delta computation; see persistence.go

	save   *persistence.SaveFile
	worker *persistence.Worker

	deferredChunks []coord.ChunkPos

	tick uint64

	events eventQueue
}

// SpawnPixelWorld instantiates a world bound to the given seeder and
// configuration. Per spec.md §6, this must precede any other call against
// the returned World.
func SpawnPixelWorld(cfg Config, seeder seed.Seeder) *World {
	e := ecs.NewWorld()

	w := &World{
		cfg: cfg,
		reg: cfg.Registry,
		ecs: e,

		cameraMap:    ecs.NewMap2[components.Transform, components.StreamingCamera](e),
		cameraFilter: ecs.NewFilter2[components.Transform, components.StreamingCamera](e),
		queryMap:     ecs.NewMap2[components.Transform, components.CollisionQueryPoint](e),
		queryFilter:  ecs.NewFilter2[components.Transform, components.CollisionQueryPoint](e),
		bodyMap:      ecs.NewMap2[components.Transform, components.PixelBody](e),
		bodyFilter:   ecs.NewFilter2[components.Transform, components.PixelBody](e),

		pool:     pool.New(cfg.PoolCapacity, cfg.Edge, cfg.TileEdge, cfg.HeatEdge),
		contours: contour.NewCache(),

		seeder: seeder,
	}

	if ps, ok := seeder.(*seed.PersistenceSeeder); ok {
		w.proceduralSeeder = ps.Inner
	} else {
		w.proceduralSeeder = seeder
	}

	return w
}

// WithPersistence attaches a save file and its async I/O worker to an
// already-constructed world, switching the streaming window to route
// entering chunks through Loading instead of straight to Seeding. It must
// be called before the first UpdateCentre (the window's persistence flag
// is fixed at construction).
func (w *World) WithPersistence(save *persistence.SaveFile, worker *persistence.Worker) *World {
	w.save = save
	w.worker = worker
	w.window = stream.New(w.cfg.StreamWidth, w.cfg.StreamHeight, true)
	return w
}

// ensureWindow lazily constructs a non-persistent window if WithPersistence
// was never called, so SpawnPixelWorld callers that don't need persistence
// aren't forced to call a second setup method.
func (w *World) ensureWindow() *stream.Window {
	if w.window == nil {
		w.window = stream.New(w.cfg.StreamWidth, w.cfg.StreamHeight, false)
	}
	return w.window
}

// canvas materialises a Canvas over every currently Active slot. Cheap:
// CollectSeeded only copies a map of pointers, not chunk data.
func (w *World) canvas() *canvas.Canvas {
	return canvas.New(w.pool.CollectSeeded(), w.cfg.Edge)
}

// Registry returns the material registry this world was constructed with.
func (w *World) Registry() *pixel.Registry { return w.reg }

// TickCount returns the current simulation tick counter.
func (w *World) TickCount() uint64 { return w.tick }

// SpawnStreamingCamera creates the external streaming-camera entity
// (spec.md §6) at the given world-space transform.
func (w *World) SpawnStreamingCamera(t components.Transform) ecs.Entity {
	return w.cameraMap.NewEntity(&t, &components.StreamingCamera{})
}

// SetStreamingCameraTransform updates the (first-visited) streaming
// camera's transform. At most one streaming camera is meaningful at a
// time, matching spec.md §6's description.
func (w *World) SetStreamingCameraTransform(t components.Transform) bool {
	query := w.cameraFilter.Query()
	if !query.Next() {
		return false
	}
	tr, _ := query.Get()
	*tr = t
	return true
}

// SpawnCollisionQueryPoint creates an external collision-query-point entity
// (spec.md §6) nominating tiles around it for mesh generation.
func (w *World) SpawnCollisionQueryPoint(t components.Transform, tileRadius int32) ecs.Entity {
	return w.queryMap.NewEntity(&t, &components.CollisionQueryPoint{TileRadius: tileRadius})
}
