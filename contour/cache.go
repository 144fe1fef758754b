package contour

import (
	"sync"

	"github.com/pxlsim/pixelworld/coord"
)

// Cache holds generated collision meshes per tile, along with which tiles
// currently have an in-flight generation task so a dirty tile isn't
// queued for regeneration twice. Safe for concurrent use. The world
// package generates meshes synchronously in the tick and stores them with
// InsertDirect; it starts no background generation tasks.
type Cache struct {
	mu         sync.RWMutex
	meshes     map[coord.TilePos]TileCollisionMesh
	inFlight   map[coord.TilePos]struct{}
	generation uint64
}

// NewCache returns an empty collision mesh cache.
func NewCache() *Cache {
	return &Cache{
		meshes:   make(map[coord.TilePos]TileCollisionMesh),
		inFlight: make(map[coord.TilePos]struct{}),
	}
}

// Get returns the cached mesh for a tile, if any.
func (c *Cache) Get(tile coord.TilePos) (TileCollisionMesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meshes[tile]
	return m, ok
}

// Contains reports whether a tile has a cached mesh.
func (c *Cache) Contains(tile coord.TilePos) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.meshes[tile]
	return ok
}

// IsInFlight reports whether a tile currently has a generation task
// running.
func (c *Cache) IsInFlight(tile coord.TilePos) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.inFlight[tile]
	return ok
}

// MarkInFlight records that a tile's mesh is being generated, so
// concurrent requests for the same tile don't spawn duplicate work.
func (c *Cache) MarkInFlight(tile coord.TilePos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[tile] = struct{}{}
}

// Insert stores a completed generation task's result. It returns false
// (and discards the mesh) if the tile was invalidated while the task was
// in flight -- the canvas has since changed and the mesh is stale.
func (c *Cache) Insert(tile coord.TilePos, mesh TileCollisionMesh) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[tile]; !ok {
		return false
	}
	delete(c.inFlight, tile)
	c.generation++
	mesh.Generation = c.generation
	c.meshes[tile] = mesh
	return true
}

// InsertDirect stores a mesh without consulting in-flight state, for
// synchronous generation paths (e.g. a tile found empty without spawning
// a background task).
func (c *Cache) InsertDirect(tile coord.TilePos, mesh TileCollisionMesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	mesh.Generation = c.generation
	c.meshes[tile] = mesh
}

// Invalidate drops a tile's cached mesh and any in-flight marker, forcing
// regeneration on next request.
func (c *Cache) Invalidate(tile coord.TilePos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.meshes, tile)
	delete(c.inFlight, tile)
}

// InvalidateChunk drops every tile mesh belonging to a chunk in one call.
func (c *Cache) InvalidateChunk(cpos coord.ChunkPos, tilesPerChunk int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	baseX, baseY := cpos.X*tilesPerChunk, cpos.Y*tilesPerChunk
	for ty := int32(0); ty < tilesPerChunk; ty++ {
		for tx := int32(0); tx < tilesPerChunk; tx++ {
			tile := coord.TilePos{X: baseX + tx, Y: baseY + ty}
			delete(c.meshes, tile)
			delete(c.inFlight, tile)
		}
	}
}

// Len returns the number of cached tile meshes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meshes)
}
