// Package seed populates a freshly activated chunk's pixel buffer: either
// procedurally, from coherent noise and a feathered solid/void boundary,
// or by replaying a previously persisted record over that same procedural
// baseline.
package seed

import (
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
)

// Seeder fills a chunk's pixel buffer for the chunk's assigned world
// position. Implementations must be safe for concurrent use across
// distinct chunks. The world calls Seed synchronously, one chunk at a
// time, when it activates a chunk; seeding is not dispatched to a worker
// pool.
type Seeder interface {
	Seed(pos coord.ChunkPos, ch *chunk.Chunk)
}
