package stream

import "github.com/pxlsim/pixelworld/coord"

// PendingBody is a body read from the body index whose footprint
// intersects a just-seeded chunk; it spawns only once every tile in
// RequiredTiles has a cached collision mesh.
type PendingBody struct {
	StableID      uint64
	RequiredTiles []coord.TilePos
}

// BodyQueue tracks bodies awaiting collision-tile readiness before they are
// rehydrated into the world, per spec.md §4.3's body-queue description.
type BodyQueue struct {
	pending []PendingBody
}

// Enqueue adds a body to the pending set.
func (q *BodyQueue) Enqueue(b PendingBody) {
	q.pending = append(q.pending, b)
}

// Ready reports, for each pending body, whether hasMesh(tile) holds for
// every tile in its required set, removing and returning those that are
// ready to spawn.
func (q *BodyQueue) Ready(hasMesh func(coord.TilePos) bool) []PendingBody {
	var ready []PendingBody
	remaining := q.pending[:0]
	for _, b := range q.pending {
		allReady := true
		for _, t := range b.RequiredTiles {
			if !hasMesh(t) {
				allReady = false
				break
			}
		}
		if allReady {
			ready = append(ready, b)
		} else {
			remaining = append(remaining, b)
		}
	}
	q.pending = remaining
	return ready
}

// Len reports how many bodies are still pending.
func (q *BodyQueue) Len() int { return len(q.pending) }
