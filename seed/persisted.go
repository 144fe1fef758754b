package seed

import (
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/persistence"
)

// PersistenceSeeder wraps an inner procedural seeder with a save file: it
// tries to restore a chunk's previously persisted record before falling
// back to the inner seeder. A Full record replaces the chunk outright; a
// Delta record is applied on top of a freshly regenerated procedural
// baseline, since only the modified cells were ever stored. Any decode or
// apply failure is treated as if nothing had been saved -- the chunk is
// left as whatever the inner seeder produced, and FromPersistence stays
// false so the rest of the system knows this chunk's state isn't backed by
// its on-disk record.
type PersistenceSeeder struct {
	Inner Seeder
	Save  *persistence.SaveFile
}

// NewPersistenceSeeder returns a PersistenceSeeder falling back to inner on
// any miss or decode failure.
func NewPersistenceSeeder(inner Seeder, save *persistence.SaveFile) *PersistenceSeeder {
	return &PersistenceSeeder{Inner: inner, Save: save}
}

// Seed implements Seeder.
func (s *PersistenceSeeder) Seed(pos coord.ChunkPos, ch *chunk.Chunk) {
	s.Inner.Seed(pos, ch)

	data, storage, found, err := s.Save.ReadChunk(pos)
	if err != nil || !found {
		return
	}

	switch storage {
	case persistence.Full:
		if err := persistence.DecodeFull(data, ch.Surface); err != nil {
			// Leave the procedural baseline already written by Inner.Seed;
			// this chunk is simply not backed by its on-disk record.
			return
		}
		ch.FromPersistence = true

	case persistence.Delta:
		edge := ch.Edge
		deltas, err := persistence.DecodeDelta(data, uint32(edge*edge))
		if err != nil {
			return
		}
		persistence.ApplyDelta(ch.Surface, deltas)
		ch.FromPersistence = true
	}
}
