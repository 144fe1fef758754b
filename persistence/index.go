package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/pxlsim/pixelworld/coord"
)

// StorageType distinguishes how a chunk index entry's data region bytes are
// encoded.
type StorageType uint8

const (
	// Full is LZ4-compressed raw pixel bytes, 4 bytes per pixel.
	Full StorageType = iota
	// Delta is an LZ4-compressed list of (position, pixel) records
	// relative to a procedurally regenerated baseline.
	Delta
)

// ChunkIndexEntry locates one chunk's compressed record in the data region.
type ChunkIndexEntry struct {
	Pos         coord.ChunkPos
	DataOffset  uint64
	DataSize    uint32
	StorageType StorageType
}

// chunkIndexEntrySize is the fixed on-disk size of one ChunkIndexEntry.
const chunkIndexEntrySize = 4 + 4 + 8 + 4 + 1

func (e ChunkIndexEntry) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Pos.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Pos.Y))
	binary.LittleEndian.PutUint64(buf[8:16], e.DataOffset)
	binary.LittleEndian.PutUint32(buf[16:20], e.DataSize)
	buf[20] = byte(e.StorageType)
}

func decodeChunkIndexEntry(buf []byte) ChunkIndexEntry {
	return ChunkIndexEntry{
		Pos: coord.ChunkPos{
			X: int32(binary.LittleEndian.Uint32(buf[0:4])),
			Y: int32(binary.LittleEndian.Uint32(buf[4:8])),
		},
		DataOffset:  binary.LittleEndian.Uint64(buf[8:16]),
		DataSize:    binary.LittleEndian.Uint32(buf[16:20]),
		StorageType: StorageType(buf[20]),
	}
}

// BodyIndexEntry locates one pixel body's compact record in the data
// region.
type BodyIndexEntry struct {
	StableID     uint64
	DataOffset   uint64
	DataSize     uint32
	OwningChunk  coord.ChunkPos
}

const bodyIndexEntrySize = 8 + 8 + 4 + 4 + 4

func (e BodyIndexEntry) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], e.StableID)
	binary.LittleEndian.PutUint64(buf[8:16], e.DataOffset)
	binary.LittleEndian.PutUint32(buf[16:20], e.DataSize)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(e.OwningChunk.X))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(e.OwningChunk.Y))
}

func decodeBodyIndexEntry(buf []byte) BodyIndexEntry {
	return BodyIndexEntry{
		StableID:   binary.LittleEndian.Uint64(buf[0:8]),
		DataOffset: binary.LittleEndian.Uint64(buf[8:16]),
		DataSize:   binary.LittleEndian.Uint32(buf[16:20]),
		OwningChunk: coord.ChunkPos{
			X: int32(binary.LittleEndian.Uint32(buf[20:24])),
			Y: int32(binary.LittleEndian.Uint32(buf[24:28])),
		},
	}
}

// encodeIndex serialises the chunk index followed by the body index (the
// "entity section") into one contiguous byte slice.
func encodeIndex(chunks []ChunkIndexEntry, bodies []BodyIndexEntry) []byte {
	buf := make([]byte, len(chunks)*chunkIndexEntrySize+len(bodies)*bodyIndexEntrySize)
	off := 0
	for _, e := range chunks {
		e.encode(buf[off : off+chunkIndexEntrySize])
		off += chunkIndexEntrySize
	}
	for _, e := range bodies {
		e.encode(buf[off : off+bodyIndexEntrySize])
		off += bodyIndexEntrySize
	}
	return buf
}

// decodeIndex parses chunkCount chunk entries followed by bodyCount body
// entries from buf.
func decodeIndex(buf []byte, chunkCount, bodyCount uint32) ([]ChunkIndexEntry, []BodyIndexEntry, error) {
	need := int(chunkCount)*chunkIndexEntrySize + int(bodyCount)*bodyIndexEntrySize
	if len(buf) < need {
		return nil, nil, fmt.Errorf("persistence: index truncated: need %d bytes, have %d", need, len(buf))
	}

	chunks := make([]ChunkIndexEntry, chunkCount)
	off := 0
	for i := range chunks {
		chunks[i] = decodeChunkIndexEntry(buf[off : off+chunkIndexEntrySize])
		off += chunkIndexEntrySize
	}

	bodies := make([]BodyIndexEntry, bodyCount)
	for i := range bodies {
		bodies[i] = decodeBodyIndexEntry(buf[off : off+bodyIndexEntrySize])
		off += bodyIndexEntrySize
	}

	return chunks, bodies, nil
}
