// Package persistence implements the on-disk save file: a fixed header,
// an append-only data region holding compressed chunk and body records,
// a chunk index, and a body index, all flushed atomically together.
// Writes and flushes run behind an async worker (worker.go). Reads do
// not: seed.PersistenceSeeder and the world call SaveFile.ReadChunk and
// ReadBody directly, and those calls block the caller on disk.
package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies a pixelworld save file.
var Magic = [4]byte{'P', 'X', 'L', 'W'}

// Version is the current on-disk format version. Loaders reject any other
// value rather than guess at a layout they don't understand.
const Version uint32 = 1

// HeaderSize is the header's fixed on-disk size in bytes.
const HeaderSize = 4 + 4 + 8 + 8 + 8 + 4 + 4 + 4 + 8 + 8

// Header is the save file's fixed-size leading record.
type Header struct {
	// Magic and Version are validated on load; a mismatch is a corrupt or
	// foreign file, not a recoverable condition.
	Magic   [4]byte
	Version uint32

	WorldSeed     uint64
	CreatedAt     uint64 // unix seconds
	ModifiedAt    uint64 // unix seconds
	ChunkCount    uint32
	BodyCount     uint32
	IndexSize     uint32 // combined chunk+body index byte size on disk
	EntityOffset  uint64 // byte offset of the entity section
	DataWriteHead uint64 // next free offset in the append-only data region
}

// NewHeader returns a zeroed header stamped with the current magic/version
// and the given world seed.
func NewHeader(worldSeed uint64, now uint64) Header {
	return Header{
		Magic:         Magic,
		Version:       Version,
		WorldSeed:     worldSeed,
		CreatedAt:     now,
		ModifiedAt:    now,
		DataWriteHead: HeaderSize,
	}
}

// Encode writes the header in its fixed little-endian layout.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.WorldSeed)
	binary.LittleEndian.PutUint64(buf[16:24], h.CreatedAt)
	binary.LittleEndian.PutUint64(buf[24:32], h.ModifiedAt)
	binary.LittleEndian.PutUint32(buf[32:36], h.ChunkCount)
	binary.LittleEndian.PutUint32(buf[36:40], h.BodyCount)
	binary.LittleEndian.PutUint32(buf[40:44], h.IndexSize)
	binary.LittleEndian.PutUint64(buf[44:52], h.EntityOffset)
	binary.LittleEndian.PutUint64(buf[52:60], h.DataWriteHead)
	return buf
}

// DecodeHeader parses a header from its fixed little-endian layout,
// rejecting unknown magic or version.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("persistence: header too short: %d bytes", len(buf))
	}
	var h Header
	copy(h.Magic[:], buf[0:4])
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("persistence: bad magic %v", h.Magic)
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	if h.Version != Version {
		return Header{}, fmt.Errorf("persistence: unsupported version %d", h.Version)
	}
	h.WorldSeed = binary.LittleEndian.Uint64(buf[8:16])
	h.CreatedAt = binary.LittleEndian.Uint64(buf[16:24])
	h.ModifiedAt = binary.LittleEndian.Uint64(buf[24:32])
	h.ChunkCount = binary.LittleEndian.Uint32(buf[32:36])
	h.BodyCount = binary.LittleEndian.Uint32(buf[36:40])
	h.IndexSize = binary.LittleEndian.Uint32(buf[40:44])
	h.EntityOffset = binary.LittleEndian.Uint64(buf[44:52])
	h.DataWriteHead = binary.LittleEndian.Uint64(buf[52:60])
	return h, nil
}

// ReadHeader reads and decodes the header from the start of r.
func ReadHeader(r io.ReaderAt) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return Header{}, fmt.Errorf("persistence: reading header: %w", err)
	}
	return DecodeHeader(buf)
}
