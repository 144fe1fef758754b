package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/pxlsim/pixelworld/pixel"
)

// DeltaThreshold is the default fraction of a chunk's pixels that may
// differ from the procedural baseline before a Full record is cheaper than
// a Delta one. Configurable per-world via config.Persistence.DeltaThreshold;
// this is only the fallback for callers that don't have one.
const DeltaThreshold = 0.75

// DeltaEntry is one modified cell relative to a procedural baseline: a
// 24-bit linear index into the chunk's row-major pixel buffer plus the new
// pixel value.
type DeltaEntry struct {
	Position uint32 // 0 .. edge*edge-1, fits in 24 bits for any realistic chunk edge
	Pixel    pixel.Pixel
}

// DeltaEntrySize is one entry's encoded size: 3 bytes position + 4 bytes
// pixel.
const DeltaEntrySize = 7

func (e DeltaEntry) writeTo(buf []byte) {
	buf[0] = byte(e.Position)
	buf[1] = byte(e.Position >> 8)
	buf[2] = byte(e.Position >> 16)
	enc := e.Pixel.Encode()
	copy(buf[3:7], enc[:])
}

func readDeltaEntry(buf []byte) DeltaEntry {
	position := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16
	var enc [4]byte
	copy(enc[:], buf[3:7])
	return DeltaEntry{Position: position, Pixel: pixel.Decode(enc)}
}

// CompressBlock LZ4-compresses src, prepending its uncompressed size as a
// little-endian uint32 -- the same prepend-size framing the original
// implementation's lz4_flex block mode used, so a reader never needs a
// separate length side-channel.
func CompressBlock(src []byte) []byte {
	bound := lz4.CompressBlockBound(len(src))
	dst := make([]byte, 4+bound)
	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(src)))

	var ht [1 << 16]int
	n, err := lz4.CompressBlock(src, dst[4:], ht[:])
	if err != nil || n == 0 {
		// Incompressible or too small to benefit; store raw with a sentinel
		// size of 0 so DecompressBlock knows to treat the remainder as-is.
		raw := make([]byte, 8+len(src))
		binary.LittleEndian.PutUint32(raw[0:4], 0)
		binary.LittleEndian.PutUint32(raw[4:8], uint32(len(src)))
		copy(raw[8:], src)
		return raw
	}
	return dst[:4+n]
}

// DecompressBlock reverses CompressBlock.
func DecompressBlock(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("persistence: compressed block too short")
	}
	size := binary.LittleEndian.Uint32(data[0:4])
	if size == 0 {
		// Stored-raw sentinel written by CompressBlock's incompressible path.
		if len(data) < 8 {
			return nil, fmt.Errorf("persistence: stored block too short")
		}
		rawSize := binary.LittleEndian.Uint32(data[4:8])
		if uint32(len(data)-8) != rawSize {
			return nil, fmt.Errorf("persistence: stored block size mismatch: expected %d, got %d", rawSize, len(data)-8)
		}
		out := make([]byte, rawSize)
		copy(out, data[8:])
		return out, nil
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data[4:], dst)
	if err != nil {
		return nil, fmt.Errorf("persistence: lz4 decompress: %w", err)
	}
	if uint32(n) != size {
		return nil, fmt.Errorf("persistence: decompressed size mismatch: expected %d, got %d", size, n)
	}
	return dst, nil
}

// EncodeFull compresses a chunk surface's raw pixel bytes for storage as a
// Full record.
func EncodeFull(surf *pixel.Surface) []byte {
	return CompressBlock(surf.RawBytes())
}

// DecodeFull decompresses a Full record into surf, which must already be
// sized to match the original chunk edge.
func DecodeFull(data []byte, surf *pixel.Surface) error {
	raw, err := DecompressBlock(data)
	if err != nil {
		return fmt.Errorf("persistence: decoding full chunk: %w", err)
	}
	if !surf.LoadRawBytes(raw) {
		return fmt.Errorf("persistence: full chunk size mismatch: got %d bytes for a %dx%d surface", len(raw), surf.Edge(), surf.Edge())
	}
	return nil
}

// ComputeDelta returns the cells where current differs from baseline,
// encoded as linear row-major indices. baseline is the procedural
// regeneration of this chunk's position with the save file's world seed --
// callers obtain it from the seed package so this package stays independent
// of procedural generation.
func ComputeDelta(current, baseline *pixel.Surface) []DeltaEntry {
	edge := current.Edge()
	var deltas []DeltaEntry
	for y := int32(0); y < edge; y++ {
		for x := int32(0); x < edge; x++ {
			cur := current.Get(x, y)
			base := baseline.Get(x, y)
			if cur != base {
				deltas = append(deltas, DeltaEntry{Position: uint32(y*edge + x), Pixel: cur})
			}
		}
	}
	return deltas
}

// ShouldUseDelta reports whether a chunk with deltaCount modified cells out
// of totalPixels should be stored as Delta rather than Full, given the
// caller's configured threshold fraction.
func ShouldUseDelta(deltaCount, totalPixels int, threshold float32) bool {
	return float32(deltaCount) < float32(totalPixels)*threshold
}

// EncodeDelta serialises and compresses a list of delta entries: a 4-byte
// count header followed by DeltaEntrySize bytes per entry, then LZ4.
func EncodeDelta(deltas []DeltaEntry) []byte {
	raw := make([]byte, 4+len(deltas)*DeltaEntrySize)
	binary.LittleEndian.PutUint32(raw[0:4], uint32(len(deltas)))
	off := 4
	for _, d := range deltas {
		d.writeTo(raw[off : off+DeltaEntrySize])
		off += DeltaEntrySize
	}
	return CompressBlock(raw)
}

// DecodeDelta reverses EncodeDelta, rejecting positions outside
// [0, maxPosition).
func DecodeDelta(data []byte, maxPosition uint32) ([]DeltaEntry, error) {
	raw, err := DecompressBlock(data)
	if err != nil {
		return nil, fmt.Errorf("persistence: decoding delta: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("persistence: delta record too short")
	}
	count := binary.LittleEndian.Uint32(raw[0:4])
	need := 4 + int(count)*DeltaEntrySize
	if len(raw) < need {
		return nil, fmt.Errorf("persistence: delta record truncated: need %d bytes, have %d", need, len(raw))
	}

	deltas := make([]DeltaEntry, count)
	off := 4
	for i := range deltas {
		e := readDeltaEntry(raw[off : off+DeltaEntrySize])
		if e.Position >= maxPosition {
			return nil, fmt.Errorf("persistence: delta position %d out of bounds (max %d)", e.Position, maxPosition)
		}
		deltas[i] = e
		off += DeltaEntrySize
	}
	return deltas, nil
}

// ApplyDelta writes delta entries into surf, which should already hold the
// procedural baseline.
func ApplyDelta(surf *pixel.Surface, deltas []DeltaEntry) {
	edge := surf.Edge()
	for _, d := range deltas {
		x := int32(d.Position) % edge
		y := int32(d.Position) / edge
		surf.Set(x, y, d.Pixel)
	}
}
