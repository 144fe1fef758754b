package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/pxlsim/pixelworld/pixel"
)

// bodyRecordHeaderSize is the fixed prefix before a body's compressed
// surface bytes: width, height, origin X/Y (int32 each).
const bodyRecordHeaderSize = 4 + 4 + 4 + 4

// EncodeBody serialises a pixel body's local dimensions, origin, and pixel
// surface into a compact record, compressed the same way a Full chunk
// record is (CompressBlock) -- a body's surface is exactly a pixel.Surface,
// so it gets the same treatment, just with a small header in front
// recording the shape lz4 alone can't recover.
func EncodeBody(width, height, originX, originY int32, surf *pixel.Surface) []byte {
	header := make([]byte, bodyRecordHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(width))
	binary.LittleEndian.PutUint32(header[4:8], uint32(height))
	binary.LittleEndian.PutUint32(header[8:12], uint32(originX))
	binary.LittleEndian.PutUint32(header[12:16], uint32(originY))
	compressed := CompressBlock(surf.RawBytes())
	return append(header, compressed...)
}

// BodyRecord is a decoded body record, ready to be loaded into a
// body.Body-shaped surface by the caller. The persistence package does not
// import body, and body does not import persistence; the world package
// converts between the two.
type BodyRecord struct {
	Width, Height    int32
	OriginX, OriginY int32
	Surface          *pixel.Surface
}

// DecodeBody reverses EncodeBody.
func DecodeBody(data []byte) (BodyRecord, error) {
	if len(data) < bodyRecordHeaderSize {
		return BodyRecord{}, fmt.Errorf("persistence: body record too short")
	}
	width := int32(binary.LittleEndian.Uint32(data[0:4]))
	height := int32(binary.LittleEndian.Uint32(data[4:8]))
	originX := int32(binary.LittleEndian.Uint32(data[8:12]))
	originY := int32(binary.LittleEndian.Uint32(data[12:16]))

	raw, err := DecompressBlock(data[bodyRecordHeaderSize:])
	if err != nil {
		return BodyRecord{}, fmt.Errorf("persistence: decoding body surface: %w", err)
	}
	side := width
	if height > side {
		side = height
	}
	surf := pixel.NewSurface(side)
	if !surf.LoadRawBytes(raw) {
		return BodyRecord{}, fmt.Errorf("persistence: body surface size mismatch: got %d bytes for a %dx%d surface", len(raw), side, side)
	}
	return BodyRecord{Width: width, Height: height, OriginX: originX, OriginY: originY, Surface: surf}, nil
}
