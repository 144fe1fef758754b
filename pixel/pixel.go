// Package pixel defines the fixed 4-byte pixel record, its flag bitset, and
// the row-major pixel surface shared by chunks and pixel bodies.
package pixel

// Flags is a bitset of per-pixel state.
type Flags uint8

const (
	// FlagDirty marks a pixel as participating in the next simulation tick.
	FlagDirty Flags = 1 << iota
	// FlagSolid marks a pixel's material as rigid for collision purposes.
	FlagSolid
	// FlagFalling marks a pixel that moved last tick (used by renderers for
	// motion blur / trail effects; simulation itself recomputes motion from
	// material state each tick).
	FlagFalling
	// FlagBurning marks an actively combusting pixel.
	FlagBurning
	// FlagWet marks a pixel adjacent to or soaked by a liquid.
	FlagWet
	// FlagPixelBody marks a pixel as owned by a rigid pixel body's
	// projection; it is excluded from terrain collision meshing.
	FlagPixelBody
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Set returns f with mask's bits set.
func (f Flags) Set(mask Flags) Flags { return f | mask }

// Clear returns f with mask's bits cleared.
func (f Flags) Clear(mask Flags) Flags { return f &^ mask }

// MaterialID identifies a row in the material registry. 0 is reserved for
// void (no material).
type MaterialID uint8

// Void is the material id of an empty pixel.
const Void MaterialID = 0

// Pixel is the fixed 4-byte on-disk and in-memory pixel record.
type Pixel struct {
	Material   MaterialID
	ColorIndex uint8
	Damage     uint8
	Flags      Flags
}

// IsVoid reports whether the pixel holds no material. All other fields are
// undefined for a void pixel.
func (p Pixel) IsVoid() bool { return p.Material == Void }

// Encode packs the pixel into its 4-byte wire form.
func (p Pixel) Encode() [4]byte {
	return [4]byte{byte(p.Material), p.ColorIndex, p.Damage, byte(p.Flags)}
}

// Decode unpacks a 4-byte wire form into a Pixel.
func Decode(b [4]byte) Pixel {
	return Pixel{
		Material:   MaterialID(b[0]),
		ColorIndex: b[1],
		Damage:     b[2],
		Flags:      Flags(b[3]),
	}
}
