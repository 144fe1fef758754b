package persistence

import (
	"testing"

	"github.com/pxlsim/pixelworld/pixel"
)

func TestCompressBlockRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"zeros", make([]byte, 1024)},
		{"small", []byte("hello, pixelworld")},
		{"incompressible-ish", []byte{1, 250, 3, 17, 99, 200, 5, 61, 2, 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := CompressBlock(tt.data)
			got, err := DecompressBlock(compressed)
			if err != nil {
				t.Fatalf("DecompressBlock() error = %v", err)
			}
			if len(got) != len(tt.data) {
				t.Fatalf("round trip length = %d, want %d", len(got), len(tt.data))
			}
			for i := range got {
				if got[i] != tt.data[i] {
					t.Fatalf("round trip mismatch at byte %d: got %d, want %d", i, got[i], tt.data[i])
				}
			}
		})
	}
}

func TestDeltaEntryRoundTrip(t *testing.T) {
	e := DeltaEntry{Position: 12345, Pixel: pixel.Pixel{Material: 5, ColorIndex: 10, Damage: 3, Flags: pixel.FlagWet}}
	buf := make([]byte, DeltaEntrySize)
	e.writeTo(buf)

	got := readDeltaEntry(buf)
	if got != e {
		t.Fatalf("readDeltaEntry() = %+v, want %+v", got, e)
	}
}

func TestEncodeDecodeDelta(t *testing.T) {
	deltas := []DeltaEntry{
		{Position: 0, Pixel: pixel.Pixel{Material: 1, ColorIndex: 1}},
		{Position: 100, Pixel: pixel.Pixel{Material: 2, ColorIndex: 2}},
		{Position: 50000, Pixel: pixel.Pixel{Material: 3, ColorIndex: 3}},
	}

	encoded := EncodeDelta(deltas)
	decoded, err := DecodeDelta(encoded, 1<<20)
	if err != nil {
		t.Fatalf("DecodeDelta() error = %v", err)
	}
	if len(decoded) != len(deltas) {
		t.Fatalf("decoded %d entries, want %d", len(decoded), len(deltas))
	}
	for i, d := range deltas {
		if decoded[i] != d {
			t.Errorf("entry %d = %+v, want %+v", i, decoded[i], d)
		}
	}
}

func TestDecodeDeltaRejectsOutOfBoundsPosition(t *testing.T) {
	deltas := []DeltaEntry{{Position: 500, Pixel: pixel.Pixel{Material: 1}}}
	encoded := EncodeDelta(deltas)

	if _, err := DecodeDelta(encoded, 100); err == nil {
		t.Fatal("expected an error for an out-of-bounds delta position")
	}
}

func TestEncodeDecodeFull(t *testing.T) {
	surf := pixel.NewSurface(8)
	for y := int32(0); y < 8; y++ {
		for x := int32(0); x < 8; x++ {
			surf.Set(x, y, pixel.Pixel{Material: pixel.MaterialID((x + y) % 5), ColorIndex: uint8(x * y)})
		}
	}

	encoded := EncodeFull(surf)
	decoded := pixel.NewSurface(8)
	if err := DecodeFull(encoded, decoded); err != nil {
		t.Fatalf("DecodeFull() error = %v", err)
	}

	for y := int32(0); y < 8; y++ {
		for x := int32(0); x < 8; x++ {
			want := surf.Get(x, y)
			got := decoded.Get(x, y)
			if got != want {
				t.Errorf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestComputeDeltaFindsOnlyChangedCells(t *testing.T) {
	baseline := pixel.NewSurface(4)
	current := pixel.NewSurface(4)
	current.Set(1, 2, pixel.Pixel{Material: 9})
	current.Set(3, 0, pixel.Pixel{Material: 7})

	deltas := ComputeDelta(current, baseline)
	if len(deltas) != 2 {
		t.Fatalf("ComputeDelta() found %d entries, want 2", len(deltas))
	}
}

func TestShouldUseDelta(t *testing.T) {
	tests := []struct {
		name        string
		deltaCount  int
		totalPixels int
		want        bool
	}{
		{"no changes", 0, 1000, true},
		{"just under threshold", 749, 1000, true},
		{"at threshold", 750, 1000, false},
		{"everything changed", 1000, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldUseDelta(tt.deltaCount, tt.totalPixels, DeltaThreshold); got != tt.want {
				t.Errorf("ShouldUseDelta(%d, %d) = %v, want %v", tt.deltaCount, tt.totalPixels, got, tt.want)
			}
		})
	}
}

func TestApplyDelta(t *testing.T) {
	surf := pixel.NewSurface(4)
	ApplyDelta(surf, []DeltaEntry{
		{Position: 0, Pixel: pixel.Pixel{Material: 1}},
		{Position: 5, Pixel: pixel.Pixel{Material: 2}}, // (1,1) in a 4-wide surface
	})

	if got := surf.Get(0, 0); got.Material != 1 {
		t.Errorf("surf.Get(0,0).Material = %d, want 1", got.Material)
	}
	if got := surf.Get(1, 1); got.Material != 2 {
		t.Errorf("surf.Get(1,1).Material = %d, want 2", got.Material)
	}
}
