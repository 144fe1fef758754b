package pixel

import "testing"

func TestVoidPixel(t *testing.T) {
	var p Pixel
	if !p.IsVoid() {
		t.Errorf("zero-value pixel should be void")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Pixel{Material: 7, ColorIndex: 200, Damage: 3, Flags: FlagDirty | FlagBurning}
	got := Decode(p.Encode())
	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestFlagsSetClear(t *testing.T) {
	var f Flags
	f = f.Set(FlagDirty | FlagWet)
	if !f.Has(FlagDirty) || !f.Has(FlagWet) {
		t.Fatalf("expected both flags set, got %b", f)
	}
	f = f.Clear(FlagWet)
	if f.Has(FlagWet) {
		t.Errorf("expected FlagWet cleared")
	}
	if !f.Has(FlagDirty) {
		t.Errorf("expected FlagDirty to remain set")
	}
}

func TestSurfaceSwapAndRawBytes(t *testing.T) {
	s := NewSurface(4)
	s.Set(0, 0, Pixel{Material: 1, ColorIndex: 1})
	s.Set(1, 0, Pixel{Material: 2, ColorIndex: 2})
	s.Swap(0, 0, 1, 0)
	if s.Get(0, 0).Material != 2 || s.Get(1, 0).Material != 1 {
		t.Fatalf("swap did not exchange pixels")
	}

	raw := s.RawBytes()
	if len(raw) != 4*4*4 {
		t.Fatalf("expected %d raw bytes, got %d", 4*4*4, len(raw))
	}

	other := NewSurface(4)
	if !other.LoadRawBytes(raw) {
		t.Fatalf("LoadRawBytes rejected a correctly sized buffer")
	}
	if other.Get(0, 0) != s.Get(0, 0) {
		t.Errorf("LoadRawBytes did not reproduce source surface")
	}
}

func TestRegistryVoidReserved(t *testing.T) {
	r := NewRegistry()
	m, ok := r.Get(Void)
	if !ok {
		t.Fatalf("void material should always be defined")
	}
	if m.Flammable() {
		t.Errorf("void should never be flammable")
	}
}
