package pixel

// Surface is a fixed-size, row-major 2D buffer of pixels. It backs both
// chunk storage and pixel-body local grids.
type Surface struct {
	edge  int32
	cells []Pixel
}

// NewSurface allocates a square surface of the given edge length, filled
// with void pixels.
func NewSurface(edge int32) *Surface {
	return &Surface{
		edge:  edge,
		cells: make([]Pixel, edge*edge),
	}
}

// Edge returns the surface's edge length.
func (s *Surface) Edge() int32 { return s.edge }

func (s *Surface) index(x, y int32) int {
	return int(y*s.edge + x)
}

// InBounds reports whether (x, y) addresses a cell of the surface.
func (s *Surface) InBounds(x, y int32) bool {
	return x >= 0 && x < s.edge && y >= 0 && y < s.edge
}

// Get returns the pixel at local (x, y). Callers must check InBounds first;
// out-of-range access panics, matching slice semantics.
func (s *Surface) Get(x, y int32) Pixel {
	return s.cells[s.index(x, y)]
}

// Set writes the pixel at local (x, y).
func (s *Surface) Set(x, y int32, p Pixel) {
	s.cells[s.index(x, y)] = p
}

// Swap exchanges the pixels at two local positions.
func (s *Surface) Swap(ax, ay, bx, by int32) {
	ia, ib := s.index(ax, ay), s.index(bx, by)
	s.cells[ia], s.cells[ib] = s.cells[ib], s.cells[ia]
}

// Fill sets every cell to p.
func (s *Surface) Fill(p Pixel) {
	for i := range s.cells {
		s.cells[i] = p
	}
}

// Clear resets every cell to void.
func (s *Surface) Clear() {
	s.Fill(Pixel{})
}

// RawBytes returns the surface's pixel data as a flat byte slice suitable
// for GPU texture upload, 4 bytes per pixel in row-major order. The slice
// is a fresh copy; later changes to the surface do not affect it.
func (s *Surface) RawBytes() []byte {
	out := make([]byte, len(s.cells)*4)
	for i, p := range s.cells {
		enc := p.Encode()
		copy(out[i*4:i*4+4], enc[:])
	}
	return out
}

// LoadRawBytes overwrites the surface from a flat 4-bytes-per-pixel buffer.
// Returns false if the buffer length doesn't match the surface size.
func (s *Surface) LoadRawBytes(b []byte) bool {
	if len(b) != len(s.cells)*4 {
		return false
	}
	for i := range s.cells {
		var enc [4]byte
		copy(enc[:], b[i*4:i*4+4])
		s.cells[i] = Decode(enc)
	}
	return true
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	out := &Surface{edge: s.edge, cells: make([]Pixel, len(s.cells))}
	copy(out.cells, s.cells)
	return out
}
