package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pxlsim/pixelworld/coord"
)

func TestOpenOrCreateThenReopenPreservesIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pxl")

	sf, err := OpenOrCreate(path, 42, 1000)
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}

	data := CompressBlock([]byte("some chunk bytes"))
	if err := sf.WriteChunk(coord.ChunkPos{X: 1, Y: 2}, data, Full); err != nil {
		t.Fatalf("WriteChunk() error = %v", err)
	}
	if err := sf.SaveBody(7, coord.ChunkPos{X: 1, Y: 2}, []byte("body record")); err != nil {
		t.Fatalf("SaveBody() error = %v", err)
	}
	if err := sf.Flush(1001); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := sf.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenOrCreate(path, 42, 2000)
	if err != nil {
		t.Fatalf("reopen OpenOrCreate() error = %v", err)
	}
	defer reopened.Close()

	if got := reopened.WorldSeed(); got != 42 {
		t.Errorf("WorldSeed() = %d, want 42", got)
	}

	chunkCount, bodyCount := reopened.Counts()
	if chunkCount != 1 || bodyCount != 1 {
		t.Errorf("Counts() = (%d, %d), want (1, 1)", chunkCount, bodyCount)
	}

	got, storage, found, err := reopened.ReadChunk(coord.ChunkPos{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	if !found {
		t.Fatal("ReadChunk() found = false, want true")
	}
	if storage != Full {
		t.Errorf("ReadChunk() storage = %v, want Full", storage)
	}
	raw, err := DecompressBlock(got)
	if err != nil {
		t.Fatalf("DecompressBlock() error = %v", err)
	}
	if string(raw) != "some chunk bytes" {
		t.Errorf("ReadChunk() data = %q, want %q", raw, "some chunk bytes")
	}

	body, found, err := reopened.ReadBody(7)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if !found || string(body) != "body record" {
		t.Errorf("ReadBody() = (%q, %v), want (%q, true)", body, found, "body record")
	}
}

func TestReadChunkMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	sf, err := OpenOrCreate(filepath.Join(dir, "world.pxl"), 1, 1)
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	defer sf.Close()

	_, _, found, err := sf.ReadChunk(coord.ChunkPos{X: 99, Y: 99})
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	if found {
		t.Fatal("ReadChunk() found = true for a chunk never written")
	}
}

func TestRemoveBodyDropsItFromIndex(t *testing.T) {
	dir := t.TempDir()
	sf, err := OpenOrCreate(filepath.Join(dir, "world.pxl"), 1, 1)
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	defer sf.Close()

	if err := sf.SaveBody(3, coord.ChunkPos{}, []byte("x")); err != nil {
		t.Fatalf("SaveBody() error = %v", err)
	}
	sf.RemoveBody(3)

	_, found, err := sf.ReadBody(3)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if found {
		t.Fatal("ReadBody() found = true after RemoveBody")
	}
}

func TestCopyToProducesAnIndependentFile(t *testing.T) {
	dir := t.TempDir()
	sf, err := OpenOrCreate(filepath.Join(dir, "world.pxl"), 1, 1)
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	defer sf.Close()

	if err := sf.WriteChunk(coord.ChunkPos{X: 0, Y: 0}, []byte{1, 2, 3, 4}, Full); err != nil {
		t.Fatalf("WriteChunk() error = %v", err)
	}

	copyPath := filepath.Join(dir, "copy.pxl")
	cp, err := sf.CopyTo(copyPath)
	if err != nil {
		t.Fatalf("CopyTo() error = %v", err)
	}
	defer cp.Close()

	chunkCount, _ := cp.Counts()
	if chunkCount != 1 {
		t.Errorf("copy Counts() chunkCount = %d, want 1", chunkCount)
	}
}

func TestDecodeHeaderRejectsBadVersionOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pxl")

	sf, err := OpenOrCreate(path, 1, 1)
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	sf.Close()

	// Corrupting version must surface as an error on reopen, not a panic or
	// silent misparse.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file for corruption test: %v", err)
	}
	raw[4] = 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("writing corrupted file: %v", err)
	}

	if _, err := OpenOrCreate(path, 1, 1); err == nil {
		t.Fatal("expected OpenOrCreate() to fail on an unsupported version")
	}
}
