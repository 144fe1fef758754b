package persistence

import (
	"fmt"
	"os"
	"sync"

	"github.com/pxlsim/pixelworld/coord"
)

// SaveFile is an open save file: the in-memory header and indices mirror
// what's on disk, kept in sync by Flush. Between flushes, WriteChunk/
// SaveBody/RemoveBody only append to the data region and update the
// in-memory index -- the header, chunk index, and entity section on disk
// are rewritten together only during Flush, never partially.
//
// All exported methods are safe for concurrent use; a single SaveFile is
// normally owned by one Worker (worker.go) but direct callers (tests,
// offline tools) may use it synchronously.
type SaveFile struct {
	mu sync.Mutex

	f      *os.File
	path   string
	header Header

	chunks map[coord.ChunkPos]ChunkIndexEntry
	bodies map[uint64]BodyIndexEntry
}

// OpenOrCreate opens an existing save file at path, or creates a fresh one
// stamped with worldSeed if none exists.
func OpenOrCreate(path string, worldSeed uint64, now uint64) (*SaveFile, error) {
	existing, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err == nil {
		return openExisting(path, existing)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("persistence: opening %s: %w", path, err)
	}
	return create(path, worldSeed, now)
}

func create(path string, worldSeed uint64, now uint64) (*SaveFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("persistence: creating %s: %w", path, err)
	}
	sf := &SaveFile{
		f:      f,
		path:   path,
		header: NewHeader(worldSeed, now),
		chunks: make(map[coord.ChunkPos]ChunkIndexEntry),
		bodies: make(map[uint64]BodyIndexEntry),
	}
	if err := sf.flushLocked(); err != nil {
		f.Close()
		return nil, err
	}
	return sf, nil
}

func openExisting(path string, f *os.File) (*SaveFile, error) {
	header, err := ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	indexBuf := make([]byte, header.IndexSize)
	if header.IndexSize > 0 {
		if _, err := f.ReadAt(indexBuf, int64(header.EntityOffset)); err != nil {
			f.Close()
			return nil, fmt.Errorf("persistence: reading index of %s: %w", path, err)
		}
	}
	chunkEntries, bodyEntries, err := decodeIndex(indexBuf, header.ChunkCount, header.BodyCount)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("persistence: decoding index of %s: %w", path, err)
	}

	sf := &SaveFile{
		f:      f,
		path:   path,
		header: header,
		chunks: make(map[coord.ChunkPos]ChunkIndexEntry, len(chunkEntries)),
		bodies: make(map[uint64]BodyIndexEntry, len(bodyEntries)),
	}
	for _, e := range chunkEntries {
		sf.chunks[e.Pos] = e
	}
	for _, e := range bodyEntries {
		sf.bodies[e.StableID] = e
	}
	return sf, nil
}

// WorldSeed returns the seed this save file was created with.
func (sf *SaveFile) WorldSeed() uint64 {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.header.WorldSeed
}

// ChunkIndexEntries returns a snapshot of every chunk index entry, for
// offline inspection (see persistence/diag).
func (sf *SaveFile) ChunkIndexEntries() []ChunkIndexEntry {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	out := make([]ChunkIndexEntry, 0, len(sf.chunks))
	for _, e := range sf.chunks {
		out = append(out, e)
	}
	return out
}

// BodyIndexEntries returns a snapshot of every body index entry, for
// offline inspection (see persistence/diag).
func (sf *SaveFile) BodyIndexEntries() []BodyIndexEntry {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	out := make([]BodyIndexEntry, 0, len(sf.bodies))
	for _, e := range sf.bodies {
		out = append(out, e)
	}
	return out
}

// Counts returns the current chunk and body counts.
func (sf *SaveFile) Counts() (chunkCount, bodyCount int) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return len(sf.chunks), len(sf.bodies)
}

// WriteChunk appends a compressed chunk record to the data region and
// updates its index entry in memory.
func (sf *SaveFile) WriteChunk(pos coord.ChunkPos, data []byte, storage StorageType) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	offset := sf.header.DataWriteHead
	if _, err := sf.f.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("persistence: writing chunk %v: %w", pos, err)
	}
	sf.header.DataWriteHead = offset + uint64(len(data))

	sf.chunks[pos] = ChunkIndexEntry{
		Pos:         pos,
		DataOffset:  offset,
		DataSize:    uint32(len(data)),
		StorageType: storage,
	}
	return nil
}

// ReadChunk returns a previously written chunk's compressed bytes and
// storage type, or (_, _, false) if the chunk has never been saved.
func (sf *SaveFile) ReadChunk(pos coord.ChunkPos) ([]byte, StorageType, bool, error) {
	sf.mu.Lock()
	entry, ok := sf.chunks[pos]
	sf.mu.Unlock()
	if !ok {
		return nil, 0, false, nil
	}

	buf := make([]byte, entry.DataSize)
	if _, err := sf.f.ReadAt(buf, int64(entry.DataOffset)); err != nil {
		return nil, 0, false, fmt.Errorf("persistence: reading chunk %v: %w", pos, err)
	}
	return buf, entry.StorageType, true, nil
}

// SaveBody appends a body record to the data region and updates its index
// entry.
func (sf *SaveFile) SaveBody(stableID uint64, owning coord.ChunkPos, data []byte) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	offset := sf.header.DataWriteHead
	if _, err := sf.f.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("persistence: writing body %d: %w", stableID, err)
	}
	sf.header.DataWriteHead = offset + uint64(len(data))

	sf.bodies[stableID] = BodyIndexEntry{
		StableID:    stableID,
		DataOffset:  offset,
		DataSize:    uint32(len(data)),
		OwningChunk: owning,
	}
	return nil
}

// ReadBody returns a previously saved body's compact record bytes, or
// (_, false) if no body with that id has been saved.
func (sf *SaveFile) ReadBody(stableID uint64) ([]byte, bool, error) {
	sf.mu.Lock()
	entry, ok := sf.bodies[stableID]
	sf.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	buf := make([]byte, entry.DataSize)
	if _, err := sf.f.ReadAt(buf, int64(entry.DataOffset)); err != nil {
		return nil, false, fmt.Errorf("persistence: reading body %d: %w", stableID, err)
	}
	return buf, true, nil
}

// RemoveBody drops a body's index entry. Its bytes in the data region are
// not reclaimed -- the region is append-only between flushes -- but a
// subsequent Flush never writes a dangling reference to it.
func (sf *SaveFile) RemoveBody(stableID uint64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	delete(sf.bodies, stableID)
}

// Flush rewrites the header, chunk index, and body index atomically
// (relative to each other; all three are updated before any is synced).
func (sf *SaveFile) Flush(now uint64) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.flushLocked2(now)
}

func (sf *SaveFile) flushLocked() error {
	return sf.flushLocked2(sf.header.CreatedAt)
}

func (sf *SaveFile) flushLocked2(now uint64) error {
	chunkEntries := make([]ChunkIndexEntry, 0, len(sf.chunks))
	for _, e := range sf.chunks {
		chunkEntries = append(chunkEntries, e)
	}
	bodyEntries := make([]BodyIndexEntry, 0, len(sf.bodies))
	for _, e := range sf.bodies {
		bodyEntries = append(bodyEntries, e)
	}

	indexBytes := encodeIndex(chunkEntries, bodyEntries)

	sf.header.ChunkCount = uint32(len(chunkEntries))
	sf.header.BodyCount = uint32(len(bodyEntries))
	sf.header.IndexSize = uint32(len(indexBytes))
	sf.header.EntityOffset = sf.header.DataWriteHead
	sf.header.DataWriteHead += uint64(len(indexBytes))
	sf.header.ModifiedAt = now

	if _, err := sf.f.WriteAt(indexBytes, int64(sf.header.EntityOffset)); err != nil {
		return fmt.Errorf("persistence: writing index: %w", err)
	}
	if _, err := sf.f.WriteAt(sf.header.Encode(), 0); err != nil {
		return fmt.Errorf("persistence: writing header: %w", err)
	}
	if err := sf.f.Sync(); err != nil {
		return fmt.Errorf("persistence: syncing %s: %w", sf.path, err)
	}
	return nil
}

// CopyTo duplicates this save file's current on-disk bytes to a new path
// and opens the copy, used by the public save_to(path) control surface.
func (sf *SaveFile) CopyTo(path string) (*SaveFile, error) {
	sf.mu.Lock()
	if err := sf.flushLocked2(sf.header.ModifiedAt); err != nil {
		sf.mu.Unlock()
		return nil, err
	}
	src := sf.path
	sf.mu.Unlock()

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("persistence: reading %s for copy: %w", src, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("persistence: writing copy %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening copy %s: %w", path, err)
	}
	return openExisting(path, f)
}

// Close closes the underlying file. It neither syncs nor flushes, so index
// changes made since the last Flush are not written.
func (sf *SaveFile) Close() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.f.Close()
}
