// Package diag writes a save file's chunk and body indices to CSV for
// offline inspection, mirroring the teacher's CSV telemetry dumps.
package diag

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pxlsim/pixelworld/persistence"
)

// ChunkIndexRow is one chunk index entry flattened for CSV export.
type ChunkIndexRow struct {
	X           int32  `csv:"x"`
	Y           int32  `csv:"y"`
	DataOffset  uint64 `csv:"data_offset"`
	DataSize    uint32 `csv:"data_size"`
	StorageType string `csv:"storage_type"`
}

// BodyIndexRow is one body index entry flattened for CSV export.
type BodyIndexRow struct {
	StableID      uint64 `csv:"stable_id"`
	DataOffset    uint64 `csv:"data_offset"`
	DataSize      uint32 `csv:"data_size"`
	OwningChunkX  int32  `csv:"owning_chunk_x"`
	OwningChunkY  int32  `csv:"owning_chunk_y"`
}

func storageTypeName(t persistence.StorageType) string {
	if t == persistence.Delta {
		return "delta"
	}
	return "full"
}

// DumpChunkIndex writes every chunk index row to path as CSV.
func DumpChunkIndex(path string, rows []ChunkIndexRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("diag: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("diag: writing chunk index csv: %w", err)
	}
	return nil
}

// DumpBodyIndex writes every body index row to path as CSV.
func DumpBodyIndex(path string, rows []BodyIndexRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("diag: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("diag: writing body index csv: %w", err)
	}
	return nil
}

// ChunkIndexRowsOf flattens a save file's chunk index entries for export.
func ChunkIndexRowsOf(entries []persistence.ChunkIndexEntry) []ChunkIndexRow {
	rows := make([]ChunkIndexRow, len(entries))
	for i, e := range entries {
		rows[i] = ChunkIndexRow{
			X:           e.Pos.X,
			Y:           e.Pos.Y,
			DataOffset:  e.DataOffset,
			DataSize:    e.DataSize,
			StorageType: storageTypeName(e.StorageType),
		}
	}
	return rows
}

// BodyIndexRowsOf flattens a save file's body index entries for export.
func BodyIndexRowsOf(entries []persistence.BodyIndexEntry) []BodyIndexRow {
	rows := make([]BodyIndexRow, len(entries))
	for i, e := range entries {
		rows[i] = BodyIndexRow{
			StableID:     e.StableID,
			DataOffset:   e.DataOffset,
			DataSize:     e.DataSize,
			OwningChunkX: e.OwningChunk.X,
			OwningChunkY: e.OwningChunk.Y,
		}
	}
	return rows
}
