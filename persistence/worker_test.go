package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pxlsim/pixelworld/coord"
)

func fixedClock(t uint64) func() uint64 {
	return func() uint64 { return t }
}

func recvWithin(t *testing.T, w *Worker, timeout time.Duration) Result {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r, ok := w.TryRecv(); ok {
			return r
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a worker result")
	return Result{}
}

func TestWorkerInitializeWriteFlushShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pxl")

	w := NewWorker(8, fixedClock(1000))
	go w.Run()

	w.Send(Command{Kind: CmdInitialize, Path: path, Seed: 7})
	init := recvWithin(t, w, time.Second)
	if init.Kind != ResInitialized {
		t.Fatalf("first result kind = %v, want ResInitialized", init.Kind)
	}
	if init.WorldSeed != 7 {
		t.Errorf("Initialized.WorldSeed = %d, want 7", init.WorldSeed)
	}

	w.Send(Command{
		Kind:        CmdWriteChunk,
		ChunkPos:    coord.ChunkPos{X: 3, Y: 4},
		ChunkData:   CompressBlock([]byte("chunk bytes")),
		StorageType: Full,
	})
	written := recvWithin(t, w, time.Second)
	if written.Kind != ResWriteComplete {
		t.Fatalf("result kind = %v, want ResWriteComplete", written.Kind)
	}

	w.Send(Command{Kind: CmdFlush})
	flushed := recvWithin(t, w, time.Second)
	if flushed.Kind != ResFlushComplete {
		t.Fatalf("result kind = %v, want ResFlushComplete", flushed.Kind)
	}

	w.Send(Command{Kind: CmdLoadChunk, ChunkPos: coord.ChunkPos{X: 3, Y: 4}})
	loaded := recvWithin(t, w, time.Second)
	if loaded.Kind != ResChunkLoaded || !loaded.Found {
		t.Fatalf("result = %+v, want a found ResChunkLoaded", loaded)
	}

	w.Send(Command{Kind: CmdShutdown})
}

func TestWorkerCommandBeforeInitializeReportsError(t *testing.T) {
	w := NewWorker(4, fixedClock(1))
	go w.Run()

	w.Send(Command{Kind: CmdFlush})
	res := recvWithin(t, w, time.Second)
	if res.Kind != ResError {
		t.Fatalf("result kind = %v, want ResError", res.Kind)
	}

	w.Send(Command{Kind: CmdShutdown})
}
