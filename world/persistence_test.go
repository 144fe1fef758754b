package world

import (
	"path/filepath"
	"testing"

	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/persistence"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/seed"
	"github.com/pxlsim/pixelworld/world/components"
)

func fixedClock() uint64 { return 1 }

// newPersistentTestWorld wires a World to a real on-disk save file and a
// running I/O worker, mirroring how cmd/pixelworld assembles the two.
func newPersistentTestWorld(t *testing.T) (*World, *persistence.Worker) {
	t.Helper()
	reg := testRegistry()
	path := filepath.Join(t.TempDir(), "world.pxw")

	save, err := persistence.OpenOrCreate(path, 1, fixedClock())
	if err != nil {
		t.Fatalf("OpenOrCreate: %v", err)
	}
	t.Cleanup(func() { save.Close() })

	worker := persistence.NewWorker(8, fixedClock)
	worker.AttachSaveFile(save)
	go worker.Run()
	t.Cleanup(func() { worker.Send(persistence.Command{Kind: persistence.CmdShutdown}) })

	w := SpawnPixelWorld(testConfig(reg), &seed.PersistenceSeeder{Inner: voidSeeder{}, Save: save})
	w.WithPersistence(save, worker)
	w.SpawnStreamingCamera(components.Transform{})
	w.syncStreamingWindow()
	return w, worker
}

func TestSaveFlushesModifiedChunks(t *testing.T) {
	w, _ := newPersistentTestWorld(t)
	w.SetPixel((coord.WorldPos{X: 1, Y: 1}), pixel.Pixel{Material: testSand}, nil)

	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	chunkCount, _ := w.save.Counts()
	if chunkCount == 0 {
		t.Fatalf("expected at least one chunk to be persisted after Save")
	}
}

func TestSaveToCopiesFile(t *testing.T) {
	w, _ := newPersistentTestWorld(t)
	w.SetPixel((coord.WorldPos{X: 0, Y: 0}), pixel.Pixel{Material: testRock}, nil)

	dest := filepath.Join(t.TempDir(), "copy.pxw")
	if err := w.SaveTo(dest); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	copySave, err := persistence.OpenOrCreate(dest, 1, fixedClock())
	if err != nil {
		t.Fatalf("OpenOrCreate(copy): %v", err)
	}
	defer copySave.Close()

	chunkCount, _ := copySave.Counts()
	if chunkCount == 0 {
		t.Fatalf("expected the copied save file to contain the persisted chunk")
	}
}
