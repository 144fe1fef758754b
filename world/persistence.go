package world

import (
	"fmt"
	"time"

	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/chunk"
	"github.com/pxlsim/pixelworld/coord"
	"github.com/pxlsim/pixelworld/internal/logging"
	"github.com/pxlsim/pixelworld/persistence"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/pool"
	"github.com/pxlsim/pixelworld/stream"
	"github.com/pxlsim/pixelworld/world/components"
)

// syncStreamingWindow recentres the streaming window on the streaming
// camera (if any), seeds newly entered chunks, queues newly left chunks'
// dirty pixels for the I/O worker, and retries any chunk the pool couldn't
// acquire on a previous call.
func (w *World) syncStreamingWindow() {
	window := w.ensureWindow()

	query := w.cameraFilter.Query()
	if !query.Next() {
		w.retryDeferredChunks()
		return
	}
	tr, _ := query.Get()
	cpos, _ := coord.WorldToChunkLocal(coord.WorldPos{X: int32(tr.X), Y: int32(tr.Y)}, w.cfg.Edge)

	delta, saves, deferred := window.UpdateCentre(cpos, w.pool)
	w.deferredChunks = append(w.deferredChunks, deferred...)

	for _, pos := range delta.Leaving {
		w.contours.InvalidateChunk(pos, w.cfg.Edge/w.cfg.TileEdge)
	}
	for _, pos := range delta.Entering {
		w.activateChunk(pos)
	}
	w.queueChunkSaves(saves)
	w.retryDeferredChunks()
}

// retryDeferredChunks attempts to acquire a pool slot for every chunk
// position the streaming window wanted to activate but couldn't, per
// spec.md §7's PoolExhausted handling: non-fatal, retried opportunistically
// rather than dropped.
func (w *World) retryDeferredChunks() {
	if len(w.deferredChunks) == 0 {
		return
	}
	remaining := w.deferredChunks[:0]
	for _, pos := range w.deferredChunks {
		idx, err := w.pool.Acquire()
		if err != nil {
			logging.L().Debug("chunk pool exhausted, deferring activation", "chunk", pos, "error", err)
			remaining = append(remaining, pos)
			continue
		}
		w.pool.Activate(pos, idx)
		w.activateChunk(pos)
	}
	w.deferredChunks = remaining
}

// activateChunk seeds a freshly acquired slot's chunk (synchronously --
// PersistenceSeeder's disk read happens inline here rather than through the
// async worker, trading one seed-time disk read for a much simpler
// load/seed merge than a two-phase Loading->Seeding handoff would need) and
// rehydrates any persisted body whose record names this chunk as owner.
func (w *World) activateChunk(pos coord.ChunkPos) {
	idx, ok := w.pool.IndexOf(pos)
	if !ok {
		return
	}
	slot := w.pool.GetMut(idx)
	w.seeder.Seed(pos, slot.Chunk)
	slot.State = pool.Active

	if w.save == nil {
		return
	}
	for _, entry := range w.save.BodyIndexEntries() {
		if entry.OwningChunk != pos {
			continue
		}
		w.rehydrateBody(entry.StableID)
	}
}

// rehydrateBody loads a persisted body's record and re-queues it through
// the same BodyQueue a fresh SpawnPixelBody uses, so it only rejoins the
// simulation once collision tiles around its footprint are cached.
func (w *World) rehydrateBody(stableID uint64) {
	data, found, err := w.save.ReadBody(stableID)
	if err != nil {
		logging.L().Warn("failed to read persisted body record", "stable_id", stableID, "error", err)
		return
	}
	if !found {
		return
	}
	record, err := persistence.DecodeBody(data)
	if err != nil {
		logging.L().Warn("failed to decode persisted body record", "stable_id", stableID, "error", err)
		return
	}

	b := &body.Body{
		StableID: stableID,
		Surface:  record.Surface,
		Width:    record.Width,
		Height:   record.Height,
		OriginX:  record.OriginX,
		OriginY:  record.OriginY,
	}
	t := components.Transform{
		X: float32(-record.OriginX), Y: float32(-record.OriginY),
	}
	tiles := requiredTiles(b, body.Transform(t), w.cfg.TileEdge)
	pb := components.PixelBody{Body: b, RequiredTiles: tiles}
	w.bodyMap.NewEntity(&t, &pb)
	w.bodyQ.Enqueue(stream.PendingBody{StableID: stableID, RequiredTiles: tiles})
}

// queueChunkSaves sends one async write command per chunk the streaming
// window evicted with unsaved edits, choosing Delta or Full encoding by
// comparing against a freshly regenerated procedural baseline.
func (w *World) queueChunkSaves(saves []stream.SaveRequest) {
	if w.worker == nil || len(saves) == 0 {
		return
	}
	for _, s := range saves {
		data, storage := w.encodeChunkSave(s.Pos, s.RawPixels)
		w.worker.Send(persistence.Command{
			Kind:        persistence.CmdWriteChunk,
			ChunkPos:    s.Pos,
			ChunkData:   data,
			StorageType: storage,
		})
	}
}

func (w *World) encodeChunkSave(pos coord.ChunkPos, rawPixels []byte) ([]byte, persistence.StorageType) {
	current := pixel.NewSurface(w.cfg.Edge)
	current.LoadRawBytes(rawPixels)

	baseline := chunk.New(w.cfg.Edge, w.cfg.TileEdge, w.cfg.HeatEdge)
	w.proceduralSeeder.Seed(pos, baseline)

	deltas := persistence.ComputeDelta(current, baseline.Surface)
	total := int(w.cfg.Edge * w.cfg.Edge)
	if persistence.ShouldUseDelta(len(deltas), total, w.cfg.DeltaThreshold) {
		return persistence.EncodeDelta(deltas), persistence.Delta
	}
	return persistence.EncodeFull(current), persistence.Full
}

// drainPersistenceResults drains whatever the I/O worker has completed
// since the last call. Errors are surfaced to the caller's sink rather than
// panicking, per spec.md §7: persistence failures are logged and the
// in-memory world state stays authoritative.
func (w *World) drainPersistenceResults(onError func(error)) {
	if w.worker == nil {
		return
	}
	for {
		res, ok := w.worker.TryRecv()
		if !ok {
			return
		}
		if res.Kind == persistence.ResError {
			logging.L().Warn("persistence worker reported an error", "message", res.Message)
			if onError != nil {
				onError(fmt.Errorf("persistence: %s", res.Message))
			}
		}
	}
}

// Save flushes every active chunk and spawned body to the attached save
// file and blocks until the worker confirms the flush, per spec.md §6's
// save() operation. It is a no-op if the world wasn't constructed with
// WithPersistence.
func (w *World) Save() error {
	if w.save == nil || w.worker == nil {
		return nil
	}
	w.saveAllChunks()
	w.saveAllBodies()
	w.worker.Send(persistence.Command{Kind: persistence.CmdFlush})
	return w.awaitFlush()
}

func (w *World) saveAllChunks() {
	w.pool.ForEachSlot(func(_ pool.SlotIndex, slot *pool.Slot) {
		if slot.State != pool.Active {
			return
		}
		data, storage := w.encodeChunkSave(slot.Pos, slot.Chunk.Surface.RawBytes())
		w.worker.Send(persistence.Command{
			Kind:        persistence.CmdWriteChunk,
			ChunkPos:    slot.Pos,
			ChunkData:   data,
			StorageType: storage,
		})
		slot.Persisted = true
	})
}

func (w *World) saveAllBodies() {
	query := w.bodyFilter.Query()
	for query.Next() {
		tr, pb := query.Get()
		if !pb.Spawned {
			continue
		}
		cpos, _ := coord.WorldToChunkLocal(coord.WorldPos{X: int32(tr.X), Y: int32(tr.Y)}, w.cfg.Edge)
		data := persistence.EncodeBody(pb.Body.Width, pb.Body.Height, pb.Body.OriginX, pb.Body.OriginY, pb.Body.Surface)
		w.worker.Send(persistence.Command{
			Kind:     persistence.CmdSaveBody,
			ChunkPos: cpos,
			StableID: pb.Body.StableID,
			BodyData: data,
		})
	}
}

// awaitFlush blocks until CmdFlush's result (or an error) comes back. The
// caller of Save() is a host's explicit user action (not the tick loop),
// so blocking here is acceptable -- unlike the per-tick write path, this
// one has no frame budget to respect.
func (w *World) awaitFlush() error {
	for {
		res, ok := w.worker.TryRecv()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		switch res.Kind {
		case persistence.ResFlushComplete:
			return nil
		case persistence.ResError:
			return fmt.Errorf("persistence: %s", res.Message)
		}
	}
}

// SaveTo copies the current save file to a new path, per spec.md §6's
// save_to(path) operation. The world keeps using its original file.
func (w *World) SaveTo(path string) error {
	if w.save == nil {
		return fmt.Errorf("persistence: world has no attached save file")
	}
	if err := w.Save(); err != nil {
		return err
	}
	copy, err := w.save.CopyTo(path)
	if err != nil {
		return err
	}
	return copy.Close()
}
