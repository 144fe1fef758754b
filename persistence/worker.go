package persistence

import (
	"time"

	"github.com/pxlsim/pixelworld/coord"
)

// Command is a unit of work sent from the simulation loop to the I/O
// worker. Exactly one of the embedded payload fields is meaningful for a
// given Kind.
type Command struct {
	Kind CommandKind

	// Initialize
	Path string
	Seed uint64

	// LoadChunk / WriteChunk; SaveBody's owning chunk
	ChunkPos coord.ChunkPos

	// WriteChunk
	ChunkData    []byte
	StorageType  StorageType

	// SaveBody / RemoveBody (BodyData: SaveBody only)
	StableID   uint64
	BodyData   []byte
}

// CommandKind selects which operation a Command performs.
type CommandKind int

const (
	CmdInitialize CommandKind = iota
	CmdLoadChunk
	CmdWriteChunk
	CmdSaveBody
	CmdRemoveBody
	CmdFlush
	CmdShutdown
)

// Result is a unit of work completion sent back from the I/O worker.
// Exactly one of the embedded payload fields is meaningful for a given
// Kind.
type Result struct {
	Kind ResultKind

	// Initialized
	ChunkCount int
	BodyCount  int
	WorldSeed  uint64

	// ChunkLoaded / WriteComplete
	ChunkPos    coord.ChunkPos
	Found       bool
	ChunkData   []byte
	StorageType StorageType

	// BodySaveComplete / BodyRemoveComplete
	StableID uint64

	// Error
	Message string
}

// ResultKind selects which Command a Result answers, or reports a failure.
type ResultKind int

const (
	ResInitialized ResultKind = iota
	ResChunkLoaded
	ResWriteComplete
	ResBodySaveComplete
	ResBodyRemoveComplete
	ResFlushComplete
	ResError
)

// Worker runs persistence I/O on a dedicated goroutine behind a command
// queue, so commands sent to it never block the simulation loop on disk.
// The main loop calls Send to enqueue work and TryRecv to drain completed
// results. TryRecv never blocks; Send blocks only while the command queue
// is full.
type Worker struct {
	commands chan Command
	results  chan Result
	save     *SaveFile
	now      func() uint64
}

// NewWorker creates a worker with the given command/result queue depths.
// now supplies the unix-seconds timestamp used for header stamps; tests
// can pass a fixed clock.
func NewWorker(queueDepth int, now func() uint64) *Worker {
	return &Worker{
		commands: make(chan Command, queueDepth),
		results:  make(chan Result, queueDepth),
		now:      now,
	}
}

// Send enqueues a command. It does not block the caller on I/O; it only
// blocks if the command queue itself is full, matching a bounded mailbox
// rather than an unbounded one.
func (w *Worker) Send(cmd Command) {
	w.commands <- cmd
}

// AttachSaveFile binds an already-open SaveFile to the worker directly,
// for callers that need synchronous read access to the same file (e.g. a
// persistence seeder) alongside the worker's asynchronous writes. Using
// this instead of a CmdInitialize command avoids opening the path twice
// under two independent in-memory index copies. Must be called before
// Run, and CmdInitialize must not also be sent.
func (w *Worker) AttachSaveFile(sf *SaveFile) {
	w.save = sf
}

// TryRecv returns the next available result, or (_, false) if none is
// ready yet.
func (w *Worker) TryRecv() (Result, bool) {
	select {
	case r := <-w.results:
		return r, true
	default:
		return Result{}, false
	}
}

// Run processes commands until a Shutdown command is received or the
// command channel is closed. Intended to run on its own goroutine:
//
//	go worker.Run()
func (w *Worker) Run() {
	for cmd := range w.commands {
		if w.handle(cmd) {
			return
		}
	}
}

// handle processes one command, reporting whether the worker should stop.
func (w *Worker) handle(cmd Command) (stop bool) {
	switch cmd.Kind {
	case CmdInitialize:
		sf, err := OpenOrCreate(cmd.Path, cmd.Seed, w.now())
		if err != nil {
			w.emitError(err)
			return false
		}
		w.save = sf
		chunkCount, bodyCount := sf.Counts()
		w.results <- Result{
			Kind:       ResInitialized,
			ChunkCount: chunkCount,
			BodyCount:  bodyCount,
			WorldSeed:  sf.WorldSeed(),
		}

	case CmdLoadChunk:
		if w.save == nil {
			w.emitError(errNotInitialized)
			return false
		}
		data, storage, found, err := w.save.ReadChunk(cmd.ChunkPos)
		if err != nil {
			w.emitError(err)
			return false
		}
		w.results <- Result{
			Kind:        ResChunkLoaded,
			ChunkPos:    cmd.ChunkPos,
			Found:       found,
			ChunkData:   data,
			StorageType: storage,
		}

	case CmdWriteChunk:
		if w.save == nil {
			w.emitError(errNotInitialized)
			return false
		}
		if err := w.save.WriteChunk(cmd.ChunkPos, cmd.ChunkData, cmd.StorageType); err != nil {
			w.emitError(err)
			return false
		}
		w.results <- Result{Kind: ResWriteComplete, ChunkPos: cmd.ChunkPos}

	case CmdSaveBody:
		if w.save == nil {
			w.emitError(errNotInitialized)
			return false
		}
		if err := w.save.SaveBody(cmd.StableID, cmd.ChunkPos, cmd.BodyData); err != nil {
			w.emitError(err)
			return false
		}
		w.results <- Result{Kind: ResBodySaveComplete, StableID: cmd.StableID}

	case CmdRemoveBody:
		if w.save == nil {
			w.emitError(errNotInitialized)
			return false
		}
		w.save.RemoveBody(cmd.StableID)
		w.results <- Result{Kind: ResBodyRemoveComplete, StableID: cmd.StableID}

	case CmdFlush:
		if w.save == nil {
			w.emitError(errNotInitialized)
			return false
		}
		if err := w.save.Flush(w.now()); err != nil {
			w.emitError(err)
			return false
		}
		w.results <- Result{Kind: ResFlushComplete}

	case CmdShutdown:
		if w.save != nil {
			w.save.Close()
		}
		return true
	}
	return false
}

func (w *Worker) emitError(err error) {
	w.results <- Result{Kind: ResError, Message: err.Error()}
}

var errNotInitialized = &notInitializedError{}

type notInitializedError struct{}

func (*notInitializedError) Error() string {
	return "persistence: worker received a command before Initialize completed"
}

// UnixNow is the default now() clock for production Worker instances.
func UnixNow() uint64 {
	return uint64(time.Now().Unix())
}
