// Command pixelworld runs a headless pixel-simulation world: it loads
// configuration, opens (or creates) a save file, and ticks a world.World
// until told to stop, logging progress periodically. It has no rendering
// surface of its own -- it exists to exercise and soak-test the simulation
// packages the way the teacher's -headless flag exercised its own
// ecosystem simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pxlsim/pixelworld/body"
	"github.com/pxlsim/pixelworld/burn"
	"github.com/pxlsim/pixelworld/config"
	"github.com/pxlsim/pixelworld/internal/logging"
	"github.com/pxlsim/pixelworld/persistence"
	"github.com/pxlsim/pixelworld/pixel"
	"github.com/pxlsim/pixelworld/seed"
	"github.com/pxlsim/pixelworld/world"
	"github.com/pxlsim/pixelworld/world/components"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML config file overriding the embedded defaults")
	savePath     = flag.String("save", "", "Path to a save file (created if missing); persistence disabled if unset")
	logFile      = flag.String("logfile", "", "Write logs to this file instead of stderr")
	logInterval  = flag.Int("log-interval", 300, "Log progress every N ticks (0 disables periodic progress logging)")
	maxTicks     = flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = run forever)")
	perfLog      = flag.Bool("perf", false, "Log per-tick timing averages alongside progress reports")
	cameraStartX = flag.Float64("camera-x", 0, "World-space X of the initial streaming camera")
	cameraStartY = flag.Float64("camera-y", 0, "World-space Y of the initial streaming camera")
)

// materialCatalog defines a small, self-contained set of materials so the
// command is runnable on its own, without a host supplying its own
// pixel.Registry. A real host (a game, a level editor) would build its own
// registry to match its content instead of reusing this one.
func materialCatalog() (*pixel.Registry, pixel.MaterialID) {
	const (
		stone pixel.MaterialID = 1
		sand  pixel.MaterialID = 2
		water pixel.MaterialID = 3
		wood  pixel.MaterialID = 4
		ash   pixel.MaterialID = 5
	)

	reg := pixel.NewRegistry()
	reg.Define(stone, pixel.Material{Name: "stone", Physics: pixel.Solid, Density: 255, BlastResistance: 0.9})
	reg.Define(sand, pixel.Material{Name: "sand", Physics: pixel.Powder, Density: 160, BlastResistance: 0.2})
	reg.Define(water, pixel.Material{Name: "water", Physics: pixel.Liquid, Density: 100, Dispersion: 5})
	reg.Define(wood, pixel.Material{
		Name: "wood", Physics: pixel.Solid, Density: 120,
		IgnitionThresh: 80, BlastResistance: 0.4,
		OnBurn: &pixel.BurnEffect{Kind: pixel.BurnTransform, Target: ash, Chance: 0.3},
	})
	reg.Define(ash, pixel.Material{Name: "ash", Physics: pixel.Powder, Density: 20})
	return reg, stone
}

func buildWorldConfig(cfg *config.Config, reg *pixel.Registry) world.Config {
	return world.Config{
		Edge:      cfg.World.Edge,
		TileEdge:  cfg.World.TileEdge,
		HeatEdge:  cfg.World.HeatEdge,
		WorldSeed: cfg.World.Seed,

		StreamWidth:  cfg.Streaming.Width,
		StreamHeight: cfg.Streaming.Height,
		PoolCapacity: cfg.Streaming.PoolCapacity,

		PhysicsRate:  cfg.Physics.Rate,
		JitterFactor: cfg.Physics.JitterFactor,

		BurningRate: cfg.Burning.Rate,
		BurnRates: burn.Rates{
			SpreadPerNeighbourPerSec: cfg.Burning.SpreadPerNeighbourPerSec,
			BurnDurationSec:          cfg.Burning.BurnDurationSec,
			BurningHeat:              cfg.Heat.BurningHeat,
			CoolingFactor:            cfg.Heat.CoolingFactor,
		},

		HeatRate: cfg.Heat.Rate,

		DeltaThreshold: cfg.Persistence.DeltaThreshold,

		ContourTolerance: cfg.Contour.Tolerance,
		MinSplitSize:     cfg.Contour.MinSplitSize,
		SubmersionConfig: body.SubmersionConfig{Threshold: cfg.Submersion.Threshold},

		Registry: reg,
	}
}

func unixNow() uint64 { return uint64(time.Now().Unix()) }

func main() {
	flag.Parse()

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pixelworld: failed to create log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logging.SetLogger(logging.NewTextLogger(f, slog.LevelInfo))
	}
	log := logging.L()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	reg, groundMaterial := materialCatalog()
	wcfg := buildWorldConfig(cfg, reg)

	procedural := seed.NewNoiseSeeder(int64(cfg.World.Seed), groundMaterial)

	var (
		save   *persistence.SaveFile
		worker *persistence.Worker
	)
	if *savePath != "" {
		save, err = persistence.OpenOrCreate(*savePath, cfg.World.Seed, unixNow())
		if err != nil {
			log.Error("failed to open save file", "path", *savePath, "error", err)
			os.Exit(1)
		}
		defer save.Close()

		worker = persistence.NewWorker(cfg.Persistence.WorkerQueueDepth, unixNow)
		worker.AttachSaveFile(save)
		go worker.Run()
		defer worker.Send(persistence.Command{Kind: persistence.CmdShutdown})
	}

	var w *world.World
	if save != nil {
		persistSeeder := seed.NewPersistenceSeeder(procedural, save)
		w = world.SpawnPixelWorld(wcfg, persistSeeder).WithPersistence(save, worker)
	} else {
		w = world.SpawnPixelWorld(wcfg, procedural)
	}

	w.SpawnStreamingCamera(components.Transform{X: float32(*cameraStartX), Y: float32(*cameraStartY)})

	log.Info("starting simulation",
		"edge", cfg.World.Edge, "tile_edge", cfg.World.TileEdge,
		"stream_width", cfg.Streaming.Width, "stream_height", cfg.Streaming.Height,
		"max_ticks", *maxTicks, "save_path", *savePath)

	run(w, log)

	if save != nil {
		if err := w.Save(); err != nil {
			log.Error("final save failed", "error", err)
			os.Exit(1)
		}
		chunkCount, bodyCount := save.Counts()
		log.Info("final save complete", "chunks", chunkCount, "bodies", bodyCount)
	}
}

func run(w *world.World, log *slog.Logger) {
	start := time.Now()
	var tickSamples time.Duration
	var samplesSinceReport int

	onError := func(err error) {
		log.Warn("persistence error surfaced during tick", "error", err)
	}

	for {
		if *maxTicks > 0 && w.TickCount() >= *maxTicks {
			log.Info("reached max ticks, stopping", "ticks", w.TickCount())
			return
		}

		tickStart := time.Now()
		w.Tick(onError)
		tickSamples += time.Since(tickStart)
		samplesSinceReport++

		if *logInterval > 0 && w.TickCount()%uint64(*logInterval) == 0 {
			elapsed := time.Since(start)
			fields := []any{
				"tick", w.TickCount(),
				"elapsed", elapsed.Round(time.Second),
				"ticks_per_sec", float64(w.TickCount()) / elapsed.Seconds(),
			}
			if *perfLog && samplesSinceReport > 0 {
				fields = append(fields, "avg_tick", (tickSamples / time.Duration(samplesSinceReport)).Round(time.Microsecond))
				tickSamples = 0
				samplesSinceReport = 0
			}
			log.Info("progress", fields...)
		}
	}
}
